package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"citriq/pkg/auth"
	"citriq/pkg/domain"
)

// Register creates a student or teacher account with a password and
// signs the new user in.
func (a *App) Register(ctx context.Context, name, email, password string, role domain.UserRole) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.User{}, "", validationf("name, email, password and role are required")
	}
	if role != domain.RoleStudent && role != domain.RoleTeacher {
		return domain.User{}, "", validationf("invalid role %q: must be student or teacher", role)
	}
	user, err := a.createUser(ctx, name, email, password, role)
	if err != nil {
		return domain.User{}, "", err
	}
	t, err := a.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, t, nil
}

// CreateUser lets an admin create a user with any role.
func (a *App) CreateUser(ctx context.Context, name, email, password string, role domain.UserRole) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.User{}, validationf("name, email, password and role are required")
	}
	switch role {
	case domain.RoleStudent, domain.RoleTeacher, domain.RoleAdmin:
	default:
		return domain.User{}, validationf("invalid role %q", role)
	}
	return a.createUser(ctx, name, email, password, role)
}

func (a *App) createUser(_ context.Context, name, email, password string, role domain.UserRole) (domain.User, error) {
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, conflictf("user with this email already exists")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    a.now(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(_ context.Context, email, password string) (domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, "", validationf("email and password are required")
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", authErrorf("invalid email or password")
	}
	t, err := a.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, t, nil
}

// GoogleLogin verifies a Google ID token and signs the caller in,
// auto-registering first-time users as students with no password.
func (a *App) GoogleLogin(ctx context.Context, rawToken string) (domain.User, string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return domain.User{}, "", validationf("missing Google ID token")
	}
	if a.google == nil {
		return domain.User{}, "", authErrorf("google sign-in is not configured")
	}
	identity, err := a.google.Verify(ctx, rawToken)
	if err != nil {
		return domain.User{}, "", authErrorf("invalid Google token")
	}
	email := normalizeEmail(identity.Email)
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		user = domain.User{
			ID:        uuid.NewString(),
			Name:      identity.Name,
			Email:     email,
			Role:      domain.RoleStudent,
			CreatedAt: a.now(),
		}
		if err := a.store.SaveUser(user); err != nil {
			return domain.User{}, "", fmt.Errorf("save user: %w", err)
		}
	}
	t, err := a.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, t, nil
}

// Authenticate resolves a bearer token to a principal.
func (a *App) Authenticate(raw string) (domain.Principal, error) {
	p, err := a.tokens.Verify(raw)
	if err != nil {
		return domain.Principal{}, authErrorf("invalid or expired token")
	}
	return p, nil
}

// ListUsers returns all users ordered by name.
func (a *App) ListUsers(_ context.Context) ([]domain.User, error) {
	users, err := a.store.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
