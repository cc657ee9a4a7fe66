package app

import (
	"context"
	"errors"
	"testing"

	"citriq/internal/googleauth"
	"citriq/pkg/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	user, tok, err := env.app.Register(context.Background(), "Alice", "Alice@Example.com", "pw123", domain.RoleStudent)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if tok == "" {
		t.Fatal("expected a session token on register")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}

	loggedIn, tok, err := env.app.Login(context.Background(), "alice@example.com", "pw123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID || tok == "" {
		t.Fatal("login did not return the registered user with a token")
	}

	p, err := env.app.Authenticate(tok)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.ID != user.ID || p.Role != domain.RoleStudent {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	_, _, err := env.app.Register(context.Background(), "Other", "alice@example.com", "pw", domain.RoleStudent)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.app.Register(context.Background(), "Eve", "eve@example.com", "pw", domain.RoleAdmin)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.mustRegister(t, "Alice", "alice@example.com", domain.RoleStudent)
	_, _, err := env.app.Login(context.Background(), "alice@example.com", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.app.Login(context.Background(), "ghost@example.com", "pw")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

type fakeGoogle struct {
	identity googleauth.Identity
	err      error
}

func (f fakeGoogle) Verify(context.Context, string) (googleauth.Identity, error) {
	return f.identity, f.err
}

func TestGoogleLoginAutoRegistersStudent(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Google = fakeGoogle{identity: googleauth.Identity{
			Subject: "g-123",
			Email:   "Bob@Example.com",
			Name:    "Bob",
		}}
	})
	user, tok, err := env.app.GoogleLogin(context.Background(), "raw-id-token")
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if user.Role != domain.RoleStudent {
		t.Fatalf("auto-registered role = %q, want student", user.Role)
	}
	if user.Email != "bob@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if tok == "" {
		t.Fatal("expected a session token")
	}

	// Same identity signs in again without creating a second account.
	again, _, err := env.app.GoogleLogin(context.Background(), "raw-id-token")
	if err != nil {
		t.Fatalf("second google login: %v", err)
	}
	if again.ID != user.ID {
		t.Fatal("second google login created a new user")
	}

	// A password login against the passwordless account must fail.
	_, _, err = env.app.Login(context.Background(), "bob@example.com", "")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for empty password, got %v", err)
	}
	_, _, err = env.app.Login(context.Background(), "bob@example.com", "anything")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestGoogleLoginRejectsBadToken(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Google = fakeGoogle{err: errors.New("bad signature")}
	})
	_, _, err := env.app.GoogleLogin(context.Background(), "tampered")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestGoogleLoginUnconfigured(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.app.GoogleLogin(context.Background(), "raw")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestCreateUserAllowsAnyRole(t *testing.T) {
	env := newTestEnv(t)
	user, err := env.app.CreateUser(context.Background(), "Root", "root@example.com", "pw", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("role = %q, want admin", user.Role)
	}
}

func TestListUsersSortedByName(t *testing.T) {
	env := newTestEnv(t)
	env.mustRegister(t, "Zoe", "zoe@example.com", domain.RoleStudent)
	env.mustRegister(t, "Amir", "amir@example.com", domain.RoleTeacher)
	users, err := env.app.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 || users[0].Name != "Amir" || users[1].Name != "Zoe" {
		t.Fatalf("unexpected order: %+v", users)
	}
}
