// Package googleauth verifies Google ID tokens for the sign-in flow.
package googleauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// Identity is the subset of a Google ID token payload the platform uses.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier validates a raw Google ID token and extracts the identity.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Identity, error)
}

// GoogleVerifier validates tokens against Google's public keys for a
// single OAuth client ID.
type GoogleVerifier struct {
	clientID string
}

// New builds a verifier bound to the given OAuth client ID.
func New(clientID string) (*GoogleVerifier, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, errors.New("google client ID is required")
	}
	return &GoogleVerifier{clientID: clientID}, nil
}

// Verify checks signature, expiry and audience, then pulls out the
// email and display name claims.
func (g *GoogleVerifier) Verify(ctx context.Context, rawToken string) (Identity, error) {
	payload, err := idtoken.Validate(ctx, rawToken, g.clientID)
	if err != nil {
		return Identity{}, fmt.Errorf("validate id token: %w", err)
	}
	id := Identity{Subject: payload.Subject}
	if v, ok := payload.Claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := payload.Claims["name"].(string); ok {
		id.Name = v
	}
	if id.Email == "" {
		return Identity{}, errors.New("id token carries no email claim")
	}
	return id, nil
}
