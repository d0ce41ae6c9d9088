// Package identity resolves bearer tokens presented on user-facing
// endpoints into stable user identities. The HTTP layer depends only
// on the Verifier interface; the concrete implementation lives in
// jwt.go.
package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrUnauthenticated is returned when a token is missing, malformed,
// expired or otherwise unverifiable. Callers map it to 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the resolved caller identity carried by a verified token.
type Identity struct {
	// UserID is the stable external identity ID (the `sub` claim).
	UserID string

	// Username is the display name registered with the identity provider.
	Username string

	// Email is optional and may be empty.
	Email string
}

// Verifier validates a bearer token and resolves the caller identity.
type Verifier interface {
	// Verify resolves the raw token (without the "Bearer " prefix) into
	// an Identity, or returns an error wrapping ErrUnauthenticated.
	Verify(ctx context.Context, token string) (*Identity, error)

	// Name returns the name of this verifier implementation.
	Name() string
}

// Service handles identity verification business logic.
// This service is framework-agnostic and can be used with any HTTP framework or CLI.
type Service struct {
	verifier        Verifier
	publicEndpoints []string
}

// NewService creates a new identity service.
func NewService(verifier Verifier, publicEndpoints []string) *Service {
	return &Service{
		verifier:        verifier,
		publicEndpoints: publicEndpoints,
	}
}

// Verify resolves a bearer token via the configured verifier.
func (s *Service) Verify(ctx context.Context, token string) (*Identity, error) {
	return s.verifier.Verify(ctx, token)
}

// IsPublicEndpoint checks if a path is publicly accessible.
// Returns true if the path matches any configured public endpoint prefix.
func (s *Service) IsPublicEndpoint(path string) bool {
	for _, endpoint := range s.publicEndpoints {
		if strings.HasPrefix(path, endpoint) {
			return true
		}
	}
	return false
}

// GetVerifier returns the current verifier.
func (s *Service) GetVerifier() Verifier {
	return s.verifier
}
