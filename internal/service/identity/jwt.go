package identity

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nolofication/internal/config"
)

// JWTVerifier verifies HS256-signed bearer tokens. The token claims
// map to Identity as follows:
//   - sub:      stable external user ID (required)
//   - username: display name (required)
//   - email:    optional
//   - exp:      expiry as Unix seconds (required)
type JWTVerifier struct {
	secret []byte
	expiry time.Duration
}

// NewJWTVerifier creates a verifier with an explicit secret. The
// expiry only applies to tokens issued via Issue; verification trusts
// the token's own exp claim.
func NewJWTVerifier(secret []byte, expiry time.Duration) *JWTVerifier {
	return &JWTVerifier{secret: secret, expiry: expiry}
}

// NewJWTVerifierFromConfig creates a verifier from the security
// configuration: the signing secret is read from the environment
// variable named by the config. An empty secret is a startup error,
// not a fallback.
func NewJWTVerifierFromConfig(cfg *config.SecurityConfig) (*JWTVerifier, error) {
	secret := os.Getenv(cfg.GetJWTSecretEnv())
	if secret == "" {
		return nil, fmt.Errorf("NewJWTVerifierFromConfig: environment variable %s is not set", cfg.GetJWTSecretEnv())
	}
	return NewJWTVerifier([]byte(secret), time.Duration(cfg.GetJWTExpiryHours())*time.Hour), nil
}

// Name returns the verifier name.
func (v *JWTVerifier) Name() string {
	return "jwt"
}

// Verify parses and validates the token, then maps its claims to an
// Identity. Every failure wraps ErrUnauthenticated so callers can
// treat the whole class uniformly.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthenticated)
	}

	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid claims", ErrUnauthenticated)
	}

	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < time.Now().Unix() {
		return nil, fmt.Errorf("%w: token expired", ErrUnauthenticated)
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: invalid sub claim", ErrUnauthenticated)
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return nil, fmt.Errorf("%w: invalid username claim", ErrUnauthenticated)
	}

	// Email is optional.
	email, _ := claims["email"].(string)

	return &Identity{
		UserID:   sub,
		Username: username,
		Email:    email,
	}, nil
}

// Issue signs a token for the given identity, expiring after the
// configured duration.
func (v *JWTVerifier) Issue(identity Identity, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":      identity.UserID,
		"username": identity.Username,
		"exp":      now.Add(v.expiry).Unix(),
	}
	if identity.Email != "" {
		claims["email"] = identity.Email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("Issue: %w", err)
	}
	return signed, nil
}
