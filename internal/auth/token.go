package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie carries the bearer token for browser requests.
const SessionCookie = "session_token"

var (
	ErrNoToken      = errors.New("no token in request")
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier turns a raw token into the subject it was issued for.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (string, error)
}

// ExtractTokenFromRequest reads "Authorization: Bearer <token>", falling back to
// the session cookie.
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", fmt.Errorf("%w: authorization header format must be 'Bearer {token}'", ErrInvalidToken)
		}
		return parts[1], nil
	}

	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", ErrNoToken
}

// OIDCVerifier checks tokens against an OpenID Connect issuer.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewOIDCVerifier(ctx context.Context, issuer string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	// SkipClientIDCheck → tokens are issued for the site, not this service
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{SkipClientIDCheck: true})}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims struct {
		Sub string `json:"sub"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Sub == "" {
		return "", fmt.Errorf("%w: subject claim not found", ErrInvalidToken)
	}
	return claims.Sub, nil
}

// HMACVerifier checks HS256 tokens signed with a shared secret.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", ErrNoToken
	}

	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: subject claim not found", ErrInvalidToken)
	}
	return sub, nil
}

// SignHMAC issues an HS256 token for sub. Used by tooling and tests.
func SignHMAC(secret, sub string, claims jwt.MapClaims) (string, error) {
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	claims["sub"] = sub
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
