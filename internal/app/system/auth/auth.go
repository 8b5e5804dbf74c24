// Package auth verifies bearer credentials issued by the identity provider
// and carries the verified principal through the request context.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/showmate/internal/app/system/httpjson"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Verifier turns a bearer token into a verified uid.
type Verifier interface {
	VerifyToken(token string) (string, error)
}

// Claims are the token claims we read. The provider puts the uid in "uid",
// falling back to the standard subject.
type Claims struct {
	UID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier builds a verifier. An empty issuer skips the iss check.
func NewJWTVerifier(secret, issuer string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}, nil
}

// VerifyToken validates signature, expiry and issuer and returns the uid.
func (v *JWTVerifier) VerifyToken(token string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	uid := claims.UID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return "", ErrInvalidToken
	}
	return uid, nil
}

// IssueToken signs a token for uid. Used by tooling and tests; production
// tokens come from the identity provider.
func (v *JWTVerifier) IssueToken(uid string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request context                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const principalKey ctxKey = "principal"

// CurrentUID returns the verified uid and whether one is present.
func CurrentUID(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(principalKey).(string)
	return uid, ok && uid != ""
}

// WithUID stores uid in ctx.
func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, principalKey, uid)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", ErrMissingToken
	}
	tok := strings.TrimSpace(h[7:])
	if tok == "" {
		return "", ErrMissingToken
	}
	return tok, nil
}

// RequireBearer rejects requests without a valid bearer token with 401 and
// otherwise puts the uid into the request context. Every request is
// verified, whatever its context already carries.
func RequireBearer(v Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := BearerToken(r)
			if err != nil {
				httpjson.Error(w, http.StatusUnauthorized, "Unauthorized: missing token")
				return
			}
			uid, err := v.VerifyToken(tok)
			if err != nil {
				logger.Debug("bearer token rejected", zap.Error(err), zap.String("path", r.URL.Path))
				httpjson.Error(w, http.StatusUnauthorized, "Unauthorized: invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUID(r.Context(), uid)))
		})
	}
}
