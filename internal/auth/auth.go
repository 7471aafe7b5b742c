package auth

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vaquejada/senhas/internal/models"
)

// TokenExpiry is the lifetime of tokens minted by IssueToken
const TokenExpiry = 24 * time.Hour

// Claims carries the identity fields issued by the auth service
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var (
	errMissingToken = stderrors.New("missing bearer token")
	errInvalidToken = stderrors.New("invalid token")
)

type ctxKey struct{}

// Auth verifies HS256 bearer tokens. Identities are issued elsewhere; this only checks them.
type Auth struct {
	key []byte
	now func() time.Time
}

// New creates a new Auth instance with the given signing key
func New(secret string) *Auth {
	return &Auth{key: []byte(secret), now: time.Now}
}

// IssueToken signs a token for id. Used by tooling and tests that stand in for the auth service.
func (a *Auth) IssueToken(id models.Identity) (string, error) {
	claims := Claims{
		Name: id.Name,
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(a.now()),
			ExpiresAt: jwt.NewNumericDate(a.now().Add(TokenExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
}

// Verify parses a raw token and returns the identity it carries
func (a *Auth) Verify(raw string) (*models.Identity, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, errInvalidToken
	}
	return &models.Identity{UserID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}

// FromRequest resolves the identity from the Authorization header
func (a *Auth) FromRequest(r *http.Request) (*models.Identity, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return nil, errMissingToken
	}
	raw, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || raw == "" {
		return nil, errMissingToken
	}
	return a.Verify(raw)
}

// Authenticate attaches the caller's identity to the request context when a valid token
// is present. Anonymous requests pass through; a present but bad token is rejected.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.FromRequest(r)
		switch {
		case err == errMissingToken:
			next.ServeHTTP(w, r)
		case err != nil:
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		default:
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		}
	})
}

// RequireRole rejects requests without an identity (401) or whose role is not listed (403).
// With no roles any authenticated caller passes.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFrom(r.Context())
			if id == nil {
				writeError(w, http.StatusUnauthorized, "LOGIN_REQUIRED", "Login required")
				return
			}
			if len(roles) > 0 && !hasRole(id.Role, roles) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed for role "+id.Role)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity stored by Authenticate, or nil
func IdentityFrom(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(ctxKey{}).(*models.Identity)
	return id
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"code": code, "error": msg})
}
