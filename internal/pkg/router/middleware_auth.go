package router

import (
	"context"
	"net/http"
	"strings"
)

// AuthUser identifies the credential a request authenticated with.
type AuthUser struct {
	// TokenID is the database id of the API token.
	TokenID int64
	// UserID is the owner of the token.
	UserID int64
	// TokenName is the user-chosen label of the token.
	TokenName string
}

// TokenVerifier authenticates an Authorization header value.
type TokenVerifier interface {
	// VerifyToken resolves the plaintext credential to its owner. It
	// returns an error for unknown, revoked or malformed credentials.
	VerifyToken(ctx context.Context, plaintext string) (AuthUser, error)
}

type authUserKey struct{}

// SetAuth stores the authenticated user on the context.
func SetAuth(ctx context.Context, au AuthUser) context.Context {
	return context.WithValue(ctx, authUserKey{}, au)
}

// GetAuth reads the authenticated user from the context.
func GetAuth(ctx context.Context) (AuthUser, bool) {
	au, ok := ctx.Value(authUserKey{}).(AuthUser)
	return au, ok
}

func middlewareAuthentication(verifier TokenVerifier, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := matchedRoutePath(r)

			if s, ok := publicEndpoints[r.Method]; ok {
				if _, skip := s[path]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			plaintext := credentialFromHeader(r.Header.Get("Authorization"))
			if plaintext == "" {
				writeJSON(w, map[string]string{"message": "Authentication required"}, http.StatusUnauthorized)
				return
			}

			au, err := verifier.VerifyToken(r.Context(), plaintext)
			if err != nil {
				writeJSON(w, map[string]string{"message": "Invalid or revoked token"}, http.StatusUnauthorized)
				return
			}

			ctx := SetAuth(r.Context(), au)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// credentialFromHeader accepts both a bare credential and the Bearer
// scheme, since publishing tools send either form.
func credentialFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	p := strings.Fields(header)
	if len(p) == 2 && strings.EqualFold(p[0], "Bearer") {
		return p[1]
	}
	if len(p) == 1 {
		return p[0]
	}
	return ""
}
