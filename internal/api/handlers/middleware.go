package handlers

import (
	"net/http"
	"strings"

	"retailshop/internal/auth"
)

// TokenParser resolves a bearer token to an identity.
type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// Authenticate attaches the caller's identity when a bearer token is sent.
// Requests without a token pass through anonymously; a bad token is rejected.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "authorization header must be a bearer token", nil)
				return
			}

			id, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "login required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "login required", nil)
			return
		}
		if !id.Staff {
			writeError(w, http.StatusForbidden, "forbidden", "staff only", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userID is only called behind RequireUser.
func userID(r *http.Request) int64 {
	id, _ := auth.FromContext(r.Context())
	return id.UserID
}
