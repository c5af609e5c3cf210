package middleware

import (
	"net/http"
	"strings"

	authcore "github.com/recipeshare/authcore"
)

// RequireAuth returns middleware that rejects requests lacking a valid
// Bearer access token. On success the asserted identity is attached to the
// request context and can be read back with authcore.SubjectFromContext.
//
// Expired, tampered, and malformed tokens all produce the same 401; the
// client learns nothing about which check failed.
func RequireAuth(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			subject, err := engine.Validate(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(authcore.WithSubject(r.Context(), subject)))
		})
	}
}

// RequireRole is RequireAuth plus a role membership check: subjects whose
// token does not carry role get a 403.
func RequireRole(engine *authcore.Engine, role string) func(http.Handler) http.Handler {
	guard := RequireAuth(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := authcore.SubjectFromContext(r.Context())
			if !ok || !hasRole(subject.Roles, role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func hasRole(roles []string, want string) bool {
	for _, role := range roles {
		if role == want {
			return true
		}
	}
	return false
}
