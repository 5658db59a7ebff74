package middleware

import (
	"net/http"
	"strings"

	"quill/internal/auth"
	"quill/internal/httputil"
)

// Auth validates the bearer token, if present, and stores the resolved user
// id in the request context. Requests without an Authorization header pass
// through anonymously: public reads are allowed, and handlers that need an
// identity return 401 themselves. A present-but-invalid token is always
// rejected.
func Auth(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.GetUserID()))
		})
	}
}
