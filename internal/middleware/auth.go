package middleware

import (
	"net/http"
	"strings"

	"filehub/internal/auth"
	"filehub/internal/httputil"
)

// publicPaths are served without a bearer token
var publicPaths = map[string]bool{
	"/health": true,
}

// AuthMiddleware verifies the bearer token and puts its subject in the
// request context. Pre-flight requests pass through untouched.
func AuthMiddleware(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			userID := claims.GetUserID()
			if userID == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "token has no subject")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, userID))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
