package middleware

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Cors allows the configured set of origins, or any origin when allowAll is
// set (permissive test configuration). Credentials are allowed, all methods
// and headers are permitted. Preflight requests are answered here and never
// reach the handlers.
func Cors(allowedOrigins []string, allowAll bool) func(next http.Handler) http.Handler {
	originAllowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originAllowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case origin == "":
				// non-browser client (curl, ios app, tests), nothing to do
			case allowAll, originAllowed[origin]:
				allowOrigin := origin
				if allowAll {
					allowOrigin = "*"
				}
				w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
				w.Header().Set("Access-Control-Allow-Headers", "*")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			default:
				log.Warnf("CORS: origin not allowed for path [%s] and origin [%s]", r.URL.Path, origin)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
