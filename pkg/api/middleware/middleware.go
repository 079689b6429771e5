package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/cbodonnell/skwarz/pkg/log"
)

// NewCORSMiddleware allows browsers served from another origin to request
// tickets. An empty origin list allows any origin.
func NewCORSMiddleware(allowOrigins []string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := allowedOrigin(allowOrigins, r.Header.Get("Origin")); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowedOrigin(allowOrigins []string, origin string) string {
	if len(allowOrigins) == 0 {
		return "*"
	}
	if origin == "" {
		return ""
	}
	host := origin
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	for _, allowed := range allowOrigins {
		if allowed == "*" || strings.EqualFold(allowed, host) || strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// Logging traces every request once it has been served.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Trace("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
