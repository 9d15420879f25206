package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/logging"
)

// authErrorCode matches the AUTH001 entry of core's error catalogue.
const authErrorCode = "AUTH001"

type authError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// APIKeyAuth returns middleware that checks the X-API-Key header against cfg.APIKeys.
// When RequireAPIKey is off every request passes; when it is on with no keys
// configured every request is rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			switch {
			case key == "":
				denyRequest(w, r, http.StatusUnauthorized, "invalid api key: missing X-API-Key header")
				return
			case !matchesAnyKey(key, cfg.APIKeys):
				denyRequest(w, r, http.StatusForbidden, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func denyRequest(w http.ResponseWriter, r *http.Request, status int, reason string) {
	logging.FromContext(r.Context()).Warn("auth: request rejected",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"reason", reason,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(authError{
		Error:   reason,
		Message: "Missing or invalid API key.",
		Code:    authErrorCode,
	})
}

// matchesAnyKey compares key against every configured key in constant time,
// so the running time does not reveal which key (if any) matched.
func matchesAnyKey(key string, keys []string) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return match == 1
}
