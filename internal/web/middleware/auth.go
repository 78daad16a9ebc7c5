package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/drilltable/internal/config"
	"github.com/JonMunkholm/drilltable/internal/logging"
)

// Auth error codes returned in the JSON body.
const (
	CodeMissingKey = "AUTH_MISSING_KEY"
	CodeInvalidKey = "AUTH_INVALID_KEY"
)

// APIKeyAuth guards a route with the X-API-Key header.
// With RequireAPIKey off every request passes; with it on and no keys
// configured every request is rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get("X-API-Key")
			switch {
			case apiKey == "":
				deny(w, r, http.StatusUnauthorized, "missing API key", CodeMissingKey)
			case !isValidAPIKey(apiKey, cfg.APIKeys):
				deny(w, r, http.StatusForbidden, "invalid API key", CodeInvalidKey)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, status int, msg, code string) {
	logging.FromContext(r.Context()).Warn("auth: "+msg,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", ClientIP(r),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}

// isValidAPIKey compares key against every configured key in constant time.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
