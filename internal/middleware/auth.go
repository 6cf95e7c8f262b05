package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/Wafflinyo/USALeague/pkg/apperror"
	"github.com/Wafflinyo/USALeague/pkg/response"
)

// AccountIDKey is the context key for the authenticated account id.
const AccountIDKey contextKey = "account_id"

// Auth requires an X-Account-ID header and stores it in the request
// context. The header is set by the auth proxy in front of this service,
// so its value is trusted here.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := strings.TrimSpace(r.Header.Get("X-Account-ID"))
		if accountID == "" {
			response.Error(w, apperror.Unauthenticated(""))
			return
		}

		ctx := context.WithValue(r.Context(), AccountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAccountID retrieves the authenticated account id from context.
func GetAccountID(ctx context.Context) string {
	if id, ok := ctx.Value(AccountIDKey).(string); ok {
		return id
	}
	return ""
}

// AdminOnly guards admin endpoints with a shared token from config.
func AdminOnly(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				response.Error(w, apperror.Unauthenticated("admin access disabled"))
				return
			}
			got := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				response.Error(w, apperror.Unauthenticated("invalid admin token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
