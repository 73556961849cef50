package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const ownerKey contextKey = "owner_id"

// OwnerHeader carries the caller's identity. Every store call downstream
// takes the owner explicitly; this middleware is the only place the header
// is read.
const OwnerHeader = "X-Owner-ID"

// RequireOwner extracts the owner identity from the request header and puts
// it in the context. Requests without one are rejected.
func RequireOwner() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
			if owner == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "missing " + OwnerHeader + " header",
				})
				return
			}
			ctx := context.WithValue(r.Context(), ownerKey, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetOwnerInContext places an owner identity in the context, for tests.
func SetOwnerInContext(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

// OwnerFromContext returns the owner identity set by RequireOwner.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}
