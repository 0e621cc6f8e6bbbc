package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sunkissed-southern/storefront/pkg/backend"
	"github.com/sunkissed-southern/storefront/pkg/logger"
)

const (
	RequestIDHeader = backend.RequestIDHeader

	maxRequestIDLength = 128
)

// RequestID adopts a well-formed inbound X-Request-Id or mints one, echoes
// it back, and hands it to the logger and the commerce API client.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(RequestIDHeader)
			if !validRequestID(reqID) {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			ctx := backend.WithRequestID(r.Context(), reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, ch := range id {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.', ch == ':':
		default:
			return false
		}
	}
	return true
}
