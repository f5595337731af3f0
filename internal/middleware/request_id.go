package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions; it matches chi's default
const RequestIDHeader = "X-Request-Id"

const maxRequestIDLength = 128

// RequestID mounts chi's RequestID middleware. A missing or oversized caller id is
// replaced by a UUID first, so every id chi stores is either the caller's or a UUID.
// The id is echoed in the response; observability.FromContext reads it back.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		withID := chimiddleware.RequestID(echoRequestID(next))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reqID := r.Header.Get(RequestIDHeader); reqID == "" || len(reqID) > maxRequestIDLength {
				r = r.Clone(r.Context())
				r.Header.Set(RequestIDHeader, uuid.New().String())
			}
			withID.ServeHTTP(w, r)
		})
	}
}

func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(RequestIDHeader, chimiddleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r)
	})
}
