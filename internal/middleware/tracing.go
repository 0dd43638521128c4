package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/josh-kwaku/invoicing/internal/logging"
)

const requestIDHeader = "X-Request-ID"

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Tracing tags every request with an id. A well-formed incoming X-Request-ID
// is kept; anything else, including IPN deliveries that carry none, gets a
// generated one.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}
