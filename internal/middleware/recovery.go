package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/josh-kwaku/invoicing/internal/handler"
	"github.com/josh-kwaku/invoicing/internal/logging"
)

// Gateway callbacks are answered in plain text.
const gatewayPathPrefix = "/api/v1/gateways/"

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log := logging.Scoped(r.Context(), slog.Default())
				log.Error("panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"error", err,
					"stack", string(debug.Stack()),
				)

				if strings.HasPrefix(r.URL.Path, gatewayPathPrefix) {
					handler.RespondText(w, http.StatusInternalServerError, handler.ErrIPNProcessingFailure.Message)
					return
				}
				handler.RespondAppError(w, handler.ErrInternalError, nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
