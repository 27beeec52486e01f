package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/RoyceAzure/lab/shop/internal/api/handler"
	"github.com/rs/zerolog"
)

func RecoverMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error().
						Str("request_id", getRequestID(r)).
						Interface("panic", err).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")

					handler.ErrorJSON(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
