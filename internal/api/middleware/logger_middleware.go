package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type StatusRecoder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecoder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecoder) Status() int {
	return w.status
}

// 記錄request 請求, 4xx 以 warn, 5xx 以 error 記錄
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recoder := &StatusRecoder{
				ResponseWriter: w,
				status:         http.StatusOK,
			}
			start := time.Now()
			next.ServeHTTP(recoder, r)

			event := logger.Info()
			switch {
			case recoder.Status() >= http.StatusInternalServerError:
				event = logger.Error()
			case recoder.Status() >= http.StatusBadRequest:
				event = logger.Warn()
			}
			event.
				Str("request_id", getRequestID(r)).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Int("status", recoder.Status()).
				Dur("latency", time.Since(start)).
				Msg("request completed")
		})
	}
}
