package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger puts a request-scoped logger into the context and logs every request.
// Requests to quietPaths (liveness and health checks) are logged at debug level.
func Logger(logger *zap.Logger, quietPaths ...string) func(next http.Handler) http.Handler {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := middleware.GetReqID(r.Context())

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := ctxzap.ToContext(r.Context(), reqLogger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			level := zapcore.InfoLevel
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				level = zapcore.ErrorLevel
			case quiet[r.URL.Path]:
				level = zapcore.DebugLevel
			}

			reqLogger.Log(level, "HTTP request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
