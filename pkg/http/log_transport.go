package http

import (
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// context keys for attaching request metadata
type payloadContextKey struct{}

// Redacted replaces secrets in anything that is logged
const Redacted = "REDACTED"

// secret query parameters and headers never written to logs
var (
	redactedParams  = []string{"key", "token"}
	redactedHeaders = []string{"Authorization", "X-Goog-Api-Key"}
)

type logTransport struct {
	transport http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", redactURL(req)),
		zap.Any("headers", redactHeaders(req.Header)),
	}

	if payload, ok := ctx.Value(payloadContextKey{}).([]byte); ok && len(payload) > 0 {
		fields = append(fields, zap.Int("payload_bytes", len(payload)))
	}

	ctxzap.Debug(ctx, "HTTP outbound request", fields...)

	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		ctxzap.Debug(ctx, "HTTP outbound request failed", zap.String("url", redactURL(req)), zap.Error(err))
		return nil, err
	}

	ctxzap.Debug(ctx, "HTTP outbound response",
		zap.String("url", redactURL(req)),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

// WithRequestLogging wraps the HTTP transport with debug logging of method, URL and headers.
// Credentials injected by auth wrappers are redacted.
func WithRequestLogging() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{
			transport: rt,
		}
	})
}

func redactURL(req *http.Request) string {
	u := *req.URL
	q := u.Query()
	for _, p := range redactedParams {
		if q.Has(p) {
			q.Set(p, Redacted)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	for _, name := range redactedHeaders {
		if out.Get(name) != "" {
			out.Set(name, Redacted)
		}
	}
	return out
}
