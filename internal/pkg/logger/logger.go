package logger

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AddFields adds fields to the logger in context and returns new context
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	logger := ctxzap.Extract(ctx)
	return ctxzap.ToContext(ctx, logger.With(fields...))
}

// WithAction adds "action" field to context logger to describe the flow
func WithAction(ctx context.Context, action string) context.Context {
	return AddFields(ctx, zap.String("action", action))
}

// WithSender tags the context logger with the messaging platform and the sender id
func WithSender(ctx context.Context, platform, sender string) context.Context {
	return AddFields(ctx, zap.String("platform", platform), zap.String("sender", sender))
}
