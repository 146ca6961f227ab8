package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	requestIDKey struct{}
	adminUIDKey  struct{}
)

// New builds the process logger. Production emits JSON, everything else the
// console encoder.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// ContextWithRequestID stores the request id for WithContext.
func ContextWithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// ContextWithAdminUID stores the authenticated admin for WithContext.
func ContextWithAdminUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, adminUIDKey{}, uid)
}

// AdminUID returns the admin stored in ctx, or "" for public requests.
func AdminUID(ctx context.Context) string {
	if uid, ok := ctx.Value(adminUIDKey{}).(string); ok {
		return uid
	}
	return ""
}

// WithContext adds the request id and admin uid from ctx to the logger.
func WithContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	var fields []zap.Field
	if rid := RequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if uid := AdminUID(ctx); uid != "" {
		fields = append(fields, zap.String("admin_uid", uid))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
