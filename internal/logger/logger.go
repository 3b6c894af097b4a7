package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger

// Init builds the process-wide logger. Production logs JSON to stdout with
// ISO-8601 timestamps; every other environment gets the colored console.
func Init(env string) {
	var cfg zap.Config

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}

		ec := &cfg.EncoderConfig
		ec.TimeKey = "timestamp"
		ec.MessageKey = "message"
		ec.LevelKey = "level"
		ec.CallerKey = "caller"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeLevel = zapcore.LowercaseLevelEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	global = l
}

// L hands out the process logger, initializing from APP_ENV on first use.
func L() *zap.Logger {
	if global == nil {
		Init(os.Getenv("APP_ENV"))
	}
	return global
}

func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}

type requestIDKeyType struct{}

var requestIDKey requestIDKeyType

// WithRequestID stashes the request id where FromCtx will find it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromCtx returns the process logger tagged with the caller's request id,
// when one is present.
func FromCtx(ctx context.Context) *zap.Logger {
	if id := RequestIDFrom(ctx); id != "" {
		return L().With(zap.String("request_id", id))
	}
	return L()
}
