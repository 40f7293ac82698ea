package logger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry
const ServiceName = "re-view"

var (
	log  *zap.Logger
	once sync.Once
	atom zap.AtomicLevel

	buildLogger = func(cfg zap.Config) (*zap.Logger, error) {
		return cfg.Build(zap.AddCallerSkip(1), zap.Fields(zap.String("service", ServiceName)))
	}
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserIDKey    ContextKey = "user_id"
)

// Init builds the process logger once. "development" gets a colored console
// encoder at debug level, anything else JSON at info.
func Init(env string) {
	once.Do(func() {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.Sampling = nil

		if env == "development" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		var err error
		log, err = buildLogger(config)
		if err != nil {
			panic(err)
		}
		atom = config.Level
	})
}

// GetLogger returns the process logger, or a no-op logger before Init
func GetLogger() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func SetLevel(level zapcore.Level) {
	if log == nil {
		return
	}
	atom.SetLevel(level)
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// RequestID returns the id stored by WithRequestID, or ""
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithContext adds request_id and user_id when ctx carries them
func WithContext(ctx context.Context) *zap.Logger {
	base := GetLogger()
	if ctx == nil {
		return base
	}

	fields := make([]zap.Field, 0, 2)
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if userID, ok := ctx.Value(UserIDKey).(uuid.UUID); ok && userID != uuid.Nil {
		fields = append(fields, zap.Stringer("user_id", userID))
	}

	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// Request describes one served HTTP call. Route is the matched pattern,
// Path the raw url.
type Request struct {
	Method   string
	Route    string
	Path     string
	Status   int
	Latency  time.Duration
	ClientIP string
	Bytes    int
}

// LogRequest writes 5xx at error, 4xx at warn and the rest at info
func LogRequest(ctx context.Context, r Request) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("route", r.Route),
		zap.String("path", r.Path),
		zap.Int("status", r.Status),
		zap.Duration("latency", r.Latency),
		zap.String("client_ip", r.ClientIP),
		zap.Int("bytes", r.Bytes),
	}

	l := WithContext(ctx)
	switch {
	case r.Status >= 500:
		l.Error("request", fields...)
	case r.Status >= 400:
		l.Warn("request", fields...)
	default:
		l.Info("request", fields...)
	}
}
