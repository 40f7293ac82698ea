package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func reset(t *testing.T) {
	t.Helper()
	log = nil
	once = sync.Once{}
	t.Cleanup(func() {
		log = nil
		once = sync.Once{}
	})
}

// observe swaps in an in-memory core at debug level
func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	reset(t)
	core, logs := observer.New(zapcore.DebugLevel)
	log = zap.New(core)
	return logs
}

func TestGetLogger_BeforeInit(t *testing.T) {
	reset(t)
	require.NotNil(t, GetLogger())
	Info(context.Background(), "dropped")
	SetLevel(zapcore.DebugLevel)
	Sync()
}

func TestInit_SetsLevelOnce(t *testing.T) {
	reset(t)
	Init("development")
	first := GetLogger()
	Init("production")
	assert.Same(t, first, GetLogger())

	SetLevel(zapcore.WarnLevel)
	assert.Equal(t, zapcore.WarnLevel, atom.Level())
}

func TestInit_Production(t *testing.T) {
	reset(t)
	Init("production")
	assert.NotNil(t, GetLogger())
	assert.Same(t, GetLogger(), WithContext(context.Background()))
}

func TestInit_PanicsWhenBuildFails(t *testing.T) {
	reset(t)
	origBuild := buildLogger
	t.Cleanup(func() { buildLogger = origBuild })
	buildLogger = func(zap.Config) (*zap.Logger, error) { return nil, errors.New("build failed") }

	assert.Panics(t, func() { Init("production") })
}

func TestWithContext_RequestAndUser(t *testing.T) {
	logs := observe(t)
	userID := uuid.New()

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), userID)
	assert.Equal(t, "req-1", RequestID(ctx))
	Info(ctx, "hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, userID.String(), fields["user_id"])
}

func TestWithContext_Empty(t *testing.T) {
	observe(t)
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, GetLogger(), WithContext(nil))
	assert.Same(t, GetLogger(), WithContext(WithUserID(context.Background(), uuid.Nil)))
	assert.Empty(t, RequestID(context.Background()))
}

func TestLogRequest_LevelFollowsStatus(t *testing.T) {
	logs := observe(t)
	ctx := WithRequestID(context.Background(), "req-2")

	for _, status := range []int{200, 404, 503} {
		LogRequest(ctx, Request{Method: "GET", Route: "/api/v1/products/:id", Path: "/api/v1/products/x", Status: status, Latency: time.Millisecond})
	}
	Debug(ctx, "debug")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/api/v1/products/:id", entries[0].ContextMap()["route"])
}
