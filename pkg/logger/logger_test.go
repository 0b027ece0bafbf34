package logger_test

import (
	"context"
	"primes/pkg/logger"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup(t *testing.T) {
	for _, env := range []string{logger.DevelopmentEnvironment, logger.ProductionEnvironment, "staging"} {
		t.Run(env, func(t *testing.T) {
			require.NotPanics(t, func() {
				logger.Setup(env)
			})
			require.NotNil(t, logger.Get(context.Background()))
		})
	}
}

func TestSetupWithLevel(t *testing.T) {
	require.NoError(t, logger.SetupWithLevel(logger.ProductionEnvironment, "debug"))
	require.True(t, logger.IsDebug(context.Background()))

	require.NoError(t, logger.SetupWithLevel(logger.DevelopmentEnvironment, "warn"))
	require.False(t, logger.IsDebug(context.Background()))

	require.NoError(t, logger.SetupWithLevel(logger.DevelopmentEnvironment, ""))
	require.True(t, logger.IsDebug(context.Background()), "empty level keeps development default")

	require.Error(t, logger.SetupWithLevel(logger.DevelopmentEnvironment, "loud"))
}

func TestGetAndWithLogger(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)
	ctx := context.Background()
	require.NotNil(t, logger.Get(ctx), "should return default logger when context has no logger")

	custom, _ := zap.NewDevelopment()
	require.Equal(t, custom, logger.Get(logger.WithLogger(ctx, custom)))
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	ctx = logger.WithFields(ctx, zap.Int64("upper", 20), zap.Bool("inclusive", true))
	logger.Info(ctx, "scan finished", zap.Int64("max", 19))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, int64(20), fields["upper"])
	require.Equal(t, true, fields["inclusive"])
	require.Equal(t, int64(19), fields["max"])
}

func TestSlog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	logger.Slog(ctx).Info("from slog", "jobs", 3)

	require.Equal(t, 1, logs.FilterMessage("from slog").Len())
}

func TestIsDebug(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)
	ctx := context.Background()
	require.True(t, logger.IsDebug(ctx))

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	infoLogger, _ := cfg.Build()
	require.False(t, logger.IsDebug(logger.WithLogger(ctx, infoLogger)))
}

func TestLoggingFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")
	require.NotPanics(t, func() { logger.Sync(ctx) })

	require.Equal(t, 4, logs.Len())
}
