package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/logger"
)

func newObservedLogger(level zapcore.Level) (*ZapLogger, *observer.ObservedLogs) {
	atomic := zap.NewAtomicLevelAt(level)
	core, logs := observer.New(atomic)
	return NewZapLoggerFromCore(core, atomic), logs
}

func TestZapLogger_FieldsAndMasking(t *testing.T) {
	log, logs := newObservedLogger(zapcore.DebugLevel)
	ctx := context.WithValue(context.Background(), constants.ContextKeyRequestID, "req-1")

	log.WithComponent("JWTCodec").Info(ctx, "issued",
		logger.String("subject", "alice"),
		logger.String("token", "eyJhbGciOiJIUzUxMiJ9.payload.signature"),
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "JWTCodec", fields["component"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "alice", fields["subject"])
	assert.Equal(t, "eyJh***ture", fields["token"])
	assert.Equal(t, constants.ServiceName, fields["service"])
}

func TestZapLogger_SetLevelAffectsDerivedLoggers(t *testing.T) {
	log, logs := newObservedLogger(zapcore.InfoLevel)
	child := log.WithComponent("child")

	child.Debug(context.Background(), "hidden")
	assert.Equal(t, 0, logs.Len())

	require.NoError(t, log.SetLevel("debug"))
	child.Debug(context.Background(), "visible")
	assert.Equal(t, 1, logs.FilterMessage("visible").Len())
	assert.Equal(t, "debug", log.Level())

	assert.Error(t, log.SetLevel("loud"))
}

func TestZapLogger_ErrorCarriesCause(t *testing.T) {
	log, logs := newObservedLogger(zapcore.InfoLevel)

	log.Error(context.Background(), "lookup failed", assert.AnError, logger.String("username", "bob"))

	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, assert.AnError.Error(), entry.ContextMap()["error"])
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordTokenIssued()
	m.RecordTokenRejection("token_expired")
	m.RecordTokenRejection("token_expired")
	m.RecordLoginAttempt("success")
	m.RecordRateLimitHit("ip")
	m.ObserveRequest("GET", "/api/user", 200, 10*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.TokensIssued))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.TokenRejections.WithLabelValues("token_expired")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginAttempts.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimitHits.WithLabelValues("ip")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/user", "200")))

	// A second registration on the same registry must fail loudly.
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestTracingManager(t *testing.T) {
	disabled, err := NewTracingManager(&config.TracingConfig{Enabled: false}, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.NoError(t, disabled.Shutdown(context.Background()))

	recorder := tracetest.NewSpanRecorder()
	tm := NewTracingManagerWithProcessor(&config.TracingConfig{Enabled: true, ServiceName: "jwtauth-test"}, recorder, logger.NewNoopLogger())

	ctx, span := tm.StartSpan(context.Background(), "GET /api/user")
	assert.NotEmpty(t, tm.GetTraceID(ctx))
	tm.RecordError(ctx, assert.AnError)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /api/user", ended[0].Name())
	assert.Equal(t, "Error", ended[0].Status().Code.String())
	assert.NoError(t, tm.Shutdown(context.Background()))
}
