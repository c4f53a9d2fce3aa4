package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogSuite struct {
	suite.Suite
	buf       *bytes.Buffer
	oldLogger *zap.Logger
	oldProps  *ZapProperties
}

func (s *LogSuite) SetupTest() {
	s.oldLogger = L()
	s.oldProps = _globalP.Load().(*ZapProperties)

	s.buf = &bytes.Buffer{}
	cfg := &Config{Level: "debug", Format: FormatJSON, DisableTimestamp: true}
	logger, props, err := InitLoggerWithWriteSyncer(cfg, zapcore.AddSync(s.buf))
	s.Require().NoError(err)
	replaceLeveledLoggers(logger)
	ReplaceGlobals(logger, props)
}

func (s *LogSuite) TearDownTest() {
	ReplaceGlobals(s.oldLogger, s.oldProps)
	replaceLeveledLoggers(s.oldLogger)
}

func (s *LogSuite) TestGlobalLevels() {
	Debug("debug message")
	Info("info message", zap.Int("n", 1))
	s.Contains(s.buf.String(), `"msg":"debug message"`)
	s.Contains(s.buf.String(), `"n":1`)

	SetLevel(zapcore.WarnLevel)
	s.Equal(zapcore.WarnLevel, GetLevel())
	s.buf.Reset()
	Info("hidden")
	Warn("shown")
	s.NotContains(s.buf.String(), "hidden")
	s.Contains(s.buf.String(), "shown")
	SetLevel(zapcore.DebugLevel)
}

func (s *LogSuite) TestWithIsLazy() {
	logger := With(FieldModule("marshal"), FieldIndex(3))
	s.Empty(s.buf.String())

	logger.Info("with fields")
	s.Contains(s.buf.String(), `"module":"marshal"`)
	s.Contains(s.buf.String(), `"index":3`)

	child := logger.With(FieldMode(true))
	child.Info("child")
	s.Contains(s.buf.String(), `"mode":"many"`)
}

func (s *LogSuite) TestContextLogger() {
	ctx := WithModule(context.Background(), "resolver")
	ctx = WithTraceID(ctx, "trace-1")
	Ctx(ctx).Info("from ctx")
	s.Contains(s.buf.String(), `"module":"resolver"`)
	s.Contains(s.buf.String(), `"traceID":"trace-1"`)

	//nolint:staticcheck
	Ctx(nil).Info("nil ctx")
	s.Contains(s.buf.String(), "nil ctx")

	intentCtx, span := NewIntentContext("marshal", "Marshal")
	defer span.End()
	Ctx(intentCtx).Info("intent")
	s.Contains(s.buf.String(), `"intent":"Marshal"`)
}

func (s *LogSuite) TestBinder() {
	var b Binder
	b.Logger().Info("plain")
	s.Contains(s.buf.String(), "plain")

	b.BindComponent("marshaller")
	b.Logger().Info("component")
	s.Contains(s.buf.String(), `"component":"marshaller"`)

	custom := With(FieldComponent("custom"))
	b.SetLogger(custom)
	s.Same(custom, b.Logger())
}

func (s *LogSuite) TestRateGroup() {
	logger := With().WithRateGroup("log-suite", 1, 1)
	s.True(logger.RatedInfo(1, "first"))
	s.False(logger.RatedInfo(1, "second"))
	s.NotContains(s.buf.String(), "second")

	s.True(RatedWarn(0, "global limiter allows"))
}

func (s *LogSuite) TestLeveledLoggersOnInfoCore() {
	var errOut bytes.Buffer
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(s.buf), zapcore.InfoLevel)
	logger := zap.New(core, zap.ErrorOutput(zapcore.AddSync(&errOut)))

	replaceLeveledLoggers(logger)
	s.Empty(errOut.String())

	warnL, ok := _globalLevelLogger.Load(zapcore.WarnLevel)
	s.Require().True(ok)
	s.False(warnL.(*zap.Logger).Core().Enabled(zapcore.InfoLevel))

	debugL, ok := _globalLevelLogger.Load(zapcore.DebugLevel)
	s.Require().True(ok)
	s.True(debugL.(*zap.Logger).Core().Enabled(zapcore.InfoLevel))
	s.False(debugL.(*zap.Logger).Core().Enabled(zapcore.DebugLevel))
}

func TestLog(t *testing.T) {
	suite.Run(t, new(LogSuite))
}

func TestInitLoggerDiscardsWithoutOutputs(t *testing.T) {
	logger, props, err := InitLogger(&Config{Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, props.Level.Level())
	logger.Warn("dropped")

	_, _, err = InitLogger(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestInitTestLogger(t *testing.T) {
	logger, _, err := InitTestLogger(t, &Config{Level: "info"})
	require.NoError(t, err)
	logger.Info("written to t.Log")
}

func TestGetenv(t *testing.T) {
	t.Setenv("MARSHAL_LOG_TEST_BOOL", "yes")
	t.Setenv("MARSHAL_LOG_TEST_FLOAT", "2.5")
	assert.True(t, getenvBool("MARSHAL_LOG_TEST_BOOL", false))
	assert.True(t, getenvBool("MARSHAL_LOG_TEST_ABSENT", true))
	assert.Equal(t, 2.5, getenvFloat("MARSHAL_LOG_TEST_FLOAT", 1))
	assert.Equal(t, 1.0, getenvFloat("MARSHAL_LOG_TEST_BOOL", 1))
}
