// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/boxflow/internal/config"
)

// bufferSink collects output in memory for assertions.
func bufferSink() (*bytes.Buffer, zapcore.WriteSyncer) {
	var buf bytes.Buffer
	return &buf, zapcore.AddSync(&buf)
}

func TestInitialize(t *testing.T) {
	t.Run("console logger with colors", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		buf, sink := bufferSink()

		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "boxflow",
			Colors:      config.ColorConfig{Info: "green"},
		}, sink)
		GetLogger().Named("layout").Info("frame laid out")
		Sync()

		output := buf.String()
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "frame laid out")
		assert.Contains(t, output, "boxflow.layout.")
		assert.Contains(t, output, colorGreen)
		assert.Contains(t, output, colorReset)
	})

	t.Run("json logger", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		buf, sink := bufferSink()

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"}, sink)
		GetLogger().Warn("relayout skipped", zap.String("dom", "0"))
		Sync()

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "relayout skipped", entry["msg"])
		assert.Equal(t, "0", entry["dom"])
	})

	t.Run("level below threshold is dropped", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		buf, sink := bufferSink()

		Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, sink)
		GetLogger().Info("quiet")
		Sync()
		assert.Empty(t, buf.String())
	})

	t.Run("writes to a rotating file", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		_, sink := bufferSink()
		path := filepath.Join(t.TempDir(), "boxflow.log")

		Initialize(config.LoggerConfig{Level: "debug", Format: "json", LogFile: path, MaxSize: 1}, sink)
		GetLogger().Error("font load failed")
		Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "font load failed")
	})

	t.Run("initializes only once", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		buf, sink := bufferSink()

		Initialize(config.LoggerConfig{Level: "info", ServiceName: "First"}, sink)
		first := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, sink)
		second := GetLogger()

		assert.Same(t, first, second)
		second.Info("test")
		Sync()
		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("fallback before initialization", func(t *testing.T) {
		ResetForTest()
		require.NotNil(t, GetLogger())
	})

	t.Run("global logger after initialization", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		_, sink := bufferSink()
		Initialize(config.LoggerConfig{Level: "info"}, sink)
		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	buf, sink := bufferSink()
	l := NewLogger(config.LoggerConfig{Level: "loud", Format: "json"}, sink)
	l.Debug("hidden")
	l.Info("shown")
	require.NoError(t, l.Sync())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponent(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	buf, sink := bufferSink()
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "boxflow"}, sink)

	Component("markup").Info("document loaded")
	Sync()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boxflow.markup", entry["logger"])
}

func TestAnsi(t *testing.T) {
	assert.Equal(t, colorRed, ansi("red"))
	assert.Equal(t, colorCyan, ansi("Cyan"))
	assert.Empty(t, ansi("chartreuse"))
}
