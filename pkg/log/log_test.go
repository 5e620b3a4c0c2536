package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/coffeestats/pkg/log"
)

func TestToLogLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, log.ToLogLevel(in), in)
	}
}

func TestProviderWritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	p := log.NewZerologProviderWithWriter(&buf, zerolog.InfoLevel)

	logger := p.GetLoggerWithName("cluster").With(log.ComponentKey, "kmeans")
	logger.Info("Training completed", log.IterKey, 7, log.InertiaKey, 1.5)
	logger.Debug("suppressed below info")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "Training completed", entry["message"])
	assert.Equal(t, "cluster", entry[log.NameKey])
	assert.Equal(t, "kmeans", entry[log.ComponentKey])
	assert.Equal(t, float64(7), entry[log.IterKey])
	assert.Equal(t, 1.5, entry[log.InertiaKey])
	assert.Equal(t, "info", entry["level"])
}

func TestSetProviderRoutesGlobalLoggers(t *testing.T) {
	var buf bytes.Buffer
	log.SetProvider(log.NewZerologProviderWithWriter(&buf, zerolog.WarnLevel))
	t.Cleanup(func() { log.SetupLogger("info") })

	log.GetLoggerWithName("stats").Warn("degenerate input", log.OperationKey, log.OperationTest)
	log.GetLoggerWithName("stats").Info("not written")

	assert.Contains(t, buf.String(), "degenerate input")
	assert.NotContains(t, buf.String(), "not written")
}
