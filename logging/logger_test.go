package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crytic/tokengas/logging/colors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAddAndRemoveWriter will test to Logger.AddWriter and Logger.RemoveWriter functions to ensure that they work as expected.
func TestAddAndRemoveWriter(t *testing.T) {
	logger := NewLogger(zerolog.InfoLevel, false)

	var unstructured, structured bytes.Buffer
	logger.AddWriter(&unstructured, UNSTRUCTURED)
	logger.AddWriter(&structured, STRUCTURED)
	assert.Len(t, logger.writers, 2)

	// Duplicate writers are ignored
	logger.AddWriter(&unstructured, UNSTRUCTURED)
	logger.AddWriter(&structured, STRUCTURED)
	assert.Len(t, logger.writers, 2)

	logger.Info("hello")
	assert.Contains(t, unstructured.String(), "hello")
	assert.Contains(t, structured.String(), "\"message\":\"hello\"")

	logger.RemoveWriter(&unstructured)
	logger.RemoveWriter(&structured)
	assert.Len(t, logger.writers, 0)

	// Writers which were removed no longer receive output
	unstructured.Reset()
	logger.Info("goodbye")
	assert.Empty(t, unstructured.String())
}

// TestSubLoggerContext ensures sub-logger keys are attached to structured output, including for writers added after
// the sub-logger was created.
func TestSubLoggerContext(t *testing.T) {
	logger := NewLogger(zerolog.DebugLevel, false)
	subLogger := logger.NewSubLogger(SERVICE_KEY, PROFILING_SERVICE).NewSubLogger(RUN_ID_KEY, "run-1")

	var buf bytes.Buffer
	subLogger.AddWriter(&buf, STRUCTURED)
	subLogger.Debug("deployed ", "Token", StructuredLogInfo{"gas": 1200})

	var event map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &event))
	assert.Equal(t, PROFILING_SERVICE, event[SERVICE_KEY])
	assert.Equal(t, "run-1", event[RUN_ID_KEY])
	assert.Equal(t, "deployed Token", event["message"])
	assert.Equal(t, map[string]any{"gas": float64(1200)}, event["info"])
}

// TestErrorsAreChained ensures that errors provided as log arguments are attached to the event rather than the message.
func TestErrorsAreChained(t *testing.T) {
	logger := NewLogger(zerolog.InfoLevel, false)
	var buf bytes.Buffer
	logger.AddWriter(&buf, STRUCTURED)

	logger.Error("Failed to profile contract", errors.New("execution reverted"))

	var event map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &event))
	assert.Equal(t, "Failed to profile contract", event["message"])
	assert.Equal(t, "execution reverted", event["error"])
}

// TestDisabledColors verifies the behavior of the console logger when colors are disabled, ensuring that it does not
// output ANSI escape codes.
func TestDisabledColors(t *testing.T) {
	var buf bytes.Buffer
	previous := consoleDestination
	consoleDestination = &buf
	defer func() {
		consoleDestination = previous
		colors.EnableColor()
	}()

	colors.DisableColor()
	logger := NewLogger(zerolog.InfoLevel, true)
	logger.Info("foo ", colors.Bold, "bar")

	assert.NotContains(t, buf.String(), "\x1b[")
	assert.True(t, strings.Contains(buf.String(), colors.LEFT_ARROW+" foo bar"))
}

// TestLevelFiltering ensures events below the configured level are dropped.
func TestLevelFiltering(t *testing.T) {
	logger := NewLogger(zerolog.WarnLevel, false)
	var buf bytes.Buffer
	logger.AddWriter(&buf, UNSTRUCTURED)

	logger.Info("not shown")
	assert.Empty(t, buf.String())

	logger.SetLevel(zerolog.InfoLevel)
	logger.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

// TestFileWriter ensures the rotating file writer creates its parent directory and receives log output.
func TestFileWriter(t *testing.T) {
	config := FileConfig{Path: filepath.Join(t.TempDir(), "logs", "tokengas.log"), MaxSizeMB: 1}
	writer, err := NewFileWriter(config)
	require.NoError(t, err)

	logger := NewLogger(zerolog.InfoLevel, false)
	logger.AddWriter(writer, config.Format())
	logger.Info("written to file")
	require.NoError(t, writer.Close())

	b, err := os.ReadFile(config.Path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "written to file")

	_, err = NewFileWriter(FileConfig{})
	assert.Error(t, err)
}

// TestPanicReachesWriters ensures a panic event is written before the logger panics with the uncolored message.
func TestPanicReachesWriters(t *testing.T) {
	logger := NewLogger(zerolog.InfoLevel, false)
	var buf bytes.Buffer
	logger.AddWriter(&buf, STRUCTURED)

	assert.PanicsWithValue(t, "fatal: 3", func() {
		logger.Panic(colors.Red, "fatal: ", 3)
	})
	assert.Contains(t, buf.String(), `"level":"panic"`)
	assert.Contains(t, buf.String(), `"message":"fatal: 3"`)
}
