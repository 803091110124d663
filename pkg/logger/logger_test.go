package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vkbackup/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &zerologLogger{logger: &zlog}
}

func TestNew(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "info"})
	assert.NoError(t, err)

	_, err = New(&config.LoggingConfig{Level: "invalid"})
	assert.ErrorContains(t, err, "invalid log level")

	logFile := filepath.Join(t.TempDir(), "logs", "vkbackup.log")
	l, err := New(&config.LoggingConfig{Level: "debug", File: logFile})
	require.NoError(t, err)
	l.Info("written to file")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"app":"vkbackup"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"loud", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestFieldsAreCopiedNotShared(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf)

	child := base.WithField("file_name", "3_1700000000.jpg")
	child.WithField("remote_path", "vk_photos/3_1700000000.jpg").Info("upload")
	assert.Contains(t, buf.String(), `"remote_path":"vk_photos/3_1700000000.jpg"`)

	buf.Reset()
	child.Info("again")
	assert.Contains(t, buf.String(), `"file_name":"3_1700000000.jpg"`)
	assert.NotContains(t, buf.String(), "remote_path")

	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "file_name")
}

func TestWithFieldsAndTypes(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.WithFields(map[string]interface{}{
		"count":   5,
		"album":   "profile",
		"dry":     false,
		"elapsed": 2 * time.Second,
	}).InfoWithFields("fetched", map[string]interface{}{"size": int64(7)})

	out := buf.String()
	assert.Contains(t, out, `"count":5`)
	assert.Contains(t, out, `"album":"profile"`)
	assert.Contains(t, out, `"dry":false`)
	assert.Contains(t, out, `"size":7`)
	assert.Contains(t, out, `"message":"fetched"`)
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	assert.Same(t, l, l.WithError(nil))

	l.WithError(errors.New("disk full")).Error("persist failed")
	assert.Contains(t, buf.String(), `"error":"disk full"`)
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "disabled"}))
	assert.NotNil(t, GetLogger())

	tl := NewTestLogger()
	SetLogger(tl)
	defer SetLogger(nil)

	WithField("k", "v").Info("via global")
	Warn("warned")
	assert.True(t, tl.HasMessage("via global"))
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", MaskToken("short"))
	assert.Equal(t, "vk1a...9xyz", MaskToken("vk1a-secret-token-9xyz"))
}

func TestLogUpload(t *testing.T) {
	tl := NewTestLogger()

	LogUpload(tl, "1_2.jpg", "vk_photos/1_2.jpg", true, nil)
	LogUpload(tl, "1_2.jpg", "vk_photos/1_2.jpg", false, nil)
	LogUpload(tl, "1_2.jpg", "vk_photos/1_2.jpg", false, errors.New("boom"))

	msgs := tl.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "Upload completed", msgs[0].Message)
	assert.Equal(t, "Upload skipped, remote file exists", msgs[1].Message)
	assert.Equal(t, "ERROR", msgs[2].Level)
	assert.EqualError(t, msgs[2].Error, "boom")
	assert.Equal(t, "vk_photos/1_2.jpg", msgs[2].Fields["remote_path"])
}

func TestTestLoggerSharesSink(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("component", "ledger")
	child.WithError(errors.New("bad json")).Warn("ledger unreadable")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ledger", msgs[0].Fields["component"])
	assert.Contains(t, tl.String(), "error=bad json")

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
	assert.False(t, tl.HasError())
}
