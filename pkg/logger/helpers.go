package logger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// MaskToken keeps the first and last four characters of a credential
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// LogRequest logs a completed HTTP call to one of the remote services
func LogRequest(l Logger, method, endpoint string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogUpload logs the outcome of one photo upload
func LogUpload(l Logger, fileName, remotePath string, uploaded bool, err error) {
	entry := l.WithFields(map[string]interface{}{
		"file_name":   fileName,
		"remote_path": remotePath,
		"uploaded":    uploaded,
	})

	switch {
	case err != nil:
		entry.WithError(err).Error("Upload failed")
	case uploaded:
		entry.Info("Upload completed")
	default:
		entry.Info("Upload skipped, remote file exists")
	}
}

// LogRateLimit logs a rate limiting event
func LogRateLimit(l Logger, endpoint string, waitMs int64) {
	l.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"wait_ms":  waitMs,
		"action":   "rate_limited",
	}).Debug("Rate limit reached, waiting")
}

// LogSyncProgress logs batch progress as a percentage
func LogSyncProgress(l Logger, done, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(done) / float64(total) * 100
	}
	l.WithFields(map[string]interface{}{
		"done":       done,
		"total":      total,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Debug("Sync progress")
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
