package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkbackup/pkg/models"
)

func result(name string, outcome models.UploadOutcome, size int) models.UploadResult {
	return models.UploadResult{
		Photo:      models.PhotoRecord{FileName: name},
		RemotePath: "vk_photos/" + name,
		Outcome:    outcome,
		Bytes:      size,
	}
}

func TestStatusTracker(t *testing.T) {
	st := NewStatusTracker(4)
	st.Record(result("1_1.jpg", models.OutcomeUploaded, 2048))
	st.Record(result("2_2.jpg", models.OutcomeSkipped, 0))
	st.Record(result("3_3.jpg", models.OutcomeFailed, 0))

	s := st.Snapshot()
	assert.Equal(t, 1, s.Uploaded)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 3, s.Done())
	assert.Equal(t, int64(2048), s.Bytes)
	assert.InDelta(t, 0.75, s.Percent(), 0.001)
}

func TestEmptyBatchIsComplete(t *testing.T) {
	assert.Equal(t, 1.0, NewStatusTracker(0).Snapshot().Percent())
}

func TestProgressDisplayLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "vk_photos", 2, false)

	p.FinishUpload(result("5_100.jpg", models.OutcomeUploaded, 1536))
	line := p.Line()
	assert.Contains(t, line, "1/2")
	assert.Contains(t, line, "1.5 KB")
	assert.Contains(t, line, "5_100.jpg")

	p.FinishUpload(models.UploadResult{Photo: models.PhotoRecord{FileName: "6_1.jpg"}, Outcome: models.OutcomeFailed, Err: errors.New("x")})
	assert.Contains(t, p.Line(), "1 failed")

	p.Done()
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestProgressDisplayVerbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "vk_photos", 3, true)

	p.FinishUpload(result("1_1.jpg", models.OutcomeUploaded, 10))
	p.FinishUpload(result("2_2.jpg", models.OutcomeSkipped, 0))
	p.FinishUpload(models.UploadResult{RemotePath: "vk_photos/3_3.jpg", Outcome: models.OutcomeFailed, Err: errors.New("HTTP 507")})

	out := buf.String()
	assert.Contains(t, out, "vk_photos/1_1.jpg")
	assert.Contains(t, out, "exists")
	assert.Contains(t, out, "HTTP 507")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatBytes(tt.bytes))
	}
}

type recordingSender struct {
	titles []string
	err    error
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	sender := &recordingSender{err: errors.New("no notification daemon")}
	n := NewNotifierWithSender(sender, &buf)

	n.SendSuccess("Backup complete", "3 uploaded")
	n.SendError("Backup failed", "token rejected")

	require.Len(t, sender.titles, 2)
	assert.Contains(t, buf.String(), "3 uploaded")
	assert.Contains(t, buf.String(), "token rejected")
}

func TestNotifierDisabledOnlyPrints(t *testing.T) {
	var buf bytes.Buffer
	sender := &recordingSender{}
	n := NewNotifierWithSender(sender, &buf)
	n.enabled = false

	n.SendNotification("Backup", "nothing to do")
	assert.Empty(t, sender.titles)
	assert.Contains(t, buf.String(), "nothing to do")
}

func TestPrintErrorGoesToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	oldOut, oldErr := Stdout, Stderr
	Stdout, Stderr = &out, &errOut
	defer func() { Stdout, Stderr = oldOut, oldErr }()

	PrintError("load tokens", errors.New("missing"))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "load tokens: missing")
}
