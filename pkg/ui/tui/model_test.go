package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"vkbackup/pkg/models"
)

func upload(name string, outcome models.UploadOutcome) models.UploadResult {
	r := models.UploadResult{
		Photo:      models.PhotoRecord{FileName: name},
		RemotePath: "vk_photos/" + name,
		Outcome:    outcome,
		Bytes:      1024,
	}
	if outcome == models.OutcomeFailed {
		r.Err = errors.New("insufficient storage")
	}
	return r
}

func TestModel(t *testing.T) {
	model := NewModel("vk_photos", "yandex", nil)

	model.Update(TotalMsg{Total: 4})
	model.Update(ResultMsg{Result: upload("1_1.jpg", models.OutcomeUploaded)})
	model.Update(ResultMsg{Result: upload("2_2.jpg", models.OutcomeSkipped)})
	model.Update(ResultMsg{Result: upload("3_3.jpg", models.OutcomeFailed)})

	assert.Equal(t, 1, model.uploaded)
	assert.Equal(t, 1, model.skipped)
	assert.Equal(t, 1, model.failed)
	assert.Equal(t, int64(1024), model.bytes)
	assert.InDelta(t, 0.75, model.Percent(), 0.001)
	assert.Len(t, model.logMessages, 1)

	view := model.View()
	assert.Contains(t, view, "vk_photos/1_1.jpg")
	assert.Contains(t, view, "3/4")
	assert.Contains(t, view, "q: cancel")
}

func TestRecentIsBounded(t *testing.T) {
	model := NewModel("vk_photos", "local", nil)
	for i := 0; i < maxRecentItems+5; i++ {
		model.Record(upload("x.jpg", models.OutcomeSkipped))
	}
	assert.Len(t, model.recent, maxRecentItems)
}

func TestDoneQuits(t *testing.T) {
	model := NewModel("vk_photos", "yandex", nil)
	_, cmd := model.Update(DoneMsg{})

	assert.True(t, model.done)
	assert.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.NotContains(t, model.View(), "q: cancel")
}

func TestQuitCancelsRun(t *testing.T) {
	called := false
	model := NewModel("vk_photos", "yandex", func() { called = true })

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.True(t, called)
	assert.True(t, model.Cancelled())
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
