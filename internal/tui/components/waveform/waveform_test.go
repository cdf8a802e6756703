package waveform_test

import (
	"strings"
	"testing"

	"github.com/alkime/intake/internal/tui/components/waveform"
	"github.com/alkime/intake/pkg/uictl"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func levels(samples ...int16) uictl.Levels[int16] {
	return uictl.LevelsFunc[int16](func() []int16 { return samples })
}

func TestWaveform_View(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		levels uictl.Levels[int16]
		width  int
		want   string
	}{
		{"nil source", nil, 5, "▁▁▁▁▁"},
		{"no samples", levels(), 3, "▁▁▁"},
		{"silence", levels(0, 0, 0, 0), 4, "    "},
		{"full scale", levels(32767, -32768, 32767), 3, "███"},
		{"quiet still shows", levels(1, 0), 2, "▁ "},
		{"fewer samples than columns", levels(32767), 3, "█  "},
		{"buckets keep peak", levels(0, 32767, 0, 0), 2, "█ "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, waveform.New(tt.levels, tt.width).View())
		})
	}
}

func TestWaveform_TickContinues(t *testing.T) {
	t.Parallel()

	m := waveform.New(levels(100), 10)

	m, cmd := m.Update(waveform.TickMsg{})
	assert.NotNil(t, cmd)

	_, cmd = m.Update("something else")
	assert.Nil(t, cmd)

	assert.Len(t, []rune(strings.TrimSpace(m.SetWidth(4).View())), 1)
}
