// Package waveform draws the microphone input level while recording.
package waveform

import (
	"strings"
	"time"

	"github.com/alkime/intake/internal/tui/style"
	"github.com/alkime/intake/pkg/uictl"
	tea "github.com/charmbracelet/bubbletea"
)

// bar heights, silent to full scale
var bars = []rune(" ▁▂▃▄▅▆▇█")

const refresh = 50 * time.Millisecond

// TickMsg triggers a redraw.
type TickMsg struct{}

// Model renders recent samples as one row of bars, oldest on the left.
type Model struct {
	levels uictl.Levels[int16]
	width  int
}

// New reads samples from levels and draws width columns.
func New(levels uictl.Levels[int16], width int) Model {
	return Model{levels: levels, width: max(width, 1)}
}

// Init starts the redraw loop.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update keeps the redraw loop going.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, tick()
	}

	return m, nil
}

// SetWidth changes the number of columns.
func (m Model) SetWidth(width int) Model {
	m.width = max(width, 1)
	return m
}

// View renders the bars, or a flat baseline without samples.
func (m Model) View() string {
	var samples []int16
	if m.levels != nil {
		samples = m.levels.Read()
	}

	if len(samples) == 0 {
		return style.Muted.Render(strings.Repeat(string(bars[1]), m.width))
	}

	var sb strings.Builder
	for _, peak := range columnPeaks(samples, m.width) {
		sb.WriteRune(bars[barIndex(peak)])
	}

	return style.Progress.Render(sb.String())
}

func tick() tea.Cmd {
	return tea.Tick(refresh, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// columnPeaks splits samples into width buckets and keeps each bucket's
// peak amplitude. Missing buckets are silent.
func columnPeaks(samples []int16, width int) []int32 {
	peaks := make([]int32, width)
	bucket := max(1, len(samples)/width)

	for col := range peaks {
		start := col * bucket
		if start >= len(samples) {
			break
		}

		for _, s := range samples[start:min(start+bucket, len(samples))] {
			peaks[col] = max(peaks[col], abs(int32(s)))
		}
	}

	return peaks
}

func barIndex(peak int32) int {
	if peak <= 0 {
		return 0
	}

	// ceil so any sound shows at least the lowest bar
	top := int32(len(bars) - 1)
	idx := (peak*top + 32767) / 32768

	return int(min(idx, top))
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}

	return v
}
