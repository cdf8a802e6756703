package workflow

import (
	"time"

	"github.com/alkime/intake/internal/intake"
	"github.com/alkime/intake/internal/tui/components/labeledspinner"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
)

// Processing is shown while the single submission is in flight.
type Processing struct {
	spinner   labeledspinner.Model
	stopwatch stopwatch.Model
}

func NewProcessing() Processing {
	return Processing{
		spinner: labeledspinner.New(
			spinner.Dot,
			"Generating intake form",
			intake.StatusUploading,
			"",
		),
		stopwatch: stopwatch.NewWithInterval(time.Second),
	}
}

// Init starts the spinner.
func (p Processing) Init() tea.Cmd {
	return p.spinner.Init()
}

// Start restarts the elapsed clock for a new submission.
func (p Processing) Start(status string) (Processing, tea.Cmd) {
	p.spinner = p.spinner.WithSubtitle(status)

	return p, tea.Sequence(p.stopwatch.Reset(), p.stopwatch.Start())
}

// Stop halts the elapsed clock.
func (p Processing) Stop() (Processing, tea.Cmd) {
	return p, p.stopwatch.Stop()
}

// SetStatus changes the status line.
func (p Processing) SetStatus(status string) Processing {
	p.spinner = p.spinner.WithSubtitle(status)
	return p
}

func (p Processing) Update(msg tea.Msg) (Processing, tea.Cmd) {
	var cmds []tea.Cmd

	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	cmds = append(cmds, cmd)

	p.stopwatch, cmd = p.stopwatch.Update(msg)
	cmds = append(cmds, cmd)

	return p, tea.Batch(cmds...)
}

func (p Processing) View() string {
	return p.spinner.ViewWithHelp(p.stopwatch.View() + " elapsed  [ctrl+c] quit")
}
