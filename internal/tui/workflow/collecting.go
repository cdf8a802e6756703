package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/alkime/intake/internal/intake"
	"github.com/alkime/intake/internal/tui/components/waveform"
	"github.com/alkime/intake/internal/tui/style"
	"github.com/alkime/intake/pkg/uictl"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/stopwatch"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mic is the microphone state shown on the collecting screen.
type Mic int

const (
	MicIdle Mic = iota
	MicStarting
	MicRecording
	MicStopping
)

// CollectingState is everything the collecting screen shows that it does
// not own. The root model pushes a fresh copy after every change.
type CollectingState struct {
	Input       intake.Collection
	Mic         Mic
	Banner      string
	Notice      string
	Warning     string
	PreviewPath string
}

type section int

const (
	textSection section = iota
	documentsSection
	imagesSection
	sectionCount
)

func (s section) kind() Kind {
	if s == imagesSection {
		return SymptomImages
	}

	return Documents
}

const defaultMeterWidth = 40

// Collecting is the input screen: voice recording, a free text
// description, and the two file lists.
type Collecting struct {
	keys     collectingKeyMap
	focus    section
	text     textarea.Model
	path     textinput.Model
	selected [2]int

	state     CollectingState
	stopwatch stopwatch.Model
	meter     waveform.Model
	captured  uictl.Dial[int64]
}

// NewCollecting draws the input level from levels and the recording size
// from captured. Either may be nil.
func NewCollecting(levels uictl.Levels[int16], captured uictl.Dial[int64]) Collecting {
	ta := textarea.New()
	ta.Placeholder = "Describe your symptoms, when they started, and anything else we should know..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(4)
	ta.SetWidth(defaultMeterWidth * 2)
	ta.Focus()

	ti := textinput.New()
	ti.Prompt = "file: "
	ti.Placeholder = "type or drop a file path, then press enter"

	return Collecting{
		keys:      defaultCollectingKeyMap(),
		text:      ta,
		path:      ti,
		stopwatch: stopwatch.NewWithInterval(time.Second),
		meter:     waveform.New(levels, defaultMeterWidth),
		captured:  captured,
	}
}

// Init starts the cursor blinking in the description.
func (c Collecting) Init() tea.Cmd {
	return textarea.Blink
}

// Text returns the description as currently typed.
func (c Collecting) Text() string {
	return c.text.Value()
}

// Sync applies state from the root model and returns the commands that
// follow from it, such as starting the stopwatch.
func (c Collecting) Sync(state CollectingState) (Collecting, tea.Cmd) {
	var cmds []tea.Cmd

	prev := c.state.Mic
	c.state = state

	if state.Input.Text != c.text.Value() {
		c.text.SetValue(state.Input.Text)
	}

	c.selected[Documents] = clamp(c.selected[Documents], len(state.Input.Documents))
	c.selected[SymptomImages] = clamp(c.selected[SymptomImages], len(state.Input.SymptomImages))

	switch {
	case state.Mic == MicRecording && prev != MicRecording:
		cmds = append(cmds, c.stopwatch.Reset(), c.stopwatch.Start(), c.meter.Init())
	case state.Mic != MicRecording && prev == MicRecording:
		cmds = append(cmds, c.stopwatch.Stop())
	}

	return c, tea.Batch(cmds...)
}

// Update handles one message and returns the intents it raised.
func (c Collecting) Update(msg tea.Msg) (Collecting, []Intent, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.text.SetWidth(max(msg.Width-4, 20))
		c.path.Width = max(msg.Width-10, 20)
		c.meter = c.meter.SetWidth(max(msg.Width-30, 10))

		return c, nil, nil

	case tea.KeyMsg:
		return c.handleKey(msg)

	case waveform.TickMsg:
		// the redraw loop ends with the recording
		if c.state.Mic != MicRecording {
			return c, nil, nil
		}

		var cmd tea.Cmd
		c.meter, cmd = c.meter.Update(msg)

		return c, nil, cmd
	}

	var cmds []tea.Cmd

	var cmd tea.Cmd
	c.stopwatch, cmd = c.stopwatch.Update(msg)
	cmds = append(cmds, cmd)

	c.text, cmd = c.text.Update(msg)
	cmds = append(cmds, cmd)

	c.path, cmd = c.path.Update(msg)
	cmds = append(cmds, cmd)

	return c, nil, tea.Batch(cmds...)
}

func (c Collecting) handleKey(msg tea.KeyMsg) (Collecting, []Intent, tea.Cmd) {
	switch {
	case key.Matches(msg, c.keys.Record):
		return c, []Intent{ToggleRecording{}}, nil

	case key.Matches(msg, c.keys.Generate):
		return c, []Intent{Submit{}}, nil

	case key.Matches(msg, c.keys.Next):
		return c.focusOn((c.focus + 1) % sectionCount)

	case key.Matches(msg, c.keys.Prev):
		return c.focusOn((c.focus + sectionCount - 1) % sectionCount)
	}

	if c.focus == textSection {
		before := c.text.Value()

		var cmd tea.Cmd
		c.text, cmd = c.text.Update(msg)

		if after := c.text.Value(); after != before {
			return c, []Intent{SetText{Text: after}}, cmd
		}

		return c, nil, cmd
	}

	kind := c.focus.kind()

	switch {
	case key.Matches(msg, c.keys.Add):
		p := cleanPath(c.path.Value())
		if p == "" {
			return c, nil, nil
		}

		c.path.Reset()

		return c, []Intent{AddFiles{Kind: kind, Paths: []string{p}}}, nil

	case key.Matches(msg, c.keys.Up):
		c.selected[kind] = max(c.selected[kind]-1, 0)
		return c, nil, nil

	case key.Matches(msg, c.keys.Down):
		c.selected[kind] = clamp(c.selected[kind]+1, len(c.files(kind)))
		return c, nil, nil

	case key.Matches(msg, c.keys.Remove):
		if len(c.files(kind)) == 0 {
			return c, nil, nil
		}

		return c, []Intent{RemoveFile{Kind: kind, Index: c.selected[kind]}}, nil
	}

	var cmd tea.Cmd
	c.path, cmd = c.path.Update(msg)

	return c, nil, cmd
}

func (c Collecting) focusOn(s section) (Collecting, []Intent, tea.Cmd) {
	c.focus = s

	if s == textSection {
		c.path.Blur()
		return c, nil, c.text.Focus()
	}

	c.text.Blur()

	return c, nil, c.path.Focus()
}

func (c Collecting) files(kind Kind) []intake.File {
	if kind == SymptomImages {
		return c.state.Input.SymptomImages
	}

	return c.state.Input.Documents
}

// View renders the collecting screen.
func (c Collecting) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("Patient intake"))
	sb.WriteString("\n\n")

	if c.state.Banner != "" {
		sb.WriteString(style.Banner.Render(c.state.Banner))
		sb.WriteString("\n\n")
	}

	sb.WriteString(c.header("Voice", false))
	sb.WriteString("\n")
	sb.WriteString(c.voiceView())
	sb.WriteString("\n\n")

	sb.WriteString(c.header("Description", c.focus == textSection))
	sb.WriteString("\n")
	sb.WriteString(c.text.View())
	sb.WriteString("\n\n")

	sb.WriteString(c.fileList(documentsSection, "Medical documents"))
	sb.WriteString(c.fileList(imagesSection, "Symptom photos"))

	if c.focus != textSection {
		sb.WriteString(c.path.View())
		sb.WriteString("\n\n")
	}

	if c.state.Notice != "" {
		sb.WriteString(style.Success.Render(c.state.Notice))
		sb.WriteString("\n\n")
	}

	if c.state.Warning != "" {
		sb.WriteString(style.Warning.Render(c.state.Warning))
		sb.WriteString("\n\n")
	}

	sb.WriteString(c.helpView())

	return sb.String()
}

func (c Collecting) header(title string, focused bool) string {
	if focused {
		return style.Focused.Render("› " + title)
	}

	return style.Label.Render("  " + title)
}

func (c Collecting) voiceView() string {
	switch c.state.Mic {
	case MicStarting:
		return style.Subtitle.Render("  Starting microphone...")

	case MicStopping:
		return style.Subtitle.Render("  Finishing recording...")

	case MicRecording:
		var captured int64
		if c.captured != nil {
			captured = c.captured.Read()
		}

		return "  " + style.Error.Render("● REC") + " " +
			style.Subtitle.Render(c.stopwatch.View()) + "  " +
			c.meter.View() + "  " +
			style.Muted.Render(formatBytes(captured))
	}

	clip := c.state.Input.Audio
	if clip == nil {
		return style.Muted.Render("  No recording yet")
	}

	line := style.Success.Render("  ✓ Voice recording") + " " +
		style.Muted.Render(formatBytes(int64(len(clip.Data))))
	if c.state.PreviewPath != "" {
		line += "\n" + style.Muted.Render("    preview: "+c.state.PreviewPath)
	}

	return line
}

func (c Collecting) fileList(s section, title string) string {
	var sb strings.Builder

	kind := s.kind()
	files := c.files(kind)

	sb.WriteString(c.header(fmt.Sprintf("%s (%d)", title, len(files)), c.focus == s))
	sb.WriteString("\n")

	if len(files) == 0 {
		sb.WriteString(style.Muted.Render("    none"))
		sb.WriteString("\n\n")

		return sb.String()
	}

	for i, f := range files {
		row := fmt.Sprintf("%s (%s)", f.Name, formatBytes(int64(len(f.Data))))
		if c.focus == s && i == c.selected[kind] {
			sb.WriteString("  " + style.Bullet.Render("▸ ") + style.Selected.Render(row))
		} else {
			sb.WriteString("  " + style.Bullet.Render("• ") + row)
		}

		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	return sb.String()
}

func (c Collecting) helpView() string {
	bindings := []key.Binding{c.keys.Record, c.keys.Next, c.keys.Generate}
	if c.focus != textSection {
		bindings = append(bindings, c.keys.Add, c.keys.Up, c.keys.Remove)
	}

	return renderHelpLine(bindings...) + " " + style.Help.Render("[") +
		style.Key.Render("ctrl+c") + style.Help.Render("] quit")
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}

	return min(i, n-1)
}
