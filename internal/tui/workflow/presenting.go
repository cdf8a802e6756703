package workflow

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alkime/intake/internal/intake"
	"github.com/alkime/intake/internal/present"
	"github.com/alkime/intake/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	presentingChrome = 9
	minViewport      = 5
	defaultWidth     = 80
	defaultHeight    = 24
)

// Presenting shows the returned intake form in a scrollable viewport.
type Presenting struct {
	keys     presentingKeyMap
	renderer present.Renderer
	viewport viewport.Model

	result         intake.Result
	showTranscript bool
	notice         string
	warning        string
	width, height  int
}

// NewPresenting renders forms with renderer, falling back to the plain
// markdown source when it fails.
func NewPresenting(renderer present.Renderer) Presenting {
	if renderer == nil {
		renderer = present.PlainRenderer{}
	}

	p := Presenting{
		keys:     defaultPresentingKeyMap(),
		renderer: renderer,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	p.viewport = viewport.New(p.contentWidth(), p.viewportHeight())

	return p
}

// Show replaces the displayed result and scrolls to the top.
func (p Presenting) Show(result intake.Result) Presenting {
	p.result = result
	p.showTranscript = false
	p.notice = ""
	p.warning = ""
	p.keys.Transcript.SetEnabled(result.Transcription != "")
	p.refresh()
	p.viewport.GotoTop()

	return p
}

// SetNotice shows a one line confirmation under the form.
func (p Presenting) SetNotice(notice string) Presenting {
	p.notice = notice
	p.warning = ""

	return p
}

// SetWarning shows a one line problem under the form.
func (p Presenting) SetWarning(warning string) Presenting {
	p.warning = warning
	p.notice = ""

	return p
}

// Update handles one message and returns the intents it raised.
func (p Presenting) Update(msg tea.Msg) (Presenting, []Intent, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.viewport.Width = p.contentWidth()
		p.viewport.Height = p.viewportHeight()
		p.refresh()

		return p, nil, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Print):
			return p, []Intent{Print{}}, nil
		case key.Matches(msg, p.keys.Save):
			return p, []Intent{Save{}}, nil
		case key.Matches(msg, p.keys.New):
			return p, []Intent{NewIntake{}}, nil
		case key.Matches(msg, p.keys.Transcript):
			p.showTranscript = !p.showTranscript
			p.refresh()
			p.viewport.GotoTop()

			return p, nil, nil
		}
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)

	return p, nil, cmd
}

func (p *Presenting) refresh() {
	if p.showTranscript {
		plain, _ := present.PlainRenderer{}.Render(p.result.Transcription, p.contentWidth())
		p.viewport.SetContent(plain)

		return
	}

	out, err := p.renderer.Render(p.result.Form, p.contentWidth())
	if err != nil {
		slog.Warn("falling back to plain markdown", "error", err)
		out, _ = present.PlainRenderer{}.Render(p.result.Form, p.contentWidth())
	}

	p.viewport.SetContent(out)
}

func (p Presenting) contentWidth() int {
	// border and padding
	return max(p.width-4, 20)
}

func (p Presenting) viewportHeight() int {
	return max(p.height-presentingChrome, minViewport)
}

// View renders the presenting screen.
func (p Presenting) View() string {
	var sb strings.Builder

	title := "Intake form"
	if p.showTranscript {
		title = "What we heard"
	}

	sb.WriteString(style.Title.Render(title))
	sb.WriteString("\n")
	sb.WriteString(style.Subtitle.Render(fmt.Sprintf(
		"%d documents analyzed  %d symptom photos analyzed",
		p.result.DocumentsAnalyzed, p.result.SymptomImagesAnalyzed,
	)))
	sb.WriteString("\n\n")

	sb.WriteString(style.Viewport.Render(p.viewport.View()))
	sb.WriteString("\n")
	sb.WriteString(style.Muted.Render(fmt.Sprintf("%3.f%%", p.viewport.ScrollPercent()*100)))
	sb.WriteString("\n\n")

	if p.notice != "" {
		sb.WriteString(style.Success.Render(p.notice))
		sb.WriteString("\n\n")
	}

	if p.warning != "" {
		sb.WriteString(style.Warning.Render(p.warning))
		sb.WriteString("\n\n")
	}

	sb.WriteString(renderHelpLine(p.keys.Print, p.keys.Save, p.keys.Transcript, p.keys.New, p.keys.Scroll))
	sb.WriteString(" ")
	sb.WriteString(style.Help.Render("[") + style.Key.Render("ctrl+c") + style.Help.Render("] quit"))

	return sb.String()
}
