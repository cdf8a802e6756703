// Package present turns the returned intake form into something a person
// can read, print or save.
package present

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Renderer draws markdown for a terminal of the given width. The markdown
// is rendered as received, with nothing added or removed.
type Renderer interface {
	Render(markdown string, width int) (string, error)
}

// GlamourRenderer styles markdown with glamour. Renderers are cached per
// width since building one parses the whole style sheet.
type GlamourRenderer struct {
	style string

	mu      sync.Mutex
	byWidth map[int]*glamour.TermRenderer
}

// NewGlamourRenderer uses a glamour standard style name such as "dark",
// "light" or "notty". An empty style picks one from the terminal background.
func NewGlamourRenderer(style string) *GlamourRenderer {
	return &GlamourRenderer{
		style:   style,
		byWidth: make(map[int]*glamour.TermRenderer),
	}
}

func (g *GlamourRenderer) Render(markdown string, width int) (string, error) {
	tr, err := g.renderer(width)
	if err != nil {
		return "", err
	}

	out, err := tr.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return out, nil
}

func (g *GlamourRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if tr, ok := g.byWidth[width]; ok {
		return tr, nil
	}

	styleOpt := glamour.WithAutoStyle()
	if g.style != "" {
		styleOpt = glamour.WithStandardStyle(g.style)
	}

	opts := []glamour.TermRendererOption{styleOpt}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	g.byWidth[width] = tr

	return tr, nil
}

// PlainRenderer shows the markdown source wrapped to width.
type PlainRenderer struct{}

func (PlainRenderer) Render(markdown string, width int) (string, error) {
	if width <= 0 {
		return markdown, nil
	}

	return lipgloss.NewStyle().Width(width).Render(markdown), nil
}
