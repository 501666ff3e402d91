// Package tui contains the terminal UI for live views.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Placeholder is a purely decorative loading indicator shown while content is
// on its way. It carries no data and has no error path; callers may override
// its frames, label, and style.
type Placeholder struct {
	spinner spinner.Model
	label   string
	style   lipgloss.Style
}

// PlaceholderOption overrides the placeholder's presentation.
type PlaceholderOption func(*Placeholder)

// WithLabel replaces the default "Loading..." label.
func WithLabel(label string) PlaceholderOption {
	return func(p *Placeholder) {
		p.label = label
	}
}

// WithFrames replaces the animation frames.
func WithFrames(s spinner.Spinner) PlaceholderOption {
	return func(p *Placeholder) {
		p.spinner.Spinner = s
	}
}

// WithStyle replaces the rendering style.
func WithStyle(style lipgloss.Style) PlaceholderOption {
	return func(p *Placeholder) {
		p.style = style
	}
}

// NewPlaceholder creates a placeholder with the default dim dot spinner.
func NewPlaceholder(opts ...PlaceholderOption) Placeholder {
	p := Placeholder{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		label:   "Loading...",
		style:   dimStyle,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Init starts the spinner animation.
func (p Placeholder) Init() tea.Cmd {
	return p.spinner.Tick
}

// Update advances the animation frame.
func (p Placeholder) Update(msg tea.Msg) (Placeholder, tea.Cmd) {
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return p, cmd
}

// View renders the current frame and label.
func (p Placeholder) View() string {
	return p.style.Render(p.spinner.View() + p.label)
}
