package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jatassi/slipstream-go/internal/domain/model"
	"github.com/jatassi/slipstream-go/internal/query"
)

// defaultWatchInterval is how often the watch view polls the status query.
const defaultWatchInterval = 2 * time.Second

type statusMsg model.SyncStatus

type statusErrMsg struct {
	err error
}

type pollMsg time.Time

// WatchModel renders a live view of the RSS sync status. Until the first
// response arrives it shows the loading placeholder; afterwards it keeps the
// last snapshot on screen even when a poll fails.
type WatchModel struct {
	status   *query.Query[model.SyncStatus]
	interval time.Duration

	placeholder Placeholder
	snapshot    *model.SyncStatus
	err         error
	width       int
}

// NewWatch creates a watch view over the given status query.
func NewWatch(status *query.Query[model.SyncStatus], interval time.Duration) WatchModel {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return WatchModel{
		status:      status,
		interval:    interval,
		placeholder: NewPlaceholder(WithLabel("Waiting for sync status...")),
	}
}

// Init kicks off the spinner, the first poll, and the poll ticker.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.placeholder.Init(), m.poll(), m.schedulePoll())
}

// Update handles key, poll, and spinner messages.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case pollMsg:
		return m, tea.Batch(m.poll(), m.schedulePoll())

	case statusMsg:
		snapshot := model.SyncStatus(msg)
		m.snapshot = &snapshot
		m.err = nil
		return m, nil

	case statusErrMsg:
		// Keep the last snapshot visible; just surface the error.
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.placeholder, cmd = m.placeholder.Update(msg)
	return m, cmd
}

// View renders the status panel.
func (m WatchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SlipStream RSS Sync"))
	b.WriteString("\n\n")

	if m.snapshot == nil {
		b.WriteString(m.placeholder.View())
		b.WriteString("\n")
	} else {
		writeSnapshot(&b, *m.snapshot)
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("poll failed: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q to quit"))
	return b.String()
}

func writeSnapshot(b *strings.Builder, s model.SyncStatus) {
	state := dimStyle.Render("idle")
	if s.Running {
		state = accentStyle.Render("syncing")
	}
	writeField(b, "State", state)

	if s.LastRun != nil {
		writeField(b, "Last run", s.LastRun.Local().Format(time.RFC1123))
	} else {
		writeField(b, "Last run", dimStyle.Render("never"))
	}

	writeField(b, "Releases", fmt.Sprintf("%d", s.TotalReleases))
	writeField(b, "Matched", fmt.Sprintf("%d", s.Matched))
	writeField(b, "Grabbed", successStyle.Render(fmt.Sprintf("%d", s.Grabbed)))
	writeField(b, "Elapsed", s.Elapsed().String())

	if s.Error != "" {
		writeField(b, "Error", errorStyle.Render(s.Error))
	}
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)))
	b.WriteString(" ")
	b.WriteString(value)
	b.WriteString("\n")
}

// poll reads the status query once. The query layer handles caching and
// collapses concurrent polls into one request.
func (m WatchModel) poll() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.interval*2)
		defer cancel()

		status, err := m.status.Get(ctx)
		if err != nil {
			return statusErrMsg{err: err}
		}
		return statusMsg(status)
	}
}

func (m WatchModel) schedulePoll() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}
