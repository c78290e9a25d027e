// Package tui provides the live watch view for the parallel execution
// phase: worktree statuses plus overlapping edits as they happen.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/divvy/internal/conflict"
	"github.com/Iron-Ham/divvy/internal/report"
	"github.com/Iron-Ham/divvy/internal/worktree"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A78BFA"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	conflictBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(lipgloss.Color("#F59E0B")).
			Padding(0, 1)

	conflictLine = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FB923C"))

	helpKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))
)

// WorktreeSource lists worktree metadata for the view.
// *worktree.Store satisfies it.
type WorktreeSource interface {
	List() ([]*worktree.Metadata, error)
	ListByEpic(epic string) ([]*worktree.Metadata, error)
}

// ConflictSource yields the current overlap snapshot.
// *conflict.Detector satisfies it.
type ConflictSource interface {
	Snapshot() []conflict.FileConflict
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the Bubbletea model for the watch view.
type Model struct {
	store     WorktreeSource
	conflicts ConflictSource
	epic      string

	spinner  spinner.Model
	metas    []*worktree.Metadata
	overlaps []conflict.FileConflict
	width    int
	height   int
	err      error
	quitting bool
}

// New creates a watch model over the given sources. An empty epic
// watches every worktree.
func New(store WorktreeSource, conflicts ConflictSource, epic string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	m := Model{
		store:     store,
		conflicts: conflicts,
		epic:      epic,
		spinner:   sp,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// refresh reloads worktree metadata and the overlap snapshot.
func (m *Model) refresh() {
	var metas []*worktree.Metadata
	var err error
	if m.epic != "" {
		metas, err = m.store.ListByEpic(m.epic)
	} else {
		metas, err = m.store.List()
	}
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.metas = metas

	if m.conflicts != nil {
		m.overlaps = m.conflicts.Snapshot()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width == 0 {
		width = 80
	}

	var b strings.Builder

	title := "divvy watch"
	if m.epic != "" {
		title += " " + m.epic
	}
	b.WriteString(fmt.Sprintf("%s %s\n\n", m.spinner.View(), titleStyle.Render(title)))

	if m.err != nil {
		b.WriteString(fmt.Sprintf("Error: %v\n\n", m.err))
	}

	b.WriteString(report.RenderWorktrees(m.metas, width))
	b.WriteString("\n")

	if len(m.overlaps) == 0 {
		b.WriteString(okStyle.Render("No overlapping edits detected."))
		b.WriteString("\n")
	} else {
		b.WriteString(conflictBanner.Render(fmt.Sprintf("OVERLAP: %d file(s) modified in multiple worktrees", len(m.overlaps))))
		b.WriteString("\n")
		for _, c := range m.overlaps {
			b.WriteString(conflictLine.Render(fmt.Sprintf("  ⚠ %s (%s)", c.RelativePath, strings.Join(c.Worktrees, ", "))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(helpKeyStyle.Render("q") + " quit"))
	b.WriteString("\n")

	return b.String()
}

// Run starts the watch view and blocks until the user quits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
