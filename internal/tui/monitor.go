/*
Package tui renders a live terminal monitor for the groove learner: state,
learning progress, confidence, the detected genre, tempo drift, and the
learned accent pattern. It polls the learner's lock-free snapshot on a
timer, so it never touches the audio thread.
*/
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"groove/internal/groove"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D08700")).
			Bold(true)
)

var accentGlyphs = []rune("▁▂▃▄▅▆▇█")

type tickMsg time.Time

// MonitorModel is the Bubble Tea model for the learning monitor.
type MonitorModel struct {
	learner  *groove.Learner
	refresh  time.Duration
	progress progress.Model
	snapshot groove.Snapshot
	width    int
}

// NewMonitorModel builds a monitor polling the learner every refresh.
func NewMonitorModel(learner *groove.Learner, refresh time.Duration) MonitorModel {
	if refresh < 16*time.Millisecond {
		refresh = 16 * time.Millisecond
	}
	return MonitorModel{
		learner:  learner,
		refresh:  refresh,
		progress: progress.New(progress.WithDefaultGradient()),
		snapshot: learner.Snapshot(),
	}
}

// Init schedules the first poll.
func (m MonitorModel) Init() tea.Cmd {
	return m.tick()
}

func (m MonitorModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles polls, resize, and the learner control keys.
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.snapshot = m.learner.Snapshot()
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 8
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))):
			return m, tea.Quit
		case key.Matches(msg, key.NewBinding(key.WithKeys("s"))):
			m.learner.StartLearning()
			m.snapshot = m.learner.Snapshot()
		case key.Matches(msg, key.NewBinding(key.WithKeys("l"))):
			m.learner.LockGroove()
			m.snapshot = m.learner.Snapshot()
		case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
			m.learner.Reset()
			m.snapshot = m.learner.Snapshot()
		}
	}
	return m, nil
}

// View renders the monitor.
func (m MonitorModel) View() string {
	s := m.snapshot
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Groove Monitor"))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("State:      %s\n", highlightStyle.Render(s.State)))
	sb.WriteString(fmt.Sprintf("Progress:   %s\n", m.progress.ViewAs(s.Progress)))
	sb.WriteString(fmt.Sprintf("Bars:       %d\n", s.BarsLearned))
	sb.WriteString(fmt.Sprintf("Confidence: %.0f%%\n", s.Confidence*100))
	sb.WriteString(fmt.Sprintf("Genre:      %s\n", s.Genre))
	sb.WriteString(fmt.Sprintf("Tempo:      %s\n", m.renderDrift()))
	sb.WriteString("\n")

	if s.Ready || s.Template.NoteCount > 0 {
		sb.WriteString(m.renderTemplate())
		sb.WriteString("\n")
	}

	sb.WriteString(infoStyle.Render("s: Start Learning • l: Lock • r: Reset • q: Quit"))
	return sb.String()
}

// renderDrift summarizes the tempo trend in one line.
func (m MonitorModel) renderDrift() string {
	d := m.snapshot.Drift
	switch {
	case d.IsRushing:
		return warnStyle.Render(fmt.Sprintf("rushing %.1f%%", d.DriftPercentage))
	case d.IsDragging:
		return warnStyle.Render(fmt.Sprintf("dragging %.1f%%", -d.DriftPercentage))
	default:
		return fmt.Sprintf("steady (stability %.0f%%)", d.Stability*100)
	}
}

// renderTemplate shows the learned groove characteristics and the accent
// pattern as one glyph per 16th bin.
func (m MonitorModel) renderTemplate() string {
	t := m.snapshot.Template
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Swing:      16th %.0f%%  8th %.0f%%  (division: %dths)\n",
		t.Swing16*200, t.Swing8*200, t.PrimaryDivision))
	sb.WriteString(fmt.Sprintf("Feel:       energy %.0f%%  density %.0f%%  syncopation %.0f%%\n",
		t.Energy*100, t.Density*100, t.Syncopation*100))

	sb.WriteString("Accents:    ")
	for i, a := range t.AccentPattern {
		idx := int((a - 0.3) / 0.7 * float64(len(accentGlyphs)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(accentGlyphs) {
			idx = len(accentGlyphs) - 1
		}
		glyph := string(accentGlyphs[idx])
		if i%4 == 0 {
			glyph = highlightStyle.Render(glyph)
		}
		sb.WriteString(glyph)
	}
	sb.WriteString(fmt.Sprintf("  (%d hits)\n", t.NoteCount))
	return sb.String()
}

// StartMonitorUI runs the monitor until the user quits.
func StartMonitorUI(learner *groove.Learner, refresh time.Duration) error {
	p := tea.NewProgram(NewMonitorModel(learner, refresh), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
