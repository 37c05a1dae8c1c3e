package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	units "github.com/docker/go-units"

	"github.com/codebar-ag/docs.clouddocs.ch/internal/logging"
	"github.com/codebar-ag/docs.clouddocs.ch/internal/processor"
)

// Model is the progress view for one optimize run. It reads updates until
// the channel is closed and then quits.
type Model struct {
	updates <-chan processor.ProgressUpdate
	started time.Time
	width   int

	images      int
	unsupported int
	optimized   int
	failed      int
	skipped     int
	bytesSaved  int64

	last        string
	lastOutcome processor.Outcome
	quitting    bool
}

type doneMsg struct{}

type updateMsg processor.ProgressUpdate

func NewModel(updates <-chan processor.ProgressUpdate) Model {
	return Model{updates: updates, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.apply(processor.ProgressUpdate(msg))
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m *Model) apply(u processor.ProgressUpdate) {
	m.images += u.TotalDelta
	m.unsupported += u.UnsupportedDelta
	m.optimized += u.OptimizedDelta
	m.failed += u.FailedDelta
	m.skipped += u.SkippedDelta
	m.bytesSaved += u.BytesSavedDelta
	if u.Path != "" {
		m.last, m.lastOutcome = u.Path, u.Outcome
	}
}

// Done is the number of images attempted, optimized or failed.
func (m Model) Done() int {
	return m.optimized + m.failed
}

// Ratio is the share of queued files handled so far, skips included.
func (m Model) Ratio() float64 {
	queued := m.images + m.unsupported
	if queued == 0 {
		return 0
	}
	return min(1, float64(m.Done()+m.skipped)/float64(queued))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = max(20, min(60, m.width-10))
	}

	lines := []string{
		titleStyle.Render("optimize-images"),
		labelStyle.Render(fmt.Sprintf("Images: %d/%d", m.Done(), m.images)) +
			dimStyle.Render(fmt.Sprintf("  failed:%d skipped:%d", m.failed, m.skipped)),
		labelStyle.Render("Saved: "+units.BytesSize(float64(m.bytesSaved))) +
			dimStyle.Render("  elapsed "+time.Since(m.started).Round(time.Millisecond).String()),
		barStyle.Render(renderBar(barWidth, m.Ratio())),
	}
	if m.last != "" {
		lines = append(lines, m.lastLine())
	}
	return strings.Join(lines, "\n")
}

func (m Model) lastLine() string {
	switch m.lastOutcome {
	case processor.OutcomeOptimized:
		return okStyle.Render("✓ ") + dimStyle.Render(m.last)
	case processor.OutcomeFailed:
		return failStyle.Render("✗ ") + dimStyle.Render(m.last)
	default:
		return dimStyle.Render("- " + m.last)
	}
}

func listenForUpdates(updates <-chan processor.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := min(width, max(0, int(ratio*float64(width)+0.5)))
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(logging.ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(logging.ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(logging.ColorSuccess)
	dimStyle   = lipgloss.NewStyle().Foreground(logging.ColorDim)
	okStyle    = lipgloss.NewStyle().Foreground(logging.ColorSuccess)
	failStyle  = lipgloss.NewStyle().Foreground(logging.ColorError)
)
