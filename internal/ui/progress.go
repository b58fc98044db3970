// Package ui renders live progress of a multi-file check.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"opcheck/internal/driver"
)

const statusWidth = 10

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stateStyles = map[fileState]lipgloss.Style{
		stateQueued:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		stateLoading:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		stateDecoding: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		stateChecking: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		stateDone:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		stateFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// fileState orders the life of a file; weight gives its share of the bar.
type fileState uint8

const (
	stateQueued fileState = iota
	stateLoading
	stateDecoding
	stateChecking
	stateDone
	stateFailed
)

func (s fileState) String() string {
	return [...]string{"queued", "loading", "decoding", "checking", "done", "error"}[s]
}

func (s fileState) finished() bool { return s >= stateDone }

func (s fileState) weight() float64 {
	switch s {
	case stateLoading:
		return 0.1
	case stateDecoding:
		return 0.3
	case stateChecking:
		return 0.6
	case stateDone, stateFailed:
		return 1
	}
	return 0
}

func stateOf(ev driver.Event) (fileState, bool) {
	switch ev.Status {
	case driver.StatusQueued:
		return stateQueued, true
	case driver.StatusDone:
		return stateDone, true
	case driver.StatusError:
		return stateFailed, true
	case driver.StatusWorking:
		switch ev.Stage {
		case driver.StageLoad:
			return stateLoading, true
		case driver.StageDecode:
			return stateDecoding, true
		case driver.StageCheck:
			return stateChecking, true
		}
	}
	return stateQueued, false
}

type fileRow struct {
	path   string
	state  fileState
	cases  int
	failed int
	cached bool
}

func (r fileRow) summary() string {
	if !r.state.finished() {
		return ""
	}
	parts := []string{fmt.Sprintf("%d cases", r.cases)}
	if r.failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", r.failed))
	}
	if r.cached {
		parts = append(parts, "cached")
	}
	return strings.Join(parts, ", ")
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	byPath  map[string]int
	width   int
	closed  bool
}

type (
	eventMsg  driver.Event
	closedMsg struct{}
)

// NewProgressModel returns a Bubble Tea model listing files with their
// state. The model quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		rows:    make([]fileRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, f := range files {
		m.rows[i] = fileRow{path: f}
		m.byPath[f] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m *progressModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.waitForEvent())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(10, msg.Width-4)
		}
	case spinner.TickMsg:
		if !m.closed {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// apply records ev; events for files outside the list are ignored.
func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	i, known := m.byPath[ev.File]
	state, ok := stateOf(ev)
	if !known || !ok {
		return nil
	}
	row := &m.rows[i]
	row.state = state
	if state.finished() {
		row.cases, row.failed, row.cached = ev.Cases, ev.Failed, ev.Cached
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		sum += r.state.weight()
	}
	return sum / float64(len(m.rows))
}

func (m *progressModel) counts() (finished, failed int) {
	for _, r := range m.rows {
		if r.state.finished() {
			finished++
		}
		if r.state == stateFailed {
			failed++
		}
	}
	return finished, failed
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	finished, failed := m.counts()
	header := fmt.Sprintf("%s %d/%d", m.title, finished, len(m.rows))
	if failed > 0 {
		header += fmt.Sprintf(", %d with errors", failed)
	}
	if m.closed {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	nameWidth := max(20, m.width-statusWidth-4)
	for _, r := range m.rows {
		label := fmt.Sprintf("%*s", statusWidth, r.state)
		fmt.Fprintf(&b, "  %s %s", stateStyles[r.state].Render(label), truncate(r.path, nameWidth))
		if s := r.summary(); s != "" {
			b.WriteString(detailStyle.Render("  " + s))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if m.closed {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// truncate shortens value to width cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
