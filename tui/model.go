package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/robz/midi2performance/convert"
)

const failureTail = 5

type Model struct {
	Total int

	results  <-chan convert.Result
	done     int
	failed   int
	tokens   int
	failures []string // most recent first
	quitting bool
	finished bool
}

type ResultMsg convert.Result

type DoneMsg struct{}

func NewModel(total int, results <-chan convert.Result) Model {
	return Model{
		Total:   total,
		results: results,
	}
}

func listenForResults(results <-chan convert.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return DoneMsg{}
		}
		return ResultMsg(res)
	}
}

func (m Model) Init() tea.Cmd {
	return listenForResults(m.results)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case ResultMsg:
		m.done++
		if msg.Err != nil {
			m.failed++
			m.failures = append([]string{fmt.Sprintf("%s: %v", msg.Input, msg.Err)}, m.failures...)
			if len(m.failures) > failureTail {
				m.failures = m.failures[:failureTail]
			}
		} else {
			m.tokens += msg.Tokens
		}
		return m, listenForResults(m.results)

	case DoneMsg:
		m.finished = true
		return m, tea.Quit
	}

	return m, nil
}

// Failed reports how many files failed, for the exit status after the
// program returns.
func (m Model) Failed() int {
	return m.failed
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	header := headerStyle.Render(fmt.Sprintf("midi2performance  %d/%d files  %d tokens", m.done, m.Total, m.tokens))

	// Progress bar
	const width = 40
	filled := 0
	if m.Total > 0 {
		filled = width * m.done / m.Total
	}
	bar := barStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(bar)
	out.WriteString("\n")

	if m.failed > 0 {
		out.WriteString("\n")
		out.WriteString(failStyle.Render(fmt.Sprintf("%d failed", m.failed)))
		out.WriteString("\n")
		for _, f := range m.failures {
			out.WriteString(dimStyle.Render("  " + f))
			out.WriteString("\n")
		}
	}

	out.WriteString("\n")
	if m.finished {
		out.WriteString(dimStyle.Render("done"))
	} else {
		out.WriteString(dimStyle.Render("q:quit"))
	}

	return out.String()
}
