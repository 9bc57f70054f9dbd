package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/gridsearch/store"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	solvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const recentRows = 10

type strategyStats struct {
	runs     int
	solved   int
	expanded int64
}

type model struct {
	total     int
	done      int
	solved    int
	startTime time.Time
	finished  bool

	byStrategy map[string]*strategyStats
	recent     []string
	updates    <-chan store.RunRow
}

func initialModel(total int, updates <-chan store.RunRow) model {
	return model{
		total:      total,
		startTime:  time.Now(),
		byStrategy: make(map[string]*strategyStats),
		updates:    updates,
	}
}

type TickMsg time.Time

type doneMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForUpdate(updates <-chan store.RunRow) tea.Cmd {
	return func() tea.Msg {
		row, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return row
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		if m.finished {
			return m, nil
		}
		return m, tickCmd()
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	case store.RunRow:
		m.done++
		key := msg.Strategy + "/" + msg.Heuristic
		st, ok := m.byStrategy[key]
		if !ok {
			st = &strategyStats{}
			m.byStrategy[key] = st
		}
		st.runs++
		st.expanded += msg.Expanded
		status := failedStyle.Render(msg.Status)
		if msg.Solved {
			m.solved++
			st.solved++
			status = solvedStyle.Render(fmt.Sprintf("cost %.0f", msg.Cost))
		}
		line := fmt.Sprintf("%-16s %-8s %-6s %-14s %8d exp  %s", msg.Level, msg.Problem, msg.Strategy, msg.Heuristic, msg.Expanded, status)
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > recentRows {
			m.recent = m.recent[:recentRows]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	perSec := 0.0
	if duration.Seconds() >= 1 {
		perSec = float64(m.done) / duration.Seconds()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("gridsearch bench") + "\n\n")
	fmt.Fprintf(&b, "%s %d/%d\n", labelStyle.Render("Runs:    "), m.done, m.total)
	fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("Solved:  "), m.solved)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Duration:"), duration.Round(time.Second))
	fmt.Fprintf(&b, "%s %.2f\n\n", labelStyle.Render("Runs/Sec:"), perSec)

	keys := make([]string, 0, len(m.byStrategy))
	for k := range m.byStrategy {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var table strings.Builder
	fmt.Fprintf(&table, "%-22s %6s %6s %12s", "strategy/heuristic", "runs", "solved", "avg expanded")
	for _, k := range keys {
		st := m.byStrategy[k]
		fmt.Fprintf(&table, "\n%-22s %6d %6d %12.1f", k, st.runs, st.solved, float64(st.expanded)/float64(st.runs))
	}
	b.WriteString(boxStyle.Render(table.String()) + "\n\n")

	b.WriteString("Recent Runs:\n")
	for _, line := range m.recent {
		b.WriteString(line + "\n")
	}
	if m.finished {
		b.WriteString("\nAll runs finished.\n")
	} else {
		b.WriteString("\nPress q to quit.\n")
	}
	return b.String()
}
