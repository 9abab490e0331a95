package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const callbackLogLines = 8

type stepperModel struct {
	run     *runState
	jump    textinput.Model
	cycle   uint64
	last    *cycleResult
	stopped bool
	jumping bool
}

func runInteractive(run *runState) error {
	jump := textinput.New()
	jump.Placeholder = "cycle"
	jump.CharLimit = 12
	jump.Width = 14

	m := stepperModel{run: run, jump: jump}
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m stepperModel) Init() tea.Cmd {
	return nil
}

func (m stepperModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.jumping {
		switch keyMsg.String() {
		case "enter":
			if cycle, err := strconv.ParseUint(m.jump.Value(), 10, 64); err == nil && cycle < m.run.steps {
				m.cycle = cycle
			}
			m.jumping = false
			m.jump.Blur()
			m.jump.SetValue("")
			return m, nil
		case "esc":
			m.jumping = false
			m.jump.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.jump, cmd = m.jump.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", " ":
		m.advance(1)
	case "r":
		m.advance(m.run.steps)
	case "g":
		m.jumping = true
		m.jump.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *stepperModel) advance(n uint64) {
	for ; n > 0 && m.cycle < m.run.steps && !m.stopped; n-- {
		res := m.run.runCycle(m.cycle)
		m.last = &res
		if res.failed {
			m.stopped = true
			return
		}
		m.cycle++
	}
}

func (m stepperModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("circuit stepper — " + m.run.op))
	b.WriteString("\n\n")
	b.WriteString(cycleStyle.Render(fmt.Sprintf("cycle %d / %d", m.cycle, m.run.steps)))
	b.WriteString("\n")

	if m.last != nil {
		if m.last.failed {
			b.WriteString(errorStyle.Render(fmt.Sprintf("FAILED code=%d %s", m.last.code, m.last.diag)))
		} else {
			b.WriteString(resultStyle.Render("result " + m.last.text))
		}
		b.WriteString("\n")
	}

	if n := len(m.run.log); n > 0 {
		b.WriteString("\ncallbacks:\n")
		start := 0
		if n > callbackLogLines {
			start = n - callbackLogLines
		}
		for _, line := range m.run.log[start:] {
			b.WriteString(logStyle.Render("  " + line))
			b.WriteString("\n")
		}
	}

	if m.jumping {
		b.WriteString("\njump to ")
		b.WriteString(m.jump.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("n: next  r: run  g: goto  q: quit"))
	b.WriteString("\n")
	return b.String()
}
