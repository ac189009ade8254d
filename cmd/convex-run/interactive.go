package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	convexmobile "github.com/get-convex/convex-mobile"
	"github.com/get-convex/convex-mobile/backend"
	"github.com/get-convex/convex-mobile/bridge"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	bridge   *bridge.Bridge
	backend  *backend.LocalBackend
	url      string
	result   string
	funcs    []demoFunction
	input    textinput.Model
	events   chan tea.Msg
	watch    *bridge.SubscriptionHandle
	updates  []string
	conn     convexmobile.ConnectionState
	selected int
	state    modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
	stateWatch
)

type callResultMsg struct {
	err    error
	result string
}

type watchUpdateMsg struct{ value string }

type watchErrorMsg struct{ message string }

type connStateMsg struct{ state convexmobile.ConnectionState }

func newInteractiveModel(url, clientID string) *interactiveModel {
	events := make(chan tea.Msg, 16)
	be := demoBackend()

	m := &interactiveModel{
		backend: be,
		url:     url,
		funcs:   demoFunctions(),
		events:  events,
		conn:    convexmobile.StateDisconnected,
		state:   stateSelectFunc,
	}
	m.bridge = bridge.New(url, clientID,
		bridge.WithConnector(be.Connector()),
		bridge.WithStateSubscriber(&eventSubscriber{events: events}),
	)
	return m
}

// eventSubscriber forwards backend callbacks into the bubbletea event loop.
type eventSubscriber struct {
	events chan<- tea.Msg
}

func (s *eventSubscriber) OnStateChange(state convexmobile.ConnectionState) {
	s.events <- connStateMsg{state: state}
}

func (s *eventSubscriber) OnUpdate(value string) {
	s.events <- watchUpdateMsg{value: value}
}

func (s *eventSubscriber) OnError(message string, errorData string) {
	if errorData != "" {
		message = message + " " + errorData
	}
	s.events <- watchErrorMsg{message: message}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.waitForEvent
}

func (m *interactiveModel) waitForEvent() tea.Msg {
	return <-m.events
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInputArgs && msg.String() == "q" {
				break
			}
			m.stopWatch()
			m.bridge.Close()
			m.backend.Close()
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				m.prepareInput()
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "w":
			if m.state == stateSelectFunc && m.funcs[m.selected].kind == "query" {
				m.startWatch()
			}

		case "esc":
			switch m.state {
			case stateInputArgs, stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			case stateWatch:
				m.stopWatch()
				m.state = stateSelectFunc
				m.updates = nil
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult

	case watchUpdateMsg:
		m.updates = append(m.updates, msg.value)
		if len(m.updates) > 10 {
			m.updates = m.updates[len(m.updates)-10:]
		}
		return m, m.waitForEvent

	case watchErrorMsg:
		m.updates = append(m.updates, errorStyle.Render(msg.message))
		return m, m.waitForEvent

	case connStateMsg:
		m.conn = msg.state
		return m, m.waitForEvent
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = `{"name": value, ...} or empty`
	ti.Prompt = "args: "
	ti.Width = 60
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) callFunction() tea.Msg {
	ctx := context.Background()

	f := m.funcs[m.selected]
	args, err := parseArgs(m.input.Value())
	if err != nil {
		return callResultMsg{err: fmt.Errorf("parse args: %w", err)}
	}

	var result string
	switch f.kind {
	case "mutation":
		result, err = m.bridge.Mutation(ctx, f.name, args)
	case "action":
		result, err = m.bridge.Action(ctx, f.name, args)
	default:
		result, err = m.bridge.Query(ctx, f.name, args)
	}
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: result}
}

// startWatch subscribes to the selected query; updates arrive through the
// events channel the Init listener is already draining.
func (m *interactiveModel) startWatch() {
	f := m.funcs[m.selected]
	handle, err := m.bridge.Subscribe(context.Background(), f.name, nil, &eventSubscriber{events: m.events})
	if err != nil {
		m.err = err
		m.state = stateShowResult
		return
	}
	m.watch = handle
	m.updates = nil
	m.state = stateWatch
}

func (m *interactiveModel) stopWatch() {
	if m.watch != nil {
		m.watch.Cancel()
		m.watch = nil
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Convex Runner"))
	b.WriteString(" ")
	b.WriteString(m.url)
	b.WriteString("  ")
	b.WriteString(kindStyle.Render(m.conn.String()))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			cursor := "  "
			line := funcStyle.Render(f.name) + " " + kindStyle.Render(f.kind)
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + f.name + " " + f.kind))
			} else {
				b.WriteString(cursor + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • w watch query • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.name)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))

	case stateWatch:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Watching %s:\n\n", funcStyle.Render(f.name)))
		if len(m.updates) == 0 {
			b.WriteString(helpStyle.Render("waiting for first update..."))
			b.WriteString("\n")
		}
		for _, u := range m.updates {
			b.WriteString(resultStyle.Render(u))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc stop watching • q quit"))
	}

	return b.String()
}

func runInteractive(url, clientID string) error {
	p := tea.NewProgram(newInteractiveModel(url, clientID), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
