// Package tui implements the full-screen terminal calculator: an
// expression prompt, a scrollable evaluation log and a session metrics
// panel, built on bubbletea.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/bigcalc/internal/cli"
	"github.com/agbru/bigcalc/internal/config"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/metrics"
	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/sysmon"
)

// Layout constants for the calculator screen.
const (
	headerHeight          = 1
	inputHeight           = 3
	minBodyHeight         = 4
	LogsPanelWidthPercent = 65
)

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// bodyHeight returns the height left for the log and metrics panels once
// the header, input and a footer of footerHeight lines are placed.
func (l LayoutManager) bodyHeight(footerHeight int) int {
	return max(l.height-headerHeight-inputHeight-footerHeight, minBodyHeight)
}

// logsWidth returns the width allocated to the log panel.
func (l LayoutManager) logsWidth() int {
	return l.width * LogsPanelWidthPercent / 100
}

// metricsWidth returns the width allocated to the metrics panel.
func (l LayoutManager) metricsWidth() int {
	return l.width - l.logsWidth()
}

// Model is the root bubbletea model of the calculator.
type Model struct {
	header  HeaderModel
	log     LogModel
	metrics MetricsModel
	input   textinput.Model
	help    help.Model
	keymap  KeyMap

	LayoutManager

	ctx       context.Context
	evaluator orchestration.Evaluator
	memory    *metrics.MemoryCollector
	remainder bool
	busy      bool
	last      string
	exitCode  int
}

// NewModel creates a new calculator model evaluating with ev.
func NewModel(ctx context.Context, ev orchestration.Evaluator, cfg config.AppConfig, version string) Model {
	input := textinput.New()
	input.Prompt = "calc> "
	input.PromptStyle = promptStyle
	input.Placeholder = "<value> <op> <value>"
	input.Focus()

	return Model{
		header:    NewHeaderModel(version),
		log:       NewLogModel(),
		metrics:   NewMetricsModel(),
		input:     input,
		help:      help.New(),
		keymap:    DefaultKeyMap(),
		ctx:       ctx,
		evaluator: ev,
		memory:    metrics.NewMemoryCollector(),
		remainder: cfg.Remainder,
		exitCode:  apperrors.ExitSuccess,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		sampleMemoryCmd(m.memory),
		sampleHostCmd(m.ctx),
		watchContextCmd(m.ctx),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case EvaluationMsg:
		m.busy = false
		m.header.SetBusy(false)
		if m.ctx.Err() != nil && errors.Is(msg.Err, context.Canceled) {
			return m, nil
		}
		entry := LogEntry{At: msg.At, Line: msg.Line, Err: msg.Err, Duration: msg.Evaluation.Duration}
		if msg.Err == nil {
			entry.Result = cli.FormatResult(msg.Evaluation, m.remainder)
		}
		m.log.Add(entry)
		m.metrics.RecordEvaluation(msg.Evaluation.Duration, msg.Err != nil)
		return m, nil

	case TickMsg:
		m.header.Tick(time.Time(msg))
		return m, tea.Batch(sampleMemoryCmd(m.memory), sampleHostCmd(m.ctx), tickCmd())

	case MemoryMsg:
		m.metrics.UpdateMemory(metrics.MemorySnapshot(msg))
		return m, nil

	case HostLoadMsg:
		m.metrics.UpdateHost(sysmon.Load(msg))
		return m, nil

	case ContextCancelledMsg:
		m.exitCode = apperrors.ExitCodeFor(msg.Err)
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layoutPanels()
		return m, nil

	case key.Matches(msg, m.keymap.Evaluate):
		line := strings.TrimSpace(m.input.Value())
		if line == "" || m.busy {
			return m, nil
		}
		m.busy = true
		m.header.SetBusy(true)
		m.last = line
		m.input.Reset()
		return m, evaluateCmd(m.ctx, m.evaluator, line)

	case key.Matches(msg, m.keymap.Recall):
		if m.last != "" {
			m.input.SetValue(m.last)
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keymap.Clear):
		m.log.Reset()
		return m, nil

	case key.Matches(msg, m.keymap.Up), key.Matches(msg, m.keymap.Down),
		key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
		return m, m.log.Update(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the whole screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.log.View(), m.metrics.View())
	input := panelStyle.Width(max(m.width-2, 0)).Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, input, m.help.View(m.keymap))
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.help.Width = m.width
	m.input.Width = max(m.width-4-lipgloss.Width(m.input.Prompt), 1)

	body := m.bodyHeight(lipgloss.Height(m.help.View(m.keymap)))
	m.log.SetSize(m.logsWidth(), body)
	m.metrics.SetSize(m.metricsWidth(), body)
}

// ExitCode returns the process exit status for the session.
func (m Model) ExitCode() int {
	return m.exitCode
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code.
func Run(ctx context.Context, ev orchestration.Evaluator, cfg config.AppConfig, version string) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(ctx, ev, cfg, version), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		return m.exitCode
	}
	return apperrors.ExitSuccess
}
