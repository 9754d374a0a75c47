// SPDX-License-Identifier: MIT
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"gtuner/internal/display"
	"gtuner/internal/tuning"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	flatStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A030")).Bold(true)
	sharpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E05050")).Bold(true)
	inTuneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	stringStyle = lipgloss.NewStyle().Padding(0, 1)
	targetStyle = stringStyle.
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Bold(true)
)

// needleHalfWidth is the number of cells on each side of the centre mark.
const needleHalfWidth = 20

// Controller starts and stops the tuner behind the view.
type Controller interface {
	Start(ctx context.Context) error
	Stop() error
	Running() bool
}

// Messages delivered by Sink.
type (
	resetMsg   struct{}
	noPitchMsg struct{ text string }
	resultMsg  struct{ reading display.Reading }

	startedMsg struct{ err error }
	stoppedMsg struct{ err error }
)

// Sink forwards display events into a running program. Events before
// Attach are dropped.
type Sink struct {
	p atomic.Pointer[tea.Program]
}

var _ display.Sink = (*Sink)(nil)

// Attach sets the program that receives events.
func (s *Sink) Attach(p *tea.Program) {
	s.p.Store(p)
}

func (s *Sink) send(msg tea.Msg) {
	if p := s.p.Load(); p != nil {
		p.Send(msg)
	}
}

func (s *Sink) Reset()                   { s.send(resetMsg{}) }
func (s *Sink) NoPitch(msg string)       { s.send(noPitchMsg{msg}) }
func (s *Sink) Result(r display.Reading) { s.send(resultMsg{r}) }

type tunerKeys struct {
	Toggle key.Binding
	Quit   key.Binding
}

func (k tunerKeys) ShortHelp() []key.Binding  { return []key.Binding{k.Toggle, k.Quit} }
func (k tunerKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var defaultTunerKeys = tunerKeys{
	Toggle: key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("space", "start/stop")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// TunerModel is the terminal tuner display.
type TunerModel struct {
	ctx    context.Context
	ctrl   Controller
	source string

	running bool
	hint    string
	reading *display.Reading
	err     error

	keys    tunerKeys
	help    help.Model
	spinner spinner.Model
}

// NewTunerModel returns a model driving ctrl. source names the input in
// the title bar. The tuner is started as soon as the program runs.
func NewTunerModel(ctx context.Context, ctrl Controller, source string) TunerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = inTuneStyle
	return TunerModel{
		ctx:     ctx,
		ctrl:    ctrl,
		source:  source,
		hint:    display.MsgIdle,
		keys:    defaultTunerKeys,
		help:    help.New(),
		spinner: sp,
	}
}

func (m TunerModel) Init() tea.Cmd {
	return tea.Batch(m.startCmd(), m.spinner.Tick)
}

func (m TunerModel) startCmd() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{m.ctrl.Start(m.ctx)}
	}
}

func (m TunerModel) stopCmd() tea.Cmd {
	return func() tea.Msg {
		return stoppedMsg{m.ctrl.Stop()}
	}
}

// Update handles input and tuner events. Start and Stop run as commands
// because Stop waits for the tick that may be delivering an event to us.
func (m TunerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			if m.running {
				return m, m.stopCmd()
			}
			return m, m.startCmd()
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case startedMsg:
		m.err = msg.err
		m.running = msg.err == nil && m.ctrl.Running()

	case stoppedMsg:
		m.err = msg.err
		m.running = m.ctrl.Running()

	case resetMsg:
		m.reading = nil
		m.hint = display.MsgIdle

	case noPitchMsg:
		m.reading = nil
		m.hint = msg.text

	case resultMsg:
		r := msg.reading
		m.reading = &r
		m.hint = r.Hint

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m TunerModel) View() string {
	var sb strings.Builder

	status := dimStyle.Render("○ stopped")
	if m.running {
		status = m.spinner.View() + " listening"
	}
	fmt.Fprintf(&sb, "%s  %s  %s\n\n", titleStyle.Render("gtuner"), status, dimStyle.Render(m.source))

	target := ""
	if m.reading != nil {
		target = m.reading.Target.ID
	}
	sb.WriteString("  " + renderStrings(target) + "\n\n")

	needle := 0.0
	if m.reading != nil {
		needle = m.reading.Needle
	}
	sb.WriteString(renderNeedle(needle) + "\n\n")

	detected, freq := display.NoLabel, display.NoLabel+" Hz"
	targetLabel, targetFreq := display.NoLabel, display.NoLabel+" Hz"
	if r := m.reading; r != nil {
		detected = r.Detected
		freq = fmt.Sprintf("%.2f Hz", r.Frequency)
		targetLabel = r.Target.Label
		targetFreq = fmt.Sprintf("%.2f Hz", r.Target.Frequency)
	}
	fmt.Fprintf(&sb, "  Detected  %-4s %s\n", detected, freq)
	fmt.Fprintf(&sb, "  Target    %-4s %s\n\n", targetLabel, targetFreq)

	sb.WriteString("  " + m.renderHint() + "\n")
	if m.err != nil {
		sb.WriteString("  " + sharpStyle.Render(m.err.Error()) + "\n")
	}

	sb.WriteString("\n" + m.help.View(m.keys))
	return sb.String()
}

func (m TunerModel) renderHint() string {
	if m.reading == nil {
		return infoStyle.Render(m.hint)
	}
	switch m.reading.Direction {
	case display.Flat:
		return flatStyle.Render(m.hint)
	case display.Sharp:
		return sharpStyle.Render(m.hint)
	default:
		return inTuneStyle.Render(m.hint)
	}
}

// renderStrings shows the six strings with the target highlighted.
func renderStrings(targetID string) string {
	parts := make([]string, 0, 6)
	for _, s := range tuning.Standard() {
		if s.ID == targetID {
			parts = append(parts, targetStyle.Render(s.Label))
		} else {
			parts = append(parts, stringStyle.Render(s.Label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderNeedle draws the scale and a pointer at angle degrees.
func renderNeedle(angle float64) string {
	pos := needlePosition(angle)

	scale := []rune(strings.Repeat("─", 2*needleHalfWidth+1))
	scale[needleHalfWidth] = '┼'

	pointer := []rune(strings.Repeat(" ", 2*needleHalfWidth+1))
	pointer[pos] = '▲'

	return fmt.Sprintf("  -50¢ %s +50¢\n       %s", string(scale), string(pointer))
}

// needlePosition maps ±MaxNeedleAngle onto the cells of the scale.
func needlePosition(angle float64) int {
	a := max(-display.MaxNeedleAngle, min(display.MaxNeedleAngle, angle))
	return needleHalfWidth + int(math.Round(a/display.MaxNeedleAngle*needleHalfWidth))
}
