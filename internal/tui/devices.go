// SPDX-License-Identifier: MIT
// Package tui holds the terminal screens: the live tuner and the input
// device picker.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"gtuner/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
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
)

// pickerRates are the capture rates offered once an input is chosen.
var pickerRates = []float64{44100, 48000, 88200, 96000}

type pickerStep int

const (
	stepInput pickerStep = iota
	stepRate
)

// Selection is the input chosen in the device picker.
type Selection struct {
	Device     audio.Device
	SampleRate float64
}

// DeviceListModel picks an input device and then a capture rate.
type DeviceListModel struct {
	inputs  []audio.Device
	table   table.Model
	step    pickerStep
	rateIdx int
	chosen  *Selection
	err     error
}

// listDevices is replaceable in tests.
var listDevices = audio.GetDevices

type devicesMsg struct{ inputs []audio.Device }

type errMsg struct{ err error }

// fetchDevices loads the devices that can record.
func fetchDevices() tea.Msg {
	devices, err := listDevices()
	if err != nil {
		return errMsg{err}
	}
	var inputs []audio.Device
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			inputs = append(inputs, d)
		}
	}
	return devicesMsg{inputs}
}

// NewDeviceListModel returns an empty picker; devices load on Init.
func NewDeviceListModel() DeviceListModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 4},
			{Title: "Input", Width: 36},
			{Title: "Ch", Width: 4},
			{Title: "Rate", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Selected = highlightStyle
	t.SetStyles(styles)
	return DeviceListModel{table: t}
}

func (m DeviceListModel) Init() tea.Cmd {
	return fetchDevices
}

var (
	quitKeys    = key.NewBinding(key.WithKeys("q", "ctrl+c"))
	confirmKeys = key.NewBinding(key.WithKeys("enter"))
	backKeys    = key.NewBinding(key.WithKeys("esc"))
	upKeys      = key.NewBinding(key.WithKeys("up", "k"))
	downKeys    = key.NewBinding(key.WithKeys("down", "j"))
)

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if h := msg.Height - 6; h > 2 {
			m.table.SetHeight(h)
		}
		return m, nil

	case devicesMsg:
		m.inputs = msg.inputs
		rows := make([]table.Row, len(m.inputs))
		for i, d := range m.inputs {
			rows[i] = table.Row{
				strconv.Itoa(d.ID),
				d.Name,
				strconv.Itoa(d.MaxInputChannels),
				fmt.Sprintf("%.0f", d.DefaultSampleRate),
			}
		}
		m.table.SetRows(rows)
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, quitKeys) {
			return m, tea.Quit
		}
		if m.step == stepRate {
			return m.updateRate(msg)
		}
		if key.Matches(msg, confirmKeys) && len(m.inputs) > 0 {
			m.step = stepRate
			m.rateIdx = rateIndex(m.inputs[m.table.Cursor()].DefaultSampleRate)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m DeviceListModel) updateRate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, backKeys):
		m.step = stepInput
	case key.Matches(msg, upKeys):
		if m.rateIdx > 0 {
			m.rateIdx--
		}
	case key.Matches(msg, downKeys):
		if m.rateIdx < len(pickerRates)-1 {
			m.rateIdx++
		}
	case key.Matches(msg, confirmKeys):
		m.chosen = &Selection{
			Device:     m.inputs[m.table.Cursor()],
			SampleRate: pickerRates[m.rateIdx],
		}
		return m, tea.Quit
	}
	return m, nil
}

// rateIndex finds rate among pickerRates, falling back to the first.
func rateIndex(rate float64) int {
	for i, r := range pickerRates {
		if r == rate {
			return i
		}
	}
	return 0
}

func (m DeviceListModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}

	var sb strings.Builder
	if m.step == stepInput {
		sb.WriteString(titleStyle.Render("Input Devices") + "\n\n")
		if len(m.inputs) == 0 {
			sb.WriteString("No input devices found.\n")
		} else {
			sb.WriteString(m.table.View() + "\n")
		}
		sb.WriteString("\n" + infoStyle.Render("↑/↓: Navigate • Enter: Choose • q: Quit"))
		return sb.String()
	}

	d := m.inputs[m.table.Cursor()]
	sb.WriteString(titleStyle.Render("Sample Rate") + "\n\n")
	fmt.Fprintf(&sb, "%s\n\n", d.Name)
	for i, rate := range pickerRates {
		line := fmt.Sprintf("    %.0f Hz", rate)
		if i == m.rateIdx {
			line = highlightStyle.Render(fmt.Sprintf("  ▶ %.0f Hz", rate))
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + infoStyle.Render("↑/↓: Change • Enter: Tune • Esc: Back • q: Quit"))
	return sb.String()
}

// Selection returns the confirmed choice, if any.
func (m DeviceListModel) Selection() (Selection, bool) {
	if m.chosen == nil {
		return Selection{}, false
	}
	return *m.chosen, true
}

// PickDevice runs the picker. It reports false when the user quit without
// choosing.
func PickDevice() (Selection, bool, error) {
	final, err := tea.NewProgram(NewDeviceListModel(), tea.WithAltScreen()).Run()
	if err != nil {
		return Selection{}, false, err
	}
	sel, ok := final.(DeviceListModel).Selection()
	return sel, ok, nil
}
