package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/favsoft/epdsetup/internal/credentials"
	"github.com/favsoft/epdsetup/internal/deviceconfig"
	"github.com/favsoft/epdsetup/internal/discovery"
)

// submitIndex is the focus position of the Save button, after the inputs.
var submitIndex = len(credentials.Fields)

// formKeyMap defines key bindings for the credentials form
type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Reveal key.Binding
	Cancel key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Reveal, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Submit}, {k.Reveal, k.Cancel}}
}

// FormModel edits the three credential fields with live validation.
type FormModel struct {
	Device   *discovery.Device
	Inputs   []textinput.Model // in credentials.Fields order
	Errors   []error
	Touched  []bool
	Focus    int
	Original deviceconfig.Credentials

	Submitted bool
	Cancelled bool
	Revealed  bool

	Width  int
	Height int
	Help   help.Model
	Keys   formKeyMap
}

// NewFormModel builds a form prefilled with current, the values the display
// showed when its form was opened.
func NewFormModel(device *discovery.Device, current deviceconfig.Credentials) FormModel {
	m := FormModel{
		Device:   device,
		Inputs:   make([]textinput.Model, len(credentials.Fields)),
		Errors:   make([]error, len(credentials.Fields)),
		Touched:  make([]bool, len(credentials.Fields)),
		Original: current,
		Help:     help.New(),
		Keys: formKeyMap{
			Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab/↓", "next")),
			Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab/↑", "previous")),
			Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next / save")),
			Reveal: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "show password")),
			Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		},
	}

	for i, field := range credentials.Fields {
		in := textinput.New()
		in.Prompt = "  "
		in.Width = 48
		switch field {
		case credentials.FieldSSID:
			in.Placeholder = "HomeNetwork"
			in.CharLimit = credentials.MaxSSIDLength
		case credentials.FieldPassword:
			in.Placeholder = "at least 8 characters"
			in.CharLimit = credentials.MaxPasswordLength
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		case credentials.FieldServerURL:
			in.Placeholder = "http://images.example.com/frame.bmp"
			in.CharLimit = credentials.MaxServerURLLength
		}
		value := current.Get(field)
		in.SetValue(value)
		m.Inputs[i] = in
		if value != "" {
			m.Touched[i] = true
			m.Errors[i] = credentials.Check(field, value)
		}
	}
	m.Inputs[0].Focus()
	return m
}

// Init implements tea.Model
func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Cancel):
			m.Cancelled = true
			return m, nil

		case key.Matches(msg, m.Keys.Next):
			return m.setFocus(m.Focus + 1)

		case key.Matches(msg, m.Keys.Prev):
			return m.setFocus(m.Focus - 1)

		case key.Matches(msg, m.Keys.Reveal):
			m.Revealed = !m.Revealed
			for i, field := range credentials.Fields {
				if field == credentials.FieldPassword {
					if m.Revealed {
						m.Inputs[i].EchoMode = textinput.EchoNormal
					} else {
						m.Inputs[i].EchoMode = textinput.EchoPassword
					}
				}
			}
			return m, nil

		case key.Matches(msg, m.Keys.Submit):
			if m.Focus < submitIndex {
				return m.setFocus(m.Focus + 1)
			}
			m.validateAll()
			if m.Valid() {
				m.Submitted = true
				return m, nil
			}
			// jump to the first field in error
			for i, err := range m.Errors {
				if err != nil {
					return m.setFocus(i)
				}
			}
			return m, nil
		}
	}

	if m.Focus >= submitIndex {
		return m, nil
	}

	var cmd tea.Cmd
	before := m.Inputs[m.Focus].Value()
	m.Inputs[m.Focus], cmd = m.Inputs[m.Focus].Update(msg)
	if after := m.Inputs[m.Focus].Value(); after != before {
		m.Touched[m.Focus] = true
		m.Errors[m.Focus] = credentials.Check(credentials.Fields[m.Focus], after)
	}
	return m, cmd
}

func (m FormModel) setFocus(i int) (tea.Model, tea.Cmd) {
	n := submitIndex + 1
	i = ((i % n) + n) % n

	if m.Focus < submitIndex {
		m.Inputs[m.Focus].Blur()
	}
	m.Focus = i
	if i < submitIndex {
		return m, m.Inputs[i].Focus()
	}
	return m, nil
}

func (m *FormModel) validateAll() {
	for i, field := range credentials.Fields {
		m.Touched[i] = true
		m.Errors[i] = credentials.Check(field, m.Inputs[i].Value())
	}
}

// Valid reports whether every field passes validation.
func (m FormModel) Valid() bool {
	for i, field := range credentials.Fields {
		if credentials.Check(field, m.Inputs[i].Value()) != nil {
			return false
		}
	}
	return true
}

// Credentials returns the values currently in the form.
func (m FormModel) Credentials() deviceconfig.Credentials {
	var c deviceconfig.Credentials
	for i, field := range credentials.Fields {
		v := m.Inputs[i].Value()
		switch field {
		case credentials.FieldSSID:
			c.SSID = v
		case credentials.FieldPassword:
			c.Password = v
		case credentials.FieldServerURL:
			c.ServerURL = v
		}
	}
	return c
}

// Changed reports whether the form differs from the display's values.
func (m FormModel) Changed() bool {
	return m.Credentials() != m.Original
}

// View renders the form
func (m FormModel) View() string {
	var b strings.Builder

	title := "Configure display"
	if m.Device != nil && m.Device.ID != manualID {
		title += " " + m.Device.ID
	}
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")

	for i, field := range credentials.Fields {
		label := field.String()
		if field == credentials.FieldServerURL {
			label += " (optional)"
		}
		if i == m.Focus {
			b.WriteString(FocusedLabelStyle.Render("▸ " + label))
		} else {
			b.WriteString(BlurredLabelStyle.Render("  " + label))
		}
		if m.Touched[i] && m.Errors[i] == nil && m.Inputs[i].Value() != "" {
			b.WriteString(" " + FieldOKStyle.Render("✓"))
		}
		b.WriteString("\n")
		b.WriteString(m.Inputs[i].View())
		b.WriteString("\n")
		if m.Touched[i] && m.Errors[i] != nil {
			b.WriteString(FieldErrorStyle.Render(m.Errors[i].Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	button := ButtonStyle
	if m.Focus == submitIndex {
		button = FocusedButtonStyle
	}
	b.WriteString("  ")
	b.WriteString(button.Render("Save to display"))
	if !m.Changed() {
		b.WriteString("  " + RenderSubtitle("no changes"))
	}
	b.WriteString("\n")

	return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
}
