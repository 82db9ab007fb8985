package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/favsoft/epdsetup/internal/deviceconfig"
	"github.com/favsoft/epdsetup/internal/discovery"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenLoading   Screen = "loading"
	ScreenForm      Screen = "form"
	ScreenApplying  Screen = "applying"
	ScreenSuccess   Screen = "success"
	ScreenFailure   Screen = "failure"
)

// Configurator is the part of the display client the wizard drives.
type Configurator interface {
	OpenForm(ctx context.Context) (deviceconfig.Credentials, error)
	CancelForm(ctx context.Context) error
	SubmitAndVerify(ctx context.Context, creds deviceconfig.Credentials, opts *deviceconfig.VerificationOptions) *deviceconfig.VerificationResult
	EnterDisplayMode(ctx context.Context) error
}

// Connector returns a Configurator for a display.
type Connector func(d *discovery.Device) Configurator

// DefaultConnector talks HTTP to the display's setup webserver.
func DefaultConnector(d *discovery.Device) Configurator {
	return deviceconfig.NewClient(d.IP, d.Port)
}

// Options configures the wizard.
type Options struct {
	Scan        ScanFunc      // nil uses mDNS discovery
	ScanTimeout time.Duration // zero uses discovery.DefaultScanTimeout
	Connect     Connector     // nil uses DefaultConnector

	// OnSaved is called after a verified save, e.g. to update the registry.
	OnSaved func(d *discovery.Device, creds deviceconfig.Credentials)
}

type formLoadedMsg struct {
	creds deviceconfig.Credentials
	err   error
}

type applyCompleteMsg struct {
	result *deviceconfig.VerificationResult
}

type displayModeMsg struct {
	err error
}

// resultKeyMap defines key bindings for the success and failure screens
type resultKeyMap struct {
	Display  key.Binding
	Edit     key.Binding
	Discover key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k resultKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Display, k.Edit, k.Discover, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k resultKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Display, k.Edit, k.Discover, k.Quit}}
}

// AppModel coordinates screen transitions
type AppModel struct {
	CurrentScreen Screen

	DiscoveryModel DiscoveryModel
	FormModel      FormModel

	SelectedDevice *discovery.Device
	Saved          *deviceconfig.VerificationResult
	DisplayMode    bool
	LastError      error

	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    resultKeyMap

	opts   Options
	client Configurator
}

// NewAppModel creates the wizard. With device set it skips discovery and
// opens that display's form directly.
func NewAppModel(opts Options, device *discovery.Device) AppModel {
	if opts.Connect == nil {
		opts.Connect = DefaultConnector
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := AppModel{
		CurrentScreen:  ScreenDiscovery,
		DiscoveryModel: NewDiscoveryModel(opts.Scan, opts.ScanTimeout),
		SelectedDevice: device,
		Spinner:        s,
		Help:           help.New(),
		Keys: resultKeyMap{
			Display:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "start display")),
			Edit:     key.NewBinding(key.WithKeys("e", "r"), key.WithHelp("e", "edit again")),
			Discover: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan again")),
			Quit:     key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
		opts: opts,
	}
	if device != nil {
		m.CurrentScreen = ScreenLoading
		m.client = opts.Connect(device)
	}
	return m
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	if m.CurrentScreen == ScreenLoading {
		return tea.Batch(m.Spinner.Tick, openForm(m.client))
	}
	return m.DiscoveryModel.Init()
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		updated, _ := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		m.FormModel.Width = msg.Width
		m.FormModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.CurrentScreen == ScreenLoading || m.CurrentScreen == ScreenApplying {
			var cmd tea.Cmd
			m.Spinner, cmd = m.Spinner.Update(msg)
			return m, cmd
		}

	case formLoadedMsg:
		if msg.err != nil {
			m.LastError = msg.err
			m.CurrentScreen = ScreenFailure
			return m, nil
		}
		m.FormModel = NewFormModel(m.SelectedDevice, msg.creds)
		m.FormModel.Width, m.FormModel.Height = m.Width, m.Height
		m.CurrentScreen = ScreenForm
		return m, m.FormModel.Init()

	case applyCompleteMsg:
		m.Saved = msg.result
		if !msg.result.Success {
			m.LastError = msg.result.Error
			m.CurrentScreen = ScreenFailure
			return m, nil
		}
		if m.opts.OnSaved != nil {
			m.opts.OnSaved(m.SelectedDevice, msg.result.Actual)
		}
		m.CurrentScreen = ScreenSuccess
		return m, nil

	case displayModeMsg:
		if msg.err != nil {
			m.LastError = msg.err
			m.CurrentScreen = ScreenFailure
			return m, nil
		}
		m.DisplayMode = true
		return m, tea.Quit
	}

	return m.updateCurrentScreen(msg)
}

func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, cmd := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		if m.DiscoveryModel.Quit {
			return m, tea.Quit
		}
		if device := m.DiscoveryModel.GetSelectedDevice(); device != nil {
			m.DiscoveryModel.Selected = false
			return m.openDevice(device)
		}
		return m, cmd

	case ScreenForm:
		updated, cmd := m.FormModel.Update(msg)
		m.FormModel = updated.(FormModel)
		if m.FormModel.Cancelled {
			cancel := cancelForm(m.client)
			scan := m.backToDiscovery()
			return m, tea.Batch(cancel, scan)
		}
		if m.FormModel.Submitted {
			m.CurrentScreen = ScreenApplying
			return m, tea.Batch(m.Spinner.Tick, submit(m.client, m.FormModel.Credentials()))
		}
		return m, cmd

	case ScreenSuccess, ScreenFailure:
		keyMsg, ok := msg.(tea.KeyMsg)
		if !ok {
			return m, nil
		}
		switch {
		case key.Matches(keyMsg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(keyMsg, m.Keys.Display) && m.CurrentScreen == ScreenSuccess:
			m.CurrentScreen = ScreenApplying
			return m, tea.Batch(m.Spinner.Tick, enterDisplay(m.client))
		case key.Matches(keyMsg, m.Keys.Edit) && m.client != nil:
			return m.openDevice(m.SelectedDevice)
		case key.Matches(keyMsg, m.Keys.Discover):
			scan := m.backToDiscovery()
			return m, scan
		}
	}
	return m, nil
}

func (m AppModel) openDevice(device *discovery.Device) (tea.Model, tea.Cmd) {
	m.SelectedDevice = device
	m.client = m.opts.Connect(device)
	m.LastError = nil
	m.CurrentScreen = ScreenLoading
	return m, tea.Batch(m.Spinner.Tick, openForm(m.client))
}

func (m *AppModel) backToDiscovery() tea.Cmd {
	m.CurrentScreen = ScreenDiscovery
	m.DiscoveryModel = NewDiscoveryModel(m.opts.Scan, m.opts.ScanTimeout)
	m.DiscoveryModel.Width, m.DiscoveryModel.Height = m.Width, m.Height
	return m.DiscoveryModel.Init()
}

func openForm(c Configurator) tea.Cmd {
	return func() tea.Msg {
		creds, err := c.OpenForm(context.Background())
		return formLoadedMsg{creds: creds, err: err}
	}
}

func cancelForm(c Configurator) tea.Cmd {
	return func() tea.Msg {
		// the display may already have gone; nothing to report
		_ = c.CancelForm(context.Background())
		return nil
	}
}

func submit(c Configurator, creds deviceconfig.Credentials) tea.Cmd {
	return func() tea.Msg {
		return applyCompleteMsg{result: c.SubmitAndVerify(context.Background(), creds, nil)}
	}
}

func enterDisplay(c Configurator) tea.Cmd {
	return func() tea.Msg {
		return displayModeMsg{err: c.EnterDisplayMode(context.Background())}
	}
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenForm:
		return m.FormModel.View()
	case ScreenLoading:
		return RenderApplicationContainer("\n  "+m.Spinner.View()+" Opening the display's setup form...", "", m.Width, m.Height)
	case ScreenApplying:
		return RenderApplicationContainer("\n  "+m.Spinner.View()+" Talking to the display...", "", m.Width, m.Height)
	case ScreenSuccess:
		return RenderApplicationContainer(m.buildSuccessContent(), m.Help.View(m.Keys), m.Width, m.Height)
	case ScreenFailure:
		return RenderApplicationContainer(m.buildFailureContent(), m.Help.ShortHelpView([]key.Binding{m.Keys.Edit, m.Keys.Discover, m.Keys.Quit}), m.Width, m.Height)
	default:
		return "Unknown screen"
	}
}

func (m AppModel) buildSuccessContent() string {
	var b strings.Builder
	b.WriteString(RenderTitle("✓ Credentials saved and verified"))
	b.WriteString("\n")
	if m.Saved != nil {
		b.WriteString(deviceconfig.FormatCredentials(m.Saved.Actual))
		b.WriteString("\n\n")
		b.WriteString(RenderSubtitle(fmt.Sprintf("  verified after %d attempt(s)", m.Saved.Attempts)))
		b.WriteString("\n\n")
	}
	b.WriteString("What would you like to do next?\n\n")
	b.WriteString(MenuItemStyle.Render("d - Leave setup and start displaying images"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("e - Edit the credentials again"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("s - Scan for another display"))
	b.WriteString("\n")
	b.WriteString(MenuItemStyle.Render("q - Exit"))
	b.WriteString("\n")
	return b.String()
}

func (m AppModel) buildFailureContent() string {
	var b strings.Builder
	b.WriteString(RenderTitle("✗ Configuration failed"))
	b.WriteString("\n")
	if m.LastError != nil {
		b.WriteString(RenderError(deviceconfig.GetShortErrorMessage(m.LastError)))
		b.WriteString("\n\n")
		b.WriteString("  " + m.LastError.Error())
		b.WriteString("\n\n")
		b.WriteString(deviceconfig.GetTroubleshootingHint(m.LastError))
		b.WriteString("\n\n")
	}
	if m.Saved != nil && len(m.Saved.Mismatches) > 0 {
		b.WriteString("The display stored different values:\n")
		for _, mm := range m.Saved.Mismatches {
			b.WriteString("  • " + mm + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
