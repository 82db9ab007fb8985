package tui

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/favsoft/epdsetup/internal/discovery"
	"github.com/favsoft/epdsetup/internal/storage"
)

// ScanFunc finds displays on the network.
type ScanFunc func(ctx context.Context) ([]*discovery.Device, error)

// manualID marks a display entered by address rather than discovered.
const manualID = "manual"

type scanStartMsg struct{}
type scanCompleteMsg struct {
	devices []*discovery.Device
	err     error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual address entry
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Confirm, m.Cancel}}
}

// deviceItem wraps a Device for use with bubbles/list
type deviceItem struct {
	device *discovery.Device
}

func (d deviceItem) FilterValue() string {
	return d.device.ID + " " + d.device.IP + " " + d.device.Instance
}

func (d deviceItem) Title() string {
	if d.device.ID == manualID {
		return fmt.Sprintf("Manual: %s", d.device.IP)
	}
	return d.device.ID
}

func (d deviceItem) Description() string {
	return fmt.Sprintf("%s:%d • %s", d.device.IP, d.device.Port, statusLabel(d.device.Status))
}

func statusLabel(s storage.Status) string {
	switch s {
	case storage.CredentialsSet:
		return "Configured"
	case storage.SettingCredentials:
		return "Partly configured"
	case storage.DefaultValues:
		return "Not configured"
	default:
		return "Unknown"
	}
}

// deviceDelegate renders each display as a card
type deviceDelegate struct {
	width int
}

func (d deviceDelegate) Height() int { return 7 }

func (d deviceDelegate) Spacing() int { return 1 }

func (d deviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	di, ok := item.(deviceItem)
	if !ok {
		return
	}
	device := di.device
	selected := index == m.Index()

	var content strings.Builder
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + di.Title()))
	} else {
		content.WriteString("  " + di.Title())
	}
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("  Address: %s:%d\n", device.IP, device.Port))

	statusStyle := lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	if device.Status != storage.CredentialsSet {
		statusStyle = statusStyle.Foreground(WarningColor)
	}
	content.WriteString(fmt.Sprintf("  Status:  %s", statusStyle.Render(statusLabel(device.Status))))

	cardWidth := d.width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 2).
		MarginLeft(2).
		Width(cardWidth)
	if selected {
		card = card.BorderForeground(HighlightColor)
	}

	_, _ = fmt.Fprint(w, card.Render(content.String()))
}

// DiscoveryModel is the display discovery screen
type DiscoveryModel struct {
	Scanning   bool
	DeviceList list.Model
	Selected   bool
	Quit       bool
	Err        error

	ManualMode bool
	IPInput    textinput.Model
	InputErr   string

	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	ScanTimeout   time.Duration
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap

	scan ScanFunc
}

// NewDiscoveryModel creates a discovery screen that finds displays with
// scan. A zero timeout uses discovery.DefaultScanTimeout.
func NewDiscoveryModel(scan ScanFunc, timeout time.Duration) DiscoveryModel {
	if timeout <= 0 {
		timeout = discovery.DefaultScanTimeout
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ipInput := textinput.New()
	ipInput.Placeholder = "192.168.4.1"
	ipInput.CharLimit = 45
	ipInput.Width = 30

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	deviceList := list.New([]list.Item{}, deviceDelegate{width: MinTerminalWidth}, 0, 0)
	deviceList.Title = "Displays in setup mode"
	deviceList.SetShowStatusBar(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.Styles.Title = TitleStyle

	return DiscoveryModel{
		DeviceList:  deviceList,
		IPInput:     ipInput,
		Spinner:     s,
		ProgressBar: progressBar,
		ScanTimeout: timeout,
		Help:        help.New(),
		Keys: discoveryKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
			Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "configure")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "enter address")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
		ManualKeys: manualModeKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
		scan: scan,
	}
}

// Init starts the first scan
func (m DiscoveryModel) Init() tea.Cmd {
	return m.startScan()
}

func (m DiscoveryModel) startScan() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanDevices(m.scan, m.ScanTimeout),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		if m.Scanning {
			switch {
			case key.Matches(msg, m.Keys.Manual):
				return m.enterManualMode()
			case key.Matches(msg, m.Keys.Quit):
				m.Quit = true
			}
			return m, nil
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetDelegate(deviceDelegate{width: msg.Width})
		m.DeviceList.SetWidth(msg.Width - 4)
		m.DeviceList.SetHeight(msg.Height - 10)

	case scanStartMsg:
		m.Scanning = true
		m.Err = nil
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, 0, len(msg.devices)+1)
		// keep a manually entered display across rescans
		for _, it := range m.DeviceList.Items() {
			if di, ok := it.(deviceItem); ok && di.device.ID == manualID {
				items = append(items, it)
			}
		}
		for _, dev := range msg.devices {
			items = append(items, deviceItem{device: dev})
		}
		cmd = m.DeviceList.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.DeviceList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.DeviceList, cmd = m.DeviceList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quit = true
		return m, nil

	case key.Matches(msg, m.Keys.Enter):
		if m.DeviceList.SelectedItem() != nil {
			m.Selected = true
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		return m, m.startScan()

	case key.Matches(msg, m.Keys.Manual):
		return m.enterManualMode()
	}

	var cmd tea.Cmd
	m.DeviceList, cmd = m.DeviceList.Update(msg)
	return m, cmd
}

func (m DiscoveryModel) enterManualMode() (tea.Model, tea.Cmd) {
	m.ManualMode = true
	m.InputErr = ""
	m.IPInput.SetValue("")
	return m, m.IPInput.Focus()
}

func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.ManualKeys.Cancel):
		m.ManualMode = false
		m.IPInput.Blur()
		return m, nil

	case key.Matches(msg, m.ManualKeys.Confirm):
		device, err := manualDevice(m.IPInput.Value())
		if err != nil {
			m.InputErr = err.Error()
			return m, nil
		}
		items := append([]list.Item{deviceItem{device: device}}, m.DeviceList.Items()...)
		cmd := m.DeviceList.SetItems(items)
		m.DeviceList.Select(0)
		m.ManualMode = false
		m.Scanning = false
		m.IPInput.Blur()
		return m, cmd
	}

	var cmd tea.Cmd
	m.IPInput, cmd = m.IPInput.Update(msg)
	m.InputErr = ""
	return m, cmd
}

// manualDevice parses "ip" or "ip:port" into a display entry.
func manualDevice(addr string) (*discovery.Device, error) {
	addr = strings.TrimSpace(addr)
	host, port := addr, discovery.DefaultPort
	if h, p, err := net.SplitHostPort(addr); err == nil {
		var n int
		if _, err := fmt.Sscanf(p, "%d", &n); err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		host, port = h, n
	}
	if net.ParseIP(host) == nil {
		return nil, fmt.Errorf("%q is not an IP address", host)
	}
	return &discovery.Device{
		ID:           manualID,
		IP:           host,
		Port:         port,
		Hostname:     host,
		Status:       storage.Uninitialized,
		DiscoveredAt: time.Now(),
	}, nil
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		content = m.renderScanning(width)
		helpText = m.Help.ShortHelpView([]key.Binding{m.Keys.Manual, m.Keys.Quit})
	case len(m.DeviceList.Items()) > 0:
		content = "\n" + m.DeviceList.View()
		helpText = m.Help.View(m.Keys)
	default:
		content = m.renderEmpty()
		helpText = m.Help.ShortHelpView([]key.Binding{m.Keys.Rescan, m.Keys.Manual, m.Keys.Quit})
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	percent := float64(elapsed) / float64(m.ScanTimeout)
	if percent > 1 {
		percent = 1
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(m.Spinner.View()+" SEARCHING FOR DISPLAYS"),
		SubtitleStyle.Render("Looking for displays in setup mode on your network..."),
		"",
		m.ProgressBar.ViewAs(percent),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
		"",
	)
	return lipgloss.Place(width-4, 0, lipgloss.Center, lipgloss.Top, content)
}

func (m DiscoveryModel) renderEmpty() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
	} else {
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Bold(true).Render("⚠ No displays found on your network"))
	}
	b.WriteString("\n\n")
	b.WriteString("  Troubleshooting:\n")
	b.WriteString("    • Make sure the display is powered and in setup mode\n")
	b.WriteString("    • Fit the configuration jumper to force setup mode\n")
	b.WriteString("    • Check that this computer is on the same network\n")
	b.WriteString("    • Press 'm' to enter the display's address directly\n")
	return b.String()
}

func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("  Enter the display's address (ip or ip:port)"))
	b.WriteString("\n\n  Address: ")
	b.WriteString(m.IPInput.View())
	b.WriteString("\n")
	if m.InputErr != "" {
		b.WriteString(FieldErrorStyle.Render(m.InputErr))
		b.WriteString("\n")
	}
	return b.String()
}

// GetSelectedDevice returns the selected display, or nil.
func (m DiscoveryModel) GetSelectedDevice() *discovery.Device {
	if !m.Selected {
		return nil
	}
	if item, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
		return item.device
	}
	return nil
}

func scanDevices(scan ScanFunc, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if scan == nil {
			s := discovery.NewScanner()
			s.Timeout = timeout
			scan = s.ScanForDevices
		}
		devices, err := scan(context.Background())
		return scanCompleteMsg{devices: devices, err: err}
	}
}
