package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/favsoft/epdsetup/internal/deviceconfig"
	"github.com/favsoft/epdsetup/internal/discovery"
)

type fakeDisplay struct {
	current   deviceconfig.Credentials
	openErr   error
	saveErr   error
	modeErr   error
	saved     []deviceconfig.Credentials
	cancelled int
}

func (f *fakeDisplay) OpenForm(ctx context.Context) (deviceconfig.Credentials, error) {
	return f.current, f.openErr
}

func (f *fakeDisplay) CancelForm(ctx context.Context) error {
	f.cancelled++
	return nil
}

func (f *fakeDisplay) SubmitAndVerify(ctx context.Context, creds deviceconfig.Credentials, opts *deviceconfig.VerificationOptions) *deviceconfig.VerificationResult {
	if f.saveErr != nil {
		return &deviceconfig.VerificationResult{Attempts: 1, Error: f.saveErr}
	}
	f.saved = append(f.saved, creds)
	f.current = creds
	return &deviceconfig.VerificationResult{Success: true, Attempts: 1, Actual: creds}
}

func (f *fakeDisplay) EnterDisplayMode(ctx context.Context) error {
	return f.modeErr
}

// run feeds msg to the model and executes returned commands until the
// model settles. Commands that block, such as cursor blink timers, are
// dropped.
func run(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(AppModel)
	for _, next := range collect(cmd) {
		m = run(t, m, next)
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(50 * time.Millisecond):
		return nil
	}

	var out []tea.Msg
	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
	case formLoadedMsg, applyCompleteMsg, displayModeMsg:
		out = append(out, msg)
	}
	return out
}

func newTestApp(fake *fakeDisplay, onSaved func(*discovery.Device, deviceconfig.Credentials)) AppModel {
	device := &discovery.Device{ID: "EPD-1A2B3C4D", IP: "10.0.0.7", Port: 80}
	return NewAppModel(Options{
		Connect: func(*discovery.Device) Configurator { return fake },
		OnSaved: onSaved,
	}, device)
}

func TestAppModel_SaveFlow(t *testing.T) {
	fake := &fakeDisplay{current: deviceconfig.Credentials{SSID: "HomeWifi"}}
	var registered deviceconfig.Credentials
	m := newTestApp(fake, func(d *discovery.Device, c deviceconfig.Credentials) { registered = c })

	if m.CurrentScreen != ScreenLoading {
		t.Fatalf("CurrentScreen = %s, want %s", m.CurrentScreen, ScreenLoading)
	}
	m = run(t, m, openForm(fake)())
	if m.CurrentScreen != ScreenForm {
		t.Fatalf("CurrentScreen = %s after loading, want %s", m.CurrentScreen, ScreenForm)
	}
	if got := m.FormModel.Credentials().SSID; got != "HomeWifi" {
		t.Errorf("form SSID = %q, want prefilled HomeWifi", got)
	}

	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("correcthorse")})
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.CurrentScreen != ScreenSuccess {
		t.Fatalf("CurrentScreen = %s, want %s (err %v)", m.CurrentScreen, ScreenSuccess, m.LastError)
	}
	want := deviceconfig.Credentials{SSID: "HomeWifi", Password: "correcthorse"}
	if len(fake.saved) != 1 || fake.saved[0] != want {
		t.Errorf("saved = %+v, want [%+v]", fake.saved, want)
	}
	if registered != want {
		t.Errorf("OnSaved got %+v, want %+v", registered, want)
	}
	if !strings.Contains(m.View(), "Credentials saved and verified") {
		t.Error("success screen not rendered")
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m = updated.(AppModel)
	if cmd == nil {
		t.Fatal("no command to enter display mode")
	}
	for _, msg := range collect(cmd) {
		updated, _ = m.Update(msg)
		m = updated.(AppModel)
	}
	if !m.DisplayMode {
		t.Error("DisplayMode = false after a successful switch")
	}
}

func TestAppModel_Failures(t *testing.T) {
	t.Run("form cannot be opened", func(t *testing.T) {
		fake := &fakeDisplay{openErr: deviceconfig.NewNetworkError("connection refused", errors.New("refused"))}
		m := newTestApp(fake, nil)
		m = run(t, m, openForm(fake)())
		if m.CurrentScreen != ScreenFailure {
			t.Fatalf("CurrentScreen = %s, want %s", m.CurrentScreen, ScreenFailure)
		}
		if !strings.Contains(m.View(), "Configuration failed") {
			t.Error("failure screen not rendered")
		}
	})

	t.Run("save refused", func(t *testing.T) {
		fake := &fakeDisplay{
			current: deviceconfig.Credentials{SSID: "HomeWifi", Password: "correcthorse"},
			saveErr: deviceconfig.NewPageError("Unable to save"),
		}
		called := false
		m := newTestApp(fake, func(*discovery.Device, deviceconfig.Credentials) { called = true })
		m = run(t, m, openForm(fake)())
		m = run(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
		m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.CurrentScreen != ScreenFailure {
			t.Fatalf("CurrentScreen = %s, want %s", m.CurrentScreen, ScreenFailure)
		}
		if called {
			t.Error("OnSaved called for a failed save")
		}

		// edit again reopens the form
		m = run(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
		if m.CurrentScreen != ScreenForm {
			t.Errorf("CurrentScreen = %s after edit, want %s", m.CurrentScreen, ScreenForm)
		}
	})
}

func TestAppModel_CancelFormReturnsToDiscovery(t *testing.T) {
	fake := &fakeDisplay{}
	m := newTestApp(fake, nil)
	m = run(t, m, openForm(fake)())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(AppModel)
	if m.CurrentScreen != ScreenDiscovery {
		t.Fatalf("CurrentScreen = %s, want %s", m.CurrentScreen, ScreenDiscovery)
	}
	if cmd == nil {
		t.Fatal("cancel returned no command")
	}
	// only run the form cancel; the rest starts a network scan
	cancelForm(fake)()
	if fake.cancelled != 1 {
		t.Errorf("CancelForm called %d times, want 1", fake.cancelled)
	}
}
