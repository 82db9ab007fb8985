package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/favsoft/epdsetup/internal/discovery"
	"github.com/favsoft/epdsetup/internal/storage"
)

func TestManualDevice(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		wantIP   string
		wantPort int
		wantErr  bool
	}{
		{"bare ip", "192.168.4.1", "192.168.4.1", 80, false},
		{"ip and port", "10.0.0.7:8080", "10.0.0.7", 8080, false},
		{"ipv6 with port", "[fe80::1]:80", "fe80::1", 80, false},
		{"surrounding spaces", " 10.0.0.7 ", "10.0.0.7", 80, false},
		{"hostname", "display.local", "", 0, true},
		{"bad port", "10.0.0.7:99999", "", 0, true},
		{"empty", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := manualDevice(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("manualDevice(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if d.IP != tt.wantIP || d.Port != tt.wantPort {
				t.Errorf("manualDevice(%q) = %s:%d, want %s:%d", tt.addr, d.IP, d.Port, tt.wantIP, tt.wantPort)
			}
			if d.ID != manualID {
				t.Errorf("ID = %q, want %q", d.ID, manualID)
			}
		})
	}
}

func TestScanDevices(t *testing.T) {
	want := []*discovery.Device{{ID: "EPD-1A2B3C4D", IP: "10.0.0.7", Port: 80, Status: storage.DefaultValues}}
	scan := func(ctx context.Context) ([]*discovery.Device, error) { return want, nil }

	msg := scanDevices(scan, 0)().(scanCompleteMsg)
	if msg.err != nil || len(msg.devices) != 1 || msg.devices[0] != want[0] {
		t.Errorf("scanDevices() = %+v", msg)
	}
}

func TestDiscoveryModel_ScanAndSelect(t *testing.T) {
	m := NewDiscoveryModel(nil, 0)

	updated, _ := m.Update(scanStartMsg{})
	m = updated.(DiscoveryModel)
	if !m.Scanning {
		t.Fatal("Scanning = false after scanStartMsg")
	}

	// keys other than manual and quit are ignored while scanning
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(DiscoveryModel)
	if m.Selected {
		t.Fatal("selection made while scanning")
	}

	device := &discovery.Device{ID: "EPD-1A2B3C4D", IP: "10.0.0.7", Port: 80}
	updated, _ = m.Update(scanCompleteMsg{devices: []*discovery.Device{device}})
	m = updated.(DiscoveryModel)
	if m.Scanning {
		t.Fatal("Scanning = true after scanCompleteMsg")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(DiscoveryModel)
	if got := m.GetSelectedDevice(); got != device {
		t.Errorf("GetSelectedDevice() = %v, want %v", got, device)
	}
}

func TestDiscoveryModel_ScanError(t *testing.T) {
	m := NewDiscoveryModel(nil, 0)
	updated, _ := m.Update(scanCompleteMsg{err: errors.New("no multicast")})
	m = updated.(DiscoveryModel)
	if m.Err == nil {
		t.Error("scan error dropped")
	}
	if m.GetSelectedDevice() != nil {
		t.Error("GetSelectedDevice() returned a display with nothing selected")
	}
}

func TestDiscoveryModel_ManualEntry(t *testing.T) {
	m := NewDiscoveryModel(nil, 0)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	m = updated.(DiscoveryModel)
	if !m.ManualMode {
		t.Fatal("m did not enter manual mode")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("nope")})
	m = updated.(DiscoveryModel)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(DiscoveryModel)
	if m.InputErr == "" || !m.ManualMode {
		t.Fatal("invalid address accepted")
	}

	m.IPInput.SetValue("10.0.0.9")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(DiscoveryModel)
	if m.ManualMode {
		t.Fatal("still in manual mode after a valid address")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(DiscoveryModel)
	got := m.GetSelectedDevice()
	if got == nil || got.IP != "10.0.0.9" {
		t.Errorf("GetSelectedDevice() = %v, want the manual display", got)
	}
}
