package device

import (
	"testing"
	"time"

	"github.com/favsoft/epdsetup/internal/storage"
)

func TestShouldConfigure(t *testing.T) {
	tests := []struct {
		name   string
		jumper bool
		status storage.Status
		want   bool
	}{
		{"fresh device", false, storage.DefaultValues, true},
		{"partly configured", false, storage.SettingCredentials, true},
		{"configured", false, storage.CredentialsSet, false},
		{"jumper forces setup", true, storage.CredentialsSet, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldConfigure(tt.jumper, tt.status); got != tt.want {
				t.Errorf("ShouldConfigure(%v, %v) = %v, want %v", tt.jumper, tt.status, got, tt.want)
			}
		})
	}
}

func TestMode(t *testing.T) {
	m := NewMode(true)
	if !m.Configuring() {
		t.Fatal("Configuring() = false for a configuring mode")
	}

	select {
	case <-m.Done():
		t.Fatal("Done() closed before EnterDisplay")
	default:
	}

	m.EnterDisplay()
	m.EnterDisplay()

	if m.Configuring() {
		t.Error("Configuring() = true after EnterDisplay")
	}
	select {
	case <-m.Done():
	case <-time.After(time.Second):
		t.Error("Done() not closed after EnterDisplay")
	}

	if _, open := <-NewMode(false).Done(); open {
		t.Error("display mode flag should start with Done() closed")
	}
}

func TestDeriveID(t *testing.T) {
	a := DeriveID("00:11:22:33:44:55")
	b := DeriveID("00:11:22:33:44:55")
	c := DeriveID("00:11:22:33:44:56")

	if a != b {
		t.Errorf("DeriveID() not stable: %q vs %q", a, b)
	}
	if a == c {
		t.Error("different seeds produced the same ID")
	}
	if !ValidID(a) {
		t.Errorf("DeriveID() = %q, not a valid ID", a)
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"EPD-1A2B3C4D", true},
		{"EPD-1a2b3c4d", false},
		{"EPD-1A2B3C4", false},
		{"XYZ-1A2B3C4D", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
