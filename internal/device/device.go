package device

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/favsoft/epdsetup/internal/logging"
	"github.com/favsoft/epdsetup/internal/storage"
	"github.com/google/uuid"
)

// Mode is the device-wide operating mode flag. The setup webserver runs
// while it reads configuring; leaving configuring is one-way.
type Mode struct {
	configuring atomic.Bool
	changed     chan struct{}
	once        sync.Once
}

// NewMode returns a flag in the given state.
func NewMode(configuring bool) *Mode {
	m := &Mode{changed: make(chan struct{})}
	m.configuring.Store(configuring)
	if !configuring {
		m.once.Do(func() { close(m.changed) })
	}
	return m
}

// Configuring reports whether the device is in configuring mode.
func (m *Mode) Configuring() bool {
	return m.configuring.Load()
}

// EnterDisplay leaves configuring mode.
func (m *Mode) EnterDisplay() {
	m.configuring.Store(false)
	m.once.Do(func() {
		logging.LogEvent(logging.DisplayModeEntered)
		close(m.changed)
	})
}

// Done is closed once the device is in display mode.
func (m *Mode) Done() <-chan struct{} {
	return m.changed
}

// ShouldConfigure decides the boot mode. The configuration jumper forces
// configuring mode; without it the device only configures until its
// credentials are set.
func ShouldConfigure(jumper bool, status storage.Status) bool {
	if jumper {
		logging.LogEvent(logging.ConfigJumperDetected)
		return true
	}
	return status != storage.CredentialsSet
}

// idNamespace scopes derived display IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("epdsetup.local"))

// DeriveID builds a stable display ID of the form EPD-XXXXXXXX from seed,
// typically a MAC address or the flash image path.
func DeriveID(seed string) string {
	u := uuid.NewSHA1(idNamespace, []byte(seed))
	return fmt.Sprintf("EPD-%s", strings.ToUpper(u.String()[:8]))
}

// ValidID reports whether id has the EPD-XXXXXXXX form.
func ValidID(id string) bool {
	hex, ok := strings.CutPrefix(id, "EPD-")
	if !ok || len(hex) != 8 {
		return false
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			return false
		}
	}
	return true
}
