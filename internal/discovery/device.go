package discovery

import (
	"fmt"
	"time"

	"github.com/favsoft/epdsetup/internal/storage"
)

// TXT record keys a setup-capable display advertises.
const (
	TxtMarker = "epdsetup"
	TxtID     = "id"
	TxtStatus = "status"
	TxtPath   = "path"
)

// Device represents a display found on the network
type Device struct {
	// ID is the display ID (e.g., "EPD-1A2B3C4D")
	ID string

	// Instance is the mDNS service instance name
	Instance string

	// Hostname is the mDNS hostname (e.g., "epd-1a2b3c4d.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when no IPv4 is advertised
	IP string

	// Port is the setup webserver port (typically 80)
	Port int

	// Status is the configuration status the display advertised
	Status storage.Status

	// Metadata holds every TXT record key/value
	Metadata map[string]string

	// DiscoveredAt is when the display was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("Display %s (%s) at %s:%d", d.ID, d.Instance, d.IP, d.Port)
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

// TextRecords builds the TXT records a display advertises.
func TextRecords(id string, status storage.Status) []string {
	return []string{
		TxtMarker + "=1",
		TxtID + "=" + id,
		TxtStatus + "=" + status.String(),
		TxtPath + "=/setup/home",
	}
}
