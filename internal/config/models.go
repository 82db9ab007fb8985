package config

import (
	"sort"
	"strings"
	"time"
)

// Registry represents the operator's file of known displays.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by display ID
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents what the operator knows about a single display.
// WiFi passwords are never stored here.
type Device struct {
	Nickname   string    `yaml:"nickname,omitempty"`    // User-friendly name
	LastIP     string    `yaml:"last_ip,omitempty"`     // Last known IP address
	LastPort   int       `yaml:"last_port,omitempty"`   // Last known setup webserver port
	LastSeen   time.Time `yaml:"last_seen,omitempty"`   // Last discovery/connection time
	LastStatus string    `yaml:"last_status,omitempty"` // Last configuration status reported
	SSID       string    `yaml:"ssid,omitempty"`        // Network name last submitted
	ServerURL  string    `yaml:"server_url,omitempty"`  // Image server URL last submitted
}

// Preferences represents application-wide operator preferences.
type Preferences struct {
	AutoDiscover    bool `yaml:"auto_discover"`    // Enable automatic mDNS discovery on startup
	DiscoverTimeout int  `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
	DefaultPort     int  `yaml:"default_port"`     // Port used when none is known
}

func defaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:    true,
		DiscoverTimeout: 10,
		DefaultPort:     80,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     registryVersion,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

// GetDevice retrieves device metadata by display ID.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(id string) *Device {
	return r.Devices[id]
}

// EnsureDevice returns the entry for id, creating it if needed.
func (r *Registry) EnsureDevice(id string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[id]; exists {
		return device
	}

	device := &Device{}
	r.Devices[id] = device
	return device
}

// UpdateDeviceLastSeen records where and in which state a display was seen.
func (r *Registry) UpdateDeviceLastSeen(id, ip string, port int, status string) {
	device := r.EnsureDevice(id)
	device.LastSeen = time.Now()
	device.LastIP = ip
	device.LastPort = port
	if status != "" {
		device.LastStatus = status
	}
}

// RecordCredentials stores the non-secret part of a successful submission.
func (r *Registry) RecordCredentials(id, ssid, serverURL string) {
	device := r.EnsureDevice(id)
	device.SSID = ssid
	device.ServerURL = serverURL
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(id, nickname string) {
	device := r.EnsureDevice(id)
	device.Nickname = nickname
}

// RemoveDevice forgets a display.
func (r *Registry) RemoveDevice(id string) {
	delete(r.Devices, id)
}

// Resolve finds a display by ID or case-insensitive nickname.
func (r *Registry) Resolve(ref string) (string, *Device) {
	if d, ok := r.Devices[ref]; ok {
		return ref, d
	}
	for id, d := range r.Devices {
		if d.Nickname != "" && strings.EqualFold(d.Nickname, ref) {
			return id, d
		}
	}
	return "", nil
}

// IDs returns the known display IDs in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.Devices))
	for id := range r.Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
