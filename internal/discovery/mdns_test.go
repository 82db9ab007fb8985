package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/favsoft/epdsetup/internal/storage"
	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name       string
		entry      *zeroconf.ServiceEntry
		wantNil    bool
		wantID     string
		wantIP     string
		wantPort   int
		wantStatus storage.Status
	}{
		{
			name: "display with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "EPD-1A2B3C4D"},
				HostName:      "epd-1a2b3c4d.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          TextRecords("EPD-1A2B3C4D", storage.DefaultValues),
			},
			wantID:     "EPD-1A2B3C4D",
			wantIP:     "192.168.4.16",
			wantPort:   80,
			wantStatus: storage.DefaultValues,
		},
		{
			name: "display with custom port",
			entry: &zeroconf.ServiceEntry{
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
				Text:     TextRecords("EPD-00000001", storage.CredentialsSet),
			},
			wantID:     "EPD-00000001",
			wantIP:     "10.0.0.5",
			wantPort:   8080,
			wantStatus: storage.CredentialsSet,
		},
		{
			name: "missing port falls back to default",
			entry: &zeroconf.ServiceEntry{
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.6")},
				Text:     []string{"epdsetup=1", "id=EPD-00000002"},
			},
			wantID:     "EPD-00000002",
			wantIP:     "10.0.0.6",
			wantPort:   DefaultPort,
			wantStatus: storage.Uninitialized,
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				Port:     80,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
				Text:     TextRecords("EPD-00000003", storage.SettingCredentials),
			},
			wantID:     "EPD-00000003",
			wantIP:     "fe80::1",
			wantPort:   80,
			wantStatus: storage.SettingCredentials,
		},
		{
			name: "unrelated HTTP service",
			entry: &zeroconf.ServiceEntry{
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.4.20")},
				Text:     []string{"path=/"},
			},
			wantNil: true,
		},
		{
			name: "marker without ID",
			entry: &zeroconf.ServiceEntry{
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.4.21")},
				Text:     []string{"epdsetup=1"},
			},
			wantNil: true,
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				Port: 80,
				Text: TextRecords("EPD-00000004", storage.DefaultValues),
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if device != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", device)
				}
				return
			}
			if device == nil {
				t.Fatal("parseServiceEntry() = nil, want device")
			}
			if device.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", device.ID, tt.wantID)
			}
			if device.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", device.IP, tt.wantIP)
			}
			if device.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", device.Port, tt.wantPort)
			}
			if device.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", device.Status, tt.wantStatus)
			}
			if device.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt not set")
			}
		})
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
	if DefaultScanTimeout < time.Second {
		t.Errorf("DefaultScanTimeout = %v is too short", DefaultScanTimeout)
	}
}
