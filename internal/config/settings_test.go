package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if err := s.Validate(); err != nil {
		t.Fatalf("DefaultSettings().Validate() error = %v", err)
	}
	if s.Server.Port != 80 {
		t.Errorf("Port = %d, want 80", s.Server.Port)
	}
	if s.Server.MaxRequestSize != 4096 || s.Server.MaxPageSize != 8192 || s.Server.SendBufferSize != 1460 {
		t.Errorf("server limits = %+v", s.Server)
	}
	if s.Flash.Size != 2<<20 || s.Flash.SectorSize != 4096 || s.Flash.PageSize != 256 {
		t.Errorf("flash geometry = %+v", s.Flash)
	}
	if !s.Device.Advertise {
		t.Error("Advertise should default to true")
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("missing file yields defaults", func(t *testing.T) {
		s, err := LoadSettings(filepath.Join(dir, "absent.yaml"))
		if err != nil {
			t.Fatalf("LoadSettings() error = %v", err)
		}
		if *s != *DefaultSettings() {
			t.Errorf("LoadSettings() = %+v, want defaults", s)
		}
	})

	t.Run("empty file yields defaults", func(t *testing.T) {
		s, err := LoadSettings(write("empty.yaml", ""))
		if err != nil {
			t.Fatalf("LoadSettings() error = %v", err)
		}
		if s.Server.Port != 80 {
			t.Errorf("Port = %d", s.Server.Port)
		}
	})

	t.Run("partial file overrides defaults", func(t *testing.T) {
		s, err := LoadSettings(write("partial.yaml", `
server:
  port: 8080
  read_timeout: 5s
device:
  id: EPD-1A2B3C4D
  config_jumper: true
log_level: debug
`))
		if err != nil {
			t.Fatalf("LoadSettings() error = %v", err)
		}
		if s.Server.Port != 8080 {
			t.Errorf("Port = %d, want 8080", s.Server.Port)
		}
		if s.Server.ReadTimeout != 5*time.Second {
			t.Errorf("ReadTimeout = %v, want 5s", s.Server.ReadTimeout)
		}
		if s.Server.MaxRequestSize != 4096 {
			t.Errorf("MaxRequestSize = %d, default should survive", s.Server.MaxRequestSize)
		}
		if !s.Device.ConfigJumper || s.Device.ID != "EPD-1A2B3C4D" {
			t.Errorf("device = %+v", s.Device)
		}
		if !s.Device.Advertise {
			t.Error("Advertise default lost")
		}
		if s.LogLevel != "debug" {
			t.Errorf("LogLevel = %q", s.LogLevel)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		if _, err := LoadSettings(write("unknown.yaml", "server:\n  prot: 80\n")); err == nil {
			t.Error("LoadSettings() should reject unknown fields")
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		if _, err := LoadSettings(write("invalid.yaml", "server:\n  port: 0\n")); err == nil {
			t.Error("LoadSettings() should reject port 0")
		}
	})
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		want   []string
	}{
		{"defaults", func(*Settings) {}, nil},
		{"bad port", func(s *Settings) { s.Server.Port = 70000 }, []string{"server.port"}},
		{"tiny request buffer", func(s *Settings) { s.Server.MaxRequestSize = 10 }, []string{"max_request_size"}},
		{"tiny page", func(s *Settings) { s.Server.MaxPageSize = 100 }, []string{"max_page_size"}},
		{"no send buffer", func(s *Settings) { s.Server.SendBufferSize = 0 }, []string{"send_buffer_size"}},
		{"negative timeout", func(s *Settings) { s.Server.ReadTimeout = -time.Second }, []string{"timeouts"}},
		{"sector not multiple of page", func(s *Settings) { s.Flash.SectorSize = 1000 }, []string{"sector size"}},
		{"sector too small for record", func(s *Settings) {
			s.Flash.SectorSize = 1024
			s.Flash.Size = 1 << 20
		}, []string{"cannot hold"}},
		{"bad log level", func(s *Settings) { s.LogLevel = "trace" }, []string{"log_level"}},
		{"several problems", func(s *Settings) {
			s.Server.Port = 0
			s.LogLevel = "loud"
		}, []string{"server.port", "log_level"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()

			if len(tt.want) == 0 {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("Validate() error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestSettingsSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.yaml")

	s := DefaultSettings()
	s.Device.ID = "EPD-00000001"
	s.Flash.Image = "/var/lib/epdsetup/flash.img"
	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if *loaded != *s {
		t.Errorf("round trip = %+v, want %+v", loaded, s)
	}
}

func TestSettingsConversions(t *testing.T) {
	s := DefaultSettings()
	s.Server.Host = "127.0.0.1"

	cfg := s.HTTPD()
	if cfg.Host != "127.0.0.1" || cfg.Port != 80 || cfg.MaxRequestSize != 4096 || cfg.SendBufferSize != 1460 {
		t.Errorf("HTTPD() = %+v", cfg)
	}

	geom := s.Geometry()
	if geom.Size != s.Flash.Size || geom.SectorSize != s.Flash.SectorSize || geom.PageSize != s.Flash.PageSize {
		t.Errorf("Geometry() = %+v", geom)
	}
}
