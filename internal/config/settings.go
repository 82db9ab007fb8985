package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/favsoft/epdsetup/internal/flash"
	"github.com/favsoft/epdsetup/internal/httpd"
	"github.com/favsoft/epdsetup/internal/pages"
	"github.com/favsoft/epdsetup/internal/storage"
	"gopkg.in/yaml.v3"
)

// Settings is the device-side configuration file.
type Settings struct {
	Server   ServerSettings `yaml:"server"`
	Flash    FlashSettings  `yaml:"flash"`
	Device   DeviceSettings `yaml:"device"`
	LogLevel string         `yaml:"log_level,omitempty"` // debug, info, warn, error; empty disables logging
}

// ServerSettings configures the setup webserver.
type ServerSettings struct {
	Host           string        `yaml:"host,omitempty"`
	Port           int           `yaml:"port"`
	MaxRequestSize int           `yaml:"max_request_size"`
	MaxPageSize    int           `yaml:"max_page_size"`
	SendBufferSize int           `yaml:"send_buffer_size"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// FlashSettings locates and shapes the configuration flash.
type FlashSettings struct {
	Image      string `yaml:"image,omitempty"` // Backing file; empty keeps the store in memory
	Size       int64  `yaml:"size"`
	SectorSize int    `yaml:"sector_size"`
	PageSize   int    `yaml:"page_size"`
}

// DeviceSettings describes the display itself.
type DeviceSettings struct {
	ID           string `yaml:"id,omitempty"`       // Derived from the flash image path when empty
	Instance     string `yaml:"instance,omitempty"` // mDNS instance name; defaults to the ID
	ConfigJumper bool   `yaml:"config_jumper"`
	Advertise    bool   `yaml:"advertise"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	geom := flash.DefaultGeometry()
	return &Settings{
		Server: ServerSettings{
			Port:           80,
			MaxRequestSize: httpd.DefaultMaxRequestSize,
			MaxPageSize:    pages.DefaultMaxSize,
			SendBufferSize: httpd.DefaultSendBuffer,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   10 * time.Second,
		},
		Flash: FlashSettings{
			Size:       geom.Size,
			SectorSize: geom.SectorSize,
			PageSize:   geom.PageSize,
		},
		Device: DeviceSettings{
			Advertise: true,
		},
	}
}

// GetSettingsPath returns the default device settings path.
func GetSettingsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, settingsFile), nil
}

// LoadSettings reads path over the defaults. An empty path selects the
// default location; a missing file yields the defaults unchanged.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path == "" {
		p, err := GetSettingsPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get settings path: %w", err)
		}
		path = p
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open settings file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(settings); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return settings, nil
}

// Save writes the settings to path atomically.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	fileMutex.Lock()
	defer fileMutex.Unlock()
	return writeAtomic(path, data)
}

// Validate reports every problem with the settings at once.
func (s *Settings) Validate() error {
	var errs []error

	if s.Server.Port < 1 || s.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", s.Server.Port))
	}
	if s.Server.MaxRequestSize < 64 {
		errs = append(errs, fmt.Errorf("server.max_request_size %d too small", s.Server.MaxRequestSize))
	}
	if s.Server.MaxPageSize < 512 {
		errs = append(errs, fmt.Errorf("server.max_page_size %d too small", s.Server.MaxPageSize))
	}
	if s.Server.SendBufferSize < 1 {
		errs = append(errs, fmt.Errorf("server.send_buffer_size must be positive"))
	}
	if s.Server.ReadTimeout < 0 || s.Server.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("server timeouts must not be negative"))
	}

	if err := s.Geometry().Validate(); err != nil {
		errs = append(errs, err)
	} else if s.Flash.SectorSize < storage.RecordSize {
		errs = append(errs, fmt.Errorf("flash.sector_size %d cannot hold a %d byte record", s.Flash.SectorSize, storage.RecordSize))
	}

	switch s.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q must be one of debug, info, warn, error", s.LogLevel))
	}

	return errors.Join(errs...)
}

// Geometry returns the flash shape.
func (s *Settings) Geometry() flash.Geometry {
	return flash.Geometry{
		Size:       s.Flash.Size,
		SectorSize: s.Flash.SectorSize,
		PageSize:   s.Flash.PageSize,
	}
}

// HTTPD returns the webserver configuration.
func (s *Settings) HTTPD() httpd.Config {
	return httpd.Config{
		Host:           s.Server.Host,
		Port:           s.Server.Port,
		MaxRequestSize: s.Server.MaxRequestSize,
		SendBufferSize: s.Server.SendBufferSize,
		ReadTimeout:    s.Server.ReadTimeout,
		WriteTimeout:   s.Server.WriteTimeout,
	}
}
