package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/favsoft/epdsetup/internal/config"
	"github.com/favsoft/epdsetup/internal/device"
	"github.com/favsoft/epdsetup/internal/deviceconfig"
	"github.com/favsoft/epdsetup/internal/discovery"
	"github.com/favsoft/epdsetup/internal/logging"
	"github.com/favsoft/epdsetup/internal/storage"
	"go.uber.org/zap"
)

// autoDiscoverTimeout bounds the scan used when --device is not given.
const autoDiscoverTimeout = 5 * time.Second

// scanFunc discovers displays; replaced in tests.
var scanFunc = func(ctx context.Context, timeout time.Duration) ([]*discovery.Device, error) {
	scanner := discovery.NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForDevices(ctx)
}

// loadRegistry returns the operator's registry, or an empty one when the
// file cannot be read.
func loadRegistry() *config.Registry {
	reg, err := config.LoadRegistry()
	if err != nil {
		logging.Warn("Display registry unavailable", zap.Error(err))
		return config.NewRegistry()
	}
	return reg
}

func saveRegistry(reg *config.Registry) {
	if err := reg.Save(); err != nil {
		logging.Warn("Failed to save display registry", zap.Error(err))
	}
}

// resolveTarget turns --device into a display. ref may be a registry ID or
// nickname, an IP address or a hostname. Without ref exactly one display
// must answer a short scan.
func resolveTarget(ctx context.Context, reg *config.Registry, ref string, port int, portSet bool, out io.Writer) (*discovery.Device, error) {
	if ref != "" {
		id, known := reg.Resolve(ref)
		if known != nil && known.LastIP != "" {
			d := &discovery.Device{ID: id, Instance: known.Nickname, IP: known.LastIP, Port: known.LastPort}
			if portSet || d.Port == 0 {
				d.Port = port
			}
			return d, nil
		}
		return &discovery.Device{IP: ref, Port: port}, nil
	}

	fmt.Fprintln(out, "No display specified, attempting auto-discovery...")
	devices, err := scanFunc(ctx, autoDiscoverTimeout)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	switch len(devices) {
	case 0:
		return nil, fmt.Errorf("no displays found. Use --device to specify one")
	case 1:
		d := devices[0]
		reg.UpdateDeviceLastSeen(d.ID, d.IP, d.Port, d.Status.String())
		fmt.Fprintf(out, "Found display: %s (%s)\n\n", d.ID, d.IP)
		return d, nil
	default:
		fmt.Fprintf(out, "Found %d displays:\n", len(devices))
		for i, d := range devices {
			fmt.Fprintf(out, "%d. %s (%s)\n", i+1, d.ID, d.IP)
		}
		return nil, fmt.Errorf("multiple displays found. Use --device to specify which one")
	}
}

// displayID returns the target's ID, asking the display when it was
// addressed directly.
func displayID(ctx context.Context, d *discovery.Device, c *deviceconfig.Client) string {
	if device.ValidID(d.ID) {
		return d.ID
	}
	id, err := c.DeviceID(ctx)
	if err != nil || !device.ValidID(id) {
		logging.Debug("Display ID unavailable", zap.String("ip", d.IP), zap.Error(err))
		return ""
	}
	d.ID = id
	return id
}

// remember records a contact with the display; unknown IDs are skipped.
func remember(reg *config.Registry, d *discovery.Device, status storage.Status) {
	if !device.ValidID(d.ID) {
		return
	}
	reg.UpdateDeviceLastSeen(d.ID, d.IP, d.Port, status.String())
}

// rememberCredentials records a verified save.
func rememberCredentials(reg *config.Registry, d *discovery.Device, creds deviceconfig.Credentials) {
	if !device.ValidID(d.ID) {
		return
	}
	remember(reg, d, storage.CredentialsSet)
	reg.RecordCredentials(d.ID, creds.SSID, creds.ServerURL)
}

// troubleshooting returns the bullet points of an error's hint.
func troubleshooting(err error) []string {
	hint := deviceconfig.GetTroubleshootingHint(err)
	if _, tips, ok := strings.Cut(hint, "Troubleshooting:"); ok {
		hint = tips
	}

	var tips []string
	for _, line := range strings.Split(hint, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•"))
		if line != "" {
			tips = append(tips, line)
		}
	}
	return tips
}

// label names the display for headers.
func label(d *discovery.Device) string {
	if d.ID != "" {
		return fmt.Sprintf("%s (%s:%d)", d.ID, d.IP, d.Port)
	}
	return fmt.Sprintf("%s:%d", d.IP, d.Port)
}
