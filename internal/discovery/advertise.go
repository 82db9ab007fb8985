package discovery

import (
	"fmt"

	"github.com/favsoft/epdsetup/internal/logging"
	"github.com/favsoft/epdsetup/internal/storage"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

// Advertiser publishes the setup webserver over mDNS while the display is
// in configuring mode.
type Advertiser struct {
	server *zeroconf.Server
	id     string
}

// Advertise registers instance as a _http._tcp service on port with the
// display's ID and status in its TXT records.
func Advertise(instance, id string, port int, status storage.Status) (*Advertiser, error) {
	if instance == "" {
		instance = id
	}
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, TextRecords(id, status), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising setup webserver",
		zap.String("instance", instance),
		zap.String("id", id),
		zap.Int("port", port),
		zap.String("status", status.String()),
	)
	return &Advertiser{server: server, id: id}, nil
}

// UpdateStatus republishes the TXT records with a new status.
func (a *Advertiser) UpdateStatus(status storage.Status) {
	a.server.SetText(TextRecords(a.id, status))
}

// Shutdown withdraws the service.
func (a *Advertiser) Shutdown() {
	a.server.Shutdown()
	logging.Info("mDNS advertisement withdrawn", zap.String("id", a.id))
}
