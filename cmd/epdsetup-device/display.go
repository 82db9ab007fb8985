package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/favsoft/epdsetup/internal/config"
	"github.com/favsoft/epdsetup/internal/device"
	"github.com/favsoft/epdsetup/internal/discovery"
	"github.com/favsoft/epdsetup/internal/flash"
	"github.com/favsoft/epdsetup/internal/httpd"
	"github.com/favsoft/epdsetup/internal/logging"
	"github.com/favsoft/epdsetup/internal/pages"
	"github.com/favsoft/epdsetup/internal/session"
	"github.com/favsoft/epdsetup/internal/storage"
	"go.uber.org/zap"
)

// statusPollInterval is how often the advertised status is refreshed.
const statusPollInterval = 2 * time.Second

// display is one booted device: its flash, store, mode flag and webserver.
type display struct {
	settings *config.Settings
	id       string

	dev    flash.Device
	closer func() error
	store  *storage.Store
	mode   *device.Mode
	server *httpd.Server
}

// boot opens the configuration flash and wires the setup webserver. It
// does not bind the port.
func boot(settings *config.Settings) (*display, error) {
	d := &display{settings: settings}

	if settings.Flash.Image != "" {
		f, err := flash.OpenFile(settings.Flash.Image, settings.Geometry())
		if err != nil {
			return nil, err
		}
		d.dev, d.closer = f, f.Close
	} else {
		logging.Warn("No flash image configured; settings will not survive a restart")
		d.dev = flash.NewMemory(settings.Geometry())
	}

	store, err := storage.Open(d.dev)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to open configuration store: %w", err)
	}
	d.store = store

	d.id = settings.Device.ID
	if d.id == "" {
		d.id = device.DeriveID(idSeed(settings))
	}

	d.mode = device.NewMode(device.ShouldConfigure(settings.Device.ConfigJumper, store.Status()))
	if settings.Device.ConfigJumper {
		store.RecordLog(logging.ConfigJumperDetected)
	}

	router := httpd.NewRouter(session.New(store), pages.NewRenderer(settings.Server.MaxPageSize), d.id)
	d.server = httpd.New(settings.HTTPD(), router, d.mode)
	d.server.SetErrorRecorder(store)

	logging.Info("Display booted",
		zap.String("id", d.id),
		zap.String("status", store.Status().String()),
		zap.Bool("configuring", d.mode.Configuring()),
	)
	return d, nil
}

func idSeed(settings *config.Settings) string {
	if settings.Flash.Image != "" {
		return settings.Flash.Image
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "epdsetup"
}

// run serves the setup pages until the display leaves configuring mode,
// ctx ends or a shutdown signal arrives. Codes queued while serving are
// committed before it returns.
func (d *display) run(ctx context.Context) error {
	if !d.mode.Configuring() {
		logging.Info("Credentials set, starting in display mode", zap.String("id", d.id))
		return d.flushCodes()
	}

	if err := d.server.Listen(); err != nil {
		return errors.Join(err, d.flushCodes())
	}
	return d.serve(ctx)
}

// serve runs the bound webserver, advertising it when enabled.
func (d *display) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.settings.Device.Advertise {
		adv, err := discovery.Advertise(d.settings.Device.Instance, d.id, d.settings.Server.Port, d.store.Status())
		if err != nil {
			// setup still works by address
			logging.Warn("mDNS advertisement unavailable", zap.Error(err))
		} else {
			defer adv.Shutdown()
			go d.trackStatus(ctx, adv)
		}
	}

	err := d.server.Serve(ctx)
	return errors.Join(err, d.flushCodes())
}

// trackStatus republishes the advertised status when the store's changes.
func (d *display) trackStatus(ctx context.Context, adv *discovery.Advertiser) {
	last := d.store.Status()
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s := d.store.Status(); s != last {
				adv.UpdateStatus(s)
				last = s
			}
		}
	}
}

// flushCodes persists error and log codes recorded outside a save.
func (d *display) flushCodes() error {
	if !d.store.Dirty() {
		return nil
	}
	if err := d.store.Commit(); err != nil {
		return fmt.Errorf("failed to persist device codes: %w", err)
	}
	return nil
}

// Close releases the flash image.
func (d *display) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer()
}
