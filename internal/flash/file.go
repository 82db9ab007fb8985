package flash

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/favsoft/epdsetup/internal/logging"
	"go.uber.org/zap"
)

// File is a flash image stored in a regular file.
type File struct {
	mu   sync.Mutex
	geom Geometry
	f    *os.File
}

// OpenFile opens the image at path, creating it fully erased when it does
// not exist. An existing image must match the geometry's size.
func OpenFile(path string, geom Geometry) (*File, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open flash image: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat flash image: %w", err)
	}

	switch info.Size() {
	case 0:
		if _, err := f.WriteAt(bytes.Repeat([]byte{Erased}, int(geom.Size)), 0); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to initialise flash image: %w", err)
		}
		logging.Info("Created erased flash image", zap.String("path", path))
	case geom.Size:
	default:
		f.Close()
		return nil, fmt.Errorf("flash image %s is %d bytes, expected %d", path, info.Size(), geom.Size)
	}

	return &File{geom: geom, f: f}, nil
}

// Geometry returns the device geometry.
func (d *File) Geometry() Geometry {
	return d.geom
}

// ReadAt reads image contents at off into p.
func (d *File) ReadAt(p []byte, off int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := checkRead(d.geom, off, len(p)); err != nil {
		return 0, err
	}
	return d.f.ReadAt(p, off)
}

// Erase sets n bytes starting at off to Erased.
func (d *File) Erase(off int64, n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := checkErase(d.geom, off, n); err != nil {
		return err
	}
	_, err := d.f.WriteAt(bytes.Repeat([]byte{Erased}, n), off)
	if err == nil {
		err = d.f.Sync()
	}
	logging.LogFlashOp("erase", off, n, err)
	return err
}

// Program ANDs data into the image at off.
func (d *File) Program(off int64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := checkProgram(d.geom, off, len(data)); err != nil {
		return err
	}

	cur := make([]byte, len(data))
	if _, err := d.f.ReadAt(cur, off); err != nil {
		logging.LogFlashOp("program", off, len(data), err)
		return err
	}
	program(cur, data)

	_, err := d.f.WriteAt(cur, off)
	if err == nil {
		err = d.f.Sync()
	}
	logging.LogFlashOp("program", off, len(data), err)
	return err
}

// Close closes the underlying file.
func (d *File) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.Close()
}
