package flash

import (
	"errors"
	"fmt"
)

// Erased is the value of every byte in a freshly erased sector.
const Erased = 0xFF

var (
	// ErrOutOfRange is returned when an operation touches bytes past the end of the device.
	ErrOutOfRange = errors.New("flash: offset out of range")
	// ErrAlignment is returned when an erase or program is not on a sector/page boundary.
	ErrAlignment = errors.New("flash: unaligned operation")
	// ErrPowerLoss is returned by the memory backend when a simulated power cut interrupts a write.
	ErrPowerLoss = errors.New("flash: power lost during write")
)

// Geometry describes the erase and program granularity of a device.
type Geometry struct {
	Size       int64 // total bytes
	SectorSize int   // erase unit
	PageSize   int   // program unit
}

// DefaultGeometry is a 2 MiB part with 4 KiB sectors and 256 byte pages.
func DefaultGeometry() Geometry {
	return Geometry{
		Size:       2 * 1024 * 1024,
		SectorSize: 4096,
		PageSize:   256,
	}
}

// Validate checks that the geometry is internally consistent.
func (g Geometry) Validate() error {
	switch {
	case g.PageSize <= 0:
		return fmt.Errorf("flash: page size must be positive, got %d", g.PageSize)
	case g.SectorSize <= 0 || g.SectorSize%g.PageSize != 0:
		return fmt.Errorf("flash: sector size %d must be a positive multiple of page size %d", g.SectorSize, g.PageSize)
	case g.Size <= 0 || g.Size%int64(g.SectorSize) != 0:
		return fmt.Errorf("flash: device size %d must be a positive multiple of sector size %d", g.Size, g.SectorSize)
	}
	return nil
}

// LastSector returns the offset of the final sector on the device.
func (g Geometry) LastSector() int64 {
	return g.Size - int64(g.SectorSize)
}

// Device is a NOR flash part. Erase sets whole sectors to Erased; Program
// can only clear bits, in whole pages. Reads have no alignment rules.
type Device interface {
	Geometry() Geometry
	ReadAt(p []byte, off int64) (int, error)
	Erase(off int64, n int) error
	Program(off int64, data []byte) error
}

func checkErase(g Geometry, off int64, n int) error {
	if off < 0 || n < 0 || off+int64(n) > g.Size {
		return fmt.Errorf("erase 0x%x+%d: %w", off, n, ErrOutOfRange)
	}
	if off%int64(g.SectorSize) != 0 || n%g.SectorSize != 0 {
		return fmt.Errorf("erase 0x%x+%d: %w", off, n, ErrAlignment)
	}
	return nil
}

func checkProgram(g Geometry, off int64, n int) error {
	if off < 0 || off+int64(n) > g.Size {
		return fmt.Errorf("program 0x%x+%d: %w", off, n, ErrOutOfRange)
	}
	if off%int64(g.PageSize) != 0 || n%g.PageSize != 0 {
		return fmt.Errorf("program 0x%x+%d: %w", off, n, ErrAlignment)
	}
	return nil
}

func checkRead(g Geometry, off int64, n int) error {
	if off < 0 || off+int64(n) > g.Size {
		return fmt.Errorf("read 0x%x+%d: %w", off, n, ErrOutOfRange)
	}
	return nil
}

// program applies NOR semantics: a programmed bit can only go from 1 to 0.
func program(dst, src []byte) {
	for i := range src {
		dst[i] &= src[i]
	}
}
