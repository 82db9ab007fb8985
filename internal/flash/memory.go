package flash

import (
	"bytes"
	"sync"

	"github.com/favsoft/epdsetup/internal/logging"
)

// Memory is an in-memory flash image.
type Memory struct {
	mu   sync.Mutex
	geom Geometry
	data []byte

	eraseErr   error
	programErr error
	corrupt    bool
	powerPages int // pages left before a simulated power cut, -1 when disarmed
}

// NewMemory returns a fully erased in-memory device. It panics on an invalid geometry.
func NewMemory(geom Geometry) *Memory {
	if err := geom.Validate(); err != nil {
		panic(err)
	}
	return &Memory{
		geom:       geom,
		data:       bytes.Repeat([]byte{Erased}, int(geom.Size)),
		powerPages: -1,
	}
}

// Geometry returns the device geometry.
func (m *Memory) Geometry() Geometry {
	return m.geom
}

// ReadAt copies device contents at off into p.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkRead(m.geom, off, len(p)); err != nil {
		return 0, err
	}
	return copy(p, m.data[off:]), nil
}

// Erase sets n bytes starting at off to Erased.
func (m *Memory) Erase(off int64, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkErase(m.geom, off, n); err != nil {
		return err
	}
	if err := m.eraseErr; err != nil {
		m.eraseErr = nil
		logging.LogFlashOp("erase", off, n, err)
		return err
	}

	for i := off; i < off+int64(n); i++ {
		m.data[i] = Erased
	}
	logging.LogFlashOp("erase", off, n, nil)
	return nil
}

// Program writes data at off page by page.
func (m *Memory) Program(off int64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkProgram(m.geom, off, len(data)); err != nil {
		return err
	}
	if err := m.programErr; err != nil {
		m.programErr = nil
		logging.LogFlashOp("program", off, len(data), err)
		return err
	}

	ps := m.geom.PageSize
	for p := 0; p < len(data); p += ps {
		if m.powerPages == 0 {
			m.powerPages = -1
			logging.LogFlashOp("program", off+int64(p), ps, ErrPowerLoss)
			return ErrPowerLoss
		}
		if m.powerPages > 0 {
			m.powerPages--
		}
		program(m.data[off+int64(p):], data[p:p+ps])
	}

	if m.corrupt {
		m.corrupt = false
		m.data[off+int64(len(data))-1] ^= 0x01
	}
	logging.LogFlashOp("program", off, len(data), nil)
	return nil
}

// FailNextErase makes the next Erase return err without touching the image.
func (m *Memory) FailNextErase(err error) {
	m.mu.Lock()
	m.eraseErr = err
	m.mu.Unlock()
}

// FailNextProgram makes the next Program return err without touching the image.
func (m *Memory) FailNextProgram(err error) {
	m.mu.Lock()
	m.programErr = err
	m.mu.Unlock()
}

// CorruptNextProgram flips one bit of the last byte written by the next
// Program while still reporting success.
func (m *Memory) CorruptNextProgram() {
	m.mu.Lock()
	m.corrupt = true
	m.mu.Unlock()
}

// CutPowerAfter allows n more page writes, across any number of Program
// calls, then fails with ErrPowerLoss and leaves the remaining pages as
// they were.
func (m *Memory) CutPowerAfter(n int) {
	m.mu.Lock()
	m.powerPages = n
	m.mu.Unlock()
}

// Snapshot returns a copy of the whole image.
func (m *Memory) Snapshot() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.data)
}
