package storage

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/favsoft/epdsetup/internal/flash"
	"github.com/favsoft/epdsetup/internal/logging"
	"go.uber.org/zap"
)

// Store owns the configuration record. Setters change the shadow copy;
// only Commit touches flash.
type Store struct {
	dev    flash.Device
	offset int64

	committing sync.Mutex

	mu        sync.RWMutex
	shadow    Record
	persisted Record
}

// Open reads the record from the start of the device's last sector and
// formats it when the status is uninitialized or out of range.
func Open(dev flash.Device) (*Store, error) {
	geom := dev.Geometry()
	if RecordSize%geom.PageSize != 0 || RecordSize > geom.SectorSize {
		return nil, fmt.Errorf("record size %d does not fit page size %d / sector size %d",
			RecordSize, geom.PageSize, geom.SectorSize)
	}

	s := &Store{dev: dev, offset: geom.LastSector()}

	rec, err := ReadRecord(dev)
	if err != nil {
		return nil, err
	}

	if !rec.Status.Valid() {
		logging.Info("Formatting configuration record", zap.Uint8("status", uint8(rec.Status)))
		if err := s.format(); err != nil {
			return nil, err
		}
		return s, nil
	}

	s.shadow = rec
	s.persisted = rec
	logging.Debug("Configuration record loaded",
		zap.String("status", rec.Status.String()),
		zap.String("ssid", rec.SSID),
		zap.Int("password_len", len(rec.Password)),
		zap.String("server_url", rec.ServerURL),
	)
	return s, nil
}

// ReadRecord decodes the record stored on dev without formatting or
// writing anything.
func ReadRecord(dev flash.Device) (Record, error) {
	buf := make([]byte, RecordSize)
	if _, err := dev.ReadAt(buf, dev.Geometry().LastSector()); err != nil {
		return Record{}, &Error{Op: OpRead, Err: err}
	}
	rec, err := Unmarshal(buf)
	if err != nil {
		return Record{}, &Error{Op: OpRead, Err: err}
	}
	return rec, nil
}

func (s *Store) format() error {
	s.mu.Lock()
	s.shadow = Record{Status: DefaultValues}
	push(&s.shadow.LogCodes, &s.shadow.LogIndex, uint8(logging.FlashStorageAreaInitialised))
	s.mu.Unlock()

	if err := s.Commit(); err != nil {
		return err
	}
	logging.LogEvent(logging.FlashStorageAreaInitialised)
	return nil
}

// SSID returns the in-memory network name.
func (s *Store) SSID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadow.SSID
}

// Password returns the in-memory network password.
func (s *Store) Password() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadow.Password
}

// ServerURL returns the in-memory image server URL.
func (s *Store) ServerURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadow.ServerURL
}

// Status returns the in-memory status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadow.Status
}

// Snapshot returns a copy of the in-memory record.
func (s *Store) Snapshot() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadow
}

// Errors returns the recorded error codes, oldest first.
func (s *Store) Errors() []logging.ErrorCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadow.Errors()
}

// Logs returns the recorded log codes, oldest first.
func (s *Store) Logs() []logging.LogCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadow.Logs()
}

// SetSSID replaces the network name in the shadow record.
func (s *Store) SetSSID(v string) {
	s.mu.Lock()
	s.shadow.SSID = truncate(v, SSIDSize)
	s.mu.Unlock()
}

// SetPassword replaces the network password in the shadow record.
func (s *Store) SetPassword(v string) {
	s.mu.Lock()
	s.shadow.Password = truncate(v, PasswordSize)
	s.mu.Unlock()
}

// SetServerURL replaces the image server URL in the shadow record.
func (s *Store) SetServerURL(v string) {
	s.mu.Lock()
	s.shadow.ServerURL = truncate(v, ServerURLSize)
	s.mu.Unlock()
}

// SetStatus replaces the status in the shadow record.
func (s *Store) SetStatus(v Status) {
	s.mu.Lock()
	s.shadow.Status = v
	s.mu.Unlock()
}

// RecordError appends an error code; it is persisted by the next commit.
func (s *Store) RecordError(code logging.ErrorCode) {
	s.mu.Lock()
	push(&s.shadow.ErrorCodes, &s.shadow.ErrorIndex, uint8(code))
	s.mu.Unlock()
}

// RecordLog appends a log code; it is persisted by the next commit.
func (s *Store) RecordLog(code logging.LogCode) {
	s.mu.Lock()
	push(&s.shadow.LogCodes, &s.shadow.LogIndex, uint8(code))
	s.mu.Unlock()
}

// Dirty reports whether the shadow record differs from flash.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadow != s.persisted
}

// Rollback discards every uncommitted change.
func (s *Store) Rollback() {
	s.mu.Lock()
	s.shadow = s.persisted
	s.mu.Unlock()
}

// Commit erases the record's sector and programs the whole shadow record.
//
// The status byte is programmed last: the first pass writes the image with
// an erased status, the second programs the first page with the real one.
// A write cut short before that leaves an invalid status, which Open
// formats instead of trusting a partial record.
//
// On failure the shadow record is rolled back to the last persisted image
// and the matching error code is queued for the next commit.
func (s *Store) Commit() error {
	if !s.committing.TryLock() {
		return ErrCommitInProgress
	}
	defer s.committing.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	image := s.shadow.Marshal()
	if err := s.write(image); err != nil {
		s.shadow = s.persisted
		switch err.Op {
		case OpErase:
			push(&s.shadow.ErrorCodes, &s.shadow.ErrorIndex, uint8(logging.FlashEraseErr))
		case OpVerify:
			push(&s.shadow.ErrorCodes, &s.shadow.ErrorIndex, uint8(logging.FlashVerifyErr))
		default:
			push(&s.shadow.ErrorCodes, &s.shadow.ErrorIndex, uint8(logging.FlashProgramErr))
		}
		logging.Error("Configuration commit failed", zap.Error(err))
		return err
	}

	s.persisted = s.shadow
	logging.Info("Configuration committed", zap.String("status", s.shadow.Status.String()))
	return nil
}

func (s *Store) write(image []byte) *Error {
	geom := s.dev.Geometry()

	if err := s.dev.Erase(s.offset, geom.SectorSize); err != nil {
		return &Error{Op: OpErase, Err: err}
	}

	staged := bytes.Clone(image)
	staged[offStatus] = flash.Erased
	if err := s.dev.Program(s.offset, staged); err != nil {
		return &Error{Op: OpProgram, Err: err}
	}
	if err := s.dev.Program(s.offset, image[:geom.PageSize]); err != nil {
		return &Error{Op: OpProgram, Err: err}
	}

	readBack := make([]byte, len(image))
	if _, err := s.dev.ReadAt(readBack, s.offset); err != nil {
		return &Error{Op: OpVerify, Err: err}
	}
	if !bytes.Equal(readBack, image) {
		return &Error{Op: OpVerify, Err: fmt.Errorf("read-back mismatch at 0x%x", s.offset)}
	}
	return nil
}

// Reset empties all three fields, returns the status to DefaultValues and
// commits. Recorded codes are kept.
func (s *Store) Reset() error {
	s.mu.Lock()
	s.shadow.SSID = ""
	s.shadow.Password = ""
	s.shadow.ServerURL = ""
	s.shadow.Status = DefaultValues
	push(&s.shadow.LogCodes, &s.shadow.LogIndex, uint8(logging.MasterResetPerformed))
	s.mu.Unlock()

	if err := s.Commit(); err != nil {
		return err
	}
	logging.LogEvent(logging.MasterResetPerformed)
	return nil
}
