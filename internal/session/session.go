package session

import (
	"errors"
	"sync"

	"github.com/favsoft/epdsetup/internal/credentials"
	"github.com/favsoft/epdsetup/internal/logging"
	"github.com/favsoft/epdsetup/internal/storage"
	"go.uber.org/zap"
)

// ErrInvalidRequest is returned when a save request does not carry all
// three credential fields.
var ErrInvalidRequest = errors.New("session: request is missing credential fields")

// Store is the part of the persistent store a session drives.
type Store interface {
	SSID() string
	Password() string
	ServerURL() string
	Status() storage.Status
	SetSSID(string)
	SetPassword(string)
	SetServerURL(string)
	SetStatus(storage.Status)
	RecordLog(logging.LogCode)
	Commit() error
	Reset() error
}

// Fields holds one value per credential field.
type Fields struct {
	SSID      string
	Password  string
	ServerURL string
}

// Get returns the value of f.
func (v Fields) Get(f credentials.Field) string {
	switch f {
	case credentials.FieldSSID:
		return v.SSID
	case credentials.FieldPassword:
		return v.Password
	case credentials.FieldServerURL:
		return v.ServerURL
	default:
		return ""
	}
}

// Set replaces the value of f.
func (v *Fields) Set(f credentials.Field, value string) {
	switch f {
	case credentials.FieldSSID:
		v.SSID = value
	case credentials.FieldPassword:
		v.Password = value
	case credentials.FieldServerURL:
		v.ServerURL = value
	}
}

// Session tracks committed and pending credential values for the setup
// pages. Committed only changes after a successful store commit.
type Session struct {
	mu        sync.Mutex
	store     Store
	committed Fields
	pending   Fields
	valid     map[credentials.Field]bool
}

// New seeds a session from the store's current values.
func New(store Store) *Session {
	s := &Session{store: store, valid: make(map[credentials.Field]bool, len(credentials.Fields))}
	s.committed = Fields{
		SSID:      store.SSID(),
		Password:  store.Password(),
		ServerURL: store.ServerURL(),
	}
	s.setPending(s.committed)
	return s
}

// setPending replaces pending and recomputes validity. Callers hold mu.
func (s *Session) setPending(v Fields) {
	s.pending = v
	for _, f := range credentials.Fields {
		value := v.Get(f)
		s.valid[f] = value != "" && credentials.Valid(f, value)
	}
}

// Committed returns the last persisted values.
func (s *Session) Committed() Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}

// Pending returns the values being edited.
func (s *Session) Pending() Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Valid reports whether the pending value of f is non-empty and valid.
func (s *Session) Valid(f credentials.Field) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valid[f]
}

// Complete reports whether all three pending values are non-empty and valid.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete()
}

// Configured reports whether the store holds a complete set of
// credentials, i.e. its status is CredentialsSet.
func (s *Session) Configured() bool {
	return s.store.Status() == storage.CredentialsSet
}

func (s *Session) complete() bool {
	for _, f := range credentials.Fields {
		if !s.valid[f] {
			return false
		}
	}
	return true
}

// Cancel discards pending edits.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPending(s.committed)
}

// Clear empties the pending values without touching the store.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPending(Fields{})
}

// SaveCredentials applies a urlencoded form body.
//
// All three fields must be present or ErrInvalidRequest is returned with
// nothing changed. Each value is decoded into pending; a value is accepted
// when it is empty or valid, and accepted values that differ from the
// committed ones are written to the store's shadow record. The status is
// recomputed from the pending values. The store is committed only when
// something changed and every field was accepted. Otherwise the shadow
// changes are reverted and the first rejected field's error is returned,
// checked in network name, password, server URL order.
func (s *Session) SaveCredentials(body []byte) error {
	form, err := credentials.ParseForm(body)
	if err != nil {
		return err
	}
	if !form.HasAll() {
		return ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var next Fields
	for _, f := range credentials.Fields {
		next.Set(f, form.Value(f.Key()))
	}
	s.setPending(next)

	prevStatus := s.store.Status()
	var (
		dirty    bool
		firstErr error
		changed  []credentials.Field
	)
	for _, f := range credentials.Fields {
		value := next.Get(f)
		if value != "" && !s.valid[f] {
			if firstErr == nil {
				firstErr = credentials.Check(f, value)
			}
			continue
		}
		if value != s.committed.Get(f) {
			s.setStore(f, value)
			changed = append(changed, f)
			dirty = true
		}
	}

	status := storage.SettingCredentials
	if s.complete() {
		status = storage.CredentialsSet
	}
	if status != prevStatus {
		s.store.SetStatus(status)
		dirty = true
	}

	if firstErr != nil || !dirty {
		for _, f := range changed {
			s.setStore(f, s.committed.Get(f))
		}
		s.store.SetStatus(prevStatus)
		if firstErr != nil {
			logging.Warn("Credentials rejected", zap.Error(firstErr))
		}
		return firstErr
	}

	event := logging.WiFiCredentialsUpdated
	if status == storage.CredentialsSet && prevStatus != storage.CredentialsSet {
		event = logging.WiFiCredentialsSet
	}
	s.store.RecordLog(event)

	if err := s.store.Commit(); err != nil {
		return err
	}

	for _, f := range changed {
		s.committed.Set(f, next.Get(f))
	}
	logging.LogEvent(event,
		zap.String("status", status.String()),
		zap.String("ssid", s.committed.SSID),
		zap.Int("password_len", len(s.committed.Password)),
		zap.String("server_url", s.committed.ServerURL),
	)
	return nil
}

func (s *Session) setStore(f credentials.Field, value string) {
	switch f {
	case credentials.FieldSSID:
		s.store.SetSSID(value)
	case credentials.FieldPassword:
		s.store.SetPassword(value)
	case credentials.FieldServerURL:
		s.store.SetServerURL(value)
	}
}

// MasterReset restores factory defaults in the store and empties both
// committed and pending values.
func (s *Session) MasterReset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Reset(); err != nil {
		return err
	}
	s.committed = Fields{}
	s.setPending(Fields{})
	return nil
}
