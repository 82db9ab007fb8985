package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/favsoft/epdsetup/internal/credentials"
	"github.com/favsoft/epdsetup/internal/flash"
	"github.com/favsoft/epdsetup/internal/logging"
	"github.com/favsoft/epdsetup/internal/storage"
)

func newTestStore(t *testing.T) (*storage.Store, *flash.Memory) {
	t.Helper()
	dev := flash.NewMemory(flash.Geometry{Size: 8192, SectorSize: 4096, PageSize: 256})
	st, err := storage.Open(dev)
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	return st, dev
}

func reopen(t *testing.T, dev flash.Device) *storage.Store {
	t.Helper()
	st, err := storage.Open(dev)
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	return st
}

const fullBody = "networkname=Home+Net&password=LongEnough1&serverURL=http://10.0.0.5/api"

func TestSaveCredentialsEndToEnd(t *testing.T) {
	st, dev := newTestStore(t)
	s := New(st)

	if s.Complete() {
		t.Fatal("Complete() = true for a fresh store")
	}
	if err := s.SaveCredentials([]byte(fullBody)); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}

	want := Fields{SSID: "Home Net", Password: "LongEnough1", ServerURL: "http://10.0.0.5/api"}
	if got := s.Committed(); got != want {
		t.Errorf("Committed() = %+v, want %+v", got, want)
	}
	if !s.Complete() {
		t.Error("Complete() = false after valid save")
	}

	fresh := reopen(t, dev)
	if fresh.Status() != storage.CredentialsSet {
		t.Errorf("persisted status = %v, want %v", fresh.Status(), storage.CredentialsSet)
	}
	if fresh.SSID() != "Home Net" || fresh.ServerURL() != "http://10.0.0.5/api" {
		t.Errorf("persisted fields = %q %q", fresh.SSID(), fresh.ServerURL())
	}
	logs := fresh.Logs()
	if logs[len(logs)-1] != logging.WiFiCredentialsSet {
		t.Errorf("Logs() = %v, want trailing WiFiCredentialsSet", logs)
	}
}

func TestStatusProgression(t *testing.T) {
	st, _ := newTestStore(t)
	s := New(st)

	steps := []struct {
		name string
		body string
		want storage.Status
	}{
		{"ssid only", "networkname=Home&password=&serverURL=", storage.SettingCredentials},
		{"all three", fullBody, storage.CredentialsSet},
		{"clear url", "networkname=Home+Net&password=LongEnough1&serverURL=", storage.SettingCredentials},
	}

	for _, step := range steps {
		if err := s.SaveCredentials([]byte(step.body)); err != nil {
			t.Fatalf("%s: SaveCredentials() error = %v", step.name, err)
		}
		if st.Status() != step.want {
			t.Errorf("%s: status = %v, want %v", step.name, st.Status(), step.want)
		}
	}

	logs := st.Logs()
	if logs[len(logs)-1] != logging.WiFiCredentialsUpdated {
		t.Errorf("Logs() = %v, want trailing WiFiCredentialsUpdated", logs)
	}
}

func TestSaveCredentialsMissingField(t *testing.T) {
	st, dev := newTestStore(t)
	s := New(st)
	if err := s.SaveCredentials([]byte(fullBody)); err != nil {
		t.Fatal(err)
	}
	before := s.Committed()

	err := s.SaveCredentials([]byte("networkname=Other&serverURL=http://x/"))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("SaveCredentials() error = %v, want ErrInvalidRequest", err)
	}
	if s.Committed() != before || s.Pending() != before {
		t.Error("missing field request mutated session state")
	}
	if st.Dirty() {
		t.Error("missing field request touched the shadow record")
	}
	if reopen(t, dev).SSID() != "Home Net" {
		t.Error("missing field request changed flash")
	}
}

func TestSaveCredentialsMalformedEscape(t *testing.T) {
	st, _ := newTestStore(t)
	s := New(st)

	err := s.SaveCredentials([]byte("networkname=Bad%2&password=&serverURL="))
	if !credentials.IsMalformed(err) {
		t.Fatalf("SaveCredentials() error = %v, want malformed", err)
	}
	if s.Pending() != (Fields{}) {
		t.Errorf("Pending() = %+v after malformed body", s.Pending())
	}
}

func TestSaveCredentialsPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field credentials.Field
	}{
		{"all bad", "networkname=%23bad&password=short&serverURL=a+b", credentials.FieldSSID},
		{"password and url", "networkname=Good&password=short&serverURL=a+b", credentials.FieldPassword},
		{"url only", "networkname=Good&password=LongEnough1&serverURL=a+b", credentials.FieldServerURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, dev := newTestStore(t)
			s := New(st)

			err := s.SaveCredentials([]byte(tt.body))
			field, ok := credentials.FieldOf(err)
			if !ok || field != tt.field {
				t.Fatalf("SaveCredentials() error = %v, want field %v", err, tt.field)
			}
			if s.Committed() != (Fields{}) {
				t.Error("rejected request changed committed values")
			}
			if st.Dirty() {
				t.Error("rejected request left changes in the shadow record")
			}
			if reopen(t, dev).SSID() != "" {
				t.Error("rejected request reached flash")
			}
		})
	}
}

func TestSaveCredentialsURLLongerThanSlot(t *testing.T) {
	st, dev := newTestStore(t)
	s := New(st)

	long := "http://10.0.0.5/" + strings.Repeat("a", storage.ServerURLSize)
	err := s.SaveCredentials([]byte("networkname=Home+Net&password=LongEnough1&serverURL=" + long))
	if field, ok := credentials.FieldOf(err); !ok || field != credentials.FieldServerURL {
		t.Fatalf("SaveCredentials() error = %v, want server URL error", err)
	}
	if s.Committed() != (Fields{}) {
		t.Errorf("Committed() = %+v, want unchanged", s.Committed())
	}

	// the longest accepted URL fits its slot and survives a reopen
	fits := "http://10.0.0.5/" + strings.Repeat("a", credentials.MaxServerURLLength-16)
	if err := s.SaveCredentials([]byte("networkname=Home+Net&password=LongEnough1&serverURL=" + fits)); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}
	if got := reopen(t, dev).ServerURL(); got != s.Committed().ServerURL {
		t.Errorf("persisted URL has %d bytes, committed %d", len(got), len(s.Committed().ServerURL))
	}
}

func TestRejectedFieldsNeverLeak(t *testing.T) {
	st, dev := newTestStore(t)
	s := New(st)

	// SSID accepted, password rejected: nothing may be committed
	if err := s.SaveCredentials([]byte("networkname=Leaky&password=short&serverURL=")); err == nil {
		t.Fatal("expected password error")
	}
	// a later valid save of a different URL must not carry "Leaky"
	if err := s.SaveCredentials([]byte("networkname=&password=&serverURL=http://x/")); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}
	if got := reopen(t, dev).SSID(); got != "" {
		t.Errorf("persisted SSID = %q, want empty", got)
	}
}

func TestSaveCredentialsNoChange(t *testing.T) {
	st, dev := newTestStore(t)
	s := New(st)
	if err := s.SaveCredentials([]byte(fullBody)); err != nil {
		t.Fatal(err)
	}
	before := dev.Snapshot()

	if err := s.SaveCredentials([]byte(fullBody)); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}
	after := dev.Snapshot()
	if string(before) != string(after) {
		t.Error("unchanged submission rewrote flash")
	}
}

func TestSaveCredentialsStorageFailure(t *testing.T) {
	st, dev := newTestStore(t)
	s := New(st)

	dev.FailNextErase(errors.New("worn out"))
	err := s.SaveCredentials([]byte(fullBody))
	if !storage.IsStorageError(err) {
		t.Fatalf("SaveCredentials() error = %v, want storage error", err)
	}
	if s.Committed() != (Fields{}) {
		t.Errorf("Committed() = %+v after failed commit", s.Committed())
	}
	if st.SSID() != "" || st.Status() != storage.DefaultValues {
		t.Errorf("store not rolled back: %q %v", st.SSID(), st.Status())
	}
}

func TestCancelAndClear(t *testing.T) {
	st, _ := newTestStore(t)
	s := New(st)
	if err := s.SaveCredentials([]byte(fullBody)); err != nil {
		t.Fatal(err)
	}

	s.Clear()
	if s.Pending() != (Fields{}) || s.Complete() {
		t.Errorf("Clear() left %+v", s.Pending())
	}
	if s.Committed().SSID != "Home Net" {
		t.Error("Clear() changed committed values")
	}

	s.Cancel()
	if s.Pending() != s.Committed() || !s.Complete() {
		t.Errorf("Cancel() left %+v", s.Pending())
	}
}

func TestMasterReset(t *testing.T) {
	st, dev := newTestStore(t)
	s := New(st)
	if err := s.SaveCredentials([]byte(fullBody)); err != nil {
		t.Fatal(err)
	}

	if err := s.MasterReset(); err != nil {
		t.Fatalf("MasterReset() error = %v", err)
	}
	if s.Committed() != (Fields{}) || s.Pending() != (Fields{}) {
		t.Error("MasterReset() left session values")
	}
	fresh := reopen(t, dev)
	if fresh.Status() != storage.DefaultValues || fresh.SSID() != "" {
		t.Errorf("after reset: %v %q", fresh.Status(), fresh.SSID())
	}
}

func TestNewSeedsFromStore(t *testing.T) {
	st, dev := newTestStore(t)
	if err := New(st).SaveCredentials([]byte(fullBody)); err != nil {
		t.Fatal(err)
	}

	s := New(reopen(t, dev))
	if s.Pending().SSID != "Home Net" || !s.Valid(credentials.FieldPassword) || !s.Complete() {
		t.Errorf("New() did not seed from store: %+v", s.Pending())
	}
}
