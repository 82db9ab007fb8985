package storage

import (
	"bytes"
	"fmt"

	"github.com/favsoft/epdsetup/internal/logging"
)

// Slot capacities, terminator included.
const (
	SSIDSize      = 33
	PasswordSize  = 64
	ServerURLSize = 2049
	CodeSlots     = 10

	// RecordSize is the on-flash size of a Record: nine 256 byte pages.
	RecordSize = 2304
)

// Byte offsets inside the marshalled record.
const (
	offStatus    = 0
	offSSID      = offStatus + 1
	offPassword  = offSSID + SSIDSize
	offServerURL = offPassword + PasswordSize
	offErrors    = offServerURL + ServerURLSize
	offErrIndex  = offErrors + CodeSlots
	offLogs      = offErrIndex + 1
	offLogIndex  = offLogs + CodeSlots
	offPadding   = offLogIndex + 1
)

// Status is the configuration progress persisted with the record.
type Status uint8

const (
	Uninitialized Status = iota
	Formatted
	DefaultValues
	SettingCredentials
	CredentialsSet
)

// String returns the lowercase name used in logs, mDNS TXT records and YAML.
func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Formatted:
		return "formatted"
	case DefaultValues:
		return "default_values"
	case SettingCredentials:
		return "setting_credentials"
	case CredentialsSet:
		return "credentials_set"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(s))
	}
}

// Valid reports whether s is a known status other than Uninitialized.
func (s Status) Valid() bool {
	return s > Uninitialized && s <= CredentialsSet
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for s := Uninitialized; s <= CredentialsSet; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return Uninitialized, fmt.Errorf("unknown status %q", name)
}

// Record is the decoded configuration block.
type Record struct {
	Status    Status
	SSID      string
	Password  string
	ServerURL string

	ErrorCodes [CodeSlots]uint8
	ErrorIndex uint8
	LogCodes   [CodeSlots]uint8
	LogIndex   uint8
}

// Marshal encodes the record into its fixed RecordSize layout. Strings
// longer than their slot are truncated so the terminator always fits.
func (r *Record) Marshal() []byte {
	b := make([]byte, RecordSize)
	b[offStatus] = byte(r.Status)
	putString(b[offSSID:offPassword], r.SSID)
	putString(b[offPassword:offServerURL], r.Password)
	putString(b[offServerURL:offErrors], r.ServerURL)
	copy(b[offErrors:offErrIndex], r.ErrorCodes[:])
	b[offErrIndex] = r.ErrorIndex
	copy(b[offLogs:offLogIndex], r.LogCodes[:])
	b[offLogIndex] = r.LogIndex
	return b
}

// Unmarshal decodes a record. It does not judge the status; callers
// decide whether the block needs formatting.
func Unmarshal(b []byte) (Record, error) {
	if len(b) < RecordSize {
		return Record{}, fmt.Errorf("record is %d bytes, need %d", len(b), RecordSize)
	}

	r := Record{
		Status:     Status(b[offStatus]),
		SSID:       getString(b[offSSID:offPassword]),
		Password:   getString(b[offPassword:offServerURL]),
		ServerURL:  getString(b[offServerURL:offErrors]),
		ErrorIndex: b[offErrIndex] % CodeSlots,
		LogIndex:   b[offLogIndex] % CodeSlots,
	}
	copy(r.ErrorCodes[:], b[offErrors:offErrIndex])
	copy(r.LogCodes[:], b[offLogs:offLogIndex])
	return r, nil
}

func putString(slot []byte, s string) {
	clear(slot)
	copy(slot[:len(slot)-1], s)
}

// getString reads up to the first NUL, never past the slot's last byte.
func getString(slot []byte) string {
	slot = slot[:len(slot)-1]
	if i := bytes.IndexByte(slot, 0); i >= 0 {
		slot = slot[:i]
	}
	return string(slot)
}

func truncate(s string, size int) string {
	if len(s) > size-1 {
		return s[:size-1]
	}
	return s
}

// push appends code to a circular slot list.
func push(codes *[CodeSlots]uint8, index *uint8, code uint8) {
	codes[*index%CodeSlots] = code
	*index = (*index + 1) % CodeSlots
}

// Errors returns the recorded error codes, oldest first.
func (r *Record) Errors() []logging.ErrorCode {
	var out []logging.ErrorCode
	for _, c := range ordered(r.ErrorCodes, r.ErrorIndex) {
		out = append(out, logging.ErrorCode(c))
	}
	return out
}

// Logs returns the recorded log codes, oldest first.
func (r *Record) Logs() []logging.LogCode {
	var out []logging.LogCode
	for _, c := range ordered(r.LogCodes, r.LogIndex) {
		out = append(out, logging.LogCode(c))
	}
	return out
}

// ordered returns the non-zero codes oldest first.
func ordered(codes [CodeSlots]uint8, index uint8) []uint8 {
	var out []uint8
	for i := 0; i < CodeSlots; i++ {
		if c := codes[(int(index)+i)%CodeSlots]; c != 0 {
			out = append(out, c)
		}
	}
	return out
}
