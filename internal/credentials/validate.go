package credentials

import (
	"fmt"
	"strings"
)

// Field identifies one of the three credential fields.
type Field int

const (
	FieldNone Field = iota
	FieldSSID
	FieldPassword
	FieldServerURL
)

// Fields lists the credential fields in error precedence order.
var Fields = []Field{FieldSSID, FieldPassword, FieldServerURL}

// Key returns the form key the setup page submits the field under.
func (f Field) Key() string {
	switch f {
	case FieldSSID:
		return "networkname"
	case FieldPassword:
		return "password"
	case FieldServerURL:
		return "serverURL"
	default:
		return ""
	}
}

func (f Field) String() string {
	switch f {
	case FieldSSID:
		return "Network Name (SSID)"
	case FieldPassword:
		return "Password"
	case FieldServerURL:
		return "Server URL"
	default:
		return "none"
	}
}

// Length limits.
const (
	MinSSIDLength      = 1
	MaxSSIDLength      = 32
	MinPasswordLength  = 8
	MaxPasswordLength  = 63
	MaxServerURLLength = 2048
)

const ssidForbidden = "+]/\"\t"

// ValidSSID reports whether s is an acceptable network name.
func ValidSSID(s string) bool {
	return CheckSSID(s) == nil
}

// ValidPassword reports whether s is an acceptable network password.
func ValidPassword(s string) bool {
	return CheckPassword(s) == nil
}

// ValidServerURL reports whether s is an acceptable image server URL.
func ValidServerURL(s string) bool {
	return CheckServerURL(s) == nil
}

// Valid runs the validator for f.
func Valid(f Field, s string) bool {
	return Check(f, s) == nil
}

// Check runs the checker for f.
func Check(f Field, s string) error {
	switch f {
	case FieldSSID:
		return CheckSSID(s)
	case FieldPassword:
		return CheckPassword(s)
	case FieldServerURL:
		return CheckServerURL(s)
	default:
		return newValidation(f, "unknown field")
	}
}

// CheckSSID validates a network name and names the first rule it breaks.
func CheckSSID(s string) error {
	if len(s) < MinSSIDLength || len(s) > MaxSSIDLength {
		return newValidation(FieldSSID, fmt.Sprintf("must be %d to %d characters", MinSSIDLength, MaxSSIDLength))
	}
	switch s[0] {
	case '!', '#', ';':
		return newValidation(FieldSSID, fmt.Sprintf("cannot start with %q", s[0]))
	}
	if s[len(s)-1] == ' ' {
		return newValidation(FieldSSID, "cannot end with a space")
	}
	if i := strings.IndexAny(s, ssidForbidden); i >= 0 {
		return newValidation(FieldSSID, fmt.Sprintf("cannot contain %q", s[i]))
	}
	if i := nonPrintable(s); i >= 0 {
		return newValidation(FieldSSID, fmt.Sprintf("byte 0x%02x at position %d is not printable ASCII", s[i], i))
	}
	return nil
}

// CheckPassword validates a network password.
func CheckPassword(s string) error {
	if len(s) < MinPasswordLength || len(s) > MaxPasswordLength {
		return newValidation(FieldPassword, fmt.Sprintf("must be %d to %d characters", MinPasswordLength, MaxPasswordLength))
	}
	if i := nonPrintable(s); i >= 0 {
		return newValidation(FieldPassword, fmt.Sprintf("character at position %d is not printable ASCII", i))
	}
	return nil
}

// CheckServerURL validates an image server URL: at most
// MaxServerURLLength printable ASCII bytes without spaces.
func CheckServerURL(s string) error {
	if len(s) > MaxServerURLLength {
		return newValidation(FieldServerURL, fmt.Sprintf("must be at most %d characters", MaxServerURLLength))
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return newValidation(FieldServerURL, fmt.Sprintf("cannot contain a space (position %d)", i))
	}
	if i := nonPrintable(s); i >= 0 {
		return newValidation(FieldServerURL, fmt.Sprintf("byte 0x%02x at position %d is not printable ASCII", s[i], i))
	}
	return nil
}

// nonPrintable returns the index of the first byte outside 32..126, or -1.
func nonPrintable(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] < 32 || s[i] > 126 {
			return i
		}
	}
	return -1
}
