package deviceconfig

import (
	"fmt"

	"github.com/favsoft/epdsetup/internal/credentials"
)

// Credentials are the three values the display's setup form accepts.
//
// The display stores the SSID and password for its WiFi station and the
// URL it fetches images from. All three must pass the display's field rules
// before it will leave configuring mode.
type Credentials struct {
	SSID      string // networkname field, 1..32 characters
	Password  string // password field, 8..63 printable ASCII characters
	ServerURL string // serverURL field, up to 2048 characters
}

// ToFormData encodes the credentials as the form body the display expects.
func (c Credentials) ToFormData() string {
	return credentials.Encode(c.SSID, c.Password, c.ServerURL)
}

// Get returns the value of a single field.
func (c Credentials) Get(f credentials.Field) string {
	switch f {
	case credentials.FieldSSID:
		return c.SSID
	case credentials.FieldPassword:
		return c.Password
	case credentials.FieldServerURL:
		return c.ServerURL
	default:
		return ""
	}
}

// Merge returns c with empty fields taken from base. Used to submit a
// single changed field while keeping the rest of what the display shows.
func (c Credentials) Merge(base Credentials) Credentials {
	if c.SSID == "" {
		c.SSID = base.SSID
	}
	if c.Password == "" {
		c.Password = base.Password
	}
	if c.ServerURL == "" {
		c.ServerURL = base.ServerURL
	}
	return c
}

// String never includes the password.
func (c Credentials) String() string {
	return fmt.Sprintf("SSID=%q Password=%s ServerURL=%q", c.SSID, MaskPassword(c.Password), c.ServerURL)
}
