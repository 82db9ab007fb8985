package credentials

import (
	"net/url"
	"strings"
)

// Decode percent-decodes one form value: '+' becomes a space and %XX the
// byte it encodes. A '%' without two hex digits after it is a malformed
// request. Apply it once per submitted value.
func Decode(s string) (string, error) {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return "", newMalformed("bad percent escape", err)
	}
	return out, nil
}

// Form holds the decoded values of a urlencoded body.
type Form struct {
	values map[string]string
}

// ParseForm splits body into '&'-separated key=value pairs and decodes each
// value once. Keys match exactly and case-sensitively; the first occurrence
// of a key wins. A pair without '=' carries an empty value.
func ParseForm(body []byte) (Form, error) {
	f := Form{values: make(map[string]string)}

	rest := string(body)
	for rest != "" {
		var pair string
		pair, rest, _ = strings.Cut(rest, "&")
		if pair == "" {
			continue
		}

		key, raw, _ := strings.Cut(pair, "=")
		value, err := Decode(raw)
		if err != nil {
			return Form{}, err
		}
		if _, seen := f.values[key]; !seen {
			f.values[key] = value
		}
	}
	return f, nil
}

// Has reports whether key was submitted.
func (f Form) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Value returns the decoded value for key, or "" when absent.
func (f Form) Value(key string) string {
	return f.values[key]
}

// HasAll reports whether every credential field was submitted.
func (f Form) HasAll() bool {
	for _, field := range Fields {
		if !f.Has(field.Key()) {
			return false
		}
	}
	return true
}

// Encode builds a urlencoded body for the three credential fields in form
// order.
func Encode(ssid, password, serverURL string) string {
	return FieldSSID.Key() + "=" + url.QueryEscape(ssid) +
		"&" + FieldPassword.Key() + "=" + url.QueryEscape(password) +
		"&" + FieldServerURL.Key() + "=" + url.QueryEscape(serverURL)
}
