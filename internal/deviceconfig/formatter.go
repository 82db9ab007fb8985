package deviceconfig

import (
	"fmt"
	"strings"

	"github.com/favsoft/epdsetup/internal/pages"
)

// MaskPassword hides a password, keeping only its length visible.
func MaskPassword(p string) string {
	if p == "" {
		return "(empty)"
	}
	return strings.Repeat("•", len(p))
}

// Summary returns a one-line description of a parsed page.
func (r *PageResult) Summary() string {
	switch r.Page {
	case pages.Home:
		if r.DisplayAvailable {
			return "Main menu (credentials complete, display mode available)"
		}
		return "Main menu (credentials incomplete)"
	case pages.ImageServerForm:
		return "Credentials form: " + r.Form.String()
	case pages.DeviceID:
		return "Display ID: " + r.DeviceID
	case pages.Error:
		return "Error: " + PlainText(string(r.Message))
	case pages.ResetResult:
		if r.ResetOK {
			return "Reset: " + pages.ResetSucceeded
		}
		return "Reset: " + PlainText(pages.ResetFailed)
	case pages.ModeChanged:
		return "Display mode entered"
	default:
		return r.Page.String()
	}
}

// FormatCredentials renders the form values for terminal output.
func FormatCredentials(c Credentials) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Network Name: %s\n", orUnset(c.SSID)))
	sb.WriteString(fmt.Sprintf("Password:     %s\n", MaskPassword(c.Password)))
	sb.WriteString(fmt.Sprintf("Image Server: %s\n", orUnset(c.ServerURL)))
	return sb.String()
}

// FormatChanges lists which fields differ between old and new.
func FormatChanges(old, new Credentials) string {
	var lines []string
	if old.SSID != new.SSID {
		lines = append(lines, fmt.Sprintf("  Network Name: %s → %s", orUnset(old.SSID), orUnset(new.SSID)))
	}
	if old.Password != new.Password {
		lines = append(lines, fmt.Sprintf("  Password:     %s → %s", MaskPassword(old.Password), MaskPassword(new.Password)))
	}
	if old.ServerURL != new.ServerURL {
		lines = append(lines, fmt.Sprintf("  Image Server: %s → %s", orUnset(old.ServerURL), orUnset(new.ServerURL)))
	}
	if len(lines) == 0 {
		return "No changes"
	}
	return "Changes:\n" + strings.Join(lines, "\n")
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
