package deviceconfig

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"github.com/favsoft/epdsetup/internal/pages"
)

func TestClassifyNetworkError(t *testing.T) {
	wrap := func(inner error) error {
		return &url.Error{
			Op:  "Get",
			URL: "http://192.168.4.16",
			Err: &net.OpError{Op: "dial", Net: "tcp", Err: inner},
		}
	}

	tests := []struct {
		name        string
		err         error
		wantType    ErrorType
		wantSubtype NetworkErrorSubtype
		retryable   bool
	}{
		{"timeout", wrap(&timeoutError{}), ErrTypeTimeout, NetworkErrorTimeout, true},
		{"connection refused", wrap(syscall.ECONNREFUSED), ErrTypeConnectionRefused, NetworkErrorConnectionRefused, true},
		{"host unreachable", wrap(syscall.EHOSTUNREACH), ErrTypeNetwork, NetworkErrorHostUnreachable, true},
		{"network unreachable", wrap(syscall.ENETUNREACH), ErrTypeNetwork, NetworkErrorNetworkUnreachable, true},
		{"dns", &net.DNSError{Err: "no such host", Name: "epd.local", IsNotFound: true}, ErrTypeDNS, NetworkErrorDNS, false},
		{"generic", errors.New("connection reset"), ErrTypeNetwork, NetworkErrorGeneral, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devErr := ClassifyNetworkError(tt.err, "192.168.4.16")
			if devErr == nil {
				t.Fatal("ClassifyNetworkError() = nil")
			}
			if devErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", devErr.Type, tt.wantType)
			}
			if devErr.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", devErr.NetworkSubtype, tt.wantSubtype)
			}
			if devErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", devErr.Retryable, tt.retryable)
			}
		})
	}

	if ClassifyNetworkError(nil, "") != nil {
		t.Error("ClassifyNetworkError(nil) should be nil")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"network error", &DeviceError{Type: ErrTypeNetwork, Retryable: true}, true},
		{"validation error", NewValidationError("bad", nil), false},
		{"page error", NewPageError(pages.MsgStorage), false},
		{"HTTP 500", NewHTTPError(500, "boom"), true},
		{"HTTP 404", NewHTTPError(404, "missing"), false},
		{"wrapped network error", fmt.Errorf("scan: %w", &DeviceError{Type: ErrTypeNetwork, Retryable: true}), true},
		{"unknown error", errors.New("unknown error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	pageErr := fmt.Errorf("submit: %w", NewPageError(pages.MsgInvalidPassword))

	if !IsPageError(pageErr) {
		t.Error("IsPageError() = false for wrapped page error")
	}
	if IsNetworkError(pageErr) || IsValidationError(pageErr) || IsHTTPError(pageErr) || IsParseError(pageErr) {
		t.Error("page error matched another classifier")
	}
	if !IsNetworkError(&DeviceError{Type: ErrTypeDNS}) {
		t.Error("DNS errors are network errors")
	}
	if !IsParseError(NewParseError("x", nil)) {
		t.Error("IsParseError() = false")
	}
	if !IsHTTPError(NewHTTPError(503, "x")) {
		t.Error("IsHTTPError() = false")
	}
}

func TestNewPageError(t *testing.T) {
	err := NewPageError(pages.MsgInvalidPassword)

	if err.PageMessage != pages.MsgInvalidPassword {
		t.Errorf("PageMessage = %q", err.PageMessage)
	}
	if strings.Contains(err.Message, "<") {
		t.Errorf("Message should be plain text, got %q", err.Message)
	}
	if !strings.HasPrefix(err.Message, "Invalid Password") {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedText string
	}{
		{"timeout", &DeviceError{Type: ErrTypeTimeout}, "Display not responding (timeout)"},
		{"connection refused", &DeviceError{Type: ErrTypeConnectionRefused}, "Display refused connection - is it in setup mode?"},
		{"dns", &DeviceError{Type: ErrTypeDNS}, "Cannot resolve display hostname"},
		{"host unreachable", &DeviceError{Type: ErrTypeNetwork, NetworkSubtype: NetworkErrorHostUnreachable}, "Display unreachable - check network connection"},
		{"HTTP 500", &DeviceError{Type: ErrTypeHTTP, StatusCode: 500}, "Display error (HTTP 500)"},
		{"validation", &DeviceError{Type: ErrTypeValidation, Message: "SSID too long"}, "SSID too long"},
		{"page", NewPageError(pages.MsgInvalidRequest), "Invalid Request"},
		{"plain error", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetShortErrorMessage(tt.err); got != tt.expectedText {
				t.Errorf("GetShortErrorMessage() = %q, want %q", got, tt.expectedText)
			}
		})
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedTexts []string
	}{
		{"timeout", &DeviceError{Type: ErrTypeTimeout}, []string{"did not respond in time", "Troubleshooting:", "powered on"}},
		{"connection refused", &DeviceError{Type: ErrTypeConnectionRefused}, []string{"refused the connection", "configuration jumper"}},
		{"dns", &DeviceError{Type: ErrTypeDNS}, []string{"resolve the display hostname", "epdsetup-cfg scan"}},
		{"host unreachable", &DeviceError{Type: ErrTypeNetwork, NetworkSubtype: NetworkErrorHostUnreachable, DeviceIP: "192.168.4.16"}, []string{"not reachable", "ping 192.168.4.16"}},
		{"storage failure", NewPageError(pages.MsgStorage), []string{"flash", "master reset"}},
		{"field rejected", NewPageError(pages.MsgInvalidSSID), []string{"rejected the values"}},
		{"not found", NewNotFoundError("setup/nothing"), []string{"does not serve"}},
		{"unknown", errors.New("x"), []string{"unexpected error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := GetTroubleshootingHint(tt.err)
			for _, text := range tt.expectedTexts {
				if !strings.Contains(hint, text) {
					t.Errorf("hint missing %q:\n%s", text, hint)
				}
			}
		})
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeNetwork, "Network Error"},
		{ErrTypeDevice, "Display Error"},
		{ErrTypeNotFound, "Page Not Found"},
		{ErrorType(99), "ErrorType(99)"},
	}
	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", int(tt.et), got, tt.want)
		}
	}
}

func TestDeviceErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewParseError("outer", inner)
	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
	if !strings.Contains(err.Error(), "caused by: inner") {
		t.Errorf("Error() = %q", err.Error())
	}
}

// timeoutError is a mock error that implements timeout behavior
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }
