package deviceconfig

import (
	"testing"

	"github.com/favsoft/epdsetup/internal/pages"
)

func mustRender(t *testing.T, body []byte, err error) []byte {
	t.Helper()
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	return body
}

func TestParsePage(t *testing.T) {
	r := pages.NewRenderer(0)

	home, err := r.Home(false)
	homeComplete, err2 := r.Home(true)
	form, err3 := r.ImageServerForm(`my "net"`, "pass&word<>", "http://img.local/a?b=c")
	id, err4 := r.DeviceID("EPD-1A2B3C4D")
	for _, e := range []error{err, err2, err3, err4} {
		if e != nil {
			t.Fatalf("render error = %v", e)
		}
	}

	resetConfirm, err := r.MasterResetConfirm()
	resetConfirm = mustRender(t, resetConfirm, err)
	resetOK, err := r.ResetResult(true)
	resetOK = mustRender(t, resetOK, err)
	resetFailed, err := r.ResetResult(false)
	resetFailed = mustRender(t, resetFailed, err)
	modeConfirm, err := r.ChangeModeConfirm()
	modeConfirm = mustRender(t, modeConfirm, err)
	modeChanged, err := r.ModeChanged()
	modeChanged = mustRender(t, modeChanged, err)
	errPage, err := r.ErrorPage(pages.MsgInvalidURL, pages.PathImageServer)
	errPage = mustRender(t, errPage, err)

	tests := []struct {
		name  string
		body  []byte
		check func(t *testing.T, res *PageResult)
		want  pages.Page
	}{
		{"home incomplete", home, func(t *testing.T, res *PageResult) {
			if res.DisplayAvailable {
				t.Error("DisplayAvailable = true for incomplete credentials")
			}
		}, pages.Home},
		{"home complete", homeComplete, func(t *testing.T, res *PageResult) {
			if !res.DisplayAvailable {
				t.Error("DisplayAvailable = false for complete credentials")
			}
		}, pages.Home},
		{"form", form, func(t *testing.T, res *PageResult) {
			want := Credentials{SSID: `my "net"`, Password: "pass&word<>", ServerURL: "http://img.local/a?b=c"}
			if res.Form != want {
				t.Errorf("Form = %+v, want %+v", res.Form, want)
			}
		}, pages.ImageServerForm},
		{"device id", id, func(t *testing.T, res *PageResult) {
			if res.DeviceID != "EPD-1A2B3C4D" {
				t.Errorf("DeviceID = %q", res.DeviceID)
			}
		}, pages.DeviceID},
		{"reset confirm", resetConfirm, nil, pages.MasterResetConfirm},
		{"reset ok", resetOK, func(t *testing.T, res *PageResult) {
			if !res.ResetOK {
				t.Error("ResetOK = false")
			}
		}, pages.ResetResult},
		{"reset failed", resetFailed, func(t *testing.T, res *PageResult) {
			if res.ResetOK {
				t.Error("ResetOK = true")
			}
		}, pages.ResetResult},
		{"mode confirm", modeConfirm, nil, pages.ChangeModeConfirm},
		{"mode changed", modeChanged, nil, pages.ModeChanged},
		{"error", errPage, func(t *testing.T, res *PageResult) {
			if res.Message != pages.MsgInvalidURL {
				t.Errorf("Message = %q", res.Message)
			}
			if res.ReturnPath != pages.PathImageServer {
				t.Errorf("ReturnPath = %q", res.ReturnPath)
			}
		}, pages.Error},
		{"not found", r.NotFound(), nil, pages.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParsePage(tt.body)
			if err != nil {
				t.Fatalf("ParsePage() error = %v", err)
			}
			if res.Page != tt.want {
				t.Fatalf("Page = %v, want %v", res.Page, tt.want)
			}
			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}

func TestParsePage_Unrecognised(t *testing.T) {
	_, err := ParsePage([]byte("<html><body>router admin</body></html>"))
	if !IsParseError(err) {
		t.Errorf("ParsePage() error = %v, want parse error", err)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<b>Invalid Request</b>", "Invalid Request"},
		{"Unable to reset the display to<br>factory defaults", "Unable to reset the display to factory defaults"},
		{"a &amp; b", "a & b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
