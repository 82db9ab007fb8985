package httpd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/favsoft/epdsetup/internal/flash"
	"github.com/favsoft/epdsetup/internal/pages"
	"github.com/favsoft/epdsetup/internal/session"
	"github.com/favsoft/epdsetup/internal/storage"
)

type fixture struct {
	dev     *flash.Memory
	store   *storage.Store
	session *session.Session
	router  *Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := flash.NewMemory(flash.Geometry{Size: 8192, SectorSize: 4096, PageSize: 256})
	st, err := storage.Open(dev)
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	sess := session.New(st)
	return &fixture{
		dev:     dev,
		store:   st,
		session: sess,
		router:  NewRouter(sess, pages.NewRenderer(0), "EPD-0000ABCD"),
	}
}

func get(path string) []byte {
	return []byte("GET /" + path + " HTTP/1.1\r\nHost: 192.168.4.1\r\n\r\n")
}

func post(path, body string) []byte {
	return []byte(fmt.Sprintf("POST /%s HTTP/1.1\r\nHost: 192.168.4.1\r\nContent-Type: application/x-www-form-urlencoded\r\nContent-Length: %d\r\n\r\n%s",
		path, len(body), body))
}

const validBody = "networkname=Home+Net&password=LongEnough1&serverURL=http://10.0.0.5/api"

func (f *fixture) route(t *testing.T, raw []byte) Response {
	t.Helper()
	resp, err := f.router.Route(raw)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if !strings.HasPrefix(string(resp.Data), "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("response does not start with status line: %q", resp.Data[:20])
	}
	return resp
}

func TestRouteTable(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want pages.Page
	}{
		{"get home", get(pages.PathHome), pages.Home},
		{"get root", get(""), pages.Home},
		{"get other", get(pages.PathImageServer), pages.NotFound},
		{"post home", post(pages.PathHome, ""), pages.Home},
		{"post bogus", post("setup/bogus", ""), pages.NotFound},
		{"post wrong case", post("setup/Home", ""), pages.NotFound},
		{"image server", post(pages.PathImageServer, ""), pages.ImageServerForm},
		{"device id", post(pages.PathDeviceID, ""), pages.DeviceID},
		{"master reset", post(pages.PathMasterReset, ""), pages.MasterResetConfirm},
		{"reset confirmed", post(pages.PathResetConfirmed, ""), pages.ResetResult},
		{"clear form", post(pages.PathResetCredentials, ""), pages.ImageServerForm},
		{"cancel form", post(pages.PathCancelCredentials, ""), pages.Home},
		{"display incomplete", post(pages.PathDisplayConfirm, ""), pages.Home},
		{"display mode incomplete", post(pages.PathDisplayMode, ""), pages.Home},
		{"overlong path", post(strings.Repeat("a", MaxPathLength+1), ""), pages.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			resp := f.route(t, tt.raw)
			if resp.Page != tt.want {
				t.Errorf("Page = %v, want %v", resp.Page, tt.want)
			}
			if resp.ExitConfiguring {
				t.Error("ExitConfiguring set for a non-terminal page")
			}
		})
	}
}

func TestRouteUnknownMethod(t *testing.T) {
	f := newFixture(t)
	if _, err := f.router.Route([]byte("DELETE /setup/home HTTP/1.1\r\n\r\n")); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("Route() error = %v, want ErrUnknownMethod", err)
	}
}

func TestRouteSaveCredentials(t *testing.T) {
	f := newFixture(t)

	resp := f.route(t, post(pages.PathSaveCredentials, validBody))
	if resp.Page != pages.Home {
		t.Fatalf("Page = %v, want home", resp.Page)
	}
	if !strings.Contains(string(resp.Data), `formaction="/setup/display"`) {
		t.Error("home page after a complete save should offer the Display button")
	}
	if f.store.Status() != storage.CredentialsSet {
		t.Errorf("status = %v, want %v", f.store.Status(), storage.CredentialsSet)
	}

	resp = f.route(t, post(pages.PathDisplayConfirm, ""))
	if resp.Page != pages.ChangeModeConfirm {
		t.Errorf("display confirm Page = %v", resp.Page)
	}
	resp = f.route(t, post(pages.PathDisplayMode, ""))
	if resp.Page != pages.ModeChanged || !resp.ExitConfiguring {
		t.Errorf("display mode Page = %v exit = %v", resp.Page, resp.ExitConfiguring)
	}
}

func TestRouteSaveErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing password", "networkname=Home&serverURL=http://x/", "Invalid Request"},
		{"bad escape", "networkname=%ZZ&password=&serverURL=", "Invalid Request"},
		{"bad ssid", "networkname=%21bad&password=short&serverURL=", "Invalid Network Name"},
		{"bad password", "networkname=Home&password=short&serverURL=a+b", "Invalid Password"},
		{"bad url", "networkname=Home&password=LongEnough1&serverURL=a+b", "Invalid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			resp := f.route(t, post(pages.PathSaveCredentials, tt.body))
			if resp.Page != pages.Error {
				t.Fatalf("Page = %v, want error", resp.Page)
			}
			page := string(resp.Data)
			if !strings.Contains(page, tt.want) {
				t.Errorf("error page missing %q", tt.want)
			}
			if !strings.Contains(page, `formaction="/setup/imageserver" value="OK"`) {
				t.Error("error page should return to the image server form")
			}
			if f.session.Committed() != (session.Fields{}) {
				t.Error("rejected save changed committed values")
			}
		})
	}
}

func TestRouteStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.dev.FailNextProgram(errors.New("stuck"))

	resp := f.route(t, post(pages.PathSaveCredentials, validBody))
	if resp.Page != pages.Error || !strings.Contains(string(resp.Data), "Unable to store user entered data") {
		t.Errorf("Page = %v, want storage error page", resp.Page)
	}
	if f.store.SSID() != "" {
		t.Error("failed commit left the new SSID in memory")
	}
}

func TestRouteDisplayNeedsStoredCredentials(t *testing.T) {
	f := newFixture(t)
	f.dev.FailNextProgram(errors.New("stuck"))
	f.route(t, post(pages.PathSaveCredentials, validBody))

	resp := f.route(t, post(pages.PathHome, ""))
	if strings.Contains(string(resp.Data), `formaction="/setup/display"`) {
		t.Error("home page offers the Display button with nothing stored")
	}
	for _, path := range []string{pages.PathDisplayConfirm, pages.PathDisplayMode} {
		resp := f.route(t, post(path, ""))
		if resp.Page != pages.Home || resp.ExitConfiguring {
			t.Errorf("%s: Page = %v exit = %v, want home without exit", path, resp.Page, resp.ExitConfiguring)
		}
	}
}

func TestRouteFormEchoesPending(t *testing.T) {
	f := newFixture(t)
	f.route(t, post(pages.PathSaveCredentials, "networkname=Home&password=short&serverURL="))

	resp := f.route(t, post(pages.PathImageServer, ""))
	if !strings.Contains(string(resp.Data), `value="Home"`) {
		t.Error("form should show the pending network name after a rejected save")
	}

	f.route(t, post(pages.PathCancelCredentials, ""))
	resp = f.route(t, post(pages.PathImageServer, ""))
	if strings.Contains(string(resp.Data), `value="Home"`) {
		t.Error("cancel should restore committed values")
	}
}

func TestRouteMasterReset(t *testing.T) {
	f := newFixture(t)
	f.route(t, post(pages.PathSaveCredentials, validBody))

	resp := f.route(t, post(pages.PathResetConfirmed, ""))
	if !strings.Contains(string(resp.Data), pages.ResetSucceeded) {
		t.Error("reset result should report success")
	}
	if f.store.Status() != storage.DefaultValues || f.session.Complete() {
		t.Error("master reset did not restore defaults")
	}

	f.dev.FailNextErase(errors.New("worn"))
	resp = f.route(t, post(pages.PathResetConfirmed, ""))
	if !strings.Contains(string(resp.Data), "Unable to reset") {
		t.Error("reset result should report failure")
	}
}

func TestRoutePageTooLarge(t *testing.T) {
	f := newFixture(t)
	f.router = NewRouter(f.session, pages.NewRenderer(700), "EPD-0000ABCD")

	resp := f.route(t, post(pages.PathImageServer, ""))
	if resp.Page == pages.ImageServerForm {
		t.Error("oversized form should not be served")
	}
}
