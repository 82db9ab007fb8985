package httpd

import (
	"errors"
	"fmt"

	"github.com/favsoft/epdsetup/internal/credentials"
	"github.com/favsoft/epdsetup/internal/logging"
	"github.com/favsoft/epdsetup/internal/pages"
	"github.com/favsoft/epdsetup/internal/session"
	"github.com/favsoft/epdsetup/internal/storage"
	"go.uber.org/zap"
)

// Response is a routed page ready to send.
type Response struct {
	Page pages.Page
	// Data is the complete HTTP response: status line, headers and body.
	Data []byte
	// ExitConfiguring is set when the device leaves configuring mode once
	// Data has been fully sent.
	ExitConfiguring bool
}

// Handler turns one complete request into a response.
type Handler interface {
	Route(raw []byte) (Response, error)
}

// Router maps setup requests to pages and drives the session.
type Router struct {
	session  *session.Session
	renderer *pages.Renderer
	deviceID string
}

// NewRouter creates a router for one device.
func NewRouter(sess *session.Session, renderer *pages.Renderer, deviceID string) *Router {
	return &Router{session: sess, renderer: renderer, deviceID: deviceID}
}

// Route decodes raw and renders the resulting page. Only
// ErrUnknownMethod is returned as an error; every other problem becomes
// a page.
func (r *Router) Route(raw []byte) (Response, error) {
	method := DecodeMethod(raw)
	if method == MethodUnknown {
		return Response{}, ErrUnknownMethod
	}
	path := ExtractPath(raw, method)

	logging.Debug("Routing request",
		zap.String("method", method.String()),
		zap.String("path", path),
	)

	var (
		page pages.Page
		body []byte
		exit bool
		err  error
	)
	if method == MethodGet {
		page, body, err = r.get(path)
	} else {
		page, body, exit, err = r.post(path, requestBody(raw))
	}

	if err != nil {
		logging.Warn("Page render failed", zap.String("page", page.String()), zap.Error(err))
		page = pages.Error
		body, err = r.renderer.ErrorPage(pages.MsgPageTooLarge, pages.PathHome)
		if err != nil {
			page, body = pages.NotFound, r.renderer.NotFound()
		}
		exit = false
	}

	return Response{Page: page, Data: BuildResponse(body), ExitConfiguring: exit}, nil
}

func (r *Router) get(path string) (pages.Page, []byte, error) {
	if path != pages.PathHome {
		return pages.NotFound, r.renderer.NotFound(), nil
	}
	body, err := r.renderer.Home(r.session.Configured())
	return pages.Home, body, err
}

func (r *Router) post(path string, body []byte) (pages.Page, []byte, bool, error) {
	var (
		out []byte
		err error
	)

	switch path {
	case pages.PathHome:
		out, err = r.renderer.Home(r.session.Configured())
		return pages.Home, out, false, err

	case pages.PathImageServer:
		return r.imageServerForm()

	case pages.PathSaveCredentials:
		return r.saveCredentials(body)

	case pages.PathResetCredentials:
		r.session.Clear()
		return r.imageServerForm()

	case pages.PathCancelCredentials:
		r.session.Cancel()
		out, err = r.renderer.Home(r.session.Configured())
		return pages.Home, out, false, err

	case pages.PathDeviceID:
		out, err = r.renderer.DeviceID(r.deviceID)
		return pages.DeviceID, out, false, err

	case pages.PathMasterReset:
		out, err = r.renderer.MasterResetConfirm()
		return pages.MasterResetConfirm, out, false, err

	case pages.PathResetConfirmed:
		resetErr := r.session.MasterReset()
		if resetErr != nil {
			logging.Error("Master reset failed", zap.Error(resetErr))
		}
		out, err = r.renderer.ResetResult(resetErr == nil)
		return pages.ResetResult, out, false, err

	case pages.PathDisplayConfirm:
		if !r.session.Configured() {
			out, err = r.renderer.Home(false)
			return pages.Home, out, false, err
		}
		out, err = r.renderer.ChangeModeConfirm()
		return pages.ChangeModeConfirm, out, false, err

	case pages.PathDisplayMode:
		if !r.session.Configured() {
			out, err = r.renderer.Home(false)
			return pages.Home, out, false, err
		}
		out, err = r.renderer.ModeChanged()
		return pages.ModeChanged, out, err == nil, err

	default:
		return pages.NotFound, r.renderer.NotFound(), false, nil
	}
}

func (r *Router) imageServerForm() (pages.Page, []byte, bool, error) {
	p := r.session.Pending()
	out, err := r.renderer.ImageServerForm(p.SSID, p.Password, p.ServerURL)
	return pages.ImageServerForm, out, false, err
}

func (r *Router) saveCredentials(body []byte) (pages.Page, []byte, bool, error) {
	err := r.session.SaveCredentials(body)
	if err == nil {
		out, renderErr := r.renderer.Home(r.session.Configured())
		return pages.Home, out, false, renderErr
	}

	msg := messageFor(err)
	logging.Warn("Save credentials failed", zap.Error(err))
	out, renderErr := r.renderer.ErrorPage(msg, pages.PathImageServer)
	return pages.Error, out, false, renderErr
}

// messageFor maps a save failure to the error page text.
func messageFor(err error) pages.Message {
	if field, ok := credentials.FieldOf(err); ok && credentials.IsValidation(err) {
		switch field {
		case credentials.FieldSSID:
			return pages.MsgInvalidSSID
		case credentials.FieldPassword:
			return pages.MsgInvalidPassword
		case credentials.FieldServerURL:
			return pages.MsgInvalidURL
		}
	}
	if errors.Is(err, session.ErrInvalidRequest) || credentials.IsMalformed(err) {
		return pages.MsgInvalidRequest
	}
	if !storage.IsStorageError(err) && !errors.Is(err, storage.ErrCommitInProgress) {
		logging.Error("Unexpected save failure", zap.Error(err))
	}
	return pages.MsgStorage
}

// BuildResponse wraps body in the fixed response header.
func BuildResponse(body []byte) []byte {
	header := fmt.Sprintf("HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: %d\r\nConnection: close\r\n\r\n", len(body))
	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	return append(out, body...)
}
