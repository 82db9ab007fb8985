package pages

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// DefaultMaxSize bounds a rendered page body.
const DefaultMaxSize = 8192

// ErrTooLarge is returned when a page would exceed the renderer's limit.
var ErrTooLarge = errors.New("pages: rendered page exceeds maximum size")

// Paths served by the setup webserver, without the leading slash.
const (
	PathHome              = "setup/home"
	PathImageServer       = "setup/imageserver"
	PathSaveCredentials   = "setup/imageservercredentials"
	PathResetCredentials  = "setup/resetimageservercredentials"
	PathCancelCredentials = "setup/cancelimageservercredentials"
	PathDeviceID          = "setup/deviceid"
	PathDisplayConfirm    = "setup/display"
	PathDisplayMode       = "setup/displaymode"
	PathMasterReset       = "setup/masterreset"
	PathResetConfirmed    = "setup/resetconfirmed"
	PathNotFound          = "NOT_FOUND"
)

// Page identifies a rendered page.
type Page int

const (
	Home Page = iota
	ImageServerForm
	DeviceID
	MasterResetConfirm
	ResetResult
	ChangeModeConfirm
	ModeChanged
	NotFound
	Error
)

func (p Page) String() string {
	switch p {
	case Home:
		return "home"
	case ImageServerForm:
		return "image_server_form"
	case DeviceID:
		return "device_id"
	case MasterResetConfirm:
		return "master_reset_confirm"
	case ResetResult:
		return "reset_result"
	case ChangeModeConfirm:
		return "change_mode_confirm"
	case ModeChanged:
		return "mode_changed"
	case NotFound:
		return "not_found"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("page(%d)", int(p))
	}
}

// Message is a trusted HTML fragment shown on the error page.
type Message string

const (
	MsgInvalidSSID Message = `<b>Invalid Network Name (SSID)</b><br><br><span><i>SSID must be:<br>1 to 32 characters long<br>` +
		`not start with (!, #, ;)<br>not contain (+, ], /,")<br>not have trailing spaces.</i></span>`
	MsgInvalidPassword Message = `<b>Invalid Password</b><br><br><i>Password must be between 8 and 63<br>ASCII printable characters in length</i>`
	MsgInvalidURL      Message = `<b>Invalid URL</b><br><br><i>URL must not have spaces and<br>be correctly formed</i>`
	MsgInvalidRequest  Message = `<b>Invalid Request</b>`
	MsgStorage         Message = `<b>Unable to store user entered data</b>`
	MsgPageTooLarge    Message = `<b>Page too large</b>`
)

const (
	head   = `<html><head><title>EPD Setup</title><style type="text/css"></style></head>`
	footer = `</div></div></body></html>`

	boxBlue  = `<div align="center"><div style="margin:auto;height:auto;max-width:300px;border:2px solid blue;border-radius:4px;text-align:center;background-color:rgb(100,150,150)">`
	boxWide  = `<div align="center"><div style="margin:auto;height:auto;max-width:320px;border:2px solid blue;border-radius:4px;text-align:center;background-color:rgb(100,150,150)">`
	boxRed   = `<div align="center"><div style="margin:auto;height:auto;max-width:300px;border:2px solid red;border-radius:4px;text-align:center;background-color:rgb(100,150,150)">`
	boxGray  = `<div align="center"><div style="margin:auto;height:auto;max-width:300px;border:2px solid gray;border-radius:4px;text-align:center;background-color:rgb(200,200,200)">`
	form     = `<form method="POST">`
	button   = `<input type="submit" style="margin:10px;padding:5px 10px;border:1px solid gray;border-radius:4px;background-color:rgb(190,190,190)" `
	buttonRd = `<input type="submit" style="margin:10px;padding:5px 10px;border:1px solid brown;border-radius:4px;background-color:rgb(255,0,0)" `
	spacer   = `&nbsp;&nbsp;`

	titleSetup       = `<H3>DISPLAY SETUP</H3>`
	titleMainMenu    = `<H4>Main Menu</H4>`
	titleImageServer = `<H4>Image Server Credentials</H4>`
	titleError       = `<H3>ERROR</H3>`
	titleDeviceID    = `<H4>Display ID</H4>`
	titleDisplayMode = `<H3>Enter Display Mode</H3>`
	titleReset       = `<H3>Reset Display</H3>`
	titleNotFound    = `<H1>Page Not Found</H1>`
)

// Renderer builds the setup pages.
type Renderer struct {
	maxSize int
}

// NewRenderer returns a renderer bounded by maxSize bytes. A non-positive
// size selects DefaultMaxSize.
func NewRenderer(maxSize int) *Renderer {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Renderer{maxSize: maxSize}
}

// MaxSize returns the page size limit.
func (r *Renderer) MaxSize() int {
	return r.maxSize
}

func (r *Renderer) finish(b *strings.Builder) ([]byte, error) {
	if b.Len() > r.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, b.Len(), r.maxSize)
	}
	return []byte(b.String()), nil
}

func writeButton(b *strings.Builder, style, path, label string) {
	b.WriteString(style)
	b.WriteString(`formaction="/`)
	b.WriteString(path)
	b.WriteString(`" value="`)
	b.WriteString(label)
	b.WriteString(`">`)
}

func open(b *strings.Builder, box string, titles ...string) {
	b.WriteString(head)
	b.WriteString("<body>")
	b.WriteString(box)
	for _, t := range titles {
		b.WriteString(t)
	}
}

// Home renders the main menu. The Display button is offered only when
// complete is true.
func (r *Renderer) Home(complete bool) ([]byte, error) {
	var b strings.Builder
	open(&b, boxWide, titleSetup, titleMainMenu)
	b.WriteString(form)
	writeButton(&b, button, PathImageServer, "Image Server")
	b.WriteString(spacer)
	writeButton(&b, button, PathDeviceID, "Device ID")
	if complete {
		b.WriteString(spacer)
		writeButton(&b, button, PathDisplayConfirm, "Display")
	}
	b.WriteString("<br><br>")
	writeButton(&b, buttonRd, PathMasterReset, "Master Reset")
	b.WriteString("</form><br>")
	b.WriteString(footer)
	return r.finish(&b)
}

// ImageServerForm renders the credentials form filled with the pending values.
func (r *Renderer) ImageServerForm(ssid, password, serverURL string) ([]byte, error) {
	var b strings.Builder
	open(&b, boxBlue, titleSetup, titleImageServer)
	b.WriteString(form)
	fmt.Fprintf(&b, `<input type="text" name="networkname" placeholder="Network Name" maxlength="32" autofocus value="%s"><br><br>`,
		html.EscapeString(ssid))
	fmt.Fprintf(&b, `<input type="password" name="password" placeholder="Password" maxlength="63" value="%s"><br><br>`,
		html.EscapeString(password))
	fmt.Fprintf(&b, `<input type="text" name="serverURL" placeholder="Image Server URL" maxlength="2048" value="%s"><br><br>`,
		html.EscapeString(serverURL))
	writeButton(&b, button, PathSaveCredentials, "Save")
	b.WriteString(spacer)
	writeButton(&b, button, PathResetCredentials, "Reset")
	b.WriteString(spacer)
	writeButton(&b, button, PathCancelCredentials, "Cancel")
	b.WriteString("</form>")
	b.WriteString(footer)
	return r.finish(&b)
}

// DeviceID renders the display identifier page.
func (r *Renderer) DeviceID(id string) ([]byte, error) {
	var b strings.Builder
	open(&b, boxBlue, titleSetup, titleDeviceID)
	b.WriteString("<p>Use the display ID to identify this<br>display in the image server configurator.<br> ")
	fmt.Fprintf(&b, `<br><b><span style="font-family:courier" id="device-id">%s</span></b></p>`, html.EscapeString(id))
	b.WriteString(form)
	writeButton(&b, button, PathHome, "OK")
	b.WriteString("</form>")
	b.WriteString(footer)
	return r.finish(&b)
}

// MasterResetConfirm renders the factory reset confirmation.
func (r *Renderer) MasterResetConfirm() ([]byte, error) {
	var b strings.Builder
	open(&b, boxRed, titleSetup, titleReset)
	b.WriteString("<p>Press Confirm to reset the display<br>to factory defaults.</p>")
	b.WriteString(form)
	writeButton(&b, button, PathResetConfirmed, "Confirm")
	b.WriteString(spacer)
	writeButton(&b, button, PathHome, "Cancel")
	b.WriteString("</form>")
	b.WriteString(footer)
	return r.finish(&b)
}

// Reset result texts.
const (
	ResetSucceeded = "Display reset to factory defaults"
	ResetFailed    = "Unable to reset the display to<br>factory defaults"
)

// ResetResult renders the outcome of a factory reset.
func (r *Renderer) ResetResult(ok bool) ([]byte, error) {
	var b strings.Builder
	open(&b, boxRed, titleSetup)
	if ok {
		b.WriteString("<p>" + ResetSucceeded + "</p>")
	} else {
		b.WriteString("<p>" + ResetFailed + "</p>")
	}
	b.WriteString(form)
	writeButton(&b, button, PathHome, "OK")
	b.WriteString("</form>")
	b.WriteString(footer)
	return r.finish(&b)
}

// ChangeModeConfirm asks before leaving configuring mode.
func (r *Renderer) ChangeModeConfirm() ([]byte, error) {
	var b strings.Builder
	open(&b, boxBlue, titleSetup, titleDisplayMode)
	b.WriteString("<p>Press OK to enter display mode.</p>")
	b.WriteString(form)
	writeButton(&b, button, PathDisplayMode, "OK")
	b.WriteString(spacer)
	writeButton(&b, button, PathHome, "Cancel")
	b.WriteString("</form>")
	b.WriteString(footer)
	return r.finish(&b)
}

// ExitingText is the body text of the mode changed page.
const ExitingText = "Exiting configuration..."

// ModeChanged is the last page served before display mode.
func (r *Renderer) ModeChanged() ([]byte, error) {
	var b strings.Builder
	open(&b, boxBlue, titleSetup)
	b.WriteString("<p>" + ExitingText + "</p>")
	b.WriteString(footer)
	return r.finish(&b)
}

// NotFound renders the page-not-found body. It is small enough to always fit.
func (r *Renderer) NotFound() []byte {
	return []byte(head + "<body>" + boxGray + titleNotFound + footer)
}

// ErrorPage renders msg with an OK button back to returnPath.
func (r *Renderer) ErrorPage(msg Message, returnPath string) ([]byte, error) {
	var b strings.Builder
	open(&b, boxRed, titleSetup, titleError)
	b.WriteString("<p>")
	b.WriteString(string(msg))
	b.WriteString("</p>")
	b.WriteString(form)
	writeButton(&b, button, returnPath, "OK")
	b.WriteString("</form>")
	b.WriteString(footer)
	return r.finish(&b)
}
