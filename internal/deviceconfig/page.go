package deviceconfig

import (
	"html"
	"strings"

	"github.com/favsoft/epdsetup/internal/pages"
)

// PageResult is what a client learns from one setup page.
type PageResult struct {
	Page pages.Page

	// DisplayAvailable is set on the home page when the display offers the
	// Display button, i.e. its credentials are complete.
	DisplayAvailable bool

	// DeviceID is filled from the device ID page.
	DeviceID string

	// Form holds the pending values shown on the credentials form.
	Form Credentials

	// Message and ReturnPath are filled from the error page.
	Message    pages.Message
	ReturnPath string

	// ResetOK is the outcome shown on the reset result page.
	ResetOK bool
}

var knownMessages = []pages.Message{
	pages.MsgInvalidSSID,
	pages.MsgInvalidPassword,
	pages.MsgInvalidURL,
	pages.MsgInvalidRequest,
	pages.MsgStorage,
	pages.MsgPageTooLarge,
}

func formAction(path string) string {
	return `formaction="/` + path + `"`
}

// ParsePage classifies a setup page body and extracts its values.
func ParsePage(body []byte) (*PageResult, error) {
	s := string(body)
	res := &PageResult{}

	switch {
	case strings.Contains(s, "<H1>Page Not Found</H1>"):
		res.Page = pages.NotFound

	case strings.Contains(s, "<H3>ERROR</H3>"):
		res.Page = pages.Error
		res.Message = errorMessage(s)
		res.ReturnPath = firstAction(s)

	case strings.Contains(s, `id="device-id"`):
		res.Page = pages.DeviceID
		res.DeviceID = html.UnescapeString(between(s, `id="device-id">`, "</span>"))

	case strings.Contains(s, `name="networkname"`):
		res.Page = pages.ImageServerForm
		res.Form = Credentials{
			SSID:      inputValue(s, "networkname"),
			Password:  inputValue(s, "password"),
			ServerURL: inputValue(s, "serverURL"),
		}

	case strings.Contains(s, pages.ExitingText):
		res.Page = pages.ModeChanged

	case strings.Contains(s, formAction(pages.PathDisplayMode)):
		res.Page = pages.ChangeModeConfirm

	case strings.Contains(s, formAction(pages.PathResetConfirmed)):
		res.Page = pages.MasterResetConfirm

	case strings.Contains(s, pages.ResetSucceeded):
		res.Page = pages.ResetResult
		res.ResetOK = true

	case strings.Contains(s, pages.ResetFailed):
		res.Page = pages.ResetResult

	case strings.Contains(s, "<H4>Main Menu</H4>"):
		res.Page = pages.Home
		res.DisplayAvailable = strings.Contains(s, formAction(pages.PathDisplayConfirm))

	default:
		return nil, NewParseError("unrecognised setup page", nil)
	}

	return res, nil
}

func errorMessage(s string) pages.Message {
	raw := between(s, "<H3>ERROR</H3><p>", "</p>")
	for _, m := range knownMessages {
		if raw == string(m) {
			return m
		}
	}
	return pages.Message(raw)
}

func firstAction(s string) string {
	return between(s, `formaction="/`, `"`)
}

// between returns the text after the first start up to the next end.
func between(s, start, end string) string {
	_, rest, ok := strings.Cut(s, start)
	if !ok {
		return ""
	}
	v, _, _ := strings.Cut(rest, end)
	return v
}

func inputValue(s, name string) string {
	_, rest, ok := strings.Cut(s, `name="`+name+`"`)
	if !ok {
		return ""
	}
	tag, _, _ := strings.Cut(rest, ">")
	return html.UnescapeString(between(tag, `value="`, `"`))
}

// PlainText flattens an HTML fragment to one line of text.
func PlainText(fragment string) string {
	var b strings.Builder
	inTag := false
	for _, r := range fragment {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(html.UnescapeString(b.String())), " ")
}
