package httpd

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/favsoft/epdsetup/internal/pages"
)

// Method is the decoded request method.
type Method int

const (
	MethodUnknown Method = iota
	MethodGet
	MethodPost
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	default:
		return "UNKNOWN"
	}
}

// MaxPathLength is the longest path routed; longer paths are not found.
const MaxPathLength = 150

var headerEnd = []byte("\r\n\r\n")

// DecodeMethod matches the request's first token, case-sensitively. The
// token must be followed by a space.
func DecodeMethod(buf []byte) Method {
	switch {
	case bytes.HasPrefix(buf, []byte("GET ")):
		return MethodGet
	case bytes.HasPrefix(buf, []byte("POST ")):
		return MethodPost
	default:
		return MethodUnknown
	}
}

// ExtractPath returns the request path without its leading slash.
//
// An empty path routes to the home page. A path with no terminating space
// inside buf, or longer than MaxPathLength, routes to pages.PathNotFound.
func ExtractPath(buf []byte, m Method) string {
	start := len(m.String()) + 1
	if m == MethodUnknown || len(buf) < start {
		return pages.PathNotFound
	}

	rest := buf[start:]
	rest = bytes.TrimPrefix(rest, []byte("/"))

	end := bytes.IndexByte(rest, ' ')
	switch {
	case end < 0:
		return pages.PathNotFound
	case end == 0:
		return pages.PathHome
	case end > MaxPathLength:
		return pages.PathNotFound
	}
	return string(rest[:end])
}

// requestLength reports how many bytes of buf form one complete request:
// the header block plus a Content-Length body. ok is false while more
// bytes are needed.
func requestLength(buf []byte) (n int, ok bool, err error) {
	i := bytes.Index(buf, headerEnd)
	if i < 0 {
		return 0, false, nil
	}
	headerLen := i + len(headerEnd)

	length, err := contentLength(buf[:i])
	if err != nil {
		return 0, false, err
	}
	if length > math.MaxInt-headerLen {
		return 0, false, ErrRequestTooLarge
	}
	if len(buf) < headerLen+length {
		return headerLen + length, false, nil
	}
	return headerLen + length, true, nil
}

// contentLength scans header lines for Content-Length. Missing means zero.
func contentLength(header []byte) (int, error) {
	lines := strings.Split(string(header), "\r\n")
	for _, line := range lines[1:] {
		name, value, found := strings.Cut(line, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return 0, ErrBadContentLength
		}
		return n, nil
	}
	return 0, nil
}

// requestBody returns the bytes after the header block, or nil.
func requestBody(buf []byte) []byte {
	i := bytes.Index(buf, headerEnd)
	if i < 0 {
		return nil
	}
	return buf[i+len(headerEnd):]
}
