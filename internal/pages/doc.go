// Package pages renders the HTML served by the display setup webserver.
//
// Every page is a small boxed form whose buttons post to the next step
// through formaction. Values typed by the user are HTML-escaped before they
// are echoed back. A Renderer refuses to build a page larger than its limit
// and returns ErrTooLarge instead; the page-not-found body is fixed and
// always fits.
package pages
