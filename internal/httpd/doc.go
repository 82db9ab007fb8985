// Package httpd implements the display's setup webserver.
//
// This is not a general HTTP server. It answers a fixed set of paths under
// /setup/, one connection at a time, and closes every connection after a
// single response. Requests are assumed hostile: they are parsed from the
// raw byte buffer with bounds-checked searches and any malformed input ends
// in a fixed page or a torn-down connection, never in a state change.
//
// # Request Handling
//
//  1. DecodeMethod matches "GET " or "POST " at the start of the buffer.
//     Anything else is ErrUnknownMethod and the connection closes with no
//     response.
//  2. ExtractPath takes the token up to the next space, without its leading
//     slash. An empty path means the home page; a missing space or a path
//     over MaxPathLength means page not found.
//  3. Router.Route dispatches the path. GET serves only the home page; POST
//     serves every setup step listed in package pages.
//
// # Response Format
//
// Every response, including page not found, is:
//
//	HTTP/1.1 200 OK\r\n
//	Content-Type: text/html\r\n
//	Content-Length: <n>\r\n
//	Connection: close\r\n
//	\r\n
//	<html>...
//
// # Exchange State Machine
//
// An Exchange moves receiving -> sending -> closed. Receive accumulates
// bytes until the header terminator and any Content-Length body are present,
// rejecting requests over the size limit. The response goes out in pieces no
// larger than the transport's send buffer; Sent acknowledges bytes and
// resumes sending. The exchange closes once every byte is acknowledged or on
// the first transport error.
//
// # Server
//
// Server binds a TCP port, services one connection at a time, and returns
// once the device mode flag leaves configuring (after the display mode page
// has been fully sent), on SIGINT/SIGTERM, or when its context ends.
package httpd
