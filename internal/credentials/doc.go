// Package credentials validates and decodes the three values the setup page
// collects: the WiFi network name, its password and the image server URL.
//
// Values arrive form-urlencoded. ParseForm splits a body into fields and
// decodes each value exactly once; the Valid and Check functions then run
// over the decoded text. An empty value means "cleared" and is handled by
// callers before consulting a validator.
//
// # Rules
//
//   - Network name: 1 to 32 bytes, printable ASCII, does not start with
//     '!', '#' or ';', does not end with a space, and contains none of
//     '+', ']', '/', '"' or TAB.
//   - Password: 8 to 63 bytes of printable ASCII.
//   - Server URL: printable ASCII without spaces.
//
// # Errors
//
// Every error returned is an *Error of KindMalformedRequest (body or escape
// sequence unusable) or KindValidation (a value breaks a rule). Use
// IsMalformed, IsValidation and FieldOf to classify them.
package credentials
