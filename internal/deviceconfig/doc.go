// Package deviceconfig drives a display's setup webserver from the
// operator's machine.
//
// The display serves HTML pages meant for a browser: every button is a
// form POST to a /setup/... path and every answer is a complete page. The
// Client presses those buttons and ParsePage classifies the page that comes
// back, so callers work with Credentials and PageResult values instead of
// HTML.
//
// # Usage Example
//
//	client := deviceconfig.NewClient("192.168.4.1", 80)
//
//	id, err := client.DeviceID(ctx)
//	if err != nil {
//	    fmt.Println(deviceconfig.GetTroubleshootingHint(err))
//	    return err
//	}
//
//	creds := deviceconfig.Credentials{
//	    SSID:      "home-net",
//	    Password:  "correct horse",
//	    ServerURL: "http://images.local/feed",
//	}
//	result := client.SubmitAndVerify(ctx, creds, nil)
//	if !result.Success {
//	    return result.Error
//	}
//	return client.EnterDisplayMode(ctx)
//
// # Validation
//
// Credentials are checked with the same field rules the display applies
// before anything is sent. The display still has the final word: a value it
// rejects comes back as its error page, reported as an ErrTypeDevice
// DeviceError carrying the page's message.
//
// # Error Handling
//
// All errors are *DeviceError values. Network failures and 5xx answers are
// retried with exponential backoff; everything else is returned at once.
// GetTroubleshootingHint and GetShortErrorMessage turn an error into text
// for the terminal.
//
// # Connections
//
// The display serves one connection at a time and closes it after every
// response, so the client never reuses connections.
package deviceconfig
