// Package tui implements the interactive setup wizard behind
// "epdsetup-cfg wizard".
//
// It is a Bubble Tea program with one coordinating model, AppModel, and
// these screens:
//
//   - Discovery: mDNS scan for displays in setup mode, or manual address entry
//   - Form: network name, password and image server URL with live validation
//   - Applying: save, then reopen the display's form to verify what it stored
//   - Success/Failure: result, with the option to leave setup mode
//
// The form validates each field as it is typed using the same rules the
// display applies, so a save only fails when the display itself refuses it.
//
// Usage:
//
//	app := tui.NewAppModel(tui.Options{}, nil)
//	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
//	    return err
//	}
//
// Display access goes through the Configurator interface so tests can run
// the models without a network.
package tui
