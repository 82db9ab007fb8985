package logging

// ErrorCode identifies a device error. Codes are persisted in the
// configuration record's error slots, so values must never be renumbered.
type ErrorCode uint8

const (
	NoError ErrorCode = iota
	TCPPCBMemoryErr
	TCPBindErr
	TCPStartListenErr
	TCPBufferErr
	TCPWriteErr
	WiFiInitErr
	FlashEraseErr
	FlashProgramErr
	FlashVerifyErr
)

// Text returns the human-readable message for the error code
func (c ErrorCode) Text() string {
	switch c {
	case NoError:
		return ""
	case TCPPCBMemoryErr:
		return "Error creating connection. Out of memory."
	case TCPBindErr:
		return "Unable to bind to HTTP port."
	case TCPStartListenErr:
		return "Out of memory while starting listener."
	case TCPBufferErr:
		return "Cannot send data, send buffer too small."
	case TCPWriteErr:
		return "Cannot send data, write failed."
	case WiFiInitErr:
		return "Failed to initialise WiFi module."
	case FlashEraseErr:
		return "Flash sector erase failed."
	case FlashProgramErr:
		return "Flash page program failed."
	case FlashVerifyErr:
		return "Flash read-back verification failed."
	default:
		return "Undefined error."
	}
}

// LogCode identifies a notable device event. Like ErrorCode, values are
// persisted and must stay stable.
type LogCode uint8

const (
	NoLog LogCode = iota
	ConfigJumperDetected
	FlashStorageAreaInitialised
	WiFiCredentialsSet
	WiFiCredentialsUpdated
	MasterResetPerformed
	DisplayModeEntered
)

// Text returns the human-readable message for the log code
func (c LogCode) Text() string {
	switch c {
	case ConfigJumperDetected:
		return "Configuration jumper detected."
	case FlashStorageAreaInitialised:
		return "Flash storage area initialised."
	case WiFiCredentialsSet:
		return "WiFi credentials set."
	case WiFiCredentialsUpdated:
		return "WiFi credentials updated."
	case MasterResetPerformed:
		return "Display reset to factory defaults."
	case DisplayModeEntered:
		return "Entering display mode."
	default:
		return "Undefined message code."
	}
}
