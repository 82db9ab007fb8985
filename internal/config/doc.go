// Package config provides YAML configuration for both sides of epdsetup.
//
// The display reads Settings from device.yaml: webserver limits, the flash
// geometry and backing image, the display ID, the configuration jumper and
// the log level. Missing keys keep their defaults; unknown keys are rejected
// and Validate reports every problem at once.
//
//	server:
//	  port: 80
//	  max_request_size: 4096
//	  max_page_size: 8192
//	  send_buffer_size: 1460
//	  read_timeout: 30s
//	flash:
//	  image: /var/lib/epdsetup/flash.img
//	  size: 2097152
//	  sector_size: 4096
//	  page_size: 256
//	device:
//	  config_jumper: false
//	  advertise: true
//	log_level: info
//
// The operator's CLI keeps a Registry of known displays in displays.yaml,
// keyed by display ID: nickname, last address, last seen status and the
// non-secret half of the last submitted credentials.
//
// # Configuration File Location
//
// Both files live in the platform-appropriate directory:
//   - Linux: $XDG_CONFIG_HOME/epdsetup or $HOME/.config/epdsetup
//   - macOS: $HOME/.config/epdsetup
//   - Windows: %LOCALAPPDATA%\epdsetup
//
// # Security
//
// WiFi passwords are never written to the registry. They exist only in the
// display's flash.
//
// # Thread Safety
//
// File operations are protected by a mutex and writes go through a
// temporary file and rename, so a crash never leaves a half-written file.
package config
