// Package flash models the on-board NOR flash that holds the display's
// configuration record.
//
// A Device exposes the three primitives the firmware has: sector erase,
// page program and read. Program follows NOR rules, so writing a page
// without erasing it first can only clear bits. Two backends exist:
//
//   - Memory: an in-process image with fault injection and simulated
//     power cuts, used by tests and by the device binary when no image
//     path is configured.
//   - File: an image file on disk, created fully erased on first use.
//
// All operations on both backends are safe for concurrent use.
package flash
