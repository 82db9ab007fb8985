// Package storage persists the display's configuration record in flash.
//
// # Record Layout
//
// The record is a fixed 2304 byte block (nine 256 byte pages) at the start
// of the device's last erase sector:
//
//	offset  size  field
//	0       1     status
//	1       33    network name, NUL terminated
//	34      64    network password, NUL terminated
//	98      2049  image server URL, NUL terminated
//	2147    10    error codes (circular)
//	2157    1     next error slot
//	2158    10    log codes (circular)
//	2168    1     next log slot
//	2169    135   padding
//
// There is a single layout and no migration. A status of zero or above
// CredentialsSet means the block has never been written, or a write was
// interrupted, and Open formats it.
//
// # Shadow Record
//
// The Store keeps a full in-memory copy of the record. Setters update the
// copy and never touch flash; getters read it and never do I/O. Commit
// erases the sector and programs the whole copy, then reads it back to
// verify. A failed commit restores the copy to the last persisted image and
// returns an *Error.
//
// Commits are not reentrant: a Commit entered while another is running
// returns ErrCommitInProgress.
package storage
