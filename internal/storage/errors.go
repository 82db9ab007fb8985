package storage

import (
	"errors"
	"fmt"
)

// ErrCommitInProgress is returned when Commit is entered while another commit
// is still erasing or programming the record.
var ErrCommitInProgress = errors.New("storage: commit already in progress")

// Op names the flash step that failed.
type Op string

const (
	OpRead    Op = "read"
	OpErase   Op = "erase"
	OpProgram Op = "program"
	OpVerify  Op = "verify"
)

// Error is a storage failure. The in-memory record has already been rolled
// back to the last persisted image when a commit returns one.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is or wraps a storage failure.
func IsStorageError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
