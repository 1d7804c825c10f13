package store

import (
	"errors"
	"fmt"
)

// ErrConnectionMissing is returned when a user has no stored GitHub connection
var ErrConnectionMissing = errors.New("GitHub connection not found")

// StorageError wraps a failed persistence operation
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err with the failing operation name. A nil err yields
// nil and an err that already is a StorageError is returned unchanged.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsStorageError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err came from a persistence operation
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
