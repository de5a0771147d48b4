package entries

import (
	"errors"
	"fmt"
)

var ErrMissingID = errors.New("entry id is empty")

// StorageError reports a failed statement or transaction in the local store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
