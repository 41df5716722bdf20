package repository

import "errors"

var (
	// ErrStorage matches every failure that crossed the repository boundary.
	ErrStorage = errors.New("storage failure")

	ErrDBNotReady = errors.New("database not initialized")
)

// StorageError wraps an engine or driver error with the store operation that
// produced it. errors.Is(err, ErrStorage) holds for every StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
