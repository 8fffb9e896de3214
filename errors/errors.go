package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptySender        = fmt.Errorf("sender must not be empty")
	ErrEmptyReceiver      = fmt.Errorf("receiver must not be empty")
	ErrEmptyBody          = fmt.Errorf("message body must not be empty")
	ErrInvalidIdentity    = fmt.Errorf("identity must be 3 to 32 alphanumeric characters")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUnsupportedUpload  = fmt.Errorf("unsupported upload content type")
)

// PersistenceError wraps any failure coming from the durable store.
// Raw storage-driver errors must never cross the repository boundary:
// callers only ever see this type (or the sentinels above).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError tags a storage failure with the operation that produced it.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}
