package peek

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAdapter is returned when an adapter name has no registered factory.
	ErrUnknownAdapter = errors.New("unknown adapter")

	// ErrInvalidAdapterParams is returned by adapter factories given parameters
	// they cannot use.
	ErrInvalidAdapterParams = errors.New("invalid adapter parameters")

	// ErrNilFactory is returned when registering a nil ViewFactory or AdapterFactory.
	ErrNilFactory = errors.New("nil factory")

	// ErrNilView is returned when a ViewFactory returns neither a view nor an error.
	ErrNilView = errors.New("view factory returned nil view")

	// ErrNoRequestID is returned when recording outside of a request.
	ErrNoRequestID = errors.New("no request id in context")

	// ErrMissingViewKey is returned by views that require a "key" option.
	ErrMissingViewKey = errors.New("view key is required")
)

// AdapterError describes a failure to configure the storage adapter.
type AdapterError struct {
	Name string
	Err  error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("peek: adapter %q: %v", e.Name, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// IsUnknownAdapterError reports whether err was caused by an unknown adapter name.
func IsUnknownAdapterError(err error) bool {
	return errors.Is(err, ErrUnknownAdapter)
}

// IsAdapterError reports whether err is, or wraps, an *AdapterError.
func IsAdapterError(err error) bool {
	var adapterErr *AdapterError
	return errors.As(err, &adapterErr)
}
