package relay

import "errors"

var (
	// ErrInvalidRequest is returned when the address or payload is missing,
	// or the payload is not a sequence
	ErrInvalidRequest = errors.New("address and data array are required")

	// ErrInvalidAddress is returned when the address does not look like a
	// dotted-quad IPv4 address
	ErrInvalidAddress = errors.New("address does not match IPv4 format")

	// ErrInvalidPort is returned when the port falls outside 1-65535
	ErrInvalidPort = errors.New("port must be between 1 and 65535")

	// ErrEmptyPayload is returned when the payload converts to zero bytes
	ErrEmptyPayload = errors.New("payload is empty")
)

// PayloadError reports a payload sequence that could not be converted to a
// byte buffer. Reason carries the underlying conversion failure.
type PayloadError struct {
	Reason string
}

func (e *PayloadError) Error() string {
	return "malformed payload: " + e.Reason
}
