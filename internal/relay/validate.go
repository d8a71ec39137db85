package relay

import (
	"fmt"
	"math"
	"regexp"
)

// DefaultPort is the conventional raw-socket port for network printers
const DefaultPort = 9100

// addressPattern is deliberately syntactic only: any four dot-separated
// groups of 1-3 digits pass, including out-of-range octets like
// "999.999.999.999". Those fail later at dial time. Callers depend on this
// permissive behavior, so it must not be tightened to a real IPv4 check.
var addressPattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// Request is a validated print job ready to relay
type Request struct {
	Address string
	Port    int
	Payload []byte
}

// NewRequest validates raw inbound values and produces a relay-ready
// Request. values is the decoded JSON array from the boundary; pass nil
// when the field was missing or not an array. A zero port selects
// DefaultPort. No side effects: nothing touches the network here.
func NewRequest(address string, port int, values []any) (Request, error) {
	if address == "" || values == nil {
		return Request{}, ErrInvalidRequest
	}
	if !addressPattern.MatchString(address) {
		return Request{}, ErrInvalidAddress
	}
	port, err := resolvePort(port)
	if err != nil {
		return Request{}, err
	}
	payload, err := bytesFromValues(values)
	if err != nil {
		return Request{}, err
	}
	if len(payload) == 0 {
		return Request{}, ErrEmptyPayload
	}
	return Request{Address: address, Port: port, Payload: payload}, nil
}

// NewRequestBytes builds a Request from an already-converted byte buffer,
// applying the same address, port and emptiness checks as NewRequest.
// Used by callers that hold raw bytes, like the send CLI command.
func NewRequestBytes(address string, port int, payload []byte) (Request, error) {
	if address == "" || payload == nil {
		return Request{}, ErrInvalidRequest
	}
	if !addressPattern.MatchString(address) {
		return Request{}, ErrInvalidAddress
	}
	port, err := resolvePort(port)
	if err != nil {
		return Request{}, err
	}
	if len(payload) == 0 {
		return Request{}, ErrEmptyPayload
	}
	return Request{Address: address, Port: port, Payload: payload}, nil
}

func resolvePort(port int) (int, error) {
	if port == 0 {
		return DefaultPort, nil
	}
	if port < 1 || port > 65535 {
		return 0, ErrInvalidPort
	}
	return port, nil
}

// bytesFromValues converts a decoded JSON array into a byte buffer.
// encoding/json hands numbers over as float64, so each element must be a
// whole number in 0-255.
func bytesFromValues(values []any) ([]byte, error) {
	buf := make([]byte, 0, len(values))
	for i, v := range values {
		n, ok := v.(float64)
		if !ok {
			return nil, &PayloadError{Reason: fmt.Sprintf("element %d is not a number", i)}
		}
		if n != math.Trunc(n) || n < 0 || n > 255 {
			return nil, &PayloadError{Reason: fmt.Sprintf("element %d is not a byte value (%v)", i, v)}
		}
		buf = append(buf, byte(n))
	}
	return buf, nil
}
