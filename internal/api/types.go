package api

import "encoding/json"

// PrintRequest is the body accepted by POST /print and by the websocket
// job stream. Data stays raw until validation so a missing array and a
// non-array value can be told apart from a decode failure.
type PrintRequest struct {
	IP   string          `json:"ip"`
	Port int             `json:"port,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// PrintResponse is the body returned for every print job, REST or websocket.
// Message carries detail on success (and the required-fields hint on the
// invalid-request error); Error carries the failure reason.
type PrintResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
