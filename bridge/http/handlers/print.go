package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/printbridge/printbridge/internal/api"
	"github.com/printbridge/printbridge/internal/logging"
	"github.com/printbridge/printbridge/internal/relay"
)

const (
	errInvalidRequest = "Invalid request"
	msgRequiredHint   = "IP address and data array are required"
	errInvalidAddress = "Invalid IP address format"
	errInvalidPort    = "Invalid port number (must be 1-65535)"
	errEmptyPayload   = "Print data is empty"
	errUnknown        = "Unknown error occurred"
)

// NewPrintHandler handles POST requests that relay one print job to a
// printer and answer with the outcome
func NewPrintHandler(rl *relay.Relay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		logger := logging.FromContext(r.Context())

		var body api.PrintRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, invalidRequestResponse())
			return
		}

		resp, status := servePrint(r.Context(), rl, logger, body)
		writeJSON(w, status, resp)
	}
}

// servePrint validates the job, relays it, and maps the result onto the
// wire contract. Shared by the REST handler and the websocket job stream.
// A panic anywhere in the relay path becomes a generic 500 instead of
// taking the process down.
func servePrint(ctx context.Context, rl *relay.Relay, logger *logging.Logger, body api.PrintRequest) (resp api.PrintResponse, status int) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic while relaying print job", logging.Any("panic", p))
			msg := errUnknown
			if err, ok := p.(error); ok && err.Error() != "" {
				msg = err.Error()
			}
			resp = api.PrintResponse{Success: false, Error: msg}
			status = http.StatusInternalServerError
		}
	}()

	req, err := relay.NewRequest(body.IP, body.Port, decodeData(body.Data))
	if err != nil {
		return mapValidationError(err), http.StatusBadRequest
	}

	out := rl.Send(ctx, req)
	if out.Success {
		return api.PrintResponse{Success: true, Message: out.Message}, http.StatusOK
	}
	return api.PrintResponse{Success: false, Error: out.Message}, http.StatusInternalServerError
}

// decodeData unpacks the raw data field into a JSON array. nil means the
// field was missing or not an array, which the validator reports as an
// invalid request.
func decodeData(raw json.RawMessage) []any {
	if len(raw) == 0 {
		return nil
	}
	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	if values == nil {
		// "data": null decodes without error
		return nil
	}
	return values
}

func mapValidationError(err error) api.PrintResponse {
	switch {
	case errors.Is(err, relay.ErrInvalidRequest):
		return invalidRequestResponse()
	case errors.Is(err, relay.ErrInvalidAddress):
		return api.PrintResponse{Success: false, Error: errInvalidAddress}
	case errors.Is(err, relay.ErrInvalidPort):
		return api.PrintResponse{Success: false, Error: errInvalidPort}
	case errors.Is(err, relay.ErrEmptyPayload):
		return api.PrintResponse{Success: false, Error: errEmptyPayload}
	}

	var pe *relay.PayloadError
	if errors.As(err, &pe) {
		return api.PrintResponse{Success: false, Error: "Invalid data format: " + pe.Reason}
	}
	return api.PrintResponse{Success: false, Error: err.Error()}
}

func invalidRequestResponse() api.PrintResponse {
	return api.PrintResponse{Success: false, Error: errInvalidRequest, Message: msgRequiredHint}
}

func writeJSON(w http.ResponseWriter, status int, body api.PrintResponse) {
	data, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
