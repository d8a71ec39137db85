package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/printbridge/printbridge/internal/api"
	"github.com/printbridge/printbridge/internal/logging"
	"github.com/printbridge/printbridge/internal/relay"
)

func newTestHandler(dialer relay.Dialer) http.HandlerFunc {
	return NewPrintHandler(relay.New(&relay.Options{Dialer: dialer}))
}

func doPrint(t *testing.T, handler http.HandlerFunc, body string) (int, api.PrintResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/print", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler(w, req)

	var resp api.PrintResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response body %q is not valid JSON: %v", w.Body.String(), err)
	}
	return w.Code, resp
}

func TestPrintHandlerMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(relay.NewMemoryDialer())

	req := httptest.NewRequest(http.MethodGet, "/print", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestPrintHandlerValidationFailures(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantError   string
		wantMessage string
	}{
		{
			name:        "malformed JSON",
			body:        `{not json`,
			wantError:   "Invalid request",
			wantMessage: "IP address and data array are required",
		},
		{
			name:        "missing ip",
			body:        `{"data":[27,64]}`,
			wantError:   "Invalid request",
			wantMessage: "IP address and data array are required",
		},
		{
			name:        "missing data",
			body:        `{"ip":"192.168.1.100"}`,
			wantError:   "Invalid request",
			wantMessage: "IP address and data array are required",
		},
		{
			name:        "data not an array",
			body:        `{"ip":"192.168.1.100","data":"ESC @"}`,
			wantError:   "Invalid request",
			wantMessage: "IP address and data array are required",
		},
		{
			name:        "data null",
			body:        `{"ip":"192.168.1.100","data":null}`,
			wantError:   "Invalid request",
			wantMessage: "IP address and data array are required",
		},
		{
			name:      "bad address format",
			body:      `{"ip":"printer.local","data":[27,64]}`,
			wantError: "Invalid IP address format",
		},
		{
			name:      "address with too many groups",
			body:      `{"ip":"10.0.0.1.2","data":[27,64]}`,
			wantError: "Invalid IP address format",
		},
		{
			name:      "port too high",
			body:      `{"ip":"192.168.1.100","port":70000,"data":[27,64]}`,
			wantError: "Invalid port number (must be 1-65535)",
		},
		{
			name:      "port negative",
			body:      `{"ip":"192.168.1.100","port":-9100,"data":[27,64]}`,
			wantError: "Invalid port number (must be 1-65535)",
		},
		{
			name:      "empty data array",
			body:      `{"ip":"192.168.1.100","data":[]}`,
			wantError: "Print data is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialer := relay.NewMemoryDialer()
			handler := newTestHandler(dialer)

			status, resp := doPrint(t, handler, tt.body)

			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
			}
			if resp.Success {
				t.Error("response reports success")
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
			if tt.wantMessage != "" && resp.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
			}
			if dialer.Dials() != 0 {
				t.Errorf("Dials() = %d, want 0: validation must reject before any socket is opened", dialer.Dials())
			}
		})
	}
}

func TestPrintHandlerMalformedData(t *testing.T) {
	dialer := relay.NewMemoryDialer()
	handler := newTestHandler(dialer)

	status, resp := doPrint(t, handler, `{"ip":"192.168.1.100","data":[27,256,64]}`)

	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
	}
	if !strings.HasPrefix(resp.Error, "Invalid data format: ") {
		t.Errorf("error = %q, want %q prefix", resp.Error, "Invalid data format: ")
	}
	if dialer.Dials() != 0 {
		t.Errorf("Dials() = %d, want 0", dialer.Dials())
	}
}

func TestPrintHandlerSuccess(t *testing.T) {
	dialer := relay.NewMemoryDialer()
	handler := newTestHandler(dialer)

	received := make(chan []byte, 1)
	go func() {
		printer := <-dialer.Remote()
		data, _ := io.ReadAll(printer)
		received <- data
		_ = printer.Close()
	}()

	status, resp := doPrint(t, handler, `{"ip":"192.168.1.100","port":9100,"data":[27,64,72,101,108,108,111,10]}`)

	if status != http.StatusOK {
		t.Fatalf("status = %d, want %d", status, http.StatusOK)
	}
	if !resp.Success {
		t.Errorf("response = %+v, want success", resp)
	}
	if resp.Message != "Print job sent successfully" {
		t.Errorf("message = %q, want %q", resp.Message, "Print job sent successfully")
	}

	want := []byte{27, 64, 72, 101, 108, 108, 111, 10}
	if got := <-received; string(got) != string(want) {
		t.Errorf("printer received %v, want %v", got, want)
	}

	addrs := dialer.DialedAddresses()
	if len(addrs) != 1 || addrs[0] != "192.168.1.100:9100" {
		t.Errorf("dialed %v, want [192.168.1.100:9100]", addrs)
	}
}

func TestPrintHandlerDefaultPort(t *testing.T) {
	dialer := relay.NewMemoryDialer()
	dialer.FailWith(errors.New("ECONNREFUSED"))
	handler := newTestHandler(dialer)

	status, resp := doPrint(t, handler, `{"ip":"10.0.0.5","data":[1]}`)

	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", status, http.StatusInternalServerError)
	}
	if resp.Success || resp.Error != "ECONNREFUSED" {
		t.Errorf("response = %+v, want ECONNREFUSED failure", resp)
	}

	addrs := dialer.DialedAddresses()
	if len(addrs) != 1 || addrs[0] != "10.0.0.5:9100" {
		t.Errorf("dialed %v, want [10.0.0.5:9100] (default port)", addrs)
	}
}

func TestPrintHandlerPermissiveAddress(t *testing.T) {
	dialer := relay.NewMemoryDialer()
	dialer.FailWith(errors.New("no route to host"))
	handler := newTestHandler(dialer)

	status, resp := doPrint(t, handler, `{"ip":"999.999.999.999","data":[1]}`)

	// Syntactically valid, so it reaches the dial and fails there
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", status, http.StatusInternalServerError)
	}
	if resp.Error != "no route to host" {
		t.Errorf("error = %q, want %q", resp.Error, "no route to host")
	}
	if dialer.Dials() != 1 {
		t.Errorf("Dials() = %d, want 1", dialer.Dials())
	}
}

func TestPrintHandlerRelayFailure(t *testing.T) {
	dialer := relay.NewMemoryDialer()
	dialer.FailWith(errors.New("connect: connection refused"))
	handler := newTestHandler(dialer)

	status, resp := doPrint(t, handler, `{"ip":"192.168.1.100","data":[27,64]}`)

	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", status, http.StatusInternalServerError)
	}
	if resp.Success {
		t.Error("response reports success")
	}
	if resp.Error != "connect: connection refused" {
		t.Errorf("error = %q, want the dial error", resp.Error)
	}
}

func TestPrintHandlerRecoversFromPanic(t *testing.T) {
	handler := newTestHandler(panicDialer{})

	status, resp := doPrint(t, handler, `{"ip":"192.168.1.100","data":[27,64]}`)

	// The relay converts transport panics into failures itself, so this
	// surfaces as an ordinary 500 with the defensive connect message.
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", status, http.StatusInternalServerError)
	}
	if resp.Success {
		t.Error("response reports success")
	}
	if resp.Error == "" {
		t.Error("error message is empty")
	}
}

// panicDialer simulates a broken transport wired into the handler
type panicDialer struct{}

func (panicDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	panic("transport exploded")
}

// A nil relay blows up inside servePrint itself; the boundary guard must
// turn that into a generic 500 instead of crashing the server.
func TestServePrintBoundaryGuard(t *testing.T) {
	resp, status := servePrint(context.Background(), nil, logging.Nop(), api.PrintRequest{
		IP:   "192.168.1.100",
		Data: json.RawMessage(`[1]`),
	})

	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", status, http.StatusInternalServerError)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("response = %+v, want a failure with an error message", resp)
	}
}
