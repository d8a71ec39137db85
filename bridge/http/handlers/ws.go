package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/printbridge/printbridge/internal/api"
	"github.com/printbridge/printbridge/internal/logging"
	"github.com/printbridge/printbridge/internal/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origin policy matches the permissive CORS default on the REST side
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewPrintStreamHandler upgrades the connection to a websocket job stream:
// every text message is one print job in the same shape as POST /print,
// and every reply is the matching outcome. Validation and relay failures
// stay in-band; only transport problems close the socket.
func NewPrintStreamHandler(rl *relay.Relay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logging.FromContext(r.Context())

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already answered the client
			logger.Warn("Websocket upgrade failed", logging.Error(err))
			return
		}
		defer func() { _ = conn.Close() }()

		logger.Debug("Print stream opened", logging.String("remote_addr", r.RemoteAddr))

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Debug("Print stream closed", logging.Error(err))
				return
			}

			var body api.PrintRequest
			var resp api.PrintResponse
			if err := json.Unmarshal(msg, &body); err != nil {
				resp = invalidRequestResponse()
			} else {
				resp, _ = servePrint(r.Context(), rl, logger, body)
			}

			if err := conn.WriteJSON(resp); err != nil {
				logger.Warn("Failed to write print stream response", logging.Error(err))
				return
			}
		}
	}
}
