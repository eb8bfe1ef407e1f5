package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// Handler upgrades requests to WebSocket connections served by hub.
// With no origin patterns any origin is accepted.
func Handler(hub *Hub, logger *slog.Logger, originPatterns ...string) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	opts := &ws.AcceptOptions{OriginPatterns: originPatterns}
	if len(originPatterns) == 0 {
		opts.InsecureSkipVerify = true
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			logger.Warn("ws accept", "error", err, "remote", r.RemoteAddr)
			return
		}

		NewClient(hub, conn).Serve(r.Context())
	}
}
