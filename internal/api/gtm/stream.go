package gtm

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// ServeStream upgrades to a WebSocket and pushes every newly recorded
// history entry as a JSON text message. Entries recorded while the client
// lags behind are dropped.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	// Subscribed before the handshake completes so nothing recorded after
	// the client connects is missed.
	records, cancel := h.tracker.History().Subscribe()
	defer cancel()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// The client never sends; CloseRead ends ctx once it goes away.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case rec, ok := <-records:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "stream closed")
				return
			}
			msg, err := json.Marshal(rec)
			if err != nil {
				log.Error().Err(err).Str("event", rec.EventName).Msg("websocket encode")
				continue
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
