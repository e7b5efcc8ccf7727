package contact

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const streamWriteTimeout = 5 * time.Second

// HandleStream pushes the visitor's snapshot over a websocket: the current
// one first, then one per change. The stream ends when the client leaves or
// the form is torn down. A visitor without a form gets an idle snapshot and
// a normal close.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	form, hasForm := h.peek(r)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		// Accept has already written the HTTP error.
		h.log.Debugf("Contact stream upgrade failed: %v", err)
		return
	}
	defer conn.CloseNow()

	// Clients never send anything; CloseRead handles control frames and
	// cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	if !hasForm {
		if err := writeSnapshot(ctx, conn, idleSnapshot()); err == nil {
			conn.Close(websocket.StatusNormalClosure, "no form")
		}
		return
	}

	updates, unsubscribe := form.Subscribe()
	defer unsubscribe()

	if err := writeSnapshot(ctx, conn, form.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "form closed")
				return
			}
			if err := writeSnapshot(ctx, conn, snap); err != nil {
				h.log.Debugf("Contact stream write failed: %v", err)
				return
			}
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, snap Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, snapshotResponse{Snapshot: snap})
}
