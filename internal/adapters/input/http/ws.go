package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"municipal-tasks/internal/core/domain/entities"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// feedMessage is the envelope for all feed messages.
type feedMessage struct {
	Type    string              `json:"type"`
	Payload entities.BoardState `json:"payload"`
}

// HandleFeed upgrades the connection and pipes every board emission to the
// client, starting with the current state. The board watch is released when
// the client goes away.
func (h *Handlers) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled upstream
	})
	if err != nil {
		h.log.Error("feed: websocket accept failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	ctx, cancelCtx := context.WithCancel(r.Context())

	var writeMu sync.Mutex
	cancelWatch := h.board.Watch(func(state entities.BoardState) {
		data, err := json.Marshal(feedMessage{Type: "board_state", Payload: state})
		if err != nil {
			h.log.Error("feed: marshal failed", zap.String("conn_id", connID), zap.Error(err))
			return
		}

		writeMu.Lock()
		defer writeMu.Unlock()
		if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
			cancelCtx()
		}
	})

	h.log.Info("feed: client connected",
		zap.String("conn_id", connID), zap.String("remote", r.RemoteAddr))

	// Read loop to detect disconnects and consume pings.
	go func() {
		defer func() {
			cancelWatch()
			cancelCtx()
			_ = ws.Close(websocket.StatusNormalClosure, "")
			h.log.Info("feed: client disconnected", zap.String("conn_id", connID))
		}()
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}()
}
