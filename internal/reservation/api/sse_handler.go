package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bus-reservations/internal/logger"
	"bus-reservations/internal/sse"
)

// SSEHandler streams seat occupancy updates to connected observers.
type SSEHandler struct {
	Logger  *logger.Logger
	Emitter *sse.SeatEventEmitter
}

func NewSSEHandler(log *logger.Logger, emitter *sse.SeatEventEmitter) *SSEHandler {
	return &SSEHandler{Logger: log, Emitter: emitter}
}

// StreamSeatUpdates subscribes the client to every occupancy change.
// There is no per-trip filtering and no replay: clients reconcile from
// the query interface after reconnecting.
func (h *SSEHandler) StreamSeatUpdates(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The server's WriteTimeout would sever this long-lived stream; lift
	// the deadline for this response only.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	eventChan := h.Emitter.Subscribe(ctx)

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()
	h.Logger.LogSSE("CONNECT", fmt.Sprintf("observer connected (%d active)", h.Emitter.ClientCount()))

	for {
		select {
		case event, open := <-eventChan:
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("marshal seat update: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.LogSSE("DISCONNECT", "observer disconnected")
			return
		}
	}
}
