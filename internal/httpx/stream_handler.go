package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/redisx"
)

// StreamHandler feeds connected staff screens over SSE from the Redis
// pub/sub channel. Best effort by design: a listener that connects late
// simply misses earlier events, there is no replay and no ack.
type StreamHandler struct {
	Redis *redis.Client
}

func (h *StreamHandler) Register(r *chi.Mux) {
	r.Get("/admin/orders/stream", h.stream)
}

func (h *StreamHandler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.Redis.Subscribe(r.Context(), redisx.ChannelOrderEvents)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "event: order\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}
