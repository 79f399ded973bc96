package http

import (
	"net/http"
	"sync"
)

// ReloadHub fans document changes out to the preview pages listening on the
// event stream.
type ReloadHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewReloadHub() *ReloadHub {
	return &ReloadHub{
		subs: map[chan struct{}]struct{}{},
	}
}

func (h *ReloadHub) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *ReloadHub) Unsubscribe(ch chan struct{}) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}

// Notify wakes every subscriber. Subscribers that already have a pending
// wake-up are not blocked on.
func (h *ReloadHub) Notify() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *ReloadHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *ReloadHub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	_, _ = w.Write([]byte("event: ready\ndata: 1\n\n"))
	flusher.Flush()

	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	for {
		select {
		case <-req.Context().Done():
			return
		case <-ch:
			_, _ = w.Write([]byte("event: reload\ndata: 1\n\n"))
			flusher.Flush()
		}
	}
}
