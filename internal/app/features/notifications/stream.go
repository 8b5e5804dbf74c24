// internal/app/features/notifications/stream.go
package notifications

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/showmate/internal/app/system/auth"
	"github.com/dalemusser/showmate/internal/app/system/httpjson"
	"github.com/dalemusser/showmate/internal/domain/models"
	"go.uber.org/zap"
)

// keepAlive is how often an idle stream sends a comment line so proxies do
// not close it.
const keepAlive = 25 * time.Second

type streamItem struct {
	n   models.Notification
	err error
}

// ServeStream handles GET /notifications/stream as server-sent events. Each
// insert or update of the caller's notifications is sent as a
// "notification" event. The stream ends when the client goes away or the
// change stream fails.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.CurrentUID(r)

	flusher, ok := w.(http.Flusher)
	if !ok || h.Stream == nil {
		httpjson.Error(w, http.StatusServiceUnavailable, "Streaming is not available")
		return
	}

	ctx := r.Context()
	items := make(chan streamItem, 16)
	push := func(it streamItem) {
		select {
		case items <- it:
		case <-ctx.Done():
		}
	}

	stop, err := h.Stream.Subscribe(ctx, uid,
		func(n models.Notification) { push(streamItem{n: n}) },
		func(err error) { push(streamItem{err: err}) })
	if err != nil {
		h.Log.Warn("notification subscribe failed", zap.String("user_id", uid), zap.Error(err))
		httpjson.Error(w, http.StatusServiceUnavailable, "Streaming is not available")
		return
	}
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case it := <-items:
			if it.err != nil {
				h.Log.Warn("notification stream ended", zap.String("user_id", uid), zap.Error(it.err))
				fmt.Fprint(w, "event: error\ndata: {\"error\":\"stream interrupted\"}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(it.n)
			if err != nil {
				h.Log.Error("encode notification", zap.String("notification_id", it.n.ID), zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: notification\nid: %s\ndata: %s\n\n", it.n.ID, data)
			flusher.Flush()
		}
	}
}
