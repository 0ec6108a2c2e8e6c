package ws

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/staysocial/staysocial-backend/internal/metrics"
	"github.com/staysocial/staysocial-backend/internal/store"
	"go.uber.org/zap"
)

const defaultHeartbeat = 30 * time.Second

// SSEHandler streams live channel events as server-sent events. CORS is
// handled by the router middleware.
type SSEHandler struct {
	cache     *store.Cache
	logger    *zap.SugaredLogger
	metrics   *metrics.Metrics
	heartbeat time.Duration
}

func NewSSEHandler(cache *store.Cache, heartbeat time.Duration, logger *zap.SugaredLogger, m *metrics.Metrics) *SSEHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &SSEHandler{
		cache:     cache,
		logger:    logger.With("component", "sse"),
		metrics:   m,
		heartbeat: heartbeat,
	}
}

// HandleSSE serves ?topics=posts,approvals,tasks,assets; no topics means all.
func (h *SSEHandler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	topics := parseTopics(r)
	channels := ChannelsForTopics(topics)
	if len(channels) == 0 {
		http.Error(w, "no known topics requested", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ctx := r.Context()
	sub := h.cache.Subscribe(ctx, channels...)
	defer sub.Close()

	h.metrics.IncrementConnections(ctx, "sse")
	defer h.metrics.DecrementConnections(ctx, "sse")
	h.logger.Debugw("SSE connection established", "channels", channels)

	writeEvent(w, "connected", fmt.Sprintf(`{"channels":%d,"timestamp":%d}`, len(channels), time.Now().Unix()))
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debugw("SSE client disconnected")
			return

		case <-ticker.C:
			writeEvent(w, "heartbeat", fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()))
			flusher.Flush()

		case msg, ok := <-sub.Messages():
			if !ok {
				return
			}
			writeEvent(w, eventName(msg.Channel), msg.Payload)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}

func parseTopics(r *http.Request) []string {
	raw := r.URL.Query().Get("topics")
	if raw == "" {
		return nil
	}
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}
