package ws

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/staysocial/staysocial-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) (*Hub, *store.Cache, *httptest.Server) {
	t.Helper()
	logger := zap.NewNop().Sugar()
	cache := store.NewMemoryCache(logger, nil)
	hub := NewHub(cache, []string{"http://localhost:5173"}, logger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, cache, srv
}

func dial(t *testing.T, srv *httptest.Server, origin string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestChannelsForTopics(t *testing.T) {
	assert.Equal(t, store.LiveChannels, ChannelsForTopics(nil))
	assert.Equal(t, store.LiveChannels, ChannelsForTopics([]string{"posts", "*"}))
	assert.Equal(t, []string{store.ChannelApprovals, store.ChannelPosts},
		ChannelsForTopics([]string{" Approvals", "posts", "approvals"}))
	assert.Empty(t, ChannelsForTopics([]string{"prices"}))
}

func TestHub_BroadcastsToDefaultSubscribers(t *testing.T) {
	hub, cache, srv := newTestHub(t)
	conn := dial(t, srv, "")

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, cache.Publish(context.Background(), store.ChannelPosts, map[string]string{"type": "post.created", "id": "p1"}))

	msg := readMessage(t, conn)
	assert.Equal(t, "update", msg.Type)
	assert.Equal(t, store.ChannelPosts, msg.Topic)
	assert.JSONEq(t, `{"type":"post.created","id":"p1"}`, string(msg.Data))
}

func TestHub_SubscribeNarrowsTopics(t *testing.T) {
	hub, cache, srv := newTestHub(t)
	conn := dial(t, srv, "http://localhost:5173")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(SubscriptionRequest{Type: "subscribe", Topics: []string{"approvals"}}))
	ack := readMessage(t, conn)
	assert.Equal(t, "subscribed", ack.Type)
	var channels []string
	require.NoError(t, json.Unmarshal(ack.Data, &channels))
	assert.Equal(t, []string{store.ChannelApprovals}, channels)

	ctx := context.Background()
	require.NoError(t, cache.Publish(ctx, store.ChannelPosts, map[string]string{"id": "p1"}))
	require.NoError(t, cache.Publish(ctx, store.ChannelApprovals, map[string]string{"id": "a1"}))

	msg := readMessage(t, conn)
	assert.Equal(t, store.ChannelApprovals, msg.Topic)
}

func TestHub_RejectsUnknownOrigin(t *testing.T) {
	_, _, srv := newTestHub(t)
	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, _, srv := newTestHub(t)
	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSSE_StreamsChannelEvents(t *testing.T) {
	logger := zap.NewNop().Sugar()
	cache := store.NewMemoryCache(logger, nil)
	handler := NewSSEHandler(cache, time.Hour, logger, nil)

	srv := httptest.NewServer(http.HandlerFunc(handler.HandleSSE))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?topics=tasks", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, _ := readSSE(t, reader)
	assert.Equal(t, "connected", event)

	require.NoError(t, cache.Publish(context.Background(), store.ChannelTasks, map[string]string{"id": "t1", "status": "completed"}))

	event, data := readSSE(t, reader)
	assert.Equal(t, "tasks_event", event)
	assert.JSONEq(t, `{"id":"t1","status":"completed"}`, data)
}

func TestSSE_UnknownTopics(t *testing.T) {
	logger := zap.NewNop().Sugar()
	handler := NewSSEHandler(store.NewMemoryCache(logger, nil), 0, logger, nil)

	rec := httptest.NewRecorder()
	handler.HandleSSE(rec, httptest.NewRequest(http.MethodGet, "/v1/sse?topics=prices", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func readSSE(t *testing.T, r *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if event != "" {
				return event, data
			}
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data += strings.TrimPrefix(line, "data: ")
		}
	}
}
