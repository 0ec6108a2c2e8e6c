package store

import (
	"context"
	"sync"
)

// Message is a payload delivered on a pub/sub channel
type Message struct {
	Channel string
	Payload string
}

// Subscription delivers messages for the channels it was opened with until
// closed. Both the Redis and the in-memory mode hand these out.
type Subscription interface {
	Messages() <-chan *Message
	Close() error
}

// hubSubscription is the in-memory Subscription
type hubSubscription struct {
	channels map[string]bool
	msgChan  chan *Message
	closeCh  chan struct{}
	closed   bool
	mu       sync.RWMutex
}

func newHubSubscription(channels []string) *hubSubscription {
	channelMap := make(map[string]bool, len(channels))
	for _, ch := range channels {
		channelMap[ch] = true
	}

	return &hubSubscription{
		channels: channelMap,
		msgChan:  make(chan *Message, 100),
		closeCh:  make(chan struct{}),
	}
}

func (s *hubSubscription) Messages() <-chan *Message {
	return s.msgChan
}

func (s *hubSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.closeCh)
		close(s.msgChan)
	}
	return nil
}

// deliver never blocks; a full buffer drops the message
func (s *hubSubscription) deliver(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || !s.channels[msg.Channel] {
		return
	}

	select {
	case s.msgChan <- msg:
	default:
	}
}

// PubSubHub fans messages out to in-memory subscriptions
type PubSubHub struct {
	subscribers map[string][]*hubSubscription // channel -> subscribers
	mu          sync.RWMutex
}

// NewPubSubHub creates a new pubsub hub
func NewPubSubHub() *PubSubHub {
	return &PubSubHub{
		subscribers: make(map[string][]*hubSubscription),
	}
}

// Subscribe registers a subscription that is dropped when ctx ends or it is closed
func (h *PubSubHub) Subscribe(ctx context.Context, channels ...string) Subscription {
	sub := newHubSubscription(channels)

	h.mu.Lock()
	for _, channel := range channels {
		h.subscribers[channel] = append(h.subscribers[channel], sub)
	}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.closeCh:
		}
		h.remove(sub, channels)
	}()

	return sub
}

func (h *PubSubHub) remove(sub *hubSubscription, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, channel := range channels {
		subscribers := h.subscribers[channel]
		for i, s := range subscribers {
			if s == sub {
				h.subscribers[channel] = append(subscribers[:i:i], subscribers[i+1:]...)
				break
			}
		}
		if len(h.subscribers[channel]) == 0 {
			delete(h.subscribers, channel)
		}
	}
}

// Publish sends payload to every current subscriber of channel
func (h *PubSubHub) Publish(channel, payload string) {
	h.mu.RLock()
	subscribers := make([]*hubSubscription, len(h.subscribers[channel]))
	copy(subscribers, h.subscribers[channel])
	h.mu.RUnlock()

	msg := &Message{Channel: channel, Payload: payload}
	for _, sub := range subscribers {
		sub.deliver(msg)
	}
}

// SubscriberCount reports how many subscriptions listen on channel
func (h *PubSubHub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}
