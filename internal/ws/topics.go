package ws

import (
	"strings"

	"github.com/staysocial/staysocial-backend/internal/store"
)

var topicChannels = map[string]string{
	"posts":     store.ChannelPosts,
	"approvals": store.ChannelApprovals,
	"tasks":     store.ChannelTasks,
	"assets":    store.ChannelAssets,
}

// ChannelsForTopics maps client topic names onto pub/sub channels. No topics,
// or "*", means every live channel. Unknown names are ignored.
func ChannelsForTopics(topics []string) []string {
	if len(topics) == 0 {
		return append([]string(nil), store.LiveChannels...)
	}

	seen := make(map[string]bool)
	var channels []string
	for _, topic := range topics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "*" || topic == "all" {
			return append([]string(nil), store.LiveChannels...)
		}
		if ch, ok := topicChannels[topic]; ok && !seen[ch] {
			seen[ch] = true
			channels = append(channels, ch)
		}
	}
	return channels
}

// eventName is the SSE event name for a channel, e.g. "posts_event"
func eventName(channel string) string {
	for topic, ch := range topicChannels {
		if ch == channel {
			return topic + "_event"
		}
	}
	return "update"
}
