package platforms

// Platform describes a social network the hotel publishes to or reviews for.
type Platform struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Icon           string `json:"icon"`
	ColorClass     string `json:"colorClass"`
	CharacterLimit int    `json:"characterLimit,omitempty"`
	StripsEmoji    bool   `json:"stripsEmoji,omitempty"`
	Schedulable    bool   `json:"schedulable"`
	Connected      bool   `json:"connected"`
	Username       string `json:"username,omitempty"`
}
