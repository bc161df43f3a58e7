package parse

import "time"

// Message is one chat utterance extracted from a single export line.
type Message struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	HasEmoji  bool      `json:"has_emoji"`
}
