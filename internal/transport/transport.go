// Package transport defines the message contract between the bot engine
// and whatever channel delivers the conversation, plus the bundled
// websocket and webhook adapters.
package transport

import "context"

// Location is a geographic coordinate attached to an inbound message.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Inbound is one message from the conversation participant.
type Inbound struct {
	ChatID   string    `json:"chat_id"`
	Body     string    `json:"body"`
	Location *Location `json:"location,omitempty"`
}

// Outbound is one reply to the participant. MediaURL is optional.
type Outbound struct {
	Body     string `json:"body"`
	MediaURL string `json:"media_url,omitempty"`
}

// Handler processes one inbound message and returns the replies to send
// in order. Implemented by the bot engine.
type Handler interface {
	HandleMessage(ctx context.Context, in Inbound) []Outbound
}
