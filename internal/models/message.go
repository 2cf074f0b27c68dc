package models

import "time"

// EmbedField is a single name/value pair inside an embed.
type EmbedField struct {
	Name  string
	Value string
}

// Embed is a structured attachment on a message, as produced by webhook senders.
type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
}

// CandidateMessage is a message fetched from a channel's history.
// It is a read-only snapshot; the message may be deleted by someone else
// between the fetch and our own delete attempt.
type CandidateMessage struct {
	ID        string
	ChannelID string
	// Author is the display string of the author (e.g. "shopify#0000").
	Author    string
	AuthorBot bool
	WebhookID string
	Content   string
	Embeds    []Embed
	CreatedAt time.Time
}

// IsAutomated reports whether the message came from a webhook or a bot account.
// Only automated messages are ever considered for deletion.
func (m CandidateMessage) IsAutomated() bool {
	return m.WebhookID != "" || m.AuthorBot
}

// Channel is the resolved message container a scan runs against.
type Channel struct {
	ID      string
	Name    string
	GuildID string
}
