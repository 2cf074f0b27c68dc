package cleanup

import (
	"context"

	"ordercleanup/backend/internal/models"
)

// Platform is the slice of the chat platform that the cleanup core needs.
// It abstracts the underlying connection (discordgo in production, testify mocks in tests).
type Platform interface {
	// Connected reports whether the connection is live and authenticated.
	Connected() bool

	// FetchChannel resolves a channel by id. Errors wrap ErrNotFound or ErrForbidden
	// when the platform reports those conditions.
	FetchChannel(ctx context.Context, channelID string) (*models.Channel, error)

	// ChannelMessages returns up to limit messages older than beforeID (newest first).
	// An empty beforeID starts from the most recent message.
	ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]models.CandidateMessage, error)

	// DeleteMessage removes one message. Errors wrap ErrNotFound or ErrForbidden
	// when the platform reports those conditions.
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}
