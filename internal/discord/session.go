package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ordercleanup/backend/internal/cleanup"
	"ordercleanup/backend/internal/models"

	"github.com/bwmarrin/discordgo"
)

// API is the part of *discordgo.Session used by Session. Tests substitute it.
type API interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Session adapts a discordgo session to cleanup.Platform.
type Session struct {
	api   API
	ready func() bool
}

// NewSession wraps a live discordgo session.
func NewSession(s *discordgo.Session) *Session {
	return &Session{
		api:   s,
		ready: func() bool {
			s.RLock()
			defer s.RUnlock()
			return s.DataReady
		},
	}
}

// newSessionWithAPI is used by tests to plug in a fake REST surface.
func newSessionWithAPI(api API, ready func() bool) *Session {
	return &Session{api: api, ready: ready}
}

// Connected reports whether the gateway session is up.
func (s *Session) Connected() bool {
	return s.ready != nil && s.ready()
}

// FetchChannel resolves a channel through the REST API.
func (s *Session) FetchChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	ch, err := s.api.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, classify(err))
	}
	return &models.Channel{ID: ch.ID, Name: ch.Name, GuildID: ch.GuildID}, nil
}

// ChannelMessages fetches one page of history, newest first.
func (s *Session) ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]models.CandidateMessage, error) {
	msgs, err := s.api.ChannelMessages(channelID, limit, beforeID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("read history of channel %s: %w", channelID, classify(err))
	}
	out := make([]models.CandidateMessage, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		out = append(out, toCandidate(m))
	}
	return out, nil
}

// DeleteMessage removes one message.
func (s *Session) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := s.api.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete message %s: %w", messageID, classify(err))
	}
	return nil
}

// classify maps Discord REST failures onto cleanup's error taxonomy while
// keeping the original error text.
func classify(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownMessage:
			return fmt.Errorf("%w: %v", cleanup.ErrNotFound, err)
		case discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
			return fmt.Errorf("%w: %v", cleanup.ErrForbidden, err)
		}
	}
	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", cleanup.ErrNotFound, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", cleanup.ErrForbidden, err)
		}
	}
	return err
}

func toCandidate(m *discordgo.Message) models.CandidateMessage {
	c := models.CandidateMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		WebhookID: m.WebhookID,
		Content:   m.Content,
		CreatedAt: m.Timestamp,
	}
	if m.Author != nil {
		c.Author = m.Author.String()
		c.AuthorBot = m.Author.Bot
	}
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		embed := models.Embed{Title: e.Title, Description: e.Description}
		for _, f := range e.Fields {
			if f == nil {
				continue
			}
			embed.Fields = append(embed.Fields, models.EmbedField{Name: f.Name, Value: f.Value})
		}
		c.Embeds = append(c.Embeds, embed)
	}
	return c
}
