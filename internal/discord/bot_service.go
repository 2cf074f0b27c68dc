// Package discord connects to the Discord gateway and exposes the session
// to the cleanup core once it is ready.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"ordercleanup/backend/internal/cleanup"
	"ordercleanup/backend/internal/logger"

	"github.com/bwmarrin/discordgo"
)

// Gateway is the connection lifecycle of a discordgo session.
type Gateway interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
}

// BotService owns the Discord gateway connection and registers it with the
// readiness gate when the session reports ready.
type BotService struct {
	Gate    *cleanup.ReadinessGate
	gateway Gateway
	session *discordgo.Session
	log     *slog.Logger
}

// NewBotService creates the bot; it does not connect until Run is called.
func NewBotService(token string, gate *cleanup.ReadinessGate) (*BotService, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return &BotService{
		Gate:    gate,
		gateway: session,
		session: session,
		log:     logger.L.With("component", "discord.bot"),
	}, nil
}

// Run opens the gateway connection and keeps it until ctx is cancelled.
func (b *BotService) Run(ctx context.Context) error {
	b.gateway.AddHandler(b.onReady)
	b.gateway.AddHandler(b.onDisconnect)
	b.gateway.AddHandler(b.onResumed)

	b.log.Info("Starting Discord bot")
	if err := b.gateway.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	<-ctx.Done()

	b.log.Info("Stopping Discord bot")
	if err := b.gateway.Close(); err != nil {
		b.log.Error("Failed to close Discord session", "error", err)
		return fmt.Errorf("close discord session: %w", err)
	}
	return nil
}

func (b *BotService) onReady(s *discordgo.Session, r *discordgo.Ready) {
	name := ""
	if r.User != nil {
		name = r.User.String()
	}
	b.log.Info("Discord bot logged in", "user", name, "guilds", len(r.Guilds))

	b.Gate.SetConnection(NewSession(s))
	b.log.Info("Bot client registered with cleanup service")
}

func (b *BotService) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.log.Warn("Discord gateway disconnected; requests will wait for reconnection")
}

func (b *BotService) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	b.log.Info("Discord gateway session resumed")
}
