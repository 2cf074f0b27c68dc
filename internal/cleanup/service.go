package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"ordercleanup/backend/internal/logger"
	"ordercleanup/backend/internal/models"
)

const (
	// DefaultLimit is the history window used when the caller passes no limit.
	DefaultLimit = 50
	// MaxPageSize is the largest page the platform returns per history request.
	MaxPageSize = 100

	previewLength = 100
)

type messageOutcome int

const (
	outcomeSkipped messageOutcome = iota
	outcomeUnmatched
	outcomeDeleted
	outcomeAlreadyGone
	outcomeForbidden
	outcomeFailed
)

// messageResult is the outcome of examining one message.
type messageResult struct {
	outcome  messageOutcome
	deletion models.DeletionOutcome
	err      error
}

// Service searches a channel's recent history and deletes messages about an order.
type Service struct {
	Gate *ReadinessGate
	// PageSize caps each history request; zero means MaxPageSize.
	PageSize int
}

// NewService creates the matcher/deleter bound to gate.
func NewService(gate *ReadinessGate) *Service {
	return &Service{Gate: gate, PageSize: MaxPageSize}
}

// SearchAndDelete scans up to limit recent messages in channelID and deletes the
// automated ones matching criteria. It never returns an error: failures are
// reported through OperationResult.Success and OperationResult.Error.
func (s *Service) SearchAndDelete(ctx context.Context, channelID string, criteria models.MatchCriteria, limit int) (result models.OperationResult) {
	log := logger.FromContext(ctx).With("channel_id", channelID, "order_id", criteria.OrderID)

	result = models.OperationResult{
		SearchCriteria:  criteria,
		DeletedMessages: []models.DeletionOutcome{},
	}

	platform, err := s.Gate.Ready()
	if err != nil {
		log.Warn("Discord client unavailable, skipping scan", "error", err)
		return failed(result, err.Error())
	}
	if strings.TrimSpace(criteria.OrderID) == "" {
		return failed(result, "order_id is required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	stats := &models.ScanStats{}
	result.Stats = stats

	defer func() {
		if r := recover(); r != nil {
			log.Error("Unexpected error while scanning channel", "panic", r, "already_deleted", stats.Deleted)
			result = failed(result, fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	channel, err := platform.FetchChannel(ctx, channelID)
	switch {
	case errors.Is(err, ErrNotFound):
		return failed(result, fmt.Sprintf("Channel with ID %s not found", channelID))
	case errors.Is(err, ErrForbidden):
		return failed(result, fmt.Sprintf("Bot doesn't have permission to access channel %s", channelID))
	case err != nil:
		log.Error("Failed to resolve channel", "error", err)
		return failed(result, err.Error())
	}

	pageSize := s.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	remaining := limit
	before := ""
	for remaining > 0 {
		want := min(remaining, pageSize)
		page, err := platform.ChannelMessages(ctx, channel.ID, want, before)
		if err != nil {
			log.Error("Failed to read channel history", "error", err, "already_deleted", stats.Deleted)
			if errors.Is(err, ErrForbidden) {
				return failed(result, "Bot doesn't have permission to read messages or delete messages in this channel")
			}
			return failed(result, err.Error())
		}

		for _, msg := range page {
			result.MessagesChecked++
			r := s.examine(ctx, log, platform, channel.ID, msg, criteria)
			fold(&result, stats, r)
		}

		remaining -= len(page)
		if len(page) < want {
			break
		}
		before = page[len(page)-1].ID
	}

	result.Success = true
	result.DeletedCount = len(result.DeletedMessages)
	log.Info("Channel scan complete",
		"messages_checked", result.MessagesChecked,
		"deleted", result.DeletedCount,
		"already_gone", stats.AlreadyGone,
		"forbidden", stats.Forbidden,
		"failed", stats.Failed,
	)
	return result
}

// examine classifies, matches and (if matched) deletes one message.
func (s *Service) examine(ctx context.Context, log *slog.Logger, platform Platform, channelID string, msg models.CandidateMessage, criteria models.MatchCriteria) messageResult {
	log = log.With("message_id", msg.ID)
	log.Debug("Examining message",
		"author", msg.Author,
		"bot", msg.AuthorBot,
		"webhook_id", msg.WebhookID,
		"embeds", len(msg.Embeds),
	)

	if !msg.IsAutomated() {
		return messageResult{outcome: outcomeSkipped}
	}

	reason, ok := Match(msg, criteria)
	if !ok {
		return messageResult{outcome: outcomeUnmatched}
	}

	err := platform.DeleteMessage(ctx, channelID, msg.ID)
	switch {
	case err == nil:
		log.Info("Deleted message", "author", msg.Author, "reason", reason)
		return messageResult{outcome: outcomeDeleted, deletion: newDeletionOutcome(msg, reason)}
	case errors.Is(err, ErrNotFound):
		log.Warn("Message was already deleted")
		return messageResult{outcome: outcomeAlreadyGone, err: err}
	case errors.Is(err, ErrForbidden):
		log.Error("No permission to delete message", "error", err)
		return messageResult{outcome: outcomeForbidden, err: err}
	default:
		log.Error("Failed to delete message", "error", err)
		return messageResult{outcome: outcomeFailed, err: err}
	}
}

func fold(result *models.OperationResult, stats *models.ScanStats, r messageResult) {
	switch r.outcome {
	case outcomeSkipped:
		stats.Skipped++
	case outcomeUnmatched:
		stats.Unmatched++
	case outcomeDeleted:
		stats.Deleted++
		result.DeletedMessages = append(result.DeletedMessages, r.deletion)
	case outcomeAlreadyGone:
		stats.AlreadyGone++
	case outcomeForbidden:
		stats.Forbidden++
	case outcomeFailed:
		stats.Failed++
	}
}

// failed turns result into a failure. Deletions already made are not reported
// in DeletedCount; ScanStats.Deleted still counts them.
func failed(result models.OperationResult, msg string) models.OperationResult {
	result.Success = false
	result.Error = msg
	result.DeletedCount = 0
	result.DeletedMessages = []models.DeletionOutcome{}
	return result
}

func newDeletionOutcome(msg models.CandidateMessage, reason string) models.DeletionOutcome {
	return models.DeletionOutcome{
		MessageID: msg.ID,
		Content:   preview(msg.Content),
		Author:    msg.Author,
		Timestamp: msg.CreatedAt.Format(time.RFC3339),
		Reason:    reason,
	}
}

// preview keeps the first 100 characters and marks truncation with "...".
func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLength]) + "..."
}
