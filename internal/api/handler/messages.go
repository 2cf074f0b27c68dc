package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ordercleanup/backend/internal/config"
	"ordercleanup/backend/internal/logger"
	"ordercleanup/backend/internal/models"
	"ordercleanup/backend/internal/version"

	"github.com/gin-gonic/gin"
)

// DeleteMessageRequest is the body of POST /delete-discord-message.
type DeleteMessageRequest struct {
	ChannelID int64  `json:"channel_id" binding:"required,gt=0"`
	OrderID   string `json:"order_id" binding:"required"`
	Limit     *int   `json:"limit"`
	Title     string `json:"title"`
	Variant   string `json:"variant"`
}

func (r DeleteMessageRequest) limit() int {
	if r.Limit == nil {
		return config.HTTPDefaultLimit
	}
	return min(max(*r.Limit, 1), config.HTTPMaxLimit)
}

func (r DeleteMessageRequest) criteria() models.MatchCriteria {
	return models.MatchCriteria{
		OrderID: strings.TrimSpace(r.OrderID),
		Title:   strings.TrimSpace(r.Title),
		Variant: strings.TrimSpace(r.Variant),
	}
}

// Root describes the service.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Discord Message Deletion API",
		"status":  "running",
		"service": config.ServiceName,
		"version": version.Get(),
		"endpoints": gin.H{
			"GET /":                        "Service information",
			"GET /health":                  "Health check including Discord bot status",
			"POST /delete-discord-message": "Delete Discord messages matching order ID (fallback: title + variant)",
		},
	})
}

// Health reports the process and the Discord connection state.
func (h *Handler) Health(c *gin.Context) {
	botStatus := "not_ready"
	if h.Gate.IsReady() {
		botStatus = "ready"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"message":            "Discord Message Deletion API is running",
		"service":            config.ServiceName,
		"discord_bot_status": botStatus,
		"timestamp":          h.now().UTC().Format(time.RFC3339),
	})
}

// DeleteDiscordMessage deletes webhook/bot messages in a channel that reference an order.
func (h *Handler) DeleteDiscordMessage(c *gin.Context) {
	var req DeleteMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	criteria := req.criteria()
	if criteria.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: order_id must not be blank"})
		return
	}

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	channelID := strconv.FormatInt(req.ChannelID, 10)
	log.Info("Processing delete request",
		"channel_id", channelID,
		"order_id", criteria.OrderID,
		"title", criteria.Title,
		"variant", criteria.Variant,
	)

	if !h.Gate.AwaitReady(ctx, h.Wait) {
		log.Warn("Discord bot not ready, rejecting request", "waited", h.Wait.Timeout)
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(h.Wait.Timeout)))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":       false,
			"deleted_count": 0,
			"error":         "Discord bot is not ready yet. Please retry in a few seconds.",
		})
		return
	}

	result := h.Cleaner.SearchAndDelete(ctx, channelID, criteria, req.limit())
	if result.Success {
		log.Info("Successfully processed request", "deleted_count", result.DeletedCount, "messages_checked", result.MessagesChecked)
	} else {
		log.Error("Request failed", "error", result.Error)
	}

	h.recordResult(ctx, c.GetString(requestIDKey), channelID, result)
	c.JSON(http.StatusOK, result)
}

// recordResult writes the audit row and publishes the event. Failures are only logged.
func (h *Handler) recordResult(ctx context.Context, requestID, channelID string, result models.OperationResult) {
	log := logger.FromContext(ctx)
	rec := models.NewDeletionRecord(requestID, channelID, result)
	if err := h.Storage.SaveDeletionRecord(rec); err != nil {
		log.Error("Failed to store deletion record", "error", err)
	}
	if err := h.Storage.PublishDeletionEvent(rec.Event(h.now())); err != nil {
		log.Error("Failed to publish deletion event", "error", err)
	}
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(d / time.Second / 2)
	if secs < 1 {
		return 1
	}
	return secs
}
