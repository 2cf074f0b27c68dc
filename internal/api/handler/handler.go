package handler

import (
	"context"
	"time"

	"ordercleanup/backend/internal/cleanup"
	"ordercleanup/backend/internal/models"
	"ordercleanup/backend/internal/storage"
)

// Cleaner runs one search-and-delete operation.
type Cleaner interface {
	SearchAndDelete(ctx context.Context, channelID string, criteria models.MatchCriteria, limit int) models.OperationResult
}

// Handler holds the dependencies of the HTTP routes.
type Handler struct {
	Gate    *cleanup.ReadinessGate
	Cleaner Cleaner
	Storage storage.Storage
	// Wait bounds how long a delete request waits for the bot to become ready.
	Wait cleanup.WaitOptions

	now func() time.Time
}

func NewHandler(gate *cleanup.ReadinessGate, cleaner Cleaner, s storage.Storage, wait cleanup.WaitOptions) *Handler {
	if s == nil {
		s = storage.NopStorage{}
	}
	return &Handler{
		Gate:    gate,
		Cleaner: cleaner,
		Storage: s,
		Wait:    wait,
		now:     time.Now,
	}
}
