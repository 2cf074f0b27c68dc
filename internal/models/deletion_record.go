package models

import (
	"time"

	"github.com/lib/pq" // pq.StringArray for the message id column
	"gorm.io/gorm"
)

// DeletionRecord is the audit row written after every delete request.
// The embedded gorm.Model provides ID, CreatedAt, UpdatedAt and DeletedAt.
type DeletionRecord struct {
	gorm.Model

	// OrderID is the order the request asked to clean up.
	OrderID string `gorm:"type:text;not null;index"`
	// ChannelID is the Discord channel that was scanned.
	ChannelID string `gorm:"type:text;not null"`
	Title     string `gorm:"type:text"`
	Variant   string `gorm:"type:text"`

	Success         bool
	DeletedCount    int
	MessagesChecked int
	// MessageIDs holds the ids of the messages that were removed.
	MessageIDs pq.StringArray `gorm:"type:text[]"`
	Error      string         `gorm:"type:text"`
	RequestID  string         `gorm:"type:text;index"`
}

// DeletionEvent is the JSON payload published on Redis after a delete request.
type DeletionEvent struct {
	RequestID    string    `json:"request_id"`
	OrderID      string    `json:"order_id"`
	ChannelID    string    `json:"channel_id"`
	Success      bool      `json:"success"`
	DeletedCount int       `json:"deleted_count"`
	MessageIDs   []string  `json:"message_ids"`
	Error        string    `json:"error,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewDeletionRecord builds the audit row for one finished operation.
func NewDeletionRecord(requestID, channelID string, result OperationResult) *DeletionRecord {
	return &DeletionRecord{
		OrderID:         result.SearchCriteria.OrderID,
		ChannelID:       channelID,
		Title:           result.SearchCriteria.Title,
		Variant:         result.SearchCriteria.Variant,
		Success:         result.Success,
		DeletedCount:    result.DeletedCount,
		MessagesChecked: result.MessagesChecked,
		MessageIDs:      pq.StringArray(result.DeletedIDs()),
		Error:           result.Error,
		RequestID:       requestID,
	}
}

// Event converts the record into its pub/sub payload.
func (r *DeletionRecord) Event(at time.Time) DeletionEvent {
	return DeletionEvent{
		RequestID:    r.RequestID,
		OrderID:      r.OrderID,
		ChannelID:    r.ChannelID,
		Success:      r.Success,
		DeletedCount: r.DeletedCount,
		MessageIDs:   []string(r.MessageIDs),
		Error:        r.Error,
		OccurredAt:   at,
	}
}
