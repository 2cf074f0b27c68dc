package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"ordercleanup/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DefaultEventsChannel is the Redis channel deletion events are published on.
const DefaultEventsChannel = "discord:deletions"

// Storage is the audit trail of delete requests.
type Storage interface {
	SaveDeletionRecord(record *models.DeletionRecord) error
	PublishDeletionEvent(event models.DeletionEvent) error
	GetDeletionRecordsByOrderID(orderID string) ([]models.DeletionRecord, error)
}

// Service stores audit rows in PostgreSQL and publishes events on Redis.
// Either backend may be nil, in which case that half is skipped.
type Service struct {
	DB            *gorm.DB
	Redis         *redis.Client
	EventsChannel string
	Ctx           context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:            db,
		Redis:         rdb,
		EventsChannel: DefaultEventsChannel,
		Ctx:           context.Background(),
	}
}

// Migrate creates or updates the audit table.
func (s *Service) Migrate() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.AutoMigrate(&models.DeletionRecord{})
}

// SaveDeletionRecord inserts one audit row.
func (s *Service) SaveDeletionRecord(record *models.DeletionRecord) error {
	if s.DB == nil {
		return nil
	}
	if err := s.DB.Create(record).Error; err != nil {
		slog.Error("Failed to save deletion record", "order_id", record.OrderID, "error", err)
		return err
	}
	return nil
}

// PublishDeletionEvent publishes the event as JSON on the events channel.
func (s *Service) PublishDeletionEvent(event models.DeletionEvent) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(s.Ctx, 5*time.Second)
	defer cancel()
	return s.Redis.Publish(ctx, s.EventsChannel, string(payload)).Err()
}

// GetDeletionRecordsByOrderID returns the audit rows for an order, newest first.
func (s *Service) GetDeletionRecordsByOrderID(orderID string) ([]models.DeletionRecord, error) {
	if s.DB == nil {
		return nil, errors.New("audit database not configured")
	}
	var records []models.DeletionRecord
	if err := s.DB.Where("order_id = ?", orderID).Order("created_at desc").Find(&records).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return records, nil
		}
		return nil, err
	}
	return records, nil
}

// NopStorage discards everything. Used when no backend is configured.
type NopStorage struct{}

func (NopStorage) SaveDeletionRecord(*models.DeletionRecord) error { return nil }
func (NopStorage) PublishDeletionEvent(models.DeletionEvent) error  { return nil }
func (NopStorage) GetDeletionRecordsByOrderID(string) ([]models.DeletionRecord, error) {
	return nil, nil
}
