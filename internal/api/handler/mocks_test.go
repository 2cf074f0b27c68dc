package handler_test

import (
	"context"

	"ordercleanup/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockCleaner struct {
	mock.Mock
}

func (m *MockCleaner) SearchAndDelete(ctx context.Context, channelID string, criteria models.MatchCriteria, limit int) models.OperationResult {
	args := m.Called(ctx, channelID, criteria, limit)
	return args.Get(0).(models.OperationResult)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveDeletionRecord(record *models.DeletionRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockStorage) PublishDeletionEvent(event models.DeletionEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockStorage) GetDeletionRecordsByOrderID(orderID string) ([]models.DeletionRecord, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DeletionRecord), args.Error(1)
}

// stubPlatform only answers Connected; the cleaner is mocked so nothing else is called.
type stubPlatform struct {
	connected bool
}

func (p stubPlatform) Connected() bool { return p.connected }

func (stubPlatform) FetchChannel(context.Context, string) (*models.Channel, error) {
	panic("not used")
}

func (stubPlatform) ChannelMessages(context.Context, string, int, string) ([]models.CandidateMessage, error) {
	panic("not used")
}

func (stubPlatform) DeleteMessage(context.Context, string, string) error {
	panic("not used")
}
