package cleanup_test

import (
	"context"
	"fmt"
	"time"

	"ordercleanup/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockPlatform is a testify mock of cleanup.Platform.
type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) Connected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPlatform) FetchChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockPlatform) ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]models.CandidateMessage, error) {
	args := m.Called(ctx, channelID, limit, beforeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CandidateMessage), args.Error(1)
}

func (m *MockPlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	args := m.Called(ctx, channelID, messageID)
	return args.Error(0)
}

// livePlatform returns a mock that reports itself as connected.
func livePlatform() *MockPlatform {
	p := new(MockPlatform)
	p.On("Connected").Return(true)
	return p
}

var baseTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func webhookMessage(id string, embeds ...models.Embed) models.CandidateMessage {
	return models.CandidateMessage{
		ID:        id,
		ChannelID: testChannelID,
		Author:    "Shop Notifications",
		WebhookID: "wh-1",
		Embeds:    embeds,
		CreatedAt: baseTime,
	}
}

func humanMessage(id, content string) models.CandidateMessage {
	return models.CandidateMessage{
		ID:        id,
		ChannelID: testChannelID,
		Author:    "alice",
		Content:   content,
		CreatedAt: baseTime,
	}
}

// numberedMessages builds n webhook messages with ids prefix-0 .. prefix-(n-1), all mentioning orderID.
func numberedMessages(prefix string, n int, orderID string) []models.CandidateMessage {
	msgs := make([]models.CandidateMessage, 0, n)
	for i := 0; i < n; i++ {
		m := webhookMessage(fmt.Sprintf("%s-%d", prefix, i))
		m.Content = "New return for " + orderID
		msgs = append(msgs, m)
	}
	return msgs
}
