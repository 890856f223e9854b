package listener

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/sale/dto"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSaleUseCase struct {
	mock.Mock
}

func (m *mockSaleUseCase) SaveSale(ctx context.Context, input *dto.SaveSaleInput) (*model.Sale, error) {
	args := m.Called(ctx, input)
	s, _ := args.Get(0).(*model.Sale)
	return s, args.Error(1)
}

func (m *mockSaleUseCase) GetSale(ctx context.Context, id string) (*model.Sale, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.Sale)
	return s, args.Error(1)
}

func (m *mockSaleUseCase) ListSales(ctx context.Context) ([]model.Sale, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]model.Sale)
	return s, args.Error(1)
}

func (m *mockSaleUseCase) Deactivate(ctx context.Context, id string) (*model.Sale, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.Sale)
	return s, args.Error(1)
}

func (m *mockSaleUseCase) DeleteSale(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSaleUseCase) Apply(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSaleUseCase) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func event(t *testing.T, eventType, id string) []byte {
	t.Helper()
	b, err := json.Marshal(SaleEvent{
		EventID:   "evt-1",
		EventType: eventType,
		Payload:   SalePayload{ID: id},
		Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestProcessMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("saved applies", func(t *testing.T) {
		uc := new(mockSaleUseCase)
		uc.On("Apply", ctx, "sale-1").Return(nil).Once()
		NewSaleListener(nil, uc, logger.NewNop()).processMessage(ctx, event(t, EventSaleSaved, "sale-1"))
		uc.AssertExpectations(t)
	})

	t.Run("deleted removes", func(t *testing.T) {
		uc := new(mockSaleUseCase)
		uc.On("Remove", ctx, "sale-2").Return(nil).Once()
		NewSaleListener(nil, uc, logger.NewNop()).processMessage(ctx, event(t, EventSaleDeleted, "sale-2"))
		uc.AssertExpectations(t)
	})

	t.Run("errors are logged not raised", func(t *testing.T) {
		uc := new(mockSaleUseCase)
		uc.On("Apply", ctx, "sale-3").Return(errors.New("db down")).Once()
		NewSaleListener(nil, uc, logger.NewNop()).processMessage(ctx, event(t, EventSaleSaved, "sale-3"))
		uc.AssertExpectations(t)
	})

	t.Run("ignored", func(t *testing.T) {
		uc := new(mockSaleUseCase)
		l := NewSaleListener(nil, uc, logger.NewNop())
		l.processMessage(ctx, []byte("not json"))
		l.processMessage(ctx, event(t, "ProductUpdated", "sale-4"))
		l.processMessage(ctx, event(t, EventSaleSaved, ""))
		uc.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
		uc.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	})
}

// queueReader hands out queued messages, then blocks until cancelled.
type queueReader struct {
	messages chan kafka.Message
}

func (r *queueReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-r.messages:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func TestStart_ConsumesUntilCancelled(t *testing.T) {
	reader := &queueReader{messages: make(chan kafka.Message, 2)}
	reader.messages <- kafka.Message{Value: event(t, EventSaleSaved, "sale-1")}
	reader.messages <- kafka.Message{Value: event(t, EventSaleDeleted, "sale-1")}

	ctx, cancel := context.WithCancel(context.Background())
	removed := make(chan struct{})

	uc := new(mockSaleUseCase)
	uc.On("Apply", mock.Anything, "sale-1").Return(nil).Once()
	uc.On("Remove", mock.Anything, "sale-1").Return(nil).Once().Run(func(mock.Arguments) { close(removed) })

	done := make(chan struct{})
	go func() {
		NewSaleListener(reader, uc, logger.NewNop()).Start(ctx)
		close(done)
	}()

	select {
	case <-removed:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not consume both events")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
	uc.AssertExpectations(t)
	assert.Empty(t, reader.messages)
}
