package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockEventHandler is a mock implementation of shared.EventHandler
type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newMemoryStore(t *testing.T) *cache.InMemoryIdempotencyStore {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotencyKey(t *testing.T) {
	event := newTestEvent("PaymentPosted")
	assert.Equal(t, "PaymentPosted:"+event.EventID().String(), IdempotencyKey(event))
}

func TestIdempotentHandler_Handle_NewEvent(t *testing.T) {
	mockHandler := new(MockEventHandler)
	event := newTestEvent("PaymentPosted")
	mockHandler.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(mockHandler, newMemoryStore(t), zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))

	mockHandler.AssertExpectations(t)
	assert.Equal(t, IdempotencyStats{EventsProcessed: 1}, handler.GetMetrics().Stats())
}

func TestIdempotentHandler_Handle_RedeliveredEvent(t *testing.T) {
	mockHandler := new(MockEventHandler)
	event := newTestEvent("PaymentPosted")
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(mockHandler, newMemoryStore(t), zap.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	mockHandler.AssertExpectations(t)
	assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsDuplicate: 2}, handler.GetMetrics().Stats())
}

func TestIdempotentHandler_Handle_SameIDDifferentType(t *testing.T) {
	payment := newTestEvent("PaymentPosted")
	statement := newTestEvent("BankStatementLineReconciled")
	statement.ID = payment.ID

	mockHandler := new(MockEventHandler)
	mockHandler.On("Handle", mock.Anything, mock.Anything).Return(nil).Twice()

	handler := NewIdempotentHandler(mockHandler, newMemoryStore(t), zap.NewNop())
	require.NoError(t, handler.Handle(context.Background(), payment))
	require.NoError(t, handler.Handle(context.Background(), statement))

	mockHandler.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_HandlerError(t *testing.T) {
	mockHandler := new(MockEventHandler)
	event := newTestEvent("PaymentPosted")
	expectedErr := errors.New("unexpected event type")
	mockHandler.On("Handle", mock.Anything, event).Return(expectedErr).Once()

	handler := NewIdempotentHandler(mockHandler, newMemoryStore(t), zap.NewNop())

	err := handler.Handle(context.Background(), event)
	assert.Equal(t, expectedErr, err)

	// the key stays marked, so a redelivery is skipped until it expires
	require.NoError(t, handler.Handle(context.Background(), event))
	mockHandler.AssertExpectations(t)
	assert.Equal(t, IdempotencyStats{EventsFailed: 1, EventsDuplicate: 1}, handler.GetMetrics().Stats())
}

func TestIdempotentHandler_Handle_StoreError(t *testing.T) {
	mockStore := new(MockIdempotencyStore)
	mockHandler := new(MockEventHandler)
	event := newTestEvent("PaymentPosted")

	mockStore.On("MarkProcessed", mock.Anything, IdempotencyKey(event), 24*time.Hour).
		Return(false, errors.New("redis down"))
	mockHandler.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(mockHandler, mockStore, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))
	mockStore.AssertExpectations(t)
	mockHandler.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_Disabled(t *testing.T) {
	mockStore := new(MockIdempotencyStore)
	mockHandler := new(MockEventHandler)
	event := newTestEvent("PaymentPosted")
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Times(2)

	cfg := shared.DefaultIdempotencyConfig()
	cfg.Enabled = false
	handler := NewIdempotentHandler(mockHandler, mockStore, zap.NewNop(), WithIdempotencyConfig(cfg))

	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	mockHandler.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotentHandler_SharedMetricsAndTypes(t *testing.T) {
	metrics := &IdempotencyMetrics{}
	mockHandler := new(MockEventHandler)
	mockHandler.On("EventTypes").Return([]string{"PaymentPosted"})

	handler := NewIdempotentHandler(mockHandler, newMemoryStore(t), zap.NewNop(), WithIdempotencyMetrics(metrics))

	assert.Same(t, metrics, handler.GetMetrics())
	assert.Equal(t, []string{"PaymentPosted"}, handler.EventTypes())
}
