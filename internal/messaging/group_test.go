package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/linkboard/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockRunnable records lifecycle calls.
type mockRunnable struct {
	startErr    error
	shutdownErr error
	started     bool
	stopped     bool
}

func (m *mockRunnable) Start(_ context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}

	m.started = true

	return nil
}

func (m *mockRunnable) Shutdown() error {
	m.stopped = true

	return m.shutdownErr
}

func TestConsumerGroup(t *testing.T) {
	t.Run("starts all consumers", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())

		first := &mockRunnable{}
		second := &mockRunnable{}
		group.Add(first)
		group.Add(second)

		require.NoError(t, group.Start(context.Background()))
		assert.True(t, first.started)
		assert.True(t, second.started)
	})

	t.Run("rolls back started consumers when one fails", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())

		first := &mockRunnable{}
		failing := &mockRunnable{startErr: errors.New("start error")}
		group.Add(first)
		group.Add(failing)

		err := group.Start(context.Background())

		require.Error(t, err)
		assert.True(t, first.stopped, "already-started consumers must be shut down")
	})

	t.Run("shuts down consumers and the subscriber", func(t *testing.T) {
		sub := newMockSubscriber()
		group := messaging.NewConsumerGroup(sub, zap.NewNop())

		consumer := &mockRunnable{}
		group.Add(consumer)

		require.NoError(t, group.Shutdown())
		assert.True(t, consumer.stopped)
		assert.True(t, sub.closed)
	})

	t.Run("reports the first shutdown error", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())

		group.Add(&mockRunnable{shutdownErr: errors.New("first error")})
		group.Add(&mockRunnable{shutdownErr: errors.New("second error")})

		err := group.Shutdown()

		require.Error(t, err)
		assert.Equal(t, "first error", err.Error())
	})
}
