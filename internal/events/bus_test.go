package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBusDeliversAsyncInOrder(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)

	var (
		mu     sync.Mutex
		titles []string
		wg     sync.WaitGroup
	)
	wg.Add(3)
	bus.SubscribeFunc(Toast, func(_ context.Context, e Event) error {
		mu.Lock()
		titles = append(titles, e.(ToastEvent).Title)
		mu.Unlock()
		wg.Done()
		return nil
	})

	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Publish(NewToast(StatusInfo, title, "")))
	}
	wg.Wait()

	assert.Equal(t, []string{"a", "b", "c"}, titles)
	require.NoError(t, bus.Shutdown(context.Background()))
}

func TestPublishSyncCollectsHandlerErrors(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 1)
	defer bus.Shutdown(context.Background())

	boom := errors.New("boom")
	bus.SubscribeFunc(TxFailed, func(context.Context, Event) error { return boom })
	bus.SubscribeFunc(TxFailed, func(context.Context, Event) error { return nil })

	err := bus.PublishSync(context.Background(), TxStatusEvent{BaseEvent: NewBase(TxFailed)})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 1)
	defer bus.Shutdown(context.Background())

	sub := bus.SubscribeFunc(PoolRefresh, func(context.Context, Event) error { return nil })
	assert.Equal(t, 1, bus.HandlerCount(PoolRefresh))
	sub.Unsubscribe()
	assert.Equal(t, 0, bus.HandlerCount(PoolRefresh))
}

func TestPublishAfterShutdown(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Shutdown(ctx))

	assert.ErrorIs(t, bus.Publish(NewToast(StatusError, "late", "")), ErrBusClosed)
}
