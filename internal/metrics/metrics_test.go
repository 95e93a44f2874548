package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/birthpad/internal/events"
)

func txEvent(t events.EventType, sig string, at time.Time) events.TxStatusEvent {
	return events.TxStatusEvent{
		BaseEvent: events.BaseEvent{EventType: t, EventTime: at},
		Signature: sig,
		Meta:      events.TxMeta{Action: "buy"},
	}
}

func TestCollectorCountsTransactions(t *testing.T) {
	bus := events.NewBus(zaptest.NewLogger(t), 16)
	c := NewCollector("")
	c.Attach(bus)
	defer c.Close()

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, bus.PublishSync(ctx, txEvent(events.TxSent, "a", now)))
	require.NoError(t, bus.PublishSync(ctx, txEvent(events.TxConfirmed, "a", now.Add(2*time.Second))))
	require.NoError(t, bus.PublishSync(ctx, txEvent(events.TxSent, "b", now)))
	require.NoError(t, bus.PublishSync(ctx, txEvent(events.TxFailed, "b", now.Add(time.Second))))
	require.NoError(t, bus.PublishSync(ctx, events.NewToast(events.StatusError, "Buy", "failed")))
	require.NoError(t, bus.PublishSync(ctx, events.RPCChangedEvent{BaseEvent: events.NewBase(events.RPCChanged), URL: "https://x"}))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.transactions.WithLabelValues("buy", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactions.WithLabelValues("buy", "confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactions.WithLabelValues("buy", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.toasts.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rpcSwitches.WithLabelValues("custom")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.confirmDuration))
	assert.Empty(t, c.pending)
}

func TestCloseStopsCounting(t *testing.T) {
	bus := events.NewBus(zaptest.NewLogger(t), 16)
	c := NewCollector("test")
	c.Attach(bus)
	c.Close()

	require.NoError(t, bus.PublishSync(context.Background(), events.NewToast(events.StatusInfo, "x", "")))
	assert.Zero(t, testutil.ToFloat64(c.toasts.WithLabelValues("info")))
}

func TestServeExposesMetrics(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	c := NewCollector("")
	c.toasts.WithLabelValues("success").Inc()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, addr, c, zaptest.NewLogger(t)) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, `birthpad_notifications_total{status="success"} 1`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
