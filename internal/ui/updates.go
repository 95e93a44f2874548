package ui

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/events"
)

// UpdateSender provides non-blocking UI update sending with statistics
type UpdateSender struct {
	msgChan        chan tea.Msg
	droppedUpdates uint64
	sentUpdates    uint64
	logger         *zap.Logger
	statsInterval  time.Duration
	stopStats      chan struct{}
}

// NewUpdateSender creates a new non-blocking update sender
func NewUpdateSender(msgChan chan tea.Msg, logger *zap.Logger) *UpdateSender {
	us := &UpdateSender{
		msgChan:       msgChan,
		logger:        logger,
		statsInterval: 30 * time.Second,
		stopStats:     make(chan struct{}),
	}

	go us.logStats()

	return us
}

// SendUpdate sends a message to UI without blocking
func (us *UpdateSender) SendUpdate(msg tea.Msg) {
	select {
	case us.msgChan <- msg:
		atomic.AddUint64(&us.sentUpdates, 1)
	default:
		// bus handlers must never wait on a slow renderer
		atomic.AddUint64(&us.droppedUpdates, 1)
	}
}

// GetStats returns current statistics
func (us *UpdateSender) GetStats() (sent, dropped uint64) {
	sent = atomic.LoadUint64(&us.sentUpdates)
	dropped = atomic.LoadUint64(&us.droppedUpdates)
	return sent, dropped
}

// logStats periodically logs statistics
func (us *UpdateSender) logStats() {
	ticker := time.NewTicker(us.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, dropped := us.GetStats()
			if dropped > 0 {
				us.logger.Warn("UI update statistics",
					zap.Uint64("sent", sent),
					zap.Uint64("dropped", dropped),
					zap.Float64("drop_rate", float64(dropped)/float64(sent+dropped)*100))
			}
		case <-us.stopStats:
			return
		}
	}
}

// Close stops the update sender
func (us *UpdateSender) Close() {
	close(us.stopStats)
}

// Subscriber is the part of events.Bus the bridge needs.
type Subscriber interface {
	Subscribe(eventType events.EventType, handler events.Handler) events.Subscription
}

// BusBridge forwards launchpad events into the bubbletea loop.
type BusBridge struct {
	msgs   chan tea.Msg
	sender *UpdateSender
	subs   []events.Subscription
}

// bridgedEvents are the event types the screens react to.
var bridgedEvents = []events.EventType{
	events.Toast,
	events.TxSent,
	events.TxConfirmed,
	events.TxFailed,
	events.PoolRefresh,
	events.RPCChanged,
	events.LanguageChanged,
}

// NewBusBridge subscribes to bus. Messages beyond bufferSize are dropped.
func NewBusBridge(bus Subscriber, bufferSize int, logger *zap.Logger) *BusBridge {
	msgs := make(chan tea.Msg, bufferSize)
	b := &BusBridge{
		msgs:   msgs,
		sender: NewUpdateSender(msgs, logger.Named("ui_bridge")),
	}
	for _, t := range bridgedEvents {
		b.subs = append(b.subs, bus.Subscribe(t, events.HandlerFunc(func(_ context.Context, e events.Event) error {
			if msg, ok := FromEvent(e); ok {
				b.sender.SendUpdate(msg)
			}
			return nil
		})))
	}
	return b
}

// Listen returns a command that waits for the next bridged message.
// Re-issue it after every message.
func (b *BusBridge) Listen() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-b.msgs
		if !ok {
			return nil
		}
		return msg
	}
}

// Stats returns sender statistics.
func (b *BusBridge) Stats() (sent, dropped uint64) {
	return b.sender.GetStats()
}

// Close unsubscribes from the bus.
func (b *BusBridge) Close() {
	for _, s := range b.subs {
		s.Unsubscribe()
	}
	b.sender.Close()
}
