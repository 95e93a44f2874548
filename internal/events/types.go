// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// User-facing notifications
	Toast EventType = "toast"

	// Transaction lifecycle
	TxSent      EventType = "tx.sent"
	TxConfirmed EventType = "tx.confirmed"
	TxFailed    EventType = "tx.failed"

	// Launchpad state
	PoolRefresh EventType = "launchpad.pool_refresh"

	// Session state
	LanguageChanged EventType = "i18n.language_changed"
	RPCChanged      EventType = "app.rpc_changed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// NewBase stamps an event of the given type with the current time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now()}
}

// ToastStatus mirrors the notification severities shown to the user.
type ToastStatus string

const (
	StatusSuccess ToastStatus = "success"
	StatusInfo    ToastStatus = "info"
	StatusWarning ToastStatus = "warning"
	StatusError   ToastStatus = "error"
)

// ToastEvent is a transient user notification.
type ToastEvent struct {
	BaseEvent
	Status      ToastStatus
	Title       string
	Description string
	TxError     error
}

// NewToast builds a ToastEvent.
func NewToast(status ToastStatus, title, description string) ToastEvent {
	return ToastEvent{BaseEvent: NewBase(Toast), Status: status, Title: title, Description: description}
}

// TxMeta describes a transaction for display.
type TxMeta struct {
	Action  string // buy, sell, create
	Title   string
	Summary string
}

// TxStatusEvent is emitted on send, confirmation and failure of a transaction.
type TxStatusEvent struct {
	BaseEvent
	Signature  string
	PlatformID string
	Meta       TxMeta
	Err        error
}

// PoolRefreshEvent asks views showing Mint to reload pool data.
type PoolRefreshEvent struct {
	BaseEvent
	Mint string
}

// LanguageChangedEvent carries the new document attributes.
type LanguageChangedEvent struct {
	BaseEvent
	Lang string
	Dir  string
}

// RPCChangedEvent is emitted after a successful RPC switch.
type RPCChangedEvent struct {
	BaseEvent
	URL   string
	WSURL string
	Name  string
}
