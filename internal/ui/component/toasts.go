package component

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/birthpad/internal/events"
	"github.com/rovshanmuradov/birthpad/internal/ui/style"
)

type toast struct {
	ev      events.ToastEvent
	expires time.Time
}

// Toasts shows the latest notifications until they expire.
type Toasts struct {
	items []toast
	limit int
	ttl   time.Duration
	now   func() time.Time
	width int

	styles map[events.ToastStatus]lipgloss.Style
	desc   lipgloss.Style
}

// NewToasts keeps at most limit notifications for ttl each.
func NewToasts(limit int, ttl time.Duration) *Toasts {
	palette := style.DefaultPalette()
	base := lipgloss.NewStyle().Bold(true)
	return &Toasts{
		limit: limit,
		ttl:   ttl,
		now:   time.Now,
		styles: map[events.ToastStatus]lipgloss.Style{
			events.StatusSuccess: base.Foreground(palette.Success),
			events.StatusInfo:    base.Foreground(palette.Info),
			events.StatusWarning: base.Foreground(palette.Warning),
			events.StatusError:   base.Foreground(palette.Error),
		},
		desc: lipgloss.NewStyle().Foreground(palette.TextSecondary),
	}
}

// Push adds a notification, dropping the oldest above the limit.
func (t *Toasts) Push(ev events.ToastEvent) {
	t.items = append(t.items, toast{ev: ev, expires: t.now().Add(t.ttl)})
	if len(t.items) > t.limit {
		t.items = t.items[len(t.items)-t.limit:]
	}
}

// Prune drops expired notifications and reports whether any remain.
func (t *Toasts) Prune() bool {
	now := t.now()
	kept := t.items[:0]
	for _, it := range t.items {
		if now.Before(it.expires) {
			kept = append(kept, it)
		}
	}
	t.items = kept
	return len(t.items) > 0
}

// Len returns the number of visible notifications.
func (t *Toasts) Len() int { return len(t.items) }

// SetWidth wraps descriptions at width.
func (t *Toasts) SetWidth(width int) { t.width = width }

// View renders newest first.
func (t *Toasts) View() string {
	if len(t.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.items))
	for i := len(t.items) - 1; i >= 0; i-- {
		ev := t.items[i].ev
		line := t.styles[ev.Status].Render(ev.Title)
		if ev.Description != "" {
			line += " " + t.desc.Render(ev.Description)
		}
		if t.width > 0 {
			line = lipgloss.NewStyle().MaxWidth(t.width).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
