package component

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/birthpad/internal/events"
)

func typeText(f *Form, text string) {
	for _, r := range text {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestFormNavigationAndValues(t *testing.T) {
	f := NewForm().
		AddField("mint", FieldTypeText, "Mint", true, "").
		AddField("side", FieldTypeSelect, "Side", false, "").
		AddField("createOnly", FieldTypeCheckbox, "Create only", false, "").
		SetFieldOptions("side", []string{"buy", "sell"})

	assert.Equal(t, "mint", f.Focused())
	typeText(f, " ABC ")
	assert.Equal(t, "ABC", f.GetValue("mint"))

	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "side", f.Focused())
	assert.Equal(t, "buy", f.GetValue("side"))
	f.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "sell", f.GetValue("side"))
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "buy", f.GetValue("side"))

	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, f.Checked("createOnly"))
	f.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, f.Checked("createOnly"))

	f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "side", f.Focused())
	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "mint", f.Focused())
}

func TestFormValidation(t *testing.T) {
	f := NewForm().
		AddField("name", FieldTypeText, "Name", true, "").
		AddField("amount", FieldTypeNumber, "Amount", false, "").
		SetFieldValidation("amount", func(string) error { return errors.New("bad amount") })

	assert.False(t, f.Validate())
	assert.Contains(t, f.View(), "This field is required")
	assert.NotContains(t, f.View(), "bad amount")

	f.SetFieldValue("name", "x").SetFieldValue("amount", "1")
	assert.False(t, f.Validate())
	assert.Contains(t, f.View(), "bad amount")

	f.SetFieldValidation("amount", nil)
	assert.True(t, f.Validate())

	f.SetFieldError("name", errors.New("taken"))
	assert.Contains(t, f.View(), "taken")
}

func TestFormSelectRejectsUnknownValue(t *testing.T) {
	f := NewForm().AddField("lang", FieldTypeSelect, "Language", false, "")
	f.SetFieldOptions("lang", []string{"en", "ru"})
	f.SetFieldValue("lang", "ru")
	assert.Equal(t, "ru", f.GetValue("lang"))
	f.SetFieldValue("lang", "xx")
	assert.Equal(t, "ru", f.GetValue("lang"))
}

func TestTableSelectionAndScroll(t *testing.T) {
	tb := NewTable(TableColumn{Header: "Sig", Width: 12}, TableColumn{Header: "Status"})
	tb.SetSize(60, 6) // two visible rows
	rows := [][]string{{"a", "sent"}, {"b", "confirmed"}, {"c", "failed"}}
	tb.SetRows(rows)

	require.Equal(t, 3, tb.Len())
	assert.Equal(t, []string{"a", "sent"}, tb.Selected())
	tb.MoveDown().MoveDown().MoveDown()
	assert.Equal(t, []string{"c", "failed"}, tb.Selected())

	view := tb.View()
	assert.Contains(t, view, "failed")
	assert.NotContains(t, view, "sent")

	tb.SetRows(rows[:1])
	assert.Equal(t, []string{"a", "sent"}, tb.Selected())
}

func TestToastsExpire(t *testing.T) {
	now := time.Unix(100, 0)
	ts := NewToasts(2, time.Second)
	ts.now = func() time.Time { return now }

	ts.Push(events.NewToast(events.StatusInfo, "one", ""))
	ts.Push(events.NewToast(events.StatusError, "two", "boom"))
	ts.Push(events.NewToast(events.StatusSuccess, "three", ""))
	require.Equal(t, 2, ts.Len())

	view := ts.View()
	assert.True(t, strings.Index(view, "three") < strings.Index(view, "two"))
	assert.NotContains(t, view, "one")

	now = now.Add(2 * time.Second)
	assert.False(t, ts.Prune())
	assert.Empty(t, ts.View())
}

func TestStatusHeader(t *testing.T) {
	h := NewStatusHeader("Birthpad")
	assert.Contains(t, h.View(), "offline")

	h.SetStatus(SessionStatus{Wallet: "So11111111111111111111111111111111111111112", RPCName: "Helius", NeedRefresh: true})
	view := h.View()
	assert.Contains(t, view, "So11...1112")
	assert.Contains(t, view, "Helius")
	assert.Contains(t, view, "update available")
}
