package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/rovshanmuradov/birthpad/internal/events"
)

// toastPrinter renders bus notifications as colored lines for the CLI.
type toastPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func newToastPrinter(out io.Writer) *toastPrinter {
	return &toastPrinter{out: out}
}

// Attach subscribes the printer to toasts and transaction status events.
func (p *toastPrinter) Attach(bus *events.Bus) {
	bus.Subscribe(events.Toast, events.OnToast(p.Toast))
	for _, t := range []events.EventType{events.TxSent, events.TxConfirmed, events.TxFailed} {
		bus.Subscribe(t, events.OnTxStatus(p.TxStatus))
	}
}

func (p *toastPrinter) Toast(ev events.ToastEvent) {
	colorize := color.CyanString
	mark := "•"
	switch ev.Status {
	case events.StatusSuccess:
		colorize, mark = color.GreenString, "✓"
	case events.StatusWarning:
		colorize, mark = color.YellowString, "!"
	case events.StatusError:
		colorize, mark = color.RedString, "✗"
	}
	line := colorize("%s %s", mark, ev.Title)
	if ev.Description != "" {
		line += " " + ev.Description
	}
	if ev.TxError != nil {
		line += color.HiBlackString(" (%v)", ev.TxError)
	}
	p.println(line)
}

func (p *toastPrinter) TxStatus(ev events.TxStatusEvent) {
	var state string
	switch ev.Type() {
	case events.TxSent:
		state = color.CyanString("sent")
	case events.TxConfirmed:
		state = color.GreenString("confirmed")
	case events.TxFailed:
		state = color.RedString("failed")
	}
	line := fmt.Sprintf("[%s] %s %s", state, ev.Meta.Title, ev.Signature)
	if ev.Err != nil {
		line += color.RedString(": %v", ev.Err)
	}
	p.println(line)
}

func (p *toastPrinter) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}
