package component

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/birthpad/internal/ui/style"
)

// SessionStatus is what the header shows about the running session.
type SessionStatus struct {
	Wallet   string
	RPCName  string
	RPCURL   string
	Slippage string
	Fee      string
	// NeedRefresh is set when a newer app version is published.
	NeedRefresh bool
}

// StatusHeader provides a clean header with essential status information
type StatusHeader struct {
	title  string
	status SessionStatus
	width  int

	container lipgloss.Style
	titleSt   lipgloss.Style
	text      lipgloss.Style
	good      lipgloss.Style
	bad       lipgloss.Style
	warn      lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader(title string) *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		title: title,
		container: lipgloss.NewStyle().
			Foreground(palette.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 2).
			MarginBottom(1),
		titleSt: lipgloss.NewStyle().Foreground(palette.Primary).Bold(true),
		text:    lipgloss.NewStyle().Foreground(palette.TextSecondary),
		good:    lipgloss.NewStyle().Foreground(palette.Success).Bold(true),
		bad:     lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
		warn:    lipgloss.NewStyle().Foreground(palette.Warning),
	}
}

// SetStatus replaces the displayed session status.
func (sh *StatusHeader) SetStatus(s SessionStatus) {
	sh.status = s
}

// Status returns the displayed session status.
func (sh *StatusHeader) Status() SessionStatus {
	return sh.status
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
}

// View renders the status header
func (sh *StatusHeader) View() string {
	wallet := "not connected"
	if sh.status.Wallet != "" {
		wallet = shorten(sh.status.Wallet)
	}

	var rpc string
	switch {
	case sh.status.RPCName != "":
		rpc = sh.good.Render("● RPC: " + sh.status.RPCName)
	case sh.status.RPCURL != "":
		rpc = sh.good.Render("● RPC: " + sh.status.RPCURL)
	default:
		rpc = sh.bad.Render("● RPC: offline")
	}

	parts := []string{
		sh.titleSt.Render(sh.title),
		sh.text.Render("Wallet: " + wallet),
		rpc,
	}
	if sh.status.Slippage != "" {
		parts = append(parts, sh.text.Render("Slippage: "+sh.status.Slippage))
	}
	if sh.status.Fee != "" {
		parts = append(parts, sh.text.Render(fmt.Sprintf("Fee: %s SOL", sh.status.Fee)))
	}
	if sh.status.NeedRefresh {
		parts = append(parts, sh.warn.Render("update available"))
	}

	content := parts[0]
	for _, p := range parts[1:] {
		content = lipgloss.JoinHorizontal(lipgloss.Left, content, " | ", p)
	}
	st := sh.container
	if sh.width > 4 {
		st = st.Width(sh.width - 4)
	}
	return st.Render(content)
}

func shorten(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}
