package launchpad

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/birthpad/internal/config"
)

// ErrNoCandidates means no platform id is configured.
var ErrNoCandidates = errors.New("no platform ids configured")

// SuffixRule puts Candidate first for mints whose address ends with Suffix.
type SuffixRule struct {
	Suffix    string
	Candidate solana.PublicKey
}

// Candidates is the ordered list of platform ids tried by buy and sell.
type Candidates struct {
	Ordered []solana.PublicKey
	Rules   []SuffixRule
}

// CandidatesFromConfig parses the configured ids and rules.
func CandidatesFromConfig(ids []string, rules []config.SuffixRule) (Candidates, error) {
	var c Candidates
	for _, id := range ids {
		pk, err := solana.PublicKeyFromBase58(id)
		if err != nil {
			return Candidates{}, fmt.Errorf("invalid platform id %q: %w", id, err)
		}
		c.Ordered = append(c.Ordered, pk)
	}
	for _, r := range rules {
		pk, err := solana.PublicKeyFromBase58(r.Candidate)
		if err != nil {
			return Candidates{}, fmt.Errorf("invalid suffix candidate %q: %w", r.Candidate, err)
		}
		c.Rules = append(c.Rules, SuffixRule{Suffix: r.Suffix, Candidate: pk})
	}
	if len(c.Ordered) == 0 {
		return Candidates{}, ErrNoCandidates
	}
	return c, nil
}

// For returns the candidates for mint: matching suffix rules first, in rule
// order, then the ordered list. Each id appears once.
func (c Candidates) For(mint string) []solana.PublicKey {
	out := make([]solana.PublicKey, 0, len(c.Ordered)+len(c.Rules))
	seen := make(map[solana.PublicKey]bool)
	add := func(pk solana.PublicKey) {
		if !seen[pk] {
			seen[pk] = true
			out = append(out, pk)
		}
	}
	for _, r := range c.Rules {
		if r.Suffix != "" && strings.HasSuffix(mint, r.Suffix) {
			add(r.Candidate)
		}
	}
	for _, pk := range c.Ordered {
		add(pk)
	}
	return out
}
