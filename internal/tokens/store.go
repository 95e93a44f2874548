// Package tokens keeps the token list and the display list derived from it.
package tokens

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/api"
	"github.com/rovshanmuradov/birthpad/internal/settings"
)

// Token sources
const (
	TypeOfficial = "official"
	TypeJupiter  = "jupiter"
	TypeUser     = "user"
)

// Token is a token list entry with its source.
type Token struct {
	api.Token
	Type     string
	Priority int
}

// QSHX is always present in the list and shown regardless of settings.
var QSHX = Token{
	Token: api.Token{
		ChainID:    101,
		Address:    "FWaRpuDUhNbDxKgacKBht4mP85LVaohty6V2WD1XShrX",
		ProgramID:  "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		LogoURI:    "https://img-v1.raydium.io/icon/FWaRpuDUhNbDxKgacKBht4mP85LVaohty6V2WD1XShrX.png",
		Symbol:     "QSHX",
		Name:       "Queen Sherex",
		Decimals:   9,
		Tags:       []string{},
		Extensions: map[string]interface{}{},
	},
	Type:     TypeOfficial,
	Priority: 2,
}

// MintListSource fetches the backend token list.
type MintListSource interface {
	MintList(ctx context.Context) (*api.MintList, error)
}

// Store is safe for concurrent use.
type Store struct {
	logger *zap.Logger

	mu        sync.RWMutex
	list      []Token
	byMint    map[string]Token
	official  map[string]bool
	jup       map[string]bool
	user      map[string]bool
	blacklist map[string]bool
	whitelist map[string]bool
	extra     []Token
}

// NewStore creates a store holding only the extra tokens.
func NewStore(logger *zap.Logger, extra ...Token) *Store {
	if len(extra) == 0 {
		extra = []Token{QSHX}
	}
	s := &Store{
		logger: logger.Named("tokens"),
		extra:  extra,
		user:   make(map[string]bool),
	}
	s.apply(&api.MintList{})
	return s
}

// Refresh loads the list from src.
func (s *Store) Refresh(ctx context.Context, src MintListSource) error {
	ml, err := src.MintList(ctx)
	if err != nil {
		return fmt.Errorf("refresh token list: %w", err)
	}
	s.apply(ml)
	s.logger.Info("Token list loaded", zap.Int("tokens", len(s.List())), zap.Int("blacklisted", len(ml.Blacklist)))
	return nil
}

// apply rebuilds the indexes. Blacklisted mints are dropped; jupiter-tagged
// entries form the jup group, everything else is official.
func (s *Store) apply(ml *api.MintList) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blacklist = toSet(ml.Blacklist)
	s.whitelist = toSet(ml.WhiteList)
	s.official = make(map[string]bool)
	s.jup = make(map[string]bool)
	s.byMint = make(map[string]Token)
	s.list = s.list[:0]

	for _, t := range ml.MintList {
		if s.blacklist[t.Address] {
			continue
		}
		tok := Token{Token: t, Type: TypeOfficial}
		if hasTag(t.Tags, TypeJupiter) {
			tok.Type = TypeJupiter
			s.jup[t.Address] = true
		} else {
			s.official[t.Address] = true
		}
		if _, dup := s.byMint[t.Address]; dup {
			continue
		}
		s.byMint[t.Address] = tok
		s.list = append(s.list, tok)
	}

	for i := len(s.extra) - 1; i >= 0; i-- {
		e := s.extra[i]
		if _, ok := s.byMint[e.Address]; ok {
			continue
		}
		s.byMint[e.Address] = e
		s.official[e.Address] = true
		s.list = append([]Token{e}, s.list...)
	}

	for mint := range s.user {
		if _, ok := s.byMint[mint]; !ok {
			delete(s.user, mint)
		}
	}
}

// AddUserToken adds a token the user imported.
func (s *Store) AddUserToken(t api.Token) error {
	if t.Address == "" {
		return fmt.Errorf("token address is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blacklist[t.Address] {
		return fmt.Errorf("token %s is blacklisted", t.Address)
	}
	s.user[t.Address] = true
	if _, ok := s.byMint[t.Address]; ok {
		return nil
	}
	tok := Token{Token: t, Type: TypeUser}
	s.byMint[t.Address] = tok
	s.list = append(s.list, tok)
	return nil
}

// Get looks a token up by mint.
func (s *Store) Get(mint string) (Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byMint[mint]
	return t, ok
}

// List returns every known token.
func (s *Store) List() []Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Token(nil), s.list...)
}

// Whitelisted reports whether mint is on the backend whitelist.
func (s *Store) Whitelisted(mint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.whitelist[mint]
}

// Display filters the list by the display settings. Extra tokens come last
// and are always shown.
func (s *Store) Display(d settings.DisplayTokenSettings) []Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	extra := make(map[string]bool, len(s.extra))
	for _, e := range s.extra {
		extra[e.Address] = true
	}

	out := make([]Token, 0, len(s.list))
	for _, t := range s.list {
		if extra[t.Address] {
			continue
		}
		if (d.Official && s.official[t.Address]) ||
			(d.Jup && s.jup[t.Address]) ||
			(d.UserAdded && s.user[t.Address]) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return append(out, s.extra...)
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
