package tokens

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/birthpad/internal/api"
	"github.com/rovshanmuradov/birthpad/internal/settings"
)

type staticList struct {
	list *api.MintList
	err  error
}

func (s staticList) MintList(context.Context) (*api.MintList, error) { return s.list, s.err }

func addresses(ts []Token) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Address)
	}
	return out
}

func sampleList() *api.MintList {
	return &api.MintList{
		MintList: []api.Token{
			{Address: "So11111111111111111111111111111111111111112", Symbol: "WSOL", Decimals: 9},
			{Address: "JUP1", Symbol: "JUP", Tags: []string{"jupiter"}},
			{Address: "BAD", Symbol: "BAD", Tags: []string{"jupiter"}},
		},
		Blacklist: []string{"BAD"},
		WhiteList: []string{"So11111111111111111111111111111111111111112"},
	}
}

func TestRefreshBuildsGroups(t *testing.T) {
	s := NewStore(zaptest.NewLogger(t))
	require.NoError(t, s.Refresh(context.Background(), staticList{list: sampleList()}))

	assert.Equal(t, []string{QSHX.Address, "So11111111111111111111111111111111111111112", "JUP1"}, addresses(s.List()))

	_, ok := s.Get("BAD")
	assert.False(t, ok)
	jup, ok := s.Get("JUP1")
	require.True(t, ok)
	assert.Equal(t, TypeJupiter, jup.Type)
	assert.True(t, s.Whitelisted("So11111111111111111111111111111111111111112"))
}

func TestDisplayFollowsSettings(t *testing.T) {
	s := NewStore(zaptest.NewLogger(t))
	require.NoError(t, s.Refresh(context.Background(), staticList{list: sampleList()}))
	require.NoError(t, s.AddUserToken(api.Token{Address: "MINE", Symbol: "MINE"}))

	shown := s.Display(settings.DisplayTokenSettings{Official: true})
	assert.Equal(t, []string{"So11111111111111111111111111111111111111112", QSHX.Address}, addresses(shown))

	shown = s.Display(settings.DisplayTokenSettings{Official: true, Jup: true, UserAdded: true})
	assert.Equal(t, []string{"So11111111111111111111111111111111111111112", "JUP1", "MINE", QSHX.Address}, addresses(shown))

	// дополнительный токен виден всегда
	shown = s.Display(settings.DisplayTokenSettings{})
	assert.Equal(t, []string{QSHX.Address}, addresses(shown))
}

func TestAddUserTokenRejectsBlacklisted(t *testing.T) {
	s := NewStore(zaptest.NewLogger(t))
	require.NoError(t, s.Refresh(context.Background(), staticList{list: sampleList()}))

	assert.Error(t, s.AddUserToken(api.Token{Address: "BAD"}))
	assert.Error(t, s.AddUserToken(api.Token{}))
}

func TestRefreshErrorKeepsList(t *testing.T) {
	s := NewStore(zaptest.NewLogger(t))
	require.NoError(t, s.Refresh(context.Background(), staticList{list: sampleList()}))

	err := s.Refresh(context.Background(), staticList{err: errors.New("offline")})
	assert.Error(t, err)
	assert.Len(t, s.List(), 3)
}
