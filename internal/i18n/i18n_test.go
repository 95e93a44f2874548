package i18n

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/birthpad/internal/events"
)

type memLocale struct {
	lang string
	err  error
}

func (m *memLocale) SetLocale(lang string) error {
	if m.err != nil {
		return m.err
	}
	m.lang = lang
	return nil
}

type recorder struct{ got []events.Event }

func (r *recorder) Publish(e events.Event) error {
	r.got = append(r.got, e)
	return nil
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"en":    "en",
		"en-US": "en",
		"ar-EG": "ar",
		"AR":    "ar",
		"zh-TW": "zh-TW",
		"zh_CN": "zh-CN",
		"ja-JP": "jp",
		"jp":    "jp",
		"pt-BR": "pt",
		"fr-CA": "fr",
	}
	for in, want := range tests {
		got, ok := Normalize(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "de", "xx-YY", "!!"} {
		_, ok := Normalize(in)
		assert.False(t, ok, in)
	}
}

func TestChangeLanguageSetsDirectionAndPersists(t *testing.T) {
	store := &memLocale{}
	rec := &recorder{}
	m := NewManager(store, rec, zaptest.NewLogger(t))

	changed, err := m.ChangeLanguage("ar-EG")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "ar", store.lang)
	assert.Equal(t, Document{Lang: "ar", Dir: DirRTL}, m.Document())

	changed, err = m.ChangeLanguage("en")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "en", store.lang)
	assert.Equal(t, Document{Lang: "en", Dir: DirLTR}, m.Document())

	require.Len(t, rec.got, 2)
	assert.Equal(t, "rtl", rec.got[0].(events.LanguageChangedEvent).Dir)
}

func TestChangeLanguageIgnoresUnsupported(t *testing.T) {
	store := &memLocale{}
	m := NewManager(store, nil, zaptest.NewLogger(t))

	changed, err := m.ChangeLanguage("de")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, store.lang)
	assert.Equal(t, "en", m.Language())
}

func TestChangeLanguageKeepsDocumentWhenPersistFails(t *testing.T) {
	store := &memLocale{err: errors.New("disk full")}
	m := NewManager(store, nil, zaptest.NewLogger(t))

	_, err := m.ChangeLanguage("ar")
	require.Error(t, err)
	assert.Equal(t, Document{Lang: "en", Dir: DirLTR}, m.Document())
}

func TestTranslateFallsBackToEnglish(t *testing.T) {
	m := NewManager(&memLocale{}, nil, zaptest.NewLogger(t))
	_, err := m.ChangeLanguage("ru")
	require.NoError(t, err)

	assert.Equal(t, "Купить", m.T("menu.buy", nil))
	// в русском бандле нет этого ключа
	assert.Equal(t, "Amount (BONK)", m.T("trade.amount_token", map[string]string{"symbol": "BONK"}))
	assert.Equal(t, "missing.key", m.T("missing.key", nil))
}

func TestAllSupportedBundlesDecode(t *testing.T) {
	m := NewManager(&memLocale{}, nil, zaptest.NewLogger(t))
	for _, code := range Supported {
		b, err := m.bundle(code)
		require.NoError(t, err, code)
		assert.NotEmpty(t, b["menu.buy"], code)
	}
}
