// Package i18n resolves the user's language, loads translation bundles and
// keeps the document language/direction attributes in sync with the stored choice.
package i18n

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/rovshanmuradov/birthpad/internal/events"
)

//go:embed locales/*.toml
var localeFS embed.FS

const (
	Fallback = "en"

	DirLTR = "ltr"
	DirRTL = "rtl"
)

// Supported lists the language codes in display order.
var Supported = []string{"en", "zh-TW", "zh-CN", "jp", "ko", "es", "fr", "ru", "pt", "tr", "ar"}

// "jp" is not a registered subtag, so codes and tags are kept side by side.
var supportedTags = []language.Tag{
	language.English,
	language.TraditionalChinese,
	language.SimplifiedChinese,
	language.Japanese,
	language.Korean,
	language.Spanish,
	language.French,
	language.Russian,
	language.Portuguese,
	language.Turkish,
	language.Arabic,
}

var matcher = language.NewMatcher(supportedTags)

// Normalize maps a user or system language tag onto a supported code.
// Region variants resolve to their base language (ar-EG -> ar).
func Normalize(input string) (string, bool) {
	input = strings.TrimSpace(strings.ReplaceAll(input, "_", "-"))
	if input == "" {
		return "", false
	}
	for _, code := range Supported {
		if strings.EqualFold(code, input) {
			return code, true
		}
	}
	if strings.EqualFold(input, "ja") || strings.HasPrefix(strings.ToLower(input), "ja-") {
		return "jp", true
	}

	tag, err := language.Parse(input)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	return Supported[idx], true
}

// Dir returns the text direction for a supported code.
func Dir(lang string) string {
	if lang == "ar" {
		return DirRTL
	}
	return DirLTR
}

// LocaleStore persists the chosen language.
type LocaleStore interface {
	SetLocale(lang string) error
}

// Document holds the root document attributes that follow the language.
type Document struct {
	Lang string
	Dir  string
}

// Manager owns the active language.
type Manager struct {
	mu      sync.RWMutex
	lang    string
	doc     Document
	bundles map[string]map[string]string

	store  LocaleStore
	bus    events.Publisher
	logger *zap.Logger
}

// NewManager starts in the fallback language; call ChangeLanguage with the stored value.
func NewManager(store LocaleStore, bus events.Publisher, logger *zap.Logger) *Manager {
	if bus == nil {
		bus = events.NopPublisher{}
	}
	m := &Manager{
		lang:    Fallback,
		doc:     Document{Lang: Fallback, Dir: DirLTR},
		bundles: make(map[string]map[string]string),
		store:   store,
		bus:     bus,
		logger:  logger.Named("i18n"),
	}
	if _, err := m.bundle(Fallback); err != nil {
		m.logger.Error("Fallback bundle missing", zap.Error(err))
	}
	return m
}

// ChangeLanguage switches to lang. Unsupported languages are ignored and
// reported with changed=false. The stored key and the document attributes
// change together or not at all.
func (m *Manager) ChangeLanguage(lang string) (changed bool, err error) {
	code, ok := Normalize(lang)
	if !ok {
		m.logger.Debug("Ignoring unsupported language", zap.String("lang", lang))
		return false, nil
	}
	if _, err := m.bundle(code); err != nil {
		m.logger.Warn("No bundle for language, falling back to keys", zap.String("lang", code), zap.Error(err))
	}

	if m.store != nil {
		if err := m.store.SetLocale(code); err != nil {
			return false, fmt.Errorf("persist locale: %w", err)
		}
	}

	m.mu.Lock()
	m.lang = code
	m.doc = Document{Lang: code, Dir: Dir(code)}
	m.mu.Unlock()

	_ = m.bus.Publish(events.LanguageChangedEvent{
		BaseEvent: events.NewBase(events.LanguageChanged),
		Lang:      code,
		Dir:       Dir(code),
	})
	return true, nil
}

// Language returns the active code.
func (m *Manager) Language() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lang
}

// Document returns the current document attributes.
func (m *Manager) Document() Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc
}

// T translates key in the active language. {{name}} placeholders are filled from vars.
// Missing keys fall back to English, then to the key itself.
func (m *Manager) T(key string, vars map[string]string) string {
	text, ok := m.lookup(m.Language(), key)
	if !ok {
		if text, ok = m.lookup(Fallback, key); !ok {
			text = key
		}
	}
	for name, value := range vars {
		text = strings.ReplaceAll(text, "{{"+name+"}}", value)
	}
	return text
}

func (m *Manager) lookup(lang, key string) (string, bool) {
	b, err := m.bundle(lang)
	if err != nil {
		return "", false
	}
	v, ok := b[key]
	return v, ok
}

func (m *Manager) bundle(lang string) (map[string]string, error) {
	m.mu.RLock()
	b, ok := m.bundles[lang]
	m.mu.RUnlock()
	if ok {
		return b, nil
	}

	data, err := localeFS.ReadFile("locales/" + lang + ".toml")
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", lang, err)
	}
	var raw map[string]interface{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("decode bundle %s: %w", lang, err)
	}
	b = make(map[string]string)
	flatten("", raw, b)

	m.mu.Lock()
	m.bundles[lang] = b
	m.mu.Unlock()
	return b, nil
}

func flatten(prefix string, in map[string]interface{}, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
