package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localeFiles embed.FS

// Message keys shared by the HTTP, WebSocket and MCP hosts
const (
	MsgNewGame          = "game.new"
	MsgGameOver         = "game.over"
	MsgVictory          = "game.victory"
	MsgNoChange         = "game.no_change"
	MsgInvalidDirection = "error.invalid_direction"
	MsgInvalidRequest   = "error.invalid_request"
	MsgMissingToken     = "error.missing_token"
	MsgInvalidToken     = "error.invalid_token"
	MsgSessionNotFound  = "error.session_not_found"
	MsgSessionExpired   = "error.session_expired"
	MsgTooManySessions  = "error.too_many_sessions"
	MsgUnknownMessage   = "error.unknown_message"
	MsgInternal         = "error.internal"
)

// I18n represents the internationalization manager
type I18n struct {
	defaultLang string
	languages   map[string]map[string]string
	mu          sync.RWMutex
}

// New creates a new I18n instance with the given languages loaded. Languages
// without a locale file fall back to the default language.
func New(defaultLang string, supported []string) (*I18n, error) {
	i18n := &I18n{
		defaultLang: defaultLang,
		languages:   make(map[string]map[string]string),
	}

	if err := i18n.LoadLanguage(defaultLang); err != nil {
		return nil, err
	}
	for _, lang := range supported {
		if lang == defaultLang {
			continue
		}
		if err := i18n.LoadLanguage(lang); err != nil {
			// Keep the language selectable; T falls back to the default
			i18n.mu.Lock()
			i18n.languages[lang] = make(map[string]string)
			i18n.mu.Unlock()
		}
	}

	return i18n, nil
}

// LoadLanguage loads a specific language file
func (i *I18n) LoadLanguage(lang string) error {
	filename := fmt.Sprintf("locales/%s.json", lang)

	data, err := localeFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read language file %s: %w", filename, err)
	}

	var translations map[string]string
	if err := json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to parse language file %s: %w", filename, err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.languages[lang] = translations
	return nil
}

// Default returns the fallback language
func (i *I18n) Default() string {
	return i.defaultLang
}

// T translates a key for the given language
func (i *I18n) T(lang, key string) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	// Try the requested language first
	if translations, ok := i.languages[lang]; ok {
		if translation, exists := translations[key]; exists {
			return translation
		}
	}

	// Fallback to default language
	if lang != i.defaultLang {
		if translations, ok := i.languages[i.defaultLang]; ok {
			if translation, exists := translations[key]; exists {
				return translation
			}
		}
	}

	// Return the key itself if no translation found
	return key
}

// Tf translates a key with format arguments
func (i *I18n) Tf(lang, key string, args ...interface{}) string {
	translation := i.T(lang, key)
	return fmt.Sprintf(translation, args...)
}

// GetSupportedLanguages returns all supported languages, sorted
func (i *I18n) GetSupportedLanguages() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	langs := make([]string, 0, len(i.languages))
	for lang := range i.languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// IsSupported reports whether lang was loaded
func (i *I18n) IsSupported(lang string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.languages[lang]
	return ok
}

// GetLanguageName returns the native name of a language
func (i *I18n) GetLanguageName(lang string) string {
	names := map[string]string{
		"en":    "English",
		"zh-CN": "简体中文",
		"ja":    "日本語",
		"es":    "Español",
	}

	if name, ok := names[lang]; ok {
		return name
	}
	return lang
}

// DetectLanguage detects language from Accept-Language header
func (i *I18n) DetectLanguage(acceptLang string) string {
	if acceptLang == "" {
		return i.defaultLang
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	// Find the first supported language
	for _, lang := range parseAcceptLanguage(acceptLang) {
		if _, ok := i.languages[lang]; ok {
			return lang
		}

		// Try language without region (e.g., "zh" from "zh-TW")
		baseLang, _, _ := strings.Cut(lang, "-")
		for supportedLang := range i.languages {
			if supportedLang == baseLang || strings.HasPrefix(supportedLang, baseLang+"-") {
				return supportedLang
			}
		}
	}

	return i.defaultLang
}

// parseAcceptLanguage parses the Accept-Language header
func parseAcceptLanguage(acceptLang string) []string {
	var languages []string

	parts := strings.Split(acceptLang, ",")
	for _, part := range parts {
		lang := strings.TrimSpace(part)
		if idx := strings.Index(lang, ";"); idx != -1 {
			lang = lang[:idx]
		}
		lang = strings.TrimSpace(lang)
		if lang != "" && lang != "*" {
			languages = append(languages, lang)
		}
	}

	return languages
}

// GameStatus returns the status line for a game, empty while it is simply in progress
func (i *I18n) GameStatus(lang string, gameOver, victory bool, victoryTile, score int) string {
	switch {
	case gameOver:
		return i.Tf(lang, MsgGameOver, score)
	case victory:
		return i.Tf(lang, MsgVictory, victoryTile)
	default:
		return ""
	}
}
