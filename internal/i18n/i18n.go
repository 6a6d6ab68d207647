package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Locale selects both the instruction language sent to the AI provider and
// the language of every localized string returned to the client.
type Locale string

const (
	French  Locale = "fr"
	English Locale = "en"

	DefaultLocale = French
)

//go:embed *.json
var fs embed.FS

var (
	translations map[Locale]map[string]string
	loadOnce     sync.Once
	loadErr      error

	supported = []language.Tag{language.French, language.English}
	matcher   = language.NewMatcher(supported)
)

// ParseLocale accepts "fr" or "en" (case-insensitive).
func ParseLocale(s string) (Locale, error) {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case French:
		return French, nil
	case English:
		return English, nil
	}
	return "", fmt.Errorf("unsupported locale %q", s)
}

func (l Locale) Valid() bool {
	return l == French || l == English
}

// Match picks the best supported locale for an Accept-Language header value.
// It returns fallback when the header is empty or unparsable.
func Match(acceptLanguage string, fallback Locale) Locale {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	if supported[idx] == language.English {
		return English
	}
	return French
}

func load() {
	translations = make(map[Locale]map[string]string)

	entries, err := fs.ReadDir(".")
	if err != nil {
		loadErr = fmt.Errorf("failed to read embedded locales: %w", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		content, err := fs.ReadFile(entry.Name())
		if err != nil {
			loadErr = fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
			return
		}
		var nested map[string]any
		if err := json.Unmarshal(content, &nested); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal locale %s: %w", entry.Name(), err)
			return
		}
		flat := make(map[string]string)
		flatten("", nested, flat)
		translations[Locale(strings.TrimSuffix(entry.Name(), ".json"))] = flat
	}
}

// flatten turns {"chat": {"initial": "..."}} into {"chat.initial": "..."}.
func flatten(prefix string, nested map[string]any, out map[string]string) {
	for k, v := range nested {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch child := v.(type) {
		case map[string]any:
			flatten(key, child, out)
		case string:
			out[key] = child
		default:
			out[key] = fmt.Sprintf("%v", child)
		}
	}
}

// T returns the translation of key for the locale, falling back to the
// default locale and then to the key itself.
func T(locale Locale, key string) string {
	loadOnce.Do(load)
	if loadErr != nil {
		log.Printf("i18n unavailable: %v", loadErr)
		return key
	}
	if v, ok := translations[locale][key]; ok {
		return v
	}
	if v, ok := translations[DefaultLocale][key]; ok {
		return v
	}
	return key
}
