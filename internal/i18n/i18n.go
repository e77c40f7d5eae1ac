// Package i18n holds the static localization table and language matching.
package i18n

import (
	_ "embed"
	"fmt"
	"sort"

	"tentkids/internal/models"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed translations.yaml
var translationsYAML []byte

var supported = []models.Language{models.LanguageArabic, models.LanguageEnglish}

var matcher = language.NewMatcher([]language.Tag{language.Arabic, language.English})

type Table struct {
	entries map[models.Language]map[string]string
}

func New(entries map[models.Language]map[string]string) *Table {
	return &Table{entries: entries}
}

// Load parses the embedded translations.
func Load() (*Table, error) {
	return Parse(translationsYAML)
}

func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

func Parse(data []byte) (*Table, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse translations: %w", err)
	}

	entries := make(map[models.Language]map[string]string, len(raw))
	for lang, kv := range raw {
		entries[models.Language(lang)] = kv
	}
	return New(entries), nil
}

// Lookup resolves key for lang, returning the key itself when missing.
func (t *Table) Lookup(lang models.Language, key string) string {
	if t == nil {
		return key
	}
	if s, ok := t.entries[lang][key]; ok && s != "" {
		return s
	}
	return key
}

func (t *Table) Keys(lang models.Language) []string {
	keys := make([]string, 0, len(t.entries[lang]))
	for k := range t.entries[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Match maps a BCP-47 tag such as "en-US" onto a supported language.
func Match(tag string) (models.Language, bool) {
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(parsed)
	if conf == language.No {
		return "", false
	}
	return supported[idx], true
}

func Supported() []models.Language {
	return append([]models.Language(nil), supported...)
}

func IsRTL(lang models.Language) bool {
	return lang == models.LanguageArabic
}
