package i18n

import (
	"fmt"
	"strings"
	"testing"

	"tentkids/internal/models"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_FallsBackToKey(t *testing.T) {
	table := MustLoad()

	assert.Equal(t, "Awesome!", table.Lookup(models.LanguageEnglish, "safeComment1"))
	assert.Equal(t, "رائع!", table.Lookup(models.LanguageArabic, "safeComment1"))
	assert.Equal(t, "missingKey", table.Lookup(models.LanguageEnglish, "missingKey"))
	assert.Equal(t, "safeComment1", table.Lookup(models.Language("fr"), "safeComment1"))
}

func TestLookup_NilTable(t *testing.T) {
	var table *Table
	assert.Equal(t, "breakTime", table.Lookup(models.LanguageEnglish, "breakTime"))
}

func TestTable_LanguagesShareKeys(t *testing.T) {
	table := MustLoad()
	assert.Equal(t, table.Keys(models.LanguageArabic), table.Keys(models.LanguageEnglish))
}

func TestTable_CoversSafeComments(t *testing.T) {
	table := MustLoad()
	for _, lang := range Supported() {
		for _, key := range models.SafeCommentKeys {
			assert.NotEqual(t, key, table.Lookup(lang, key), "%s/%s untranslated", lang, key)
		}
	}
}

func TestSafeCommentCatalogue(t *testing.T) {
	table := MustLoad()

	var b strings.Builder
	for _, key := range models.SafeCommentKeys {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", key,
			table.Lookup(models.LanguageArabic, key),
			table.Lookup(models.LanguageEnglish, key))
	}

	g := goldie.New(t)
	g.Assert(t, "safe_comments", []byte(b.String()))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("ar: [unterminated"))
	require.Error(t, err)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		tag  string
		want models.Language
		ok   bool
	}{
		{"ar", models.LanguageArabic, true},
		{"ar-EG", models.LanguageArabic, true},
		{"en", models.LanguageEnglish, true},
		{"en-US", models.LanguageEnglish, true},
		{"fr", "", false},
		{"", "", false},
		{"!!", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := Match(tt.tag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsRTL(t *testing.T) {
	assert.True(t, IsRTL(models.LanguageArabic))
	assert.False(t, IsRTL(models.LanguageEnglish))
}
