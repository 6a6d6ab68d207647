package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocale(t *testing.T) {
	l, err := ParseLocale("FR")
	require.NoError(t, err)
	assert.Equal(t, French, l)

	l, err = ParseLocale(" en ")
	require.NoError(t, err)
	assert.Equal(t, English, l)

	_, err = ParseLocale("de")
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		header string
		want   Locale
	}{
		{"", French},
		{"en-US,en;q=0.9", English},
		{"fr-CA,fr;q=0.8,en;q=0.5", French},
		{"de-DE", French},
		{"not a header;;", French},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.header, French))
		})
	}
	assert.Equal(t, English, Match("", English))
}

func TestT(t *testing.T) {
	assert.Equal(t, "Ouvert", T(French, "status.OPEN"))
	assert.Equal(t, "Open", T(English, "status.OPEN"))
	assert.NotEqual(t, T(French, "chat.initial"), T(English, "chat.initial"))

	// unknown keys come back unchanged
	assert.Equal(t, "missing.key", T(English, "missing.key"))
	// unknown locale falls back to French
	assert.Equal(t, "Avocat", T(Locale("xx"), "roles.LAWYER"))
}
