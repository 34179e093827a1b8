package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisualizeSpaces(t *testing.T) {
	for _, tc := range []struct {
		in       string
		spellOut bool
		out      string
	}{
		{" cat", false, shelf + "cat"},
		{"  a ", false, shelf + shelf + "a" + shelf},
		{"   ", false, shelf + shelf + shelf},
		{"a b", false, "a b"},
		{"\u00a0x", true, "&nbsp;x"},
		{"\n", true, "&#10;"},
		{"\n", false, "\n"},
		{" \u200b", true, shelf + "&#8203;"},
	} {
		assert.Equal(t, tc.out, VisualizeSpaces(tc.in, tc.spellOut), "%q", tc.in)
	}
}

func TestNormalizeForComparison(t *testing.T) {
	assert.Equal(t, "the", NormalizeForComparison(" The,"))
	assert.Equal(t, "dont", NormalizeForComparison("don't"))
	assert.Equal(t, "", NormalizeForComparison(" ..."))
}

func TestHasSimilarToken(t *testing.T) {
	assert.True(t, hasSimilarToken([]string{" The", "the", ","}, " The"))
	assert.False(t, hasSimilarToken([]string{" The", " cat"}, " The"))
	assert.False(t, hasSimilarToken([]string{",", "."}, ","), "punctuation never matches")
}

func TestFormatPct(t *testing.T) {
	assert.Equal(t, "100%", FormatPct(1))
	assert.Equal(t, "50%", FormatPct(0.5))
	assert.Equal(t, "12%", FormatPct(0.123))
	assert.Equal(t, "0.5%", FormatPct(0.005))
	assert.Equal(t, "0.01%", FormatPct(0.00012))
}

func TestPromptTokens(t *testing.T) {
	assert.Equal(t, []string{"a"}, promptTokens([]string{"<s>", "a"}))
	assert.Equal(t, []string{"x"}, promptTokens([]string{"<|endoftext|>", "x"}))
	assert.Equal(t, []string{"a", "<s>"}, promptTokens([]string{"a", "<s>"}))
	assert.Empty(t, promptTokens(nil))
}
