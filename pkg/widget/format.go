package widget

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// shelf replaces leading and trailing spaces so they stay visible.
const shelf = "\u02fd"

var invisibleEntities = map[rune]string{
	'\u00a0': "&nbsp;",
	'\u00ad': "&shy;",
	'\u200b': "&#8203;",
	'\u200c': "&zwnj;",
	'\u200d': "&zwj;",
	'\ufeff': "&#65279;",
	'\u2060': "&#8288;",
	'\u2002': "&ensp;",
	'\u2003': "&emsp;",
	'\u2009': "&thinsp;",
	'\u200a': "&#8202;",
	'\u2006': "&#8198;",
	'\u2008': "&#8200;",
	'\u200e': "&lrm;",
	'\u200f': "&rlm;",
	'\t':     "&#9;",
	'\n':     "&#10;",
	'\r':     "&#13;",
}

// VisualizeSpaces makes a token's edge spaces visible. With spellOut set,
// invisible characters are first replaced by their entity names, which is
// what tooltips show.
func VisualizeSpaces(text string, spellOut bool) string {
	if spellOut {
		var b strings.Builder
		for _, r := range text {
			if ent, ok := invisibleEntities[r]; ok {
				b.WriteString(ent)
			} else {
				b.WriteRune(r)
			}
		}
		text = b.String()
	}

	trimmed := strings.TrimLeft(text, " ")
	leading := len(text) - len(trimmed)
	core := strings.TrimRight(trimmed, " ")
	trailing := len(trimmed) - len(core)
	return strings.Repeat(shelf, leading) + core + strings.Repeat(shelf, trailing)
}

var comparisonNoise = regexp.MustCompile(`[\s.,!?;:'"()\[\]{}\-_]`)

// NormalizeForComparison strips whitespace and punctuation and lowercases,
// so " The" and "the," compare equal.
func NormalizeForComparison(token string) string {
	return strings.ToLower(comparisonNoise.ReplaceAllString(token, ""))
}

// hasSimilarToken reports whether some other entry of topk normalizes to
// the same text as target.
func hasSimilarToken(topk []string, target string) bool {
	norm := NormalizeForComparison(target)
	if norm == "" {
		return false
	}
	for _, tok := range topk {
		if tok == target {
			continue
		}
		if other := NormalizeForComparison(tok); other != "" && other == norm {
			return true
		}
	}
	return false
}

// FormatPct formats a probability with as few digits as stay meaningful.
func FormatPct(p float64) string {
	pct := p * 100
	switch {
	case pct >= 1:
		return strconv.FormatFloat(math.Round(pct), 'f', -1, 64) + "%"
	case pct >= 0.1:
		return strconv.FormatFloat(pct, 'f', 1, 64) + "%"
	default:
		return strconv.FormatFloat(pct, 'f', 2, 64) + "%"
	}
}

var specialToken = regexp.MustCompile(`^<[^>]+>$`)

// promptTokens returns the input tokens without a leading special token
// such as "<s>" or "<|endoftext|>".
func promptTokens(tokens []string) []string {
	if len(tokens) > 0 && specialToken.MatchString(strings.TrimSpace(tokens[0])) {
		return tokens[1:]
	}
	return tokens
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtFixed(v float64, digits int) string {
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// clamp limits v to [lo, hi]. NaN clamps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
