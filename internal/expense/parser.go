package expense

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parsed is the result of a best-effort scan of the text following
// the new-expense command.
type Parsed struct {
	Amount      float64
	Category    string
	Description string
}

var reAmount = regexp.MustCompile(`\d+[.,]\d+|\d+`)

var reAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Parse extracts an amount, a category and a description from free text.
// It never fails: a missing amount defaults to 0, a missing category or
// description stays empty. The amount token is consumed before the
// category scan and the category token before the description, so the
// description cannot re-capture either.
func Parse(input string) Parsed {
	var p Parsed

	rest := input
	if m := reAmount.FindString(rest); m != "" {
		f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
		if err == nil {
			p.Amount = f
			rest = strings.Replace(rest, m, "", 1)
		}
	}

	if cat, remainder, ok := matchCategory(rest); ok {
		p.Category = cat
		rest = remainder
	}

	p.Description = strings.Trim(rest, " \t\n-")
	return p
}

// matchCategory looks for a category label inside text. Labels are
// lowered and stripped of anything non-alphanumeric before the substring
// search, so "Spesa" matches "🛒Spesa" and, being a plain substring
// match, a short label can also match inside an unrelated longer word.
func matchCategory(text string) (category, remainder string, ok bool) {
	lower, offsets := lowerWithOffsets(text)
	for _, cat := range Categories {
		needle := reAlnum.ReplaceAllString(strings.ToLower(cat), "")
		if needle == "" {
			continue
		}
		idx := strings.Index(lower, needle)
		if idx < 0 {
			continue
		}
		start, end := offsets[idx], offsets[idx+len(needle)]
		return cat, text[:start] + text[end:], true
	}
	return "", text, false
}

// lowerWithOffsets lowers text rune by rune and records, for every byte
// of the lowered string, the byte offset of the original rune it came
// from. Lowering can change a rune's encoded length ("Ⱥ" grows, "İ"
// shrinks), so indexes into the lowered string cannot be used to slice
// the original directly. The offsets slice carries one trailing entry
// of len(text) so a match ending at the last byte maps cleanly.
func lowerWithOffsets(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	offsets := make([]int, 0, len(text)+1)

	for i, r := range text {
		lr := unicode.ToLower(r)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			offsets = append(offsets, i)
		}
		b.WriteRune(lr)
	}
	offsets = append(offsets, len(text))

	return b.String(), offsets
}
