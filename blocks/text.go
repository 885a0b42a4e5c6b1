package blocks

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// MaxTextLength is the per-run content limit of the remote API, in UTF-16
// code units.
const MaxTextLength = 2000

// breakWindow is how far back from a chunk boundary Chunk looks for a
// whitespace or punctuation break.
const breakWindow = 100

type stripRule struct {
	pattern     *regexp.Regexp
	replacement string
	// untilStable reapplies the rule because its boundary groups consume
	// the separator between adjacent matches.
	untilStable bool
}

// Underscore emphasis only counts at word boundaries, so snake_case text
// survives.
var stripRules = []stripRule{
	{pattern: regexp.MustCompile(`!\[([^\]]*)\](?:\([^)]*\)|\[[^\]]*\])`), replacement: "$1"},
	{pattern: regexp.MustCompile(`\[([^\]]*)\](?:\([^)]*\)|\[[^\]]*\])`), replacement: "$1"},
	{pattern: regexp.MustCompile(`\*\*\*(.+?)\*\*\*`), replacement: "$1"},
	{pattern: regexp.MustCompile(`(^|[^\p{L}\p{N}_])___(.+?)___([^\p{L}\p{N}_]|$)`), replacement: "$1$2$3", untilStable: true},
	{pattern: regexp.MustCompile(`\*\*(.+?)\*\*`), replacement: "$1"},
	{pattern: regexp.MustCompile(`(^|[^\p{L}\p{N}_])__(.+?)__([^\p{L}\p{N}_]|$)`), replacement: "$1$2$3", untilStable: true},
	{pattern: regexp.MustCompile(`\*(.+?)\*`), replacement: "$1"},
	{pattern: regexp.MustCompile(`(^|[^\p{L}\p{N}_])_([^_]+?)_([^\p{L}\p{N}_]|$)`), replacement: "$1$2$3", untilStable: true},
	{pattern: regexp.MustCompile(`~~(.+?)~~`), replacement: "$1"},
	{pattern: regexp.MustCompile("`([^`]+)`"), replacement: "$1"},
}

var escapePattern = regexp.MustCompile("\\\\([!\"#$%&'()*+,\\-./:;<=>?@\\[\\\\\\]^_`{|}~])")

// escapeBlock is the size of the rune range escaped punctuation is shifted
// into so the emphasis rules cannot see it.
const escapeBlock = 0x80

func (r stripRule) apply(text string) string {
	for {
		next := r.pattern.ReplaceAllString(text, r.replacement)
		if !r.untilStable || next == text {
			return next
		}
		text = next
	}
}

// Strip removes inline Markdown syntax from text: images and links keep
// their text, emphasis, strikethrough and code delimiters are dropped, and
// backslash escapes are resolved last.
func Strip(text string) string {
	if text == "" {
		return ""
	}

	base := escapeBase(text)
	text = escapePattern.ReplaceAllStringFunc(text, func(match string) string {
		return string(base + rune(match[1]))
	})
	for _, rule := range stripRules {
		text = rule.apply(text)
	}
	return strings.Map(func(r rune) rune {
		if r >= base && r < base+escapeBlock {
			return r - base
		}
		return r
	}, text)
}

// escapeBase picks a private use block that text does not already use.
func escapeBase(text string) rune {
	used := make(map[rune]bool)
	for _, r := range text {
		if r >= 0xF0000 {
			used[(r-0xF0000)/escapeBlock] = true
		}
	}
	block := rune(0)
	for used[block] {
		block++
	}
	return 0xF0000 + block*escapeBlock
}

// TextLength is the length of text in UTF-16 code units, the unit the remote
// API counts in. Invalid bytes count as one unit each.
func TextLength(text string) int {
	n := 0
	for _, r := range text {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// Chunk splits text into runs of at most maxLength UTF-16 code units. A
// non-positive maxLength means MaxTextLength. Cuts fall on rune boundaries of
// the original bytes, so concatenating the runs yields text exactly.
func Chunk(text string, maxLength int) []TextRun {
	if maxLength <= 0 {
		maxLength = MaxTextLength
	}
	if TextLength(text) <= maxLength {
		return []TextRun{{Content: text}}
	}

	var runs []TextRun
	for start := 0; start < len(text); {
		end, units := start, 0
		cut, cutUnits := -1, 0
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			width := runeUnits(r)
			if units+width > maxLength && end > start {
				break
			}
			if end > start && isBreakRune(r) {
				cut, cutUnits = end+size, units
			}
			units += width
			end += size
		}

		if end < len(text) && cut > 0 && cutUnits >= units-breakWindow {
			end = cut
		}
		runs = append(runs, TextRun{Content: text[start:end]})
		start = end
	}

	return runs
}

// ToTextRuns normalizes text and chunks it. The result always holds at least
// one run because every textual block needs one.
func ToTextRuns(text string) []TextRun {
	normalized := Strip(text)
	if normalized == "" {
		return []TextRun{{Content: ""}}
	}
	return Chunk(normalized, MaxTextLength)
}

func isBreakRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}
