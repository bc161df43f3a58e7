// Package emoji detects and tallies Unicode emoji in message text.
//
// Counting walks grapheme clusters rather than raw code points so that a
// multi-codepoint emoji (skin tones, ZWJ sequences, flags) counts once.
package emoji

import (
	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

// Contains reports whether s contains at least one emoji.
func Contains(s string) bool {
	return gomoji.ContainsEmoji(s)
}

// Count returns the number of emoji grapheme clusters in s.
func Count(s string) int {
	n := 0
	Each(s, func(string) { n++ })
	return n
}

// Each calls fn for every emoji grapheme cluster in s, in order of
// appearance, once per occurrence.
func Each(s string, fn func(cluster string)) {
	if s == "" {
		return
	}
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		c := g.Str()
		if gomoji.ContainsEmoji(c) {
			fn(c)
		}
	}
}
