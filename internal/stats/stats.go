// Package stats contains pure reducers over a parsed message sequence.
// Each reducer is independent; none mutates its input.
package stats

import (
	"sort"
	"strings"
	"unicode"

	"chatwrap/internal/emoji"
	"chatwrap/internal/parse"
)

// EmojiCount is one entry of the emoji ranking.
type EmojiCount struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// WordCount is one entry of the word ranking.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

const topN = 10

// TimeDistribution groups messages by local hour of day (0-23). Only
// encountered hours appear as keys.
func TimeDistribution(messages []parse.Message) map[int]int {
	dist := make(map[int]int)
	for _, m := range messages {
		dist[m.Timestamp.Hour()]++
	}
	return dist
}

// DayDistribution groups messages by local weekday name ("Monday", ...).
func DayDistribution(messages []parse.Message) map[string]int {
	dist := make(map[string]int)
	for _, m := range messages {
		dist[m.Timestamp.Weekday().String()]++
	}
	return dist
}

// EmojiUsage tallies every emoji occurrence across message contents and
// returns up to 10 entries sorted by count descending. The sort is stable:
// ties keep first-encountered order.
func EmojiUsage(messages []parse.Message) []EmojiCount {
	counts := make(map[string]int)
	var order []string
	for _, m := range messages {
		emoji.Each(m.Content, func(cluster string) {
			if counts[cluster] == 0 {
				order = append(order, cluster)
			}
			counts[cluster]++
		})
	}
	return rankEmojis(counts, order)
}

func rankEmojis(counts map[string]int, order []string) []EmojiCount {
	ranked := make([]EmojiCount, 0, len(order))
	for _, e := range order {
		ranked = append(ranked, EmojiCount{Emoji: e, Count: counts[e]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// WordUsage tallies words of four letters or more (lowercased, punctuation
// stripped) and returns up to 10 entries sorted by count descending, ties in
// first-encountered order.
func WordUsage(messages []parse.Message) []WordCount {
	counts := make(map[string]int)
	var order []string
	for _, m := range messages {
		for _, field := range strings.Fields(m.Content) {
			word := strings.ToLower(strings.TrimFunc(field, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsNumber(r)
			}))
			if len([]rune(word)) < 4 {
				continue
			}
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	ranked := make([]WordCount, 0, len(order))
	for _, w := range order {
		ranked = append(ranked, WordCount{Word: w, Count: counts[w]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
