package classify

import (
	"strings"
	"unicode"

	"chatwrap/internal/stats"
)

// Small English sentiment wordlists. Coarse on purpose: the sampler only
// needs a positive/negative/neutral signal per message, not a score.
var (
	positiveWords = makeSet(
		"good", "great", "nice", "love", "loved", "lovely", "happy", "glad",
		"awesome", "amazing", "cool", "fun", "funny", "best", "wonderful",
		"perfect", "thanks", "thank", "yay", "haha", "lol", "beautiful",
		"excited", "sweet", "congrats", "congratulations", "win", "won",
	)
	negativeWords = makeSet(
		"bad", "sad", "hate", "hated", "angry", "annoyed", "annoying",
		"terrible", "awful", "horrible", "worst", "sorry", "ugh", "sick",
		"tired", "boring", "bored", "cry", "crying", "lost", "lose",
		"problem", "wrong", "fail", "failed", "unfortunately",
	)
)

func makeSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// LexiconSentiment labels a message by counting positive and negative words.
// A tie, or no hits at all, is neutral.
func LexiconSentiment(content string) stats.Sentiment {
	var pos, neg int
	for _, field := range strings.Fields(strings.ToLower(content)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if _, ok := positiveWords[word]; ok {
			pos++
		}
		if _, ok := negativeWords[word]; ok {
			neg++
		}
	}
	switch {
	case pos > neg:
		return stats.Positive
	case neg > pos:
		return stats.Negative
	default:
		return stats.Neutral
	}
}
