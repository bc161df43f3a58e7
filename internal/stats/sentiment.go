package stats

import (
	"math/rand"

	"chatwrap/internal/parse"
)

// Sentiment is the label a per-message classifier assigns.
type Sentiment int

const (
	Neutral Sentiment = iota
	Positive
	Negative
)

// SentimentScore reports positive/negative fractions of a message sample.
// The fractions are in [0,1] and sum to at most 1; the remainder is neutral.
type SentimentScore struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
}

// SampleSentiment classifies a random sample of at most sampleSize messages
// drawn without replacement using rng. Determinism follows the caller's
// generator: an unseeded rng gives different samples on every run.
func SampleSentiment(messages []parse.Message, sampleSize int, rng *rand.Rand, classify func(content string) Sentiment) SentimentScore {
	if len(messages) == 0 || sampleSize <= 0 || classify == nil {
		return SentimentScore{}
	}

	idx := rng.Perm(len(messages))
	if sampleSize > len(idx) {
		sampleSize = len(idx)
	}
	idx = idx[:sampleSize]

	var pos, neg int
	for _, i := range idx {
		switch classify(messages[i].Content) {
		case Positive:
			pos++
		case Negative:
			neg++
		}
	}

	return SentimentScore{
		Positive: float64(pos) / float64(sampleSize),
		Negative: float64(neg) / float64(sampleSize),
	}
}
