// Package analyze orchestrates one analysis run: parse the export, fold the
// message sequence through the statistics reducers, optionally enrich via a
// remote classifier, and assemble the result record.
package analyze

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"chatwrap/internal/parse"
	"chatwrap/internal/stats"
)

// Classification task tags for the remote collaborator.
const (
	TaskNone  = ""
	TaskEmoji = "emoji"
	TaskStyle = "communication_style"
)

// Classifier is the remote classification collaborator. A failure never
// aborts a run; the orchestrator substitutes locally computed defaults.
type Classifier interface {
	TopEmojis(ctx context.Context, contents []string) ([]stats.EmojiCount, error)
	CommunicationStyles(ctx context.Context, messages []string) (map[string]string, error)
}

// Result is the aggregate output of one run, immutable once produced.
// Field names mirror the stored analysis_results row.
type Result struct {
	TotalMessages       int                   `json:"total_messages"`
	MessagesSent        int                   `json:"messages_sent"`
	MessagesReceived    int                   `json:"messages_received"`
	ReferenceSender     string                `json:"reference_sender"`
	TimeDistribution    map[int]int           `json:"time_distribution"`
	DayDistribution     map[string]int        `json:"day_distribution"`
	TopEmojis           []stats.EmojiCount    `json:"top_emojis"`
	TopWords            []stats.WordCount     `json:"top_words"`
	CommunicatorType    string                `json:"communicator_type"`
	CommunicationStyles map[string]string     `json:"communication_styles,omitempty"`
	Sentiment           *stats.SentimentScore `json:"sentiment_analysis,omitempty"`

	// Messages backs the optional save step; not part of the rendered record.
	Messages []parse.Message `json:"-"`
}

// Analyzer holds the collaborators and knobs for analysis runs. The zero
// value is not usable; construct with New. One Analyzer may serve many runs;
// each run works on its own message sequence.
type Analyzer struct {
	classifier Classifier
	task       string
	selfSender string
	maxLines   int
	sampleSize int
	rng        *rand.Rand
	sentiment  func(content string) stats.Sentiment
	log        *zap.SugaredLogger
}

// Options configures an Analyzer.
type Options struct {
	// Classifier is the optional remote collaborator; Task selects which
	// classification it performs (TaskEmoji or TaskStyle). At most one
	// remote call is issued per run.
	Classifier Classifier
	Task       string

	// SelfSender overrides the "sent by me" convention. Empty means the
	// sender of the first parsed message.
	SelfSender string

	// MaxLines caps how many non-empty lines are parsed; 0 = no cap.
	MaxLines int

	// Sentiment enables the sentiment sample when non-nil. SampleSize
	// defaults to 20. Seed fixes the sample; 0 seeds from the clock, so
	// results then vary between runs on the same input.
	Sentiment  func(content string) stats.Sentiment
	SampleSize int
	Seed       int64

	Log *zap.SugaredLogger
}

func New(opts Options) *Analyzer {
	if opts.SampleSize <= 0 {
		opts.SampleSize = 20
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Analyzer{
		classifier: opts.Classifier,
		task:       opts.Task,
		selfSender: opts.SelfSender,
		maxLines:   opts.MaxLines,
		sampleSize: opts.SampleSize,
		rng:        rand.New(rand.NewSource(seed)),
		sentiment:  opts.Sentiment,
		log:        log,
	}
}

// Analyze runs the full pipeline over raw export text. It fails only when
// parsing yields no messages; classifier failures degrade to local values.
func (a *Analyzer) Analyze(ctx context.Context, rawText string) (*Result, error) {
	messages, pstats, err := parse.Parse(rawText, a.maxLines)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	a.log.Debugw("parsed export",
		"lines", pstats.Lines, "parsed", pstats.Parsed, "dropped", pstats.Dropped)

	self := a.resolveSelf(messages)

	var sent int
	for _, m := range messages {
		if m.Sender == self {
			sent++
		}
	}

	res := &Result{
		TotalMessages:    len(messages),
		MessagesSent:     sent,
		MessagesReceived: len(messages) - sent,
		ReferenceSender:  self,
		TimeDistribution: stats.TimeDistribution(messages),
		DayDistribution:  stats.DayDistribution(messages),
		TopEmojis:        stats.EmojiUsage(messages),
		TopWords:         stats.WordUsage(messages),
		CommunicatorType: stats.CommunicatorType(messages, self),
		Messages:         messages,
	}

	a.classify(ctx, res)

	if a.sentiment != nil {
		score := stats.SampleSentiment(messages, a.sampleSize, a.rng, a.sentiment)
		res.Sentiment = &score
	}

	return res, nil
}

// resolveSelf picks the reference sender: the configured override when it
// actually appears in the sequence, otherwise the first message's sender.
func (a *Analyzer) resolveSelf(messages []parse.Message) string {
	if a.selfSender == "" {
		return messages[0].Sender
	}
	for _, m := range messages {
		if m.Sender == a.selfSender {
			return a.selfSender
		}
	}
	a.log.Warnw("self sender not found in chat, using first sender",
		"self", a.selfSender, "first", messages[0].Sender)
	return messages[0].Sender
}

// classify issues the single optional remote call for the configured task.
// Any failure leaves the locally computed fields in place, adding fixed
// placeholder styles for the style task.
func (a *Analyzer) classify(ctx context.Context, res *Result) {
	if a.classifier == nil || a.task == TaskNone {
		return
	}

	switch a.task {
	case TaskEmoji:
		contents := make([]string, 0, len(res.Messages))
		for _, m := range res.Messages {
			if m.HasEmoji {
				contents = append(contents, m.Content)
			}
		}
		ranking, err := a.classifier.TopEmojis(ctx, contents)
		if err != nil {
			a.log.Warnw("emoji classification failed, keeping local ranking", "err", err)
			return
		}
		res.TopEmojis = ranking

	case TaskStyle:
		lines := make([]string, 0, len(res.Messages))
		for _, m := range res.Messages {
			lines = append(lines, m.Sender+": "+m.Content)
		}
		styles, err := a.classifier.CommunicationStyles(ctx, lines)
		if err != nil {
			a.log.Warnw("style classification failed, using placeholders", "err", err)
			res.CommunicationStyles = placeholderStyles(res.Messages)
			return
		}
		res.CommunicationStyles = styles

	default:
		a.log.Warnw("unknown classification task", "task", a.task)
	}
}

func placeholderStyles(messages []parse.Message) map[string]string {
	styles := make(map[string]string)
	for _, m := range messages {
		styles[m.Sender] = "Style analysis unavailable"
	}
	return styles
}
