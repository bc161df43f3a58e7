// Package render formats analysis results and stored conversations for the
// terminal.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"chatwrap/internal/analyze"
)

const (
	colorReset   = "\033[0m"
	colorSelf    = "\033[1;34m" // bold blue
	colorOther   = "\033[1;32m" // bold green
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorAccent  = "\033[1;36m" // bold cyan
	colorBoldRed = "\033[1;31m"
)

const barWidth = 30

// RenderResult renders the aggregate analysis record as a styled report.
func RenderResult(res *analyze.Result) string {
	var b strings.Builder

	section := func(title string) {
		fmt.Fprintf(&b, "\n%s=== %s ===%s\n", colorAccent, title, colorReset)
	}

	section("Messages")
	fmt.Fprintf(&b, "  Total:    %d\n", res.TotalMessages)
	fmt.Fprintf(&b, "  Sent:     %d  %s(%s)%s\n", res.MessagesSent, colorDim, res.ReferenceSender, colorReset)
	fmt.Fprintf(&b, "  Received: %d\n", res.MessagesReceived)

	section("By hour")
	renderHourBars(&b, res.TimeDistribution)

	section("By weekday")
	renderDayBars(&b, res.DayDistribution)

	if len(res.TopEmojis) > 0 {
		section("Top emojis")
		for _, e := range res.TopEmojis {
			pad := 3 - runewidth.StringWidth(e.Emoji)
			if pad < 0 {
				pad = 0
			}
			fmt.Fprintf(&b, "  %s%s %d\n", e.Emoji, strings.Repeat(" ", pad), e.Count)
		}
	}

	if len(res.TopWords) > 0 {
		section("Top words")
		for _, w := range res.TopWords {
			fmt.Fprintf(&b, "  %-16s %d\n", w.Word, w.Count)
		}
	}

	section("Communicator type")
	fmt.Fprintf(&b, "  %s%s%s\n", colorSelf, res.CommunicatorType, colorReset)

	if len(res.CommunicationStyles) > 0 {
		section("Communication styles")
		senders := make([]string, 0, len(res.CommunicationStyles))
		for s := range res.CommunicationStyles {
			senders = append(senders, s)
		}
		sort.Strings(senders)
		for _, s := range senders {
			fmt.Fprintf(&b, "  %s%s:%s %s\n", colorOther, s, colorReset, res.CommunicationStyles[s])
		}
	}

	if res.Sentiment != nil {
		section("Sentiment sample")
		fmt.Fprintf(&b, "  Positive: %.0f%%\n", res.Sentiment.Positive*100)
		fmt.Fprintf(&b, "  Negative: %.0f%%\n", res.Sentiment.Negative*100)
		fmt.Fprintf(&b, "  %s(random sample; unseeded runs vary)%s\n", colorDim, colorReset)
	}

	return b.String()
}

func renderHourBars(b *strings.Builder, dist map[int]int) {
	max := 0
	for _, n := range dist {
		if n > max {
			max = n
		}
	}
	for hour := 0; hour < 24; hour++ {
		n, ok := dist[hour]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "  %02d:00 %s %d\n", hour, bar(n, max), n)
	}
}

// weekdayOrder fixes the rendering order; the distribution map only holds
// encountered days.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func renderDayBars(b *strings.Builder, dist map[string]int) {
	max := 0
	for _, n := range dist {
		if n > max {
			max = n
		}
	}
	for _, day := range weekdayOrder {
		n, ok := dist[day.String()]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "  %-9s %s %d\n", day.String(), bar(n, max), n)
	}
}

func bar(n, max int) string {
	if max <= 0 {
		return ""
	}
	w := n * barWidth / max
	if w == 0 && n > 0 {
		w = 1
	}
	return colorAccent + strings.Repeat("█", w) + colorReset
}
