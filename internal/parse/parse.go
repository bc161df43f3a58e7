// Package parse turns a raw chat export into an ordered Message sequence.
//
// The export format is line-oriented: every message starts with a date/time
// header. Lines that do not match the header grammar (continuations of
// multi-line messages, system notices, malformed lines) are skipped without
// distinction; multi-line bodies are not reassembled.
package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"chatwrap/internal/emoji"
)

// ErrNoMessages is returned when not a single line of the input could be
// parsed as a message.
var ErrNoMessages = errors.New("no messages parsed")

// headerPattern recognizes one exported message line:
// an optional opening bracket, a D.M.YY / D/M/YYYY style date, a comma or
// space, a H:MM(:SS) time, an optional closing bracket, an optional run of
// dash/colon/space separators, the sender name up to its terminating colon
// (non-greedy, so content may itself contain colons), and the body.
var headerPattern = regexp.MustCompile(
	`\[?(\d{1,2}[./]\d{1,2}[./]\d{2,4})[,\s]\s*(\d{1,2}:\d{2}(?::\d{2})?)\]?\s*[-:\s]*([^:]+?):\s*(.+)`)

var dateSep = regexp.MustCompile(`[./]`)

// Stats counts the outcome of one Parse run.
type Stats struct {
	Lines   int
	Parsed  int
	Dropped int
}

// Parse extracts messages from raw export text, preserving line order.
// maxLines > 0 caps how many non-empty lines are considered. It returns
// ErrNoMessages when the input yields no message at all.
func Parse(rawText string, maxLines int) ([]Message, Stats, error) {
	var stats Stats

	lines := SplitLines(rawText)
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	stats.Lines = len(lines)

	var messages []Message
	for _, line := range lines {
		msg, ok := parseLine(line)
		if !ok {
			stats.Dropped++
			continue
		}
		messages = append(messages, msg)
	}
	stats.Parsed = len(messages)

	if len(messages) == 0 {
		return nil, stats, ErrNoMessages
	}
	return messages, stats, nil
}

// SplitLines splits raw text into non-empty, non-whitespace-only lines,
// original order preserved.
func SplitLines(rawText string) []string {
	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func parseLine(line string) (Message, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return Message{}, false
	}
	datePart, timePart, sender, content := m[1], m[2], m[3], m[4]

	ts, ok := buildTimestamp(datePart, timePart)
	if !ok {
		return Message{}, false
	}

	content = strings.TrimSpace(content)
	return Message{
		Sender:    strings.TrimSpace(sender),
		Content:   content,
		Timestamp: ts,
		HasEmoji:  emoji.Contains(content),
	}, true
}

// buildTimestamp combines a date token (day first) and a time token into an
// instant in the local calendar. The export carries no timezone. Impossible
// component combinations (month 13, day 32, Feb 30) are rejected rather
// than normalized away.
func buildTimestamp(datePart, timePart string) (time.Time, bool) {
	d := dateSep.Split(datePart, -1)
	if len(d) != 3 {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(d[0])
	month, _ := strconv.Atoi(d[1])
	year, _ := strconv.Atoi(d[2])
	if len(d[2]) == 2 {
		year += 2000
	}

	t := strings.Split(timePart, ":")
	hour, _ := strconv.Atoi(t[0])
	minute, _ := strconv.Atoi(t[1])
	second := 0
	if len(t) == 3 {
		second, _ = strconv.Atoi(t[2])
	}

	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
	// time.Date normalizes out-of-range components; detect by reading back.
	if ts.Year() != year || ts.Month() != time.Month(month) || ts.Day() != day ||
		ts.Hour() != hour || ts.Minute() != minute || ts.Second() != second {
		return time.Time{}, false
	}
	return ts, true
}
