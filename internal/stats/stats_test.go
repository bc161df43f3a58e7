package stats

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"chatwrap/internal/parse"
)

func msg(sender, content string, hour int) parse.Message {
	return parse.Message{
		Sender:    sender,
		Content:   content,
		Timestamp: time.Date(2023, time.February, 1, hour, 0, 0, 0, time.Local),
	}
}

func TestTimeDistribution(t *testing.T) {
	messages := []parse.Message{
		msg("A", "a", 14), msg("B", "b", 14), msg("A", "c", 9),
	}
	got := TimeDistribution(messages)
	want := map[int]int{14: 2, 9: 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TimeDistribution = %v, want %v", got, want)
	}
}

func TestDayDistribution(t *testing.T) {
	messages := []parse.Message{
		// 2023-02-01 is a Wednesday, 2023-02-04 a Saturday
		{Sender: "A", Timestamp: time.Date(2023, 2, 1, 10, 0, 0, 0, time.Local)},
		{Sender: "B", Timestamp: time.Date(2023, 2, 1, 11, 0, 0, 0, time.Local)},
		{Sender: "A", Timestamp: time.Date(2023, 2, 4, 12, 0, 0, 0, time.Local)},
	}
	got := DayDistribution(messages)
	want := map[string]int{"Wednesday": 2, "Saturday": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DayDistribution = %v, want %v", got, want)
	}
}

func TestEmojiUsage(t *testing.T) {
	messages := []parse.Message{
		msg("A", "😊😊🎉", 10),
		msg("B", "🎉❤️", 11),
	}
	got := EmojiUsage(messages)
	// 😊 and 🎉 tie at 2; ties keep first-seen order
	want := []EmojiCount{{"😊", 2}, {"🎉", 2}, {"❤️", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EmojiUsage = %v, want %v", got, want)
	}
}

func TestEmojiUsageTopTen(t *testing.T) {
	emojis := []string{"😀", "😁", "😂", "😃", "😄", "😅", "😆", "😉", "😊", "😋", "😎", "😍"}
	var messages []parse.Message
	for i, e := range emojis {
		// descending counts so ranking is unambiguous
		for n := 0; n < len(emojis)-i; n++ {
			messages = append(messages, msg("A", e, 10))
		}
	}
	got := EmojiUsage(messages)
	if len(got) != 10 {
		t.Fatalf("got %d entries, want 10", len(got))
	}
	if got[0].Emoji != "😀" || got[0].Count != 12 {
		t.Errorf("top entry = %+v, want 😀 x12", got[0])
	}
	if got[9].Emoji != "😋" || got[9].Count != 3 {
		t.Errorf("last entry = %+v, want 😋 x3", got[9])
	}
}

func TestWordUsage(t *testing.T) {
	messages := []parse.Message{
		msg("A", "Pizza tonight? PIZZA!", 10),
		msg("B", "yes, pizza and movies", 11),
		msg("A", "ok go now", 12), // all under four letters
	}
	got := WordUsage(messages)
	want := []WordCount{{"pizza", 3}, {"tonight", 1}, {"movies", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WordUsage = %v, want %v", got, want)
	}
}

func TestCommunicatorType(t *testing.T) {
	long := "this content is comfortably longer than ten characters"

	tests := []struct {
		name     string
		messages []parse.Message
		want     string
	}{
		{
			name: "emoji enthusiast wins over everything",
			messages: []parse.Message{
				msg("A", "😊😊😊😊", 23),
				msg("B", long, 12),
			},
			want: EmojiEnthusiast,
		},
		{
			name: "night owl",
			messages: []parse.Message{
				msg("A", long, 23), msg("A", long, 22),
				msg("A", long, 12), msg("A", long, 13),
				msg("B", long, 12), msg("B", long, 12), msg("B", long, 12),
			},
			want: NightOwl,
		},
		{
			name: "morning person",
			messages: []parse.Message{
				msg("A", long, 5), msg("A", long, 6),
				msg("A", long, 12), msg("A", long, 13),
				msg("B", long, 12), msg("B", long, 12), msg("B", long, 12),
			},
			want: MorningPerson,
		},
		{
			name: "conversation master on share alone",
			messages: []parse.Message{
				msg("A", "hi", 10), msg("A", "yo", 11), msg("A", "ok", 12),
				msg("A", "hm", 13), msg("A", "no", 14), msg("A", "ya", 15),
				msg("A", "eh", 16),
				msg("B", long, 12), msg("B", long, 13), msg("B", long, 14),
			},
			want: ConversationMaster,
		},
		{
			name: "brief and bold",
			messages: []parse.Message{
				msg("A", "hi", 10), msg("A", "ok", 11),
				msg("B", long, 12), msg("B", long, 13),
			},
			want: BriefAndBold,
		},
		{
			name: "storyteller default",
			messages: []parse.Message{
				msg("A", long, 10), msg("A", long, 11),
				msg("B", long, 12), msg("B", long, 13),
			},
			want: Storyteller,
		},
		{
			name:     "no own messages",
			messages: []parse.Message{msg("B", long, 12)},
			want:     Storyteller,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommunicatorType(tt.messages, "A"); got != tt.want {
				t.Errorf("CommunicatorType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommunicatorTypeIgnoresOtherSendersContent(t *testing.T) {
	own := []parse.Message{
		msg("A", "a long enough message here", 10),
		msg("A", "another long enough message", 11),
	}
	others := []parse.Message{
		msg("B", "😊😊😊😊😊", 23),
		msg("C", "x", 5),
	}
	with := CommunicatorType(append(append([]parse.Message{}, own...), others...), "A")
	without := CommunicatorType(append(append([]parse.Message{}, others...), own...), "A")
	if with != without {
		t.Errorf("order of other senders changed result: %q vs %q", with, without)
	}
	if with != Storyteller {
		t.Errorf("got %q, want %q", with, Storyteller)
	}
}

func TestSampleSentiment(t *testing.T) {
	var messages []parse.Message
	for i := 0; i < 40; i++ {
		content := "bad"
		if i%2 == 0 {
			content = "good"
		}
		messages = append(messages, msg("A", content, 10))
	}
	classify := func(content string) Sentiment {
		if content == "good" {
			return Positive
		}
		return Negative
	}

	first := SampleSentiment(messages, 20, rand.New(rand.NewSource(42)), classify)
	second := SampleSentiment(messages, 20, rand.New(rand.NewSource(42)), classify)
	if first != second {
		t.Errorf("same seed gave different scores: %+v vs %+v", first, second)
	}
	if first.Positive+first.Negative != 1 {
		t.Errorf("fractions = %+v, want them to sum to 1 with this classifier", first)
	}
}

func TestSampleSentimentSmallerThanSample(t *testing.T) {
	messages := []parse.Message{msg("A", "good", 10), msg("A", "good", 11)}
	classify := func(string) Sentiment { return Positive }

	got := SampleSentiment(messages, 20, rand.New(rand.NewSource(1)), classify)
	if got.Positive != 1 || got.Negative != 0 {
		t.Errorf("got %+v, want all positive", got)
	}
}

func TestSampleSentimentEmpty(t *testing.T) {
	got := SampleSentiment(nil, 20, rand.New(rand.NewSource(1)), func(string) Sentiment { return Positive })
	if got != (SentimentScore{}) {
		t.Errorf("got %+v, want zero score", got)
	}
}

func ExampleCommunicatorType() {
	messages := []parse.Message{
		{Sender: "Alice", Content: "hey", Timestamp: time.Date(2023, 2, 1, 23, 30, 0, 0, time.Local)},
		{Sender: "Alice", Content: "you up?", Timestamp: time.Date(2023, 2, 1, 23, 31, 0, 0, time.Local)},
		{Sender: "Bob", Content: "barely", Timestamp: time.Date(2023, 2, 1, 23, 35, 0, 0, time.Local)},
	}
	fmt.Println(CommunicatorType(messages, "Alice"))
	// Output: Night Owl
}
