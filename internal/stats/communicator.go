package stats

import (
	"chatwrap/internal/emoji"
	"chatwrap/internal/parse"
)

// Communicator type labels, in rule priority order.
const (
	EmojiEnthusiast    = "Emoji Enthusiast"
	NightOwl           = "Night Owl"
	MorningPerson      = "Morning Person"
	ConversationMaster = "Conversation Master"
	BriefAndBold       = "Brief & Bold"
	Storyteller        = "Storyteller"
)

// CommunicatorType classifies the reference sender's messaging behavior by a
// fixed decision list; the first matching rule wins. It looks only at
// messages sent by self, except the share check against the total count.
// Returns Storyteller when self has no messages.
func CommunicatorType(messages []parse.Message, self string) string {
	var own []parse.Message
	for _, m := range messages {
		if m.Sender == self {
			own = append(own, m)
		}
	}
	if len(own) == 0 {
		return Storyteller
	}

	var night, morning, totalLen int
	heavyEmoji := false
	for _, m := range own {
		if emoji.Count(m.Content) > 3 {
			heavyEmoji = true
		}
		h := m.Timestamp.Hour()
		if h >= 22 {
			night++
		}
		if h <= 6 {
			morning++
		}
		totalLen += len([]rune(m.Content))
	}

	switch {
	case heavyEmoji:
		return EmojiEnthusiast
	case float64(night) > float64(len(own))*0.3:
		return NightOwl
	case float64(morning) > float64(len(own))*0.3:
		return MorningPerson
	case float64(len(own)) > float64(len(messages))*0.6:
		return ConversationMaster
	case float64(totalLen)/float64(len(own)) < 10:
		return BriefAndBold
	default:
		return Storyteller
	}
}
