package model

import "time"

// TurnSpeaker identifies who produced a conversation turn
type TurnSpeaker string

const (
	SpeakerMember    TurnSpeaker = "member"
	SpeakerAssistant TurnSpeaker = "assistant"
)

// ConversationTurn is one utterance in a multi-turn claim conversation.
// Turn history is owned by the caller; the extraction adapter is
// stateless between turns.
type ConversationTurn struct {
	Speaker TurnSpeaker
	Text    string
	At      time.Time
}

// BoundTurns returns at most the last max turns. Callers bound history
// growth before passing it to the extraction adapter so prompt cost and
// latency stay fixed regardless of conversation length.
func BoundTurns(turns []ConversationTurn, max int) []ConversationTurn {
	if max <= 0 || len(turns) <= max {
		return turns
	}
	return turns[len(turns)-max:]
}
