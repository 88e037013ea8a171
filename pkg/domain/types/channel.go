package types

import "fmt"

// Channel represents how a claim was submitted
type Channel string

const (
	ChannelVoice  Channel = "voice"
	ChannelText   Channel = "text"
	ChannelManual Channel = "manual"
)

// IsValid checks if the channel is valid
func (c Channel) IsValid() bool {
	switch c {
	case ChannelVoice, ChannelText, ChannelManual:
		return true
	default:
		return false
	}
}

// String returns the string representation of the channel
func (c Channel) String() string {
	return string(c)
}

// ParseChannel parses a string into a Channel
func ParseChannel(s string) (Channel, error) {
	c := Channel(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid submission channel: %s", s)
	}
	return c, nil
}
