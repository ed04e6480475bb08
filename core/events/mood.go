package events

// KindMoodChanged identifies the avatar mood signal being overwritten.
const KindMoodChanged Kind = "mood.changed"

// MoodChanged marks the mood signal being overwritten.
type MoodChanged struct {
	Base
	Mood string
}

// NewMoodChanged creates a mood changed event.
func NewMoodChanged(mood string) MoodChanged {
	return MoodChanged{Base: NewBase(KindMoodChanged), Mood: mood}
}
