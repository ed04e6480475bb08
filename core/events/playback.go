package events

const (
	// KindPlaybackStarted identifies playback beginning for a response.
	KindPlaybackStarted Kind = "playback.started"
	// KindPlaybackEnded identifies the in-flight set draining naturally.
	KindPlaybackEnded Kind = "playback.ended"
	// KindPlaybackInterrupted identifies a barge-in discarding playback.
	KindPlaybackInterrupted Kind = "playback.interrupted"
)

// PlaybackStarted marks the first fragment of a response starting to play.
type PlaybackStarted struct{ Base }

// NewPlaybackStarted creates a playback started event.
func NewPlaybackStarted() PlaybackStarted {
	return PlaybackStarted{Base: NewBase(KindPlaybackStarted)}
}

// PlaybackEnded marks the in-flight set becoming empty without an
// interruption.
type PlaybackEnded struct{ Base }

// NewPlaybackEnded creates a playback ended event.
func NewPlaybackEnded() PlaybackEnded {
	return PlaybackEnded{Base: NewBase(KindPlaybackEnded)}
}

// PlaybackInterrupted marks all in-flight fragments being discarded on a
// barge-in signal.
type PlaybackInterrupted struct {
	Base
	Discarded int
}

// NewPlaybackInterrupted creates a playback interrupted event.
func NewPlaybackInterrupted(discarded int) PlaybackInterrupted {
	return PlaybackInterrupted{Base: NewBase(KindPlaybackInterrupted), Discarded: discarded}
}
