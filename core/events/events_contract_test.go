package events

import (
	"testing"
	"time"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "session opened", event: NewSessionOpened("s1"), expected: KindSessionOpened},
		{name: "session retrying", event: NewSessionRetrying(1, time.Second), expected: KindSessionRetrying},
		{name: "session closed", event: NewSessionClosed(1000, "bye"), expected: KindSessionClosed},
		{name: "session failed", event: NewSessionFailed("boom"), expected: KindSessionFailed},
		{name: "state changed", event: NewStateChanged("IDLE", "CONNECTING"), expected: KindStateChanged},
		{name: "transcript segment", event: NewTranscriptSegment("user", "hel"), expected: KindTranscriptSegment},
		{name: "transcript entry", event: NewTranscriptEntry("robot", "hello"), expected: KindTranscriptEntry},
		{name: "playback started", event: NewPlaybackStarted(), expected: KindPlaybackStarted},
		{name: "playback ended", event: NewPlaybackEnded(), expected: KindPlaybackEnded},
		{name: "playback interrupted", event: NewPlaybackInterrupted(2), expected: KindPlaybackInterrupted},
		{name: "gesture perceived", event: NewGesturePerceived("wave"), expected: KindGesturePerceived},
		{name: "faces perceived", event: NewFacesPerceived(1), expected: KindFacesPerceived},
		{name: "frame published", event: NewFramePublished(2048), expected: KindFramePublished},
		{name: "mood changed", event: NewMoodChanged("happy"), expected: KindMoodChanged},
		{name: "tool call received", event: NewToolCallReceived("id", "set_mood", "{}"), expected: KindToolCallReceived},
		{name: "tool call acknowledged", event: NewToolCallAcknowledged("id", "set_mood"), expected: KindToolCallAcknowledged},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestPlaybackEndedAndInterruptedKindsAreDistinct(t *testing.T) {
	ended := NewPlaybackEnded()
	interrupted := NewPlaybackInterrupted(0)

	if ended.Kind() == interrupted.Kind() {
		t.Fatalf("expected playback ended and interrupted kinds to differ, both were %q", ended.Kind())
	}
}
