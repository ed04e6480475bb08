package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/audio"
)

// pcmOfDuration returns silent playback PCM lasting the given time.
func pcmOfDuration(d time.Duration) []byte {
	byteCount := int(d.Seconds() * float64(audio.GetPlaybackEncodingInfo().BytesPerSecond()))
	return make([]byte, byteCount)
}

func TestPlaybackSchedulerQueuesFragmentsBackToBack(t *testing.T) {
	scheduler := newPlaybackScheduler(nil, audio.GetPlaybackEncodingInfo())

	scheduler.Enqueue(pcmOfDuration(time.Second))
	scheduler.Enqueue(pcmOfDuration(500 * time.Millisecond))

	if count := scheduler.InFlightCount(); count != 2 {
		t.Fatalf("Expected 2 in-flight fragments, got %d", count)
	}

	scheduler.mu.Lock()
	var first, second *inFlightFragment
	for _, fragment := range scheduler.inFlight {
		if first == nil || fragment.start.Before(first.start) {
			second = first
			first = fragment
		} else {
			second = fragment
		}
	}
	cursor := scheduler.cursor
	scheduler.mu.Unlock()

	if got, expected := second.start, first.start.Add(first.duration); !got.Equal(expected) {
		t.Fatalf("Expected second fragment to start at %v, got %v", expected, got)
	}
	if got, expected := cursor, second.start.Add(second.duration); !got.Equal(expected) {
		t.Fatalf("Expected cursor at %v, got %v", expected, got)
	}
}

func TestPlaybackSchedulerRestartsTimelineAfterDrain(t *testing.T) {
	scheduler := newPlaybackScheduler(nil, audio.GetPlaybackEncodingInfo())

	drained := make(chan struct{}, 1)
	scheduler.onDrained = func() { drained <- struct{}{} }

	scheduler.Enqueue(pcmOfDuration(10 * time.Millisecond))

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatalf("Expected playback to drain")
	}

	// Long after the first fragment ended, a new one must anchor to
	// now rather than the stale cursor.
	before := time.Now()
	scheduler.Enqueue(pcmOfDuration(time.Second))

	scheduler.mu.Lock()
	var start time.Time
	for _, fragment := range scheduler.inFlight {
		start = fragment.start
	}
	scheduler.mu.Unlock()

	if start.Before(before) {
		t.Fatalf("Expected fragment anchored at enqueue time, got start %v before %v", start, before)
	}
}

func TestPlaybackSchedulerSpeakingAndDrainedCallbacks(t *testing.T) {
	scheduler := newPlaybackScheduler(nil, audio.GetPlaybackEncodingInfo())

	var speaking atomic.Int32
	drained := make(chan struct{}, 1)
	scheduler.onSpeaking = func() { speaking.Add(1) }
	scheduler.onDrained = func() { drained <- struct{}{} }

	scheduler.Enqueue(pcmOfDuration(10 * time.Millisecond))
	scheduler.Enqueue(pcmOfDuration(10 * time.Millisecond))

	if got := speaking.Load(); got != 1 {
		t.Fatalf("Expected exactly 1 speaking callback, got %d", got)
	}

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatalf("Expected drained callback after fragments finished")
	}
	if count := scheduler.InFlightCount(); count != 0 {
		t.Fatalf("Expected empty in-flight set after drain, got %d", count)
	}
}

func TestPlaybackSchedulerInterruptDiscardsEverything(t *testing.T) {
	sink := &stubAudioOutput{}
	scheduler := newPlaybackScheduler(sink, audio.GetPlaybackEncodingInfo())

	drainedCalled := atomic.Bool{}
	scheduler.onDrained = func() { drainedCalled.Store(true) }

	scheduler.Enqueue(pcmOfDuration(time.Second))
	scheduler.Enqueue(pcmOfDuration(time.Second))

	discarded := scheduler.Interrupt()
	if discarded != 2 {
		t.Fatalf("Expected 2 discarded fragments, got %d", discarded)
	}
	if count := scheduler.InFlightCount(); count != 0 {
		t.Fatalf("Expected empty in-flight set after interrupt, got %d", count)
	}
	if cursor := scheduler.cursorAt(); !cursor.IsZero() {
		t.Fatalf("Expected reset cursor after interrupt, got %v", cursor)
	}
	if !sink.cleared.Load() {
		t.Fatalf("Expected device buffer flush on interrupt")
	}

	// Give any stale timers a chance to misfire.
	time.Sleep(20 * time.Millisecond)
	if drainedCalled.Load() {
		t.Fatalf("Expected no drained callback from an interrupt")
	}
}

func TestPlaybackSchedulerDropsEmptyFragments(t *testing.T) {
	scheduler := newPlaybackScheduler(nil, audio.GetPlaybackEncodingInfo())

	scheduler.Enqueue(nil)
	if count := scheduler.InFlightCount(); count != 0 {
		t.Fatalf("Expected empty fragment to be dropped, got %d in flight", count)
	}
}
