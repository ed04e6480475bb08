package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/audio"
)

// AudioOutput is the playback side of an audio device.
type AudioOutput interface {
	// SendAudio hands PCM bytes to the device for immediate playback.
	SendAudio(audio []byte) error
	// ClearBuffer discards any audio the device has not played yet.
	ClearBuffer()
}

type inFlightFragment struct {
	id       string
	start    time.Time
	duration time.Duration
	timer    *time.Timer
}

// playbackScheduler lays response audio fragments onto a virtual
// timeline so that fragments arriving in bursts play gaplessly and
// back to back. A fragment is in flight from the moment it is
// enqueued until its scheduled end passes; interruption discards the
// whole in-flight set at once.
type playbackScheduler struct {
	sink     AudioOutput
	encoding audio.EncodingInfo
	now      func() time.Time

	mu sync.Mutex
	// generation increments on every interrupt so timers armed for a
	// previous timeline can never touch the current one.
	generation uint64
	// cursor is the end of the last scheduled fragment. The zero
	// value means the timeline is reset and the next fragment starts
	// immediately.
	cursor   time.Time
	inFlight map[string]*inFlightFragment

	// onSpeaking fires when the in-flight set becomes non-empty,
	// onDrained when it empties by fragments finishing naturally, and
	// onLevel with each fragment's loudness as it reaches the device.
	onSpeaking func()
	onDrained  func()
	onLevel    func(level float64)
}

func newPlaybackScheduler(sink AudioOutput, encoding audio.EncodingInfo) *playbackScheduler {
	return &playbackScheduler{
		sink:     sink,
		encoding: encoding,
		now:      time.Now,
		inFlight: map[string]*inFlightFragment{},
	}
}

// Enqueue places a PCM fragment at the earliest gapless slot: the end
// of the previously scheduled fragment, or now when the timeline has
// drained or was never started.
func (p *playbackScheduler) Enqueue(pcm []byte) {
	duration := p.encoding.Duration(len(pcm))
	if duration <= 0 {
		logger.Warn("Dropping empty playback fragment")
		return
	}

	p.mu.Lock()
	now := p.now()
	start := now
	if p.cursor.After(now) {
		start = p.cursor
	}
	p.cursor = start.Add(duration)

	fragment := &inFlightFragment{
		id:       uuid.NewString(),
		start:    start,
		duration: duration,
	}
	wasEmpty := len(p.inFlight) == 0
	p.inFlight[fragment.id] = fragment
	generation := p.generation
	fragment.timer = time.AfterFunc(start.Sub(now), func() {
		p.deliver(fragment.id, generation, pcm)
	})
	onSpeaking := p.onSpeaking
	p.mu.Unlock()

	if wasEmpty && onSpeaking != nil {
		onSpeaking()
	}
}

// deliver hands the fragment to the device at its scheduled start and
// arms the completion timer. Delaying the device hand-off until the
// start slot keeps the device buffer nearly empty, so an interrupt
// silences playback almost immediately.
func (p *playbackScheduler) deliver(id string, generation uint64, pcm []byte) {
	p.mu.Lock()
	fragment, ok := p.inFlight[id]
	if !ok || generation != p.generation {
		p.mu.Unlock()
		return
	}
	fragment.timer = time.AfterFunc(fragment.duration, func() {
		p.complete(id, generation)
	})
	sink := p.sink
	onLevel := p.onLevel
	p.mu.Unlock()

	if onLevel != nil {
		onLevel(pcmLevel(pcm))
	}
	if sink == nil {
		return
	}
	if err := sink.SendAudio(pcm); err != nil {
		logger.Warn("Failed to hand playback fragment to audio device", "error", err)
	}
}

func (p *playbackScheduler) complete(id string, generation uint64) {
	p.mu.Lock()
	if generation != p.generation {
		p.mu.Unlock()
		return
	}
	if _, ok := p.inFlight[id]; !ok {
		p.mu.Unlock()
		return
	}
	delete(p.inFlight, id)
	drained := len(p.inFlight) == 0
	onDrained := p.onDrained
	p.mu.Unlock()

	if drained && onDrained != nil {
		onDrained()
	}
}

// Interrupt discards every in-flight fragment, resets the timeline and
// flushes the device buffer. It returns the number of fragments
// discarded. The drained callback does not fire for an interrupt.
func (p *playbackScheduler) Interrupt() int {
	p.mu.Lock()
	discarded := len(p.inFlight)
	for _, fragment := range p.inFlight {
		if fragment.timer != nil {
			fragment.timer.Stop()
		}
	}
	p.inFlight = map[string]*inFlightFragment{}
	p.cursor = time.Time{}
	p.generation++
	sink := p.sink
	p.mu.Unlock()

	if sink != nil {
		sink.ClearBuffer()
	}
	return discarded
}

// InFlightCount reports how many fragments are currently scheduled or
// playing.
func (p *playbackScheduler) InFlightCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inFlight)
}

func (p *playbackScheduler) cursorAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}
