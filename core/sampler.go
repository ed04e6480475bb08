package engine

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"
)

const (
	// samplesPerFrame is the fixed outbound frame size. Device
	// callbacks deliver whatever chunk size the driver prefers, the
	// sampler re-frames them before anything leaves the process.
	samplesPerFrame = 4096
	frameBytes      = samplesPerFrame * 2
)

// signalSampler assembles raw capture callbacks into fixed-size PCM
// frames and measures their loudness. While muted the loudness
// measurement keeps running but frames are withheld and the reported
// level is zero.
type signalSampler struct {
	mu      sync.Mutex
	pending []byte

	muted atomic.Bool

	// emit receives each assembled frame with its level in [0, 1].
	// A nil frame means the sampler is muted and nothing may be sent.
	emit func(pcm []byte, level float64)
}

func newSignalSampler(emit func(pcm []byte, level float64)) *signalSampler {
	return &signalSampler{emit: emit}
}

func (s *signalSampler) SetMuted(muted bool) {
	s.muted.Store(muted)
}

func (s *signalSampler) IsMuted() bool {
	return s.muted.Load()
}

// OnDeviceAudio is the capture callback handed to the audio device.
func (s *signalSampler) OnDeviceAudio(chunk []byte) {
	s.mu.Lock()
	s.pending = append(s.pending, chunk...)
	var frames [][]byte
	for len(s.pending) >= frameBytes {
		frame := make([]byte, frameBytes)
		copy(frame, s.pending[:frameBytes])
		s.pending = s.pending[frameBytes:]
		frames = append(frames, frame)
	}
	s.mu.Unlock()

	for _, frame := range frames {
		level := pcmLevel(frame)
		if s.muted.Load() {
			s.emit(nil, 0)
			continue
		}
		s.emit(frame, level)
	}
}

// Reset discards any partial frame, for example across a reconnect, so
// stale capture bytes never lead a fresh session.
func (s *signalSampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// pcmLevel computes the root mean square of little-endian 16-bit PCM,
// normalized to [0, 1].
func pcmLevel(pcm []byte) float64 {
	sampleCount := len(pcm) / 2
	if sampleCount == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < sampleCount; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		normalized := float64(sample) / 32768.0
		sum += normalized * normalized
	}
	return math.Sqrt(sum / float64(sampleCount))
}
