package engine

import (
	"encoding/binary"
	"math"
	"testing"
)

// pcmWithAmplitude builds little-endian PCM where every sample has the
// given amplitude.
func pcmWithAmplitude(sampleCount int, amplitude int16) []byte {
	pcm := make([]byte, sampleCount*2)
	for i := 0; i < sampleCount; i++ {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(amplitude))
	}
	return pcm
}

func TestSignalSamplerReframesDeviceChunks(t *testing.T) {
	var frames [][]byte
	sampler := newSignalSampler(func(pcm []byte, level float64) {
		frames = append(frames, pcm)
	})

	// Three quarter-frames do not fill a frame yet.
	for i := 0; i < 3; i++ {
		sampler.OnDeviceAudio(make([]byte, frameBytes/4))
	}
	if len(frames) != 0 {
		t.Fatalf("Expected no frames before enough samples arrived, got %d", len(frames))
	}

	// One more quarter plus a full extra frame completes two frames.
	sampler.OnDeviceAudio(make([]byte, frameBytes/4+frameBytes))
	if len(frames) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(frames))
	}
	for i, frame := range frames {
		if len(frame) != frameBytes {
			t.Fatalf("Expected frame %d to hold %d bytes, got %d", i, frameBytes, len(frame))
		}
	}
}

func TestSignalSamplerMeasuresLevel(t *testing.T) {
	var levels []float64
	sampler := newSignalSampler(func(pcm []byte, level float64) {
		levels = append(levels, level)
	})

	sampler.OnDeviceAudio(pcmWithAmplitude(samplesPerFrame, 16384))
	if len(levels) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(levels))
	}

	expected := 16384.0 / 32768.0
	if math.Abs(levels[0]-expected) > 1e-9 {
		t.Fatalf("Expected level %f, got %f", expected, levels[0])
	}
}

func TestSignalSamplerSilenceHasZeroLevel(t *testing.T) {
	var levels []float64
	sampler := newSignalSampler(func(pcm []byte, level float64) {
		levels = append(levels, level)
	})

	sampler.OnDeviceAudio(make([]byte, frameBytes))
	if len(levels) != 1 || levels[0] != 0 {
		t.Fatalf("Expected a single zero level for silence, got %v", levels)
	}
}

func TestSignalSamplerMuteWithholdsFramesAndLevel(t *testing.T) {
	type emission struct {
		pcm   []byte
		level float64
	}
	var emissions []emission
	sampler := newSignalSampler(func(pcm []byte, level float64) {
		emissions = append(emissions, emission{pcm: pcm, level: level})
	})

	sampler.SetMuted(true)
	sampler.OnDeviceAudio(pcmWithAmplitude(samplesPerFrame, 16384))

	if len(emissions) != 1 {
		t.Fatalf("Expected muted sampler to keep framing, got %d emissions", len(emissions))
	}
	if emissions[0].pcm != nil {
		t.Fatalf("Expected no frame payload while muted")
	}
	if emissions[0].level != 0 {
		t.Fatalf("Expected zero level while muted, got %f", emissions[0].level)
	}

	// Unmuting resumes frames immediately, no warm-up needed.
	sampler.SetMuted(false)
	sampler.OnDeviceAudio(pcmWithAmplitude(samplesPerFrame, 16384))
	if len(emissions) != 2 || emissions[1].pcm == nil {
		t.Fatalf("Expected a frame after unmuting, got %v emissions", len(emissions))
	}
	if emissions[1].level == 0 {
		t.Fatalf("Expected non-zero level after unmuting")
	}
}

func TestSignalSamplerResetDiscardsPartialFrame(t *testing.T) {
	var frames int
	sampler := newSignalSampler(func(pcm []byte, level float64) {
		frames++
	})

	sampler.OnDeviceAudio(make([]byte, frameBytes/2))
	sampler.Reset()
	sampler.OnDeviceAudio(make([]byte, frameBytes/2))

	if frames != 0 {
		t.Fatalf("Expected no frames after reset split the halves, got %d", frames)
	}
}

func TestPcmLevelBounds(t *testing.T) {
	if level := pcmLevel(nil); level != 0 {
		t.Fatalf("Expected zero level for empty input, got %f", level)
	}
	if level := pcmLevel(pcmWithAmplitude(256, 32767)); level > 1 {
		t.Fatalf("Expected level within [0, 1], got %f", level)
	}
}
