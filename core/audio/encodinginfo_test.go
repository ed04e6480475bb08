package audio

import (
	"testing"
	"time"
)

func TestDurationForPlaybackEncoding(t *testing.T) {
	encoding := GetPlaybackEncodingInfo()

	// One second of 24kHz mono PCM16 is 48000 bytes.
	if got := encoding.Duration(48000); got != time.Second {
		t.Fatalf("expected 48000 bytes to last one second, got %v", got)
	}
	if got := encoding.Duration(24000); got != 500*time.Millisecond {
		t.Fatalf("expected 24000 bytes to last 500ms, got %v", got)
	}
	if got := encoding.Duration(0); got != 0 {
		t.Fatalf("expected empty buffer to last 0, got %v", got)
	}
}

func TestDurationWithUnknownFormatIsZero(t *testing.T) {
	encoding := EncodingInfo{SampleRate: 16000, Format: encodingFormat("opus")}

	if got := encoding.Duration(16000); got != 0 {
		t.Fatalf("expected unknown format duration to be 0, got %v", got)
	}
}

func TestCaptureAndPlaybackRatesDiffer(t *testing.T) {
	capture := GetCaptureEncodingInfo()
	playback := GetPlaybackEncodingInfo()

	if capture.SampleRate != 16000 {
		t.Fatalf("expected capture rate 16000, got %d", capture.SampleRate)
	}
	if playback.SampleRate != 24000 {
		t.Fatalf("expected playback rate 24000, got %d", playback.SampleRate)
	}
	if capture.IsZero() || playback.IsZero() {
		t.Fatalf("expected default encodings to be fully specified")
	}
}
