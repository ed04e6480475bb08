package audio

import "time"

const (
	// CaptureSampleRate is the rate the remote service expects for
	// microphone audio.
	CaptureSampleRate = 16000
	// PlaybackSampleRate is the rate the remote service synthesizes
	// speech at.
	PlaybackSampleRate = 24000

	DefaultFormat = "linear16"
)

func GetCaptureEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: CaptureSampleRate, Format: encodingFormat(DefaultFormat)}
}

func GetPlaybackEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: PlaybackSampleRate, Format: encodingFormat(DefaultFormat)}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case encodingFormat("alaw"):
		return 0x55
	case encodingFormat("mulaw"):
		return 0xFF
	case encodingFormat("linear16"):
		return 0
	}

	return 0
}

// BytesPerSecond returns the wire byte rate for mono audio in this encoding.
func (e EncodingInfo) BytesPerSecond() int {
	return e.SampleRate * e.Format.ByteSize()
}

// Duration returns how long a mono byte buffer plays for in this encoding.
func (e EncodingInfo) Duration(byteLen int) time.Duration {
	bps := e.BytesPerSecond()
	if bps <= 0 {
		return 0
	}

	return time.Duration(byteLen) * time.Second / time.Duration(bps)
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case encodingFormat("mulaw"), encodingFormat("alaw"):
		return 1
	case encodingFormat("linear16"):
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
