// Package live defines the session channel contract between the engine and
// the remote conversational service: the outbound frame union, the inbound
// event callbacks, and the session options.
package live

// FrameKind tags the outbound frame union.
type FrameKind string

const (
	FrameKindAudio FrameKind = "audio"
	FrameKindImage FrameKind = "image"
	FrameKindText  FrameKind = "text"
)

const (
	MimePCM16k = "audio/pcm;rate=16000"
	MimeJPEG   = "image/jpeg"
	MimeText   = "text/plain"
)

// OutboundFrame is one unit of client-to-service traffic. Frames are
// best-effort: a frame that cannot be sent is dropped, never queued for
// retry.
type OutboundFrame struct {
	Kind     FrameKind
	MimeType string

	// Payload carries binary media for audio and image frames.
	Payload []byte
	// Text carries the body of text frames.
	Text string
}

// NewAudioChunk wraps one captured PCM16 frame for transmission.
func NewAudioChunk(pcm []byte) OutboundFrame {
	return OutboundFrame{Kind: FrameKindAudio, MimeType: MimePCM16k, Payload: pcm}
}

// NewImageFrame wraps one compressed camera still for transmission.
func NewImageFrame(jpeg []byte) OutboundFrame {
	return OutboundFrame{Kind: FrameKindImage, MimeType: MimeJPEG, Payload: jpeg}
}

// NewTextEvent wraps a plain text event for transmission.
func NewTextEvent(text string) OutboundFrame {
	return OutboundFrame{Kind: FrameKindText, MimeType: MimeText, Text: text}
}

// Role identifies a side of the conversation in transcripts.
type Role string

const (
	RoleUser  Role = "user"
	RoleRobot Role = "robot"
)

// ToolCall is one tool invocation received from the service. Every call
// must be answered with exactly one tool response, whatever the outcome.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}
