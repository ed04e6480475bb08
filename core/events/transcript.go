package events

const (
	// KindTranscriptSegment identifies a partial transcript piece.
	KindTranscriptSegment Kind = "transcript.segment"
	// KindTranscriptEntry identifies a finalized transcript line.
	KindTranscriptEntry Kind = "transcript.entry"
)

// TranscriptSegment carries a partial transcript piece for one side of the
// conversation, accumulated until the turn completes.
type TranscriptSegment struct {
	Base
	Role    string
	Segment string
}

// NewTranscriptSegment creates a transcript segment event.
func NewTranscriptSegment(role, segment string) TranscriptSegment {
	return TranscriptSegment{Base: NewBase(KindTranscriptSegment), Role: role, Segment: segment}
}

// TranscriptEntry carries one finalized transcript line flushed at a turn
// boundary.
type TranscriptEntry struct {
	Base
	Role string
	Text string
}

// NewTranscriptEntry creates a transcript entry event.
func NewTranscriptEntry(role, text string) TranscriptEntry {
	return TranscriptEntry{Base: NewBase(KindTranscriptEntry), Role: role, Text: text}
}
