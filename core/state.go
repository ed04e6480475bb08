package engine

// InteractionState describes where the engine is in the conversational
// loop. It is the primary signal an avatar frontend animates against.
type InteractionState string

const (
	// StateIdle means no session exists. Nothing is captured or played.
	StateIdle InteractionState = "IDLE"
	// StateConnecting means a session opening or reconnection attempt
	// is in progress.
	StateConnecting InteractionState = "CONNECTING"
	// StateListening means the session is live and microphone audio is
	// streaming out, with no pending response.
	StateListening InteractionState = "LISTENING"
	// StateThinking means a text event was submitted and no audio has
	// come back for it yet.
	StateThinking InteractionState = "THINKING"
	// StateSpeaking means at least one audio fragment is in flight on
	// the playback timeline.
	StateSpeaking InteractionState = "SPEAKING"
	// StateError means the session was torn down by a failure that
	// exhausted the reconnection policy. An error report is available
	// until the engine is restarted.
	StateError InteractionState = "ERROR"
)

func (s InteractionState) String() string {
	return string(s)
}

// sessionLive reports whether audio and perception traffic may flow.
func (s InteractionState) sessionLive() bool {
	switch s {
	case StateListening, StateThinking, StateSpeaking:
		return true
	}
	return false
}

// Mood is the expressive colour an avatar renders alongside the
// interaction state. It changes through tool calls from the model and
// through perception events.
type Mood string

const (
	MoodNeutral Mood = "neutral"
	MoodHappy   Mood = "happy"
	MoodCurious Mood = "curious"
	MoodAlert   Mood = "alert"
	MoodExcited Mood = "excited"
	MoodSad     Mood = "sad"
	MoodSleepy  Mood = "sleepy"
)

// ParseMood maps a free-form mood label to a known Mood.
func ParseMood(label string) (Mood, bool) {
	switch Mood(label) {
	case MoodNeutral, MoodHappy, MoodCurious, MoodAlert, MoodExcited, MoodSad, MoodSleepy:
		return Mood(label), true
	}
	return MoodNeutral, false
}

// Severity grades an error report.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ErrorReport describes a failure surfaced to the frontend. Retryable
// reports can be cleared by restarting the engine.
type ErrorReport struct {
	Message   string
	Severity  Severity
	Retryable bool
}

// Signals is a point-in-time snapshot of everything an avatar needs to
// render a frame. It is safe to call Signals from any goroutine.
type Signals struct {
	State              InteractionState
	Mood               Mood
	Volume             float64
	IsSpeaking         bool
	IsCameraActive     bool
	LastPerceivedEvent string
}
