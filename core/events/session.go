package events

import "time"

const (
	// KindSessionOpened identifies channel readiness.
	KindSessionOpened Kind = "session.opened"
	// KindSessionRetrying identifies a scheduled reconnection attempt.
	KindSessionRetrying Kind = "session.retrying"
	// KindSessionClosed identifies channel closure.
	KindSessionClosed Kind = "session.closed"
	// KindSessionFailed identifies fatal session failure.
	KindSessionFailed Kind = "session.failed"
)

// SessionOpened marks the channel becoming ready for streaming.
type SessionOpened struct {
	Base
	SessionID string
}

// NewSessionOpened creates a session opened event.
func NewSessionOpened(sessionID string) SessionOpened {
	return SessionOpened{Base: NewBase(KindSessionOpened), SessionID: sessionID}
}

// SessionRetrying marks one more reconnection attempt being scheduled.
type SessionRetrying struct {
	Base
	Attempt int
	Delay   time.Duration
}

// NewSessionRetrying creates a session retrying event.
func NewSessionRetrying(attempt int, delay time.Duration) SessionRetrying {
	return SessionRetrying{Base: NewBase(KindSessionRetrying), Attempt: attempt, Delay: delay}
}

// SessionClosed marks channel closure.
type SessionClosed struct {
	Base
	Code   int
	Reason string
}

// NewSessionClosed creates a session closed event.
func NewSessionClosed(code int, reason string) SessionClosed {
	return SessionClosed{Base: NewBase(KindSessionClosed), Code: code, Reason: reason}
}

// SessionFailed marks a fatal, non-recovered session failure.
type SessionFailed struct {
	Base
	Message string
}

// NewSessionFailed creates a session failed event.
func NewSessionFailed(message string) SessionFailed {
	return SessionFailed{Base: NewBase(KindSessionFailed), Message: message}
}
