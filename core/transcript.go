package engine

import (
	"strings"
	"sync"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/live"
)

// turnAccumulator collects partial transcript segments per speaker and
// flushes them into whole entries when the model signals the end of a
// turn. Segments concatenate verbatim, the service already includes
// any separating whitespace.
type turnAccumulator struct {
	mu    sync.Mutex
	user  strings.Builder
	robot strings.Builder

	onEntry func(role live.Role, text string)
}

func newTurnAccumulator(onEntry func(role live.Role, text string)) *turnAccumulator {
	return &turnAccumulator{onEntry: onEntry}
}

func (t *turnAccumulator) Append(role live.Role, segment string) {
	if segment == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	switch role {
	case live.RoleUser:
		t.user.WriteString(segment)
	case live.RoleRobot:
		t.robot.WriteString(segment)
	}
}

// Flush emits one finalized entry per speaker that accumulated text
// this turn, user side first, and resets for the next turn.
func (t *turnAccumulator) Flush() {
	t.mu.Lock()
	user := t.user.String()
	robot := t.robot.String()
	t.user.Reset()
	t.robot.Reset()
	t.mu.Unlock()

	if user != "" && t.onEntry != nil {
		t.onEntry(live.RoleUser, user)
	}
	if robot != "" && t.onEntry != nil {
		t.onEntry(live.RoleRobot, robot)
	}
}

// Reset discards any partial segments without emitting entries.
func (t *turnAccumulator) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.user.Reset()
	t.robot.Reset()
}
