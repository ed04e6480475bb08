package engine

import (
	"context"
	"time"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/events"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/live"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/tools"
)

// AudioInput is the capture side of an audio device.
type AudioInput interface {
	// StartCapture begins delivering raw PCM chunks to onAudio until
	// StopCapture is called or the context is cancelled.
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

// AudioDevice is a full-duplex audio device owned by the engine.
type AudioDevice interface {
	AudioInput
	AudioOutput
	Close()
}

// SessionChannel is a bidirectional stream to the conversational
// service. Implementations deliver inbound traffic through the
// callbacks registered at Open time.
type SessionChannel interface {
	Open(ctx context.Context, opts ...live.SessionOption) error
	Send(frame live.OutboundFrame) error
	SendToolResponse(id string, name string, response map[string]any) error
	Close() error
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithAudioInput sets the capture device.
func WithAudioInput(input AudioInput) EngineOption {
	return func(e *Engine) {
		e.audioInput = input
	}
}

// WithAudioOutput sets the playback device.
func WithAudioOutput(output AudioOutput) EngineOption {
	return func(e *Engine) {
		e.audioOutput = output
	}
}

// WithAudioDevice sets a full-duplex device for both capture and
// playback.
func WithAudioDevice(device AudioDevice) EngineOption {
	return func(e *Engine) {
		e.audioInput = device
		e.audioOutput = device
	}
}

// WithCamera sets the camera frame source and how often frames are
// published while the camera is active.
func WithCamera(grabber FrameGrabber, interval time.Duration) EngineOption {
	return func(e *Engine) {
		e.grabber = grabber
		e.frameInterval = interval
	}
}

// WithSessionFactory overrides how session channels are constructed.
func WithSessionFactory(factory func() SessionChannel) EngineOption {
	return func(e *Engine) {
		if factory != nil {
			e.newChannel = factory
		}
	}
}

// WithModel overrides the conversational model.
func WithModel(model string) EngineOption {
	return func(e *Engine) {
		e.model = model
	}
}

// WithPersona overrides the system persona instructions.
func WithPersona(persona string) EngineOption {
	return func(e *Engine) {
		e.persona = persona
	}
}

// WithTools overrides the tool declarations offered to the model.
func WithTools(declarations []tools.Declaration) EngineOption {
	return func(e *Engine) {
		e.tools = declarations
	}
}

// WithBackoff tunes the reconnection policy.
func WithBackoff(base time.Duration, maxAttempts int) EngineOption {
	return func(e *Engine) {
		if base > 0 {
			e.backoff.base = base
		}
		if maxAttempts > 0 {
			e.backoff.maxAttempts = maxAttempts
		}
	}
}

type wakeOptions struct {
	onStateChanged      func(from InteractionState, to InteractionState)
	onMoodChanged       func(mood Mood)
	onVolume            func(level float64)
	onPartialTranscript func(role live.Role, segment string)
	onTranscriptEntry   func(role live.Role, text string)
	onError             func(report ErrorReport)
	onEvent             func(event events.Event)
}

// WakeOption registers a frontend callback for the lifetime of one
// session.
type WakeOption func(*wakeOptions)

// OnStateChanged fires on every interaction state transition.
func OnStateChanged(callback func(from InteractionState, to InteractionState)) WakeOption {
	return func(o *wakeOptions) {
		o.onStateChanged = callback
	}
}

// OnMoodChanged fires whenever the expressive mood changes.
func OnMoodChanged(callback func(mood Mood)) WakeOption {
	return func(o *wakeOptions) {
		o.onMoodChanged = callback
	}
}

// OnVolume fires with the current loudness level in [0, 1].
func OnVolume(callback func(level float64)) WakeOption {
	return func(o *wakeOptions) {
		o.onVolume = callback
	}
}

// OnPartialTranscript fires with each transcript segment as it
// arrives, before the turn is complete.
func OnPartialTranscript(callback func(role live.Role, segment string)) WakeOption {
	return func(o *wakeOptions) {
		o.onPartialTranscript = callback
	}
}

// OnTranscriptEntry fires with a finalized transcript entry once a
// turn completes.
func OnTranscriptEntry(callback func(role live.Role, text string)) WakeOption {
	return func(o *wakeOptions) {
		o.onTranscriptEntry = callback
	}
}

// OnError fires when the engine enters the error state.
func OnError(callback func(report ErrorReport)) WakeOption {
	return func(o *wakeOptions) {
		o.onError = callback
	}
}

// OnEvent receives every engine event, typed per the events package.
func OnEvent(callback func(event events.Event)) WakeOption {
	return func(o *wakeOptions) {
		o.onEvent = callback
	}
}
