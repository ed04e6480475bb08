package live

import (
	"github.com/jinzhu/copier"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/tools"
)

type SessionOptions struct {
	// Model is the conversational model the session is opened against.
	Model string
	// Persona is the system prompt describing the companion's behavior.
	Persona string
	// Tools are the invokable tool declarations advertised at setup.
	Tools []tools.Declaration

	// TranscribeInput asks the service to transcribe user audio.
	TranscribeInput bool
	// TranscribeOutput asks the service to transcribe synthesized audio.
	TranscribeOutput bool

	ReadyCallback             func(sessionID string)
	PartialTranscriptCallback func(role Role, text string)
	TurnCompleteCallback      func()
	ToolCallCallback          func(call ToolCall)
	AudioFragmentCallback     func(pcm []byte)
	InterruptedCallback       func()
	ClosedCallback            func(code int, reason string)
}

type SessionOption func(*SessionOptions)

func WithModel(model string) SessionOption {
	return func(o *SessionOptions) {
		o.Model = model
	}
}

func WithPersona(persona string) SessionOption {
	return func(o *SessionOptions) {
		o.Persona = persona
	}
}

// WithTools snapshots the declarations so later mutation by the caller does
// not affect an already-open session.
func WithTools(declarations ...tools.Declaration) SessionOption {
	return func(o *SessionOptions) {
		snapshot := []tools.Declaration{}
		copier.Copy(&snapshot, declarations)
		o.Tools = snapshot
	}
}

func WithTranscription(input, output bool) SessionOption {
	return func(o *SessionOptions) {
		o.TranscribeInput = input
		o.TranscribeOutput = output
	}
}

func WithReadyCallback(callback func(sessionID string)) SessionOption {
	return func(o *SessionOptions) {
		o.ReadyCallback = callback
	}
}

func WithPartialTranscriptCallback(callback func(role Role, text string)) SessionOption {
	return func(o *SessionOptions) {
		o.PartialTranscriptCallback = callback
	}
}

func WithTurnCompleteCallback(callback func()) SessionOption {
	return func(o *SessionOptions) {
		o.TurnCompleteCallback = callback
	}
}

func WithToolCallCallback(callback func(call ToolCall)) SessionOption {
	return func(o *SessionOptions) {
		o.ToolCallCallback = callback
	}
}

func WithAudioFragmentCallback(callback func(pcm []byte)) SessionOption {
	return func(o *SessionOptions) {
		o.AudioFragmentCallback = callback
	}
}

func WithInterruptedCallback(callback func()) SessionOption {
	return func(o *SessionOptions) {
		o.InterruptedCallback = callback
	}
}

func WithClosedCallback(callback func(code int, reason string)) SessionOption {
	return func(o *SessionOptions) {
		o.ClosedCallback = callback
	}
}
