package gemini

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/live"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/tools"
)

func newTestClient(opts ...live.SessionOption) *Client {
	client := NewClient()
	options := live.SessionOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	client.options = options
	return client
}

func TestProcessMessageReportsReadyExactlyOnce(t *testing.T) {
	readyCalls := 0
	client := newTestClient(live.WithReadyCallback(func(string) { readyCalls++ }))

	client.processMessage([]byte(`{"setupComplete":{}}`))
	client.processMessage([]byte(`{"setupComplete":{}}`))

	if readyCalls != 1 {
		t.Fatalf("expected ready callback exactly once, got %d", readyCalls)
	}
	if !client.IsReady() {
		t.Fatalf("expected client to be ready after setup confirmation")
	}
}

func TestProcessMessageDispatchesTranscriptsInOrder(t *testing.T) {
	type segment struct {
		role live.Role
		text string
	}
	segments := []segment{}
	client := newTestClient(live.WithPartialTranscriptCallback(func(role live.Role, text string) {
		segments = append(segments, segment{role: role, text: text})
	}))

	client.processMessage([]byte(`{"serverContent":{"inputTranscription":{"text":"Hi "}}}`))
	client.processMessage([]byte(`{"serverContent":{"inputTranscription":{"text":"Sparky"}}}`))
	client.processMessage([]byte(`{"serverContent":{"outputTranscription":{"text":"Hello"}}}`))

	expected := []segment{
		{role: live.RoleUser, text: "Hi "},
		{role: live.RoleUser, text: "Sparky"},
		{role: live.RoleRobot, text: "Hello"},
	}
	if len(segments) != len(expected) {
		t.Fatalf("expected %d segments, got %d", len(expected), len(segments))
	}
	for i := range expected {
		if segments[i] != expected[i] {
			t.Fatalf("expected segment %d to be %+v, got %+v", i, expected[i], segments[i])
		}
	}
}

func TestProcessMessageDecodesInlineAudio(t *testing.T) {
	fragments := [][]byte{}
	client := newTestClient(live.WithAudioFragmentCallback(func(pcm []byte) {
		fragments = append(fragments, pcm)
	}))

	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	encoded := base64.StdEncoding.EncodeToString(pcm)
	client.processMessage([]byte(`{"serverContent":{"modelTurn":{"parts":[{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":"` + encoded + `"}}]}}}`))

	if len(fragments) != 1 {
		t.Fatalf("expected one decoded fragment, got %d", len(fragments))
	}
	if string(fragments[0]) != string(pcm) {
		t.Fatalf("expected fragment bytes %v, got %v", pcm, fragments[0])
	}
}

func TestProcessMessageDropsUndecodableAudio(t *testing.T) {
	fragments := 0
	client := newTestClient(live.WithAudioFragmentCallback(func([]byte) { fragments++ }))

	client.processMessage([]byte(`{"serverContent":{"modelTurn":{"parts":[{"inlineData":{"mimeType":"audio/pcm;rate=24000","data":"not-base64!!"}}]}}}`))

	if fragments != 0 {
		t.Fatalf("expected undecodable fragment to be dropped, got %d fragments", fragments)
	}
}

func TestProcessMessageForwardsInterruptionBeforeAnythingElse(t *testing.T) {
	interrupted := 0
	turnCompletes := 0
	client := newTestClient(
		live.WithInterruptedCallback(func() { interrupted++ }),
		live.WithTurnCompleteCallback(func() { turnCompletes++ }),
	)

	client.processMessage([]byte(`{"serverContent":{"interrupted":true}}`))
	client.processMessage([]byte(`{"serverContent":{"turnComplete":true}}`))

	if interrupted != 1 {
		t.Fatalf("expected one interruption callback, got %d", interrupted)
	}
	if turnCompletes != 1 {
		t.Fatalf("expected one turn complete callback, got %d", turnCompletes)
	}
}

func TestProcessMessageDispatchesToolCalls(t *testing.T) {
	calls := []live.ToolCall{}
	client := newTestClient(live.WithToolCallCallback(func(call live.ToolCall) {
		calls = append(calls, call)
	}))

	client.processMessage([]byte(`{"toolCall":{"functionCalls":[{"id":"call-1","name":"set_mood","args":{"mood":"happy"}}]}}`))

	if len(calls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(calls))
	}
	if calls[0].ID != "call-1" || calls[0].Name != "set_mood" {
		t.Fatalf("expected call-1/set_mood, got %s/%s", calls[0].ID, calls[0].Name)
	}
	if got := calls[0].Args["mood"]; got != "happy" {
		t.Fatalf("expected mood argument %q, got %v", "happy", got)
	}
}

func TestNewSetupMessageCarriesSessionBehavior(t *testing.T) {
	options := live.SessionOptions{Model: DefaultModel, TranscribeInput: true, TranscribeOutput: true}
	live.WithPersona("You are Sparky.")(&options)
	live.WithTools(tools.Defaults()...)(&options)

	msg := newSetupMessage(options)

	if msg.Setup.Model != DefaultModel {
		t.Fatalf("expected model %q, got %q", DefaultModel, msg.Setup.Model)
	}
	if msg.Setup.SystemInstruction == nil || msg.Setup.SystemInstruction.Parts[0].Text != "You are Sparky." {
		t.Fatalf("expected system instruction to carry the persona")
	}
	if len(msg.Setup.Tools) != 1 || len(msg.Setup.Tools[0].FunctionDeclarations) != 2 {
		t.Fatalf("expected one tool block with two declarations, got %+v", msg.Setup.Tools)
	}
	if msg.Setup.InputAudioTranscription == nil || msg.Setup.OutputAudioTranscription == nil {
		t.Fatalf("expected transcription to be enabled for both directions")
	}
	if got := msg.Setup.GenerationConfig.ResponseModalities; len(got) != 1 || got[0] != "AUDIO" {
		t.Fatalf("expected audio response modality, got %v", got)
	}

	if _, err := json.Marshal(msg); err != nil {
		t.Fatalf("expected setup message to marshal, got error: %v", err)
	}
}
