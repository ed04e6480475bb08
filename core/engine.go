// Package engine drives a live companion session end to end: it
// captures and frames microphone audio, streams it to the remote
// conversational service, schedules response audio onto a gapless
// playback timeline, bridges camera perception into the conversation,
// and exposes the interaction state an avatar frontend animates.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/audio"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/events"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/live"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/live/gemini"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/tools"
)

// closeNormal is the websocket normal closure code. Any other close
// code triggers the reconnection policy.
const closeNormal = 1000

// liveSession is one wake-to-shutdown conversation. Reconnects after
// abnormal closes stay within the same liveSession, so its identity
// outlives individual websocket connections.
type liveSession struct {
	id      string
	channel SessionChannel
	// attempts counts consecutive failed connection attempts. It
	// resets to zero once the service confirms readiness.
	attempts int
	// audioThisTurn marks whether the current response turn produced
	// any audio, which decides where THINKING resolves to.
	audioThisTurn bool
}

// Engine is the live session engine. Construct it with NewEngine,
// start a session with WakeUp, and stop with Shutdown. All exported
// methods are safe for concurrent use.
type Engine struct {
	model   string
	persona string
	tools   []tools.Declaration

	audioInput    AudioInput
	audioOutput   AudioOutput
	grabber       FrameGrabber
	frameInterval time.Duration

	newChannel func() SessionChannel
	backoff    backoffPolicy

	sampler   *signalSampler
	scheduler *playbackScheduler
	turns     *turnAccumulator
	bridge    *perceptionBridge

	mu            sync.Mutex
	state         InteractionState
	mood          Mood
	volume        float64
	lastPerceived string
	cameraActive  bool
	deafened      bool
	report        *ErrorReport
	session       *liveSession
	opts          wakeOptions
	sessionCtx    context.Context
	cancelSession context.CancelFunc
}

// NewEngine builds an engine with the default model, persona, and
// tool declarations. Pass options to attach devices and override the
// defaults.
func NewEngine(opts ...EngineOption) *Engine {
	engine := &Engine{
		model:      DefaultModel,
		persona:    SparkyInstructions,
		tools:      tools.Defaults(),
		newChannel: func() SessionChannel { return gemini.NewClient() },
		backoff:    newBackoffPolicy(),
		state:      StateIdle,
		mood:       MoodNeutral,
	}
	for _, opt := range opts {
		opt(engine)
	}

	engine.sampler = newSignalSampler(engine.handleCaptureFrame)
	engine.scheduler = newPlaybackScheduler(engine.audioOutput, audio.GetPlaybackEncodingInfo())
	engine.scheduler.onSpeaking = engine.handlePlaybackStarted
	engine.scheduler.onDrained = engine.handlePlaybackDrained
	engine.scheduler.onLevel = engine.handlePlaybackLevel
	engine.turns = newTurnAccumulator(engine.handleTranscriptEntry)
	engine.bridge = newPerceptionBridge(engine.grabber, engine.frameInterval)
	engine.bridge.publish = engine.sendFrame
	engine.bridge.onPublished = func(byteCount int) {
		engine.emit(events.NewFramePublished(byteCount))
	}
	return engine
}

// WakeUp opens a session and starts the conversational loop. It
// returns once the connection attempt is underway; readiness and
// failures surface through the registered callbacks. Waking an engine
// that already has a session is an error, shut the prior one down
// first.
func (e *Engine) WakeUp(ctx context.Context, opts ...WakeOption) error {
	ctx, span := tracer.Start(ctx, "engine.wake_up")
	defer span.End()

	options := wakeOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return e.wake(ctx, options)
}

// Restart clears the error state and reopens a session with the
// callbacks registered at the last WakeUp.
func (e *Engine) Restart(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateError {
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("cannot restart from state %s", state)
	}
	options := e.opts
	e.mu.Unlock()

	return e.wake(ctx, options)
}

func (e *Engine) wake(ctx context.Context, options wakeOptions) error {
	e.mu.Lock()
	if e.state != StateIdle && e.state != StateError {
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("session already active in state %s", state)
	}
	e.opts = options
	e.report = nil
	if e.cancelSession != nil {
		e.cancelSession()
	}
	sessionCtx, cancel := context.WithCancel(ctx)
	e.sessionCtx = sessionCtx
	e.cancelSession = cancel
	sess := &liveSession{id: uuid.NewString()}
	e.session = sess
	e.mu.Unlock()

	e.transitionTo(StateConnecting)
	go e.connect(sessionCtx, sess)
	return nil
}

// Shutdown closes the session, releases the devices' attention, and
// returns the engine to idle. It is a no-op on an idle engine.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	sess := e.session
	cancel := e.cancelSession
	e.session = nil
	e.cancelSession = nil
	e.report = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.releaseSessionResources(sess)
	e.transitionTo(StateIdle)
}

// connect runs one connection attempt and schedules retries on
// failure per the backoff policy.
func (e *Engine) connect(ctx context.Context, sess *liveSession) {
	channel := e.newChannel()
	err := channel.Open(ctx, e.sessionOptions(sess)...)
	if err == nil {
		e.mu.Lock()
		if e.session != sess {
			e.mu.Unlock()
			channel.Close()
			return
		}
		sess.channel = channel
		e.mu.Unlock()
		return
	}
	channel.Close()

	if errors.Is(err, gemini.ErrMissingAPIKey) {
		e.fail(sess, ErrorReport{
			Message:   err.Error(),
			Severity:  SeverityCritical,
			Retryable: false,
		})
		return
	}
	e.retry(ctx, sess, err)
}

// retry waits out the backoff delay and reconnects, or fails the
// session when the attempt budget is spent.
func (e *Engine) retry(ctx context.Context, sess *liveSession, cause error) {
	e.mu.Lock()
	if e.session != sess {
		e.mu.Unlock()
		return
	}
	sess.attempts++
	attempts := sess.attempts
	e.mu.Unlock()

	if e.backoff.Exhausted(attempts) {
		e.fail(sess, ErrorReport{
			Message:   fmt.Sprintf("session connection failed after %d attempts: %v", attempts, cause),
			Severity:  SeverityCritical,
			Retryable: true,
		})
		return
	}

	delay := e.backoff.Delay(attempts - 1)
	logger.Warn("Session attempt failed, retrying",
		"attempt", attempts,
		"delay", delay.String(),
		"error", cause,
	)
	e.emit(events.NewSessionRetrying(attempts, delay))

	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}
	if !e.isCurrent(sess) {
		return
	}
	e.connect(ctx, sess)
}

func (e *Engine) sessionOptions(sess *liveSession) []live.SessionOption {
	return []live.SessionOption{
		live.WithModel(e.model),
		live.WithPersona(e.persona),
		live.WithTools(e.tools...),
		live.WithTranscription(true, true),
		live.WithReadyCallback(func(string) { e.handleReady(sess) }),
		live.WithPartialTranscriptCallback(func(role live.Role, text string) {
			e.handlePartialTranscript(sess, role, text)
		}),
		live.WithTurnCompleteCallback(func() { e.handleTurnComplete(sess) }),
		live.WithToolCallCallback(func(call live.ToolCall) { e.handleToolCall(sess, call) }),
		live.WithAudioFragmentCallback(func(pcm []byte) { e.handleAudioFragment(sess, pcm) }),
		live.WithInterruptedCallback(func() { e.handleInterrupted(sess) }),
		live.WithClosedCallback(func(code int, reason string) { e.handleClosed(sess, code, reason) }),
	}
}

func (e *Engine) handleReady(sess *liveSession) {
	e.mu.Lock()
	if e.session != sess {
		e.mu.Unlock()
		return
	}
	sess.attempts = 0
	ctx := e.sessionCtx
	cameraActive := e.cameraActive
	e.mu.Unlock()

	e.transitionTo(StateListening)
	e.emit(events.NewSessionOpened(sess.id))

	e.sampler.Reset()
	if e.audioInput != nil {
		if err := e.audioInput.StartCapture(ctx, e.sampler.OnDeviceAudio); err != nil {
			logger.Error("Failed to start audio capture", "error", err)
			e.fail(sess, ErrorReport{
				Message:   fmt.Sprintf("microphone unavailable: %v", err),
				Severity:  SeverityCritical,
				Retryable: false,
			})
			return
		}
	}
	if cameraActive {
		e.bridge.Start(ctx)
	}
}

// handleCaptureFrame receives each assembled microphone frame. A nil
// frame means muted: the level still resets but nothing is sent.
func (e *Engine) handleCaptureFrame(pcm []byte, level float64) {
	e.mu.Lock()
	state := e.state
	var channel SessionChannel
	if e.session != nil {
		channel = e.session.channel
	}
	e.mu.Unlock()

	if channel == nil || !state.sessionLive() {
		return
	}
	if state != StateSpeaking {
		e.setVolume(level)
	}
	if pcm == nil {
		return
	}
	if err := channel.Send(live.NewAudioChunk(pcm)); err != nil {
		logger.Warn("Failed to send audio chunk", "error", err)
	}
}

func (e *Engine) handlePartialTranscript(sess *liveSession, role live.Role, text string) {
	if !e.isCurrent(sess) {
		return
	}
	e.turns.Append(role, text)
	e.emit(events.NewTranscriptSegment(string(role), text))

	e.mu.Lock()
	callback := e.opts.onPartialTranscript
	e.mu.Unlock()
	if callback != nil {
		callback(role, text)
	}
}

func (e *Engine) handleTranscriptEntry(role live.Role, text string) {
	e.emit(events.NewTranscriptEntry(string(role), text))

	e.mu.Lock()
	callback := e.opts.onTranscriptEntry
	e.mu.Unlock()
	if callback != nil {
		callback(role, text)
	}
}

func (e *Engine) handleTurnComplete(sess *liveSession) {
	if !e.isCurrent(sess) {
		return
	}
	e.turns.Flush()

	e.mu.Lock()
	audioThisTurn := sess.audioThisTurn
	sess.audioThisTurn = false
	e.mu.Unlock()

	// A text-only response never reaches SPEAKING, so resolve
	// THINKING here.
	if !audioThisTurn {
		e.transitionFrom(StateThinking, StateListening)
	}
}

func (e *Engine) handleAudioFragment(sess *liveSession, pcm []byte) {
	e.mu.Lock()
	if e.session != sess {
		e.mu.Unlock()
		return
	}
	if e.deafened {
		e.mu.Unlock()
		return
	}
	sess.audioThisTurn = true
	e.mu.Unlock()

	e.scheduler.Enqueue(pcm)
}

func (e *Engine) handleToolCall(sess *liveSession, call live.ToolCall) {
	if !e.isCurrent(sess) {
		return
	}

	arguments, _ := json.Marshal(call.Args)
	e.emit(events.NewToolCallReceived(call.ID, call.Name, string(arguments)))

	response := map[string]any{"ok": true}
	switch call.Name {
	case tools.SetMoodName:
		label, _ := call.Args["mood"].(string)
		mood, known := ParseMood(label)
		if !known {
			logger.Warn("Ignoring unknown mood from tool call", "mood", label)
			response = map[string]any{"ok": false, "error": fmt.Sprintf("unknown mood %q", label)}
			break
		}
		e.setMood(mood)
	case tools.ExpressGestureName:
		gesture, _ := call.Args["gesture"].(string)
		e.setLastPerceived("gesture played: " + gesture)
	default:
		logger.Warn("Acknowledging unknown tool call", "name", call.Name)
		response = map[string]any{"ok": false, "error": fmt.Sprintf("unknown tool %q", call.Name)}
	}

	// The service blocks the conversation until every call is
	// answered, so even unknown tools are acknowledged exactly once.
	// A session torn down mid-dispatch has nothing left to answer.
	channel, ok := e.currentChannel(sess)
	if !ok {
		return
	}
	if err := channel.SendToolResponse(call.ID, call.Name, response); err != nil {
		logger.Error("Failed to acknowledge tool call", "id", call.ID, "error", err)
		return
	}
	e.emit(events.NewToolCallAcknowledged(call.ID, call.Name))
}

func (e *Engine) handleInterrupted(sess *liveSession) {
	if !e.isCurrent(sess) {
		return
	}
	discarded := e.scheduler.Interrupt()
	e.setVolume(0)
	e.transitionFrom(StateSpeaking, StateListening)
	e.emit(events.NewPlaybackInterrupted(discarded))
}

func (e *Engine) handleClosed(sess *liveSession, code int, reason string) {
	e.mu.Lock()
	if e.session != sess {
		e.mu.Unlock()
		return
	}
	ctx := e.sessionCtx
	e.mu.Unlock()

	e.emit(events.NewSessionClosed(code, reason))

	if code == closeNormal {
		e.mu.Lock()
		e.session = nil
		cancel := e.cancelSession
		e.cancelSession = nil
		e.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		e.releaseSessionResources(sess)
		e.transitionTo(StateIdle)
		return
	}

	logger.Warn("Session closed abnormally, reconnecting", "code", code, "reason", reason)
	e.suspendSessionTraffic(sess)
	e.transitionTo(StateConnecting)
	go e.retry(ctx, sess, fmt.Errorf("session closed with code %d: %s", code, reason))
}

func (e *Engine) handlePlaybackStarted() {
	e.transitionTo(StateSpeaking)
	e.emit(events.NewPlaybackStarted())
}

func (e *Engine) handlePlaybackDrained() {
	e.setVolume(0)
	e.transitionFrom(StateSpeaking, StateListening)
	e.emit(events.NewPlaybackEnded())
}

func (e *Engine) handlePlaybackLevel(level float64) {
	e.mu.Lock()
	speaking := e.state == StateSpeaking
	e.mu.Unlock()
	if speaking {
		e.setVolume(level)
	}
}

// sendFrame forwards an outbound frame into the current session.
func (e *Engine) sendFrame(frame live.OutboundFrame) error {
	e.mu.Lock()
	state := e.state
	var channel SessionChannel
	if e.session != nil {
		channel = e.session.channel
	}
	e.mu.Unlock()

	if channel == nil || !state.sessionLive() {
		return fmt.Errorf("no live session")
	}
	return channel.Send(frame)
}

// SendText submits a typed user message and moves the engine into
// THINKING until the response starts.
func (e *Engine) SendText(text string) error {
	if err := e.sendFrame(live.NewTextEvent(text)); err != nil {
		return err
	}
	e.transitionFrom(StateListening, StateThinking)
	return nil
}

// PerceiveGesture reports a recognized user gesture. It colours the
// mood immediately and tells the model what the camera saw.
func (e *Engine) PerceiveGesture(label string) {
	e.setLastPerceived("gesture: " + label)
	e.setMood(MoodExcited)
	e.emit(events.NewGesturePerceived(label))

	if err := e.sendFrame(live.NewTextEvent(describeGesture(label))); err != nil {
		logger.Warn("Failed to forward gesture perception", "error", err)
	}
}

// PerceiveFaces reports detected faces. An empty detection is
// ignored.
func (e *Engine) PerceiveFaces(boxes []FaceBox) {
	if len(boxes) == 0 {
		return
	}
	e.setLastPerceived(fmt.Sprintf("faces: %d", len(boxes)))
	e.setMood(MoodCurious)
	e.emit(events.NewFacesPerceived(len(boxes)))

	if err := e.sendFrame(live.NewTextEvent(describeFaces(len(boxes)))); err != nil {
		logger.Warn("Failed to forward face perception", "error", err)
	}
}

// SetMuted stops microphone frames from leaving the process. Capture
// keeps running so unmuting is instant.
func (e *Engine) SetMuted(muted bool) {
	e.sampler.SetMuted(muted)
	if muted {
		e.mu.Lock()
		speaking := e.state == StateSpeaking
		e.mu.Unlock()
		if !speaking {
			e.setVolume(0)
		}
	}
}

func (e *Engine) Muted() bool {
	return e.sampler.IsMuted()
}

// SetDeafened drops incoming response audio. Enabling it also
// silences anything already scheduled.
func (e *Engine) SetDeafened(deafened bool) {
	e.mu.Lock()
	e.deafened = deafened
	e.mu.Unlock()

	if !deafened {
		return
	}
	discarded := e.scheduler.Interrupt()
	e.setVolume(0)
	e.transitionFrom(StateSpeaking, StateListening)
	if discarded > 0 {
		e.emit(events.NewPlaybackInterrupted(discarded))
	}
}

func (e *Engine) Deafened() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deafened
}

// SetCameraActive toggles periodic camera frame publishing. The
// toggle is remembered across sessions; the bridge only runs while a
// session is live.
func (e *Engine) SetCameraActive(active bool) {
	e.mu.Lock()
	e.cameraActive = active
	sessionLive := e.state.sessionLive()
	ctx := e.sessionCtx
	e.mu.Unlock()

	if !active {
		e.bridge.Stop()
		return
	}
	if sessionLive && ctx != nil {
		e.bridge.Start(ctx)
	}
}

func (e *Engine) CameraActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cameraActive
}

// State returns the current interaction state.
func (e *Engine) State() InteractionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// DismissError acknowledges the active error report and returns the
// engine to idle. It is a no-op outside the error state.
func (e *Engine) DismissError() {
	e.mu.Lock()
	if e.state != StateError {
		e.mu.Unlock()
		return
	}
	e.report = nil
	e.mu.Unlock()

	e.transitionTo(StateIdle)
}

// LastError returns the report that put the engine into the error
// state, or nil.
func (e *Engine) LastError() *ErrorReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.report == nil {
		return nil
	}
	report := *e.report
	return &report
}

// Signals snapshots everything an avatar frontend needs to render.
func (e *Engine) Signals() Signals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Signals{
		State:              e.state,
		Mood:               e.mood,
		Volume:             e.volume,
		IsSpeaking:         e.state == StateSpeaking,
		IsCameraActive:     e.cameraActive && e.bridge.Running(),
		LastPerceivedEvent: e.lastPerceived,
	}
}

// fail tears the session down into the error state.
func (e *Engine) fail(sess *liveSession, report ErrorReport) {
	e.mu.Lock()
	if e.session != sess {
		e.mu.Unlock()
		return
	}
	e.session = nil
	e.report = &report
	cancel := e.cancelSession
	e.cancelSession = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.releaseSessionResources(sess)
	e.transitionTo(StateError)
	e.emit(events.NewSessionFailed(report.Message))
	e.notifyError(report)
}

// suspendSessionTraffic quiesces audio and perception between an
// abnormal close and the reconnect that follows.
func (e *Engine) suspendSessionTraffic(sess *liveSession) {
	e.bridge.Stop()
	if e.audioInput != nil {
		if err := e.audioInput.StopCapture(); err != nil {
			logger.Warn("Failed to stop audio capture", "error", err)
		}
	}
	e.scheduler.Interrupt()
	e.turns.Reset()
	e.sampler.Reset()
	e.setVolume(0)

	e.mu.Lock()
	channel := sess.channel
	sess.channel = nil
	e.mu.Unlock()
	if channel != nil {
		channel.Close()
	}
}

func (e *Engine) releaseSessionResources(sess *liveSession) {
	e.bridge.Stop()
	if e.audioInput != nil {
		if err := e.audioInput.StopCapture(); err != nil {
			logger.Warn("Failed to stop audio capture", "error", err)
		}
	}
	e.scheduler.Interrupt()
	e.turns.Reset()
	e.sampler.Reset()
	e.setVolume(0)

	if sess == nil {
		return
	}
	e.mu.Lock()
	channel := sess.channel
	sess.channel = nil
	e.mu.Unlock()
	if channel != nil {
		channel.Close()
	}
}

func (e *Engine) isCurrent(sess *liveSession) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session == sess
}

// currentChannel snapshots the channel of the given session under the
// lock. It reports false when the session was superseded or torn down,
// so late completions fall away instead of touching a nil channel.
func (e *Engine) currentChannel(sess *liveSession) (SessionChannel, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != sess || sess.channel == nil {
		return nil, false
	}
	return sess.channel, true
}

// transitionTo moves to the given state unconditionally and notifies
// listeners of the change.
func (e *Engine) transitionTo(to InteractionState) {
	e.mu.Lock()
	from := e.state
	if from == to {
		e.mu.Unlock()
		return
	}
	e.state = to
	callback := e.opts.onStateChanged
	e.mu.Unlock()

	logger.Debug("Interaction state changed", "from", from.String(), "to", to.String())
	if callback != nil {
		callback(from, to)
	}
	e.emit(events.NewStateChanged(from.String(), to.String()))
}

// transitionFrom moves to the target state only when the engine is in
// the expected state, and reports whether it did.
func (e *Engine) transitionFrom(from, to InteractionState) bool {
	e.mu.Lock()
	if e.state != from {
		e.mu.Unlock()
		return false
	}
	e.state = to
	callback := e.opts.onStateChanged
	e.mu.Unlock()

	logger.Debug("Interaction state changed", "from", from.String(), "to", to.String())
	if callback != nil {
		callback(from, to)
	}
	e.emit(events.NewStateChanged(from.String(), to.String()))
	return true
}

func (e *Engine) setVolume(level float64) {
	e.mu.Lock()
	if e.volume == level {
		e.mu.Unlock()
		return
	}
	e.volume = level
	callback := e.opts.onVolume
	e.mu.Unlock()

	if callback != nil {
		callback(level)
	}
}

func (e *Engine) setMood(mood Mood) {
	e.mu.Lock()
	if e.mood == mood {
		e.mu.Unlock()
		return
	}
	e.mood = mood
	callback := e.opts.onMoodChanged
	e.mu.Unlock()

	if callback != nil {
		callback(mood)
	}
	e.emit(events.NewMoodChanged(string(mood)))
}

func (e *Engine) setLastPerceived(description string) {
	e.mu.Lock()
	e.lastPerceived = description
	e.mu.Unlock()
}

func (e *Engine) notifyError(report ErrorReport) {
	e.mu.Lock()
	callback := e.opts.onError
	e.mu.Unlock()
	if callback != nil {
		callback(report)
	}
}

func (e *Engine) emit(event events.Event) {
	e.mu.Lock()
	callback := e.opts.onEvent
	e.mu.Unlock()
	if callback != nil {
		callback(event)
	}
}
