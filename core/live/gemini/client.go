package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/codes"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/live"
	"github.com/robinjove/Sparky-AI-Companion-Robot/internal/utils"
)

const (
	// DefaultModel is the conversational model a session is opened against
	// unless configured otherwise.
	DefaultModel = "models/gemini-2.0-flash-live-001"

	liveEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
)

// ErrMissingAPIKey indicates missing credentials; the engine treats it as a
// configuration error that must not trigger automatic retry.
var ErrMissingAPIKey = errors.New("gemini api key not found")

// Client owns one websocket connection to the live conversational service.
// A client serves at most one session; open a fresh client per attempt.
type Client struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	sessionID string
	options   live.SessionOptions

	audioQueue   chan []byte
	textQueue    chan string
	controlQueue chan any

	imageMu     sync.Mutex
	latestImage []byte
	imageSignal chan struct{}

	ready      atomic.Bool
	closed     atomic.Bool
	closeOnce  sync.Once
	reportOnce sync.Once
	done       chan struct{}
}

func NewClient() *Client {
	return &Client{
		audioQueue:   make(chan []byte, 32),
		textQueue:    make(chan string, 8),
		controlQueue: make(chan any, 64),
		imageSignal:  make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

// Open dials the service and sends the session setup. It returns once the
// transport is established; readiness is reported asynchronously through
// the ready callback when the service confirms the setup.
func (c *Client) Open(ctx context.Context, opts ...live.SessionOption) error {
	ctx, span := tracer.Start(ctx, "open live session")
	defer span.End()

	options := live.SessionOptions{
		Model:            DefaultModel,
		TranscribeInput:  true,
		TranscribeOutput: true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	c.options = options

	apiKey, ok := os.LookupEnv("GEMINI_API_KEY")
	if !ok {
		return ErrMissingAPIKey
	}

	endpoint, _ := url.Parse(liveEndpoint)
	query := endpoint.Query()
	query.Set("key", apiKey)
	endpoint.RawQuery = query.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		err = fmt.Errorf("failed to open socket connection to live service: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	c.conn = conn
	c.sessionID = uuid.NewString()

	if err := c.writeJSON(newSetupMessage(options)); err != nil {
		conn.Close()
		err = fmt.Errorf("failed to send session setup: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	go c.readAndProcessMessages(conn)
	go c.writeQueuedFrames()

	return nil
}

func newSetupMessage(options live.SessionOptions) setupMessage {
	payload := setupPayload{
		Model:            options.Model,
		GenerationConfig: &generationConfig{ResponseModalities: []string{"AUDIO"}},
	}
	if options.Persona != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: options.Persona}}}
	}
	if len(options.Tools) > 0 {
		declarations := make([]functionDeclaration, 0, len(options.Tools))
		for _, tool := range options.Tools {
			declarations = append(declarations, functionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			})
		}
		payload.Tools = []toolDeclaration{{FunctionDeclarations: declarations}}
	}
	if options.TranscribeInput {
		payload.InputAudioTranscription = utils.Ptr(struct{}{})
	}
	if options.TranscribeOutput {
		payload.OutputAudioTranscription = utils.Ptr(struct{}{})
	}

	return setupMessage{Setup: payload}
}

func (c *Client) SessionID() string { return c.sessionID }
func (c *Client) IsReady() bool     { return c.ready.Load() }

// Send submits one outbound frame, best-effort. It never blocks: audio
// frames that find the writer backed up are dropped, a pending camera frame
// is superseded by a newer one, and frames sent before the service confirms
// the setup are silently discarded.
func (c *Client) Send(frame live.OutboundFrame) error {
	if c.closed.Load() {
		return fmt.Errorf("session channel is closed")
	}
	if !c.ready.Load() {
		return nil
	}

	switch frame.Kind {
	case live.FrameKindAudio:
		select {
		case c.audioQueue <- frame.Payload:
		default:
			logger.Warn("Dropping outbound audio frame, writer backed up")
		}
	case live.FrameKindImage:
		c.imageMu.Lock()
		c.latestImage = frame.Payload
		c.imageMu.Unlock()
		select {
		case c.imageSignal <- struct{}{}:
		default:
		}
	case live.FrameKindText:
		select {
		case c.textQueue <- frame.Text:
		default:
			logger.Warn("Dropping outbound text event, writer backed up")
		}
	default:
		return fmt.Errorf("unknown outbound frame kind %q", frame.Kind)
	}

	return nil
}

// SendToolResponse answers one tool call. Every received call must be
// answered exactly once or the service stalls the turn.
func (c *Client) SendToolResponse(id, name string, response map[string]any) error {
	if c.closed.Load() {
		return fmt.Errorf("session channel is closed")
	}

	msg := toolResponseMessage{ToolResponse: toolResponse{
		FunctionResponses: []functionResponse{{ID: id, Name: name, Response: response}},
	}}

	select {
	case c.controlQueue <- msg:
		return nil
	default:
		return fmt.Errorf("control queue full, tool response dropped")
	}
}

func (c *Client) writeQueuedFrames() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.controlQueue:
			c.writeQueued(msg)
		case pcm := <-c.audioQueue:
			c.writeQueued(realtimeInputMessage{RealtimeInput: realtimeInput{
				MediaChunks: []blob{{MimeType: live.MimePCM16k, Data: base64.StdEncoding.EncodeToString(pcm)}},
			}})
		case <-c.imageSignal:
			c.imageMu.Lock()
			image := c.latestImage
			c.latestImage = nil
			c.imageMu.Unlock()
			if image == nil {
				continue
			}
			c.writeQueued(realtimeInputMessage{RealtimeInput: realtimeInput{
				MediaChunks: []blob{{MimeType: live.MimeJPEG, Data: base64.StdEncoding.EncodeToString(image)}},
			}})
		case text := <-c.textQueue:
			c.writeQueued(clientContentMessage{ClientContent: clientContent{
				Turns:        []content{{Role: "user", Parts: []part{{Text: text}}}},
				TurnComplete: true,
			}})
		}
	}
}

func (c *Client) writeQueued(msg any) {
	if err := c.writeJSON(msg); err != nil {
		logger.Warn("Failed to write to live service", "error", err)
	}
}

func (c *Client) writeJSON(msg any) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("connection not established")
	}
	return c.conn.WriteJSON(msg)
}

func (c *Client) readAndProcessMessages(conn *websocket.Conn) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			c.reportClosed(err)
			conn.Close()
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}

		// Processed synchronously so inbound events keep arrival order.
		c.processMessage(msg)
	}
}

func (c *Client) processMessage(raw []byte) {
	parsed, err := parseServerMessage(raw)
	if err != nil {
		logger.Warn("Failed to parse live service message", "error", err)
		return
	}

	switch {
	case parsed.SetupComplete != nil:
		if c.ready.CompareAndSwap(false, true) {
			if c.options.ReadyCallback != nil {
				c.options.ReadyCallback(c.sessionID)
			}
		}

	case parsed.ServerContent != nil:
		c.processServerContent(parsed.ServerContent)

	case parsed.ToolCall != nil:
		for _, call := range parsed.ToolCall.FunctionCalls {
			if c.options.ToolCallCallback != nil {
				c.options.ToolCallCallback(live.ToolCall{ID: call.ID, Name: call.Name, Args: call.Args})
			}
		}

	case parsed.GoAway != nil:
		logger.Info("Live service announced disconnect", "timeLeft", parsed.GoAway.TimeLeft)
	}
}

func (c *Client) processServerContent(serverContent *serverContent) {
	if serverContent.Interrupted {
		if c.options.InterruptedCallback != nil {
			c.options.InterruptedCallback()
		}
		return
	}

	if serverContent.InputTranscription != nil && serverContent.InputTranscription.Text != "" {
		if c.options.PartialTranscriptCallback != nil {
			c.options.PartialTranscriptCallback(live.RoleUser, serverContent.InputTranscription.Text)
		}
	}
	if serverContent.OutputTranscription != nil && serverContent.OutputTranscription.Text != "" {
		if c.options.PartialTranscriptCallback != nil {
			c.options.PartialTranscriptCallback(live.RoleRobot, serverContent.OutputTranscription.Text)
		}
	}

	if serverContent.ModelTurn != nil {
		for _, turnPart := range serverContent.ModelTurn.Parts {
			if turnPart.Text != "" && c.options.PartialTranscriptCallback != nil {
				c.options.PartialTranscriptCallback(live.RoleRobot, turnPart.Text)
			}
			if turnPart.InlineData == nil {
				continue
			}

			pcm, err := base64.StdEncoding.DecodeString(turnPart.InlineData.Data)
			if err != nil {
				// Local recovery: one bad fragment never affects the session.
				logger.Warn("Failed to decode inbound audio fragment", "error", err)
				continue
			}
			if c.options.AudioFragmentCallback != nil {
				c.options.AudioFragmentCallback(pcm)
			}
		}
	}

	if serverContent.TurnComplete {
		if c.options.TurnCompleteCallback != nil {
			c.options.TurnCompleteCallback()
		}
	}
}

func (c *Client) reportClosed(err error) {
	c.reportOnce.Do(func() {
		code := websocket.CloseAbnormalClosure
		reason := ""
		if err != nil {
			reason = err.Error()
		}

		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			code = closeErr.Code
			reason = closeErr.Text
		} else if c.closed.Load() {
			code = websocket.CloseNormalClosure
			reason = "client closed"
		}

		if c.options.ClosedCallback != nil {
			c.options.ClosedCallback(code, reason)
		}
	})
}

// Close releases the transport. It is idempotent and safe to call on a
// client that never finished opening.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)

		c.connMu.Lock()
		if c.conn != nil {
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			c.conn.Close()
		}
		c.connMu.Unlock()
	})
	return nil
}
