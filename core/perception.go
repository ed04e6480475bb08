package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/live"
)

const defaultFrameInterval = time.Second

// FrameGrabber produces a single encoded camera frame per call.
type FrameGrabber interface {
	Grab(ctx context.Context) ([]byte, error)
}

// FaceBox is a detected face region in frame pixel coordinates.
type FaceBox struct {
	X, Y, Width, Height int
}

// perceptionBridge periodically grabs camera frames and forwards them
// into the session as image chunks. Frame publishing is best effort:
// a failed grab is logged and the tick is skipped, and the session
// channel supersedes frames the network cannot keep up with.
type perceptionBridge struct {
	grabber  FrameGrabber
	interval time.Duration

	// publish forwards a frame into the current session.
	publish func(frame live.OutboundFrame) error
	// onPublished fires after a frame was accepted for sending.
	onPublished func(byteCount int)

	mu   sync.Mutex
	stop chan struct{}
}

func newPerceptionBridge(grabber FrameGrabber, interval time.Duration) *perceptionBridge {
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	return &perceptionBridge{grabber: grabber, interval: interval}
}

// Start begins the frame tick loop. Starting an already running bridge
// is a no-op.
func (b *perceptionBridge) Start(ctx context.Context) {
	if b.grabber == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		return
	}
	stop := make(chan struct{})
	b.stop = stop
	go b.run(ctx, stop)
}

// Stop halts the frame tick loop. Stopping a stopped bridge is a
// no-op.
func (b *perceptionBridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop == nil {
		return
	}
	close(b.stop)
	b.stop = nil
}

func (b *perceptionBridge) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stop != nil
}

func (b *perceptionBridge) run(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.publishFrame(ctx)
		}
	}
}

func (b *perceptionBridge) publishFrame(ctx context.Context) {
	grabCtx, cancel := context.WithTimeout(ctx, b.interval)
	defer cancel()

	frame, err := b.grabber.Grab(grabCtx)
	if err != nil {
		logger.Warn("Failed to grab camera frame", "error", err)
		return
	}

	if err := b.publish(live.NewImageFrame(frame)); err != nil {
		logger.Warn("Failed to publish camera frame", "error", err)
		return
	}
	if b.onPublished != nil {
		b.onPublished(len(frame))
	}
}

// describeGesture phrases a perceived gesture as an observation the
// model can react to in character.
func describeGesture(label string) string {
	return fmt.Sprintf("[Camera perception: the user just made a %q gesture. React naturally if it warrants a reaction.]", label)
}

// describeFaces phrases a face detection result the same way.
func describeFaces(count int) string {
	if count == 1 {
		return "[Camera perception: one face is visible in front of you.]"
	}
	return fmt.Sprintf("[Camera perception: %d faces are visible in front of you.]", count)
}
