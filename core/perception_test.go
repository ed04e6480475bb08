package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/live"
)

type stubGrabber struct {
	grabs atomic.Int32
	err   error
}

func (s *stubGrabber) Grab(ctx context.Context) ([]byte, error) {
	s.grabs.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []byte{0xFF, 0xD8, 0xFF}, nil
}

func TestPerceptionBridgePublishesFramesOnTicks(t *testing.T) {
	grabber := &stubGrabber{}
	bridge := newPerceptionBridge(grabber, 5*time.Millisecond)

	var published atomic.Int32
	bridge.publish = func(frame live.OutboundFrame) error {
		if frame.Kind != live.FrameKindImage {
			t.Errorf("Expected image frame, got %s", frame.Kind)
		}
		published.Add(1)
		return nil
	}

	bridge.Start(context.Background())
	defer bridge.Stop()

	waitFor(t, "published frames", func() bool { return published.Load() >= 2 })
}

func TestPerceptionBridgeStopHaltsTicks(t *testing.T) {
	grabber := &stubGrabber{}
	bridge := newPerceptionBridge(grabber, 5*time.Millisecond)

	var published atomic.Int32
	bridge.publish = func(frame live.OutboundFrame) error {
		published.Add(1)
		return nil
	}

	bridge.Start(context.Background())
	waitFor(t, "first frame", func() bool { return published.Load() >= 1 })
	bridge.Stop()

	if bridge.Running() {
		t.Fatalf("Expected bridge stopped")
	}
	count := published.Load()
	time.Sleep(25 * time.Millisecond)
	if got := published.Load(); got != count {
		t.Fatalf("Expected no frames after stop, got %d more", got-count)
	}
}

func TestPerceptionBridgeSkipsFailedGrabs(t *testing.T) {
	grabber := &stubGrabber{err: errors.New("camera offline")}
	bridge := newPerceptionBridge(grabber, 5*time.Millisecond)

	var published atomic.Int32
	bridge.publish = func(frame live.OutboundFrame) error {
		published.Add(1)
		return nil
	}

	bridge.Start(context.Background())
	defer bridge.Stop()

	waitFor(t, "grab attempts", func() bool { return grabber.grabs.Load() >= 2 })
	if got := published.Load(); got != 0 {
		t.Fatalf("Expected no published frames while grabs fail, got %d", got)
	}
}

func TestPerceptionBridgeStartWithoutGrabberIsNoop(t *testing.T) {
	bridge := newPerceptionBridge(nil, 5*time.Millisecond)
	bridge.Start(context.Background())
	if bridge.Running() {
		t.Fatalf("Expected bridge without a grabber to stay stopped")
	}
}

func TestEngineCameraTogglePublishesFrames(t *testing.T) {
	channel := &stubChannel{}
	grabber := &stubGrabber{}
	engine := NewEngine(
		WithSessionFactory(func() SessionChannel { return channel }),
		WithCamera(grabber, 5*time.Millisecond),
	)
	defer engine.Shutdown()

	engine.SetCameraActive(true)
	openSession(t, engine, channel)

	waitFor(t, "camera frames in channel", func() bool {
		for _, frame := range channel.sentFrames() {
			if frame.Kind == live.FrameKindImage {
				return true
			}
		}
		return false
	})
	if !engine.Signals().IsCameraActive {
		t.Fatalf("Expected camera signal active")
	}

	engine.SetCameraActive(false)
	if engine.Signals().IsCameraActive {
		t.Fatalf("Expected camera signal inactive after toggle off")
	}
}
