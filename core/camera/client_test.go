package camera

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGrabReturnsFrameBytes(t *testing.T) {
	frame := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(frame)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	got, err := client.Grab(context.Background())
	if err != nil {
		t.Fatalf("expected grab to succeed, got error: %v", err)
	}
	if string(got) != string(frame) {
		t.Fatalf("expected frame bytes %v, got %v", frame, got)
	}
}

func TestGrabRejectsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "camera busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	if _, err := client.Grab(context.Background()); err == nil {
		t.Fatalf("expected grab to fail on non-OK status")
	}
}

func TestGrabRejectsEmptyFrame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewClient(server.URL)

	if _, err := client.Grab(context.Background()); err == nil {
		t.Fatalf("expected grab to fail on empty frame")
	}
}
