// Command sparky runs the companion in a terminal: it opens a live
// session, renders the avatar face and transcript as a TUI, and wires
// the microphone, speaker, and optional camera into the engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	engine "github.com/robinjove/Sparky-AI-Companion-Robot/core"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/audio/miniaudio"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/audio/portaudio"
	"github.com/robinjove/Sparky-AI-Companion-Robot/core/camera"
)

func main() {
	godotenv.Load()

	audioBackend := flag.String("audio", "miniaudio", "audio backend: miniaudio or portaudio")
	model := flag.String("model", "", "override the conversational model")
	cameraURL := flag.String("camera", os.Getenv("SPARKY_CAMERA_URL"), "camera snapshot endpoint, empty disables the camera")
	frameInterval := flag.Duration("frame-interval", time.Second, "how often camera frames are published")
	flag.Parse()

	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	device, err := newAudioDevice(*audioBackend)
	if err != nil {
		log.Fatalf("Failed to initialize audio: %v", err)
	}
	defer device.Close()

	options := []engine.EngineOption{engine.WithAudioDevice(device)}
	if *model != "" {
		options = append(options, engine.WithModel(*model))
	}
	if *cameraURL != "" {
		options = append(options, engine.WithCamera(camera.NewClient(*cameraURL), *frameInterval))
	}

	companion := engine.NewEngine(options...)
	defer companion.Shutdown()

	program := tea.NewProgram(newTUIModel(companion), tea.WithAltScreen())

	err = companion.WakeUp(context.Background(), wakeOptions(program)...)
	if err != nil {
		log.Fatalf("Failed to wake the companion: %v", err)
	}

	if _, err := program.Run(); err != nil {
		log.Fatalf("TUI terminated: %v", err)
	}
}

func newAudioDevice(backend string) (engine.AudioDevice, error) {
	switch backend {
	case "miniaudio":
		client, err := miniaudio.NewClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "portaudio":
		client, err := portaudio.NewClient(1024)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", backend)
}
