package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/robinjove/Sparky-AI-Companion-Robot/core/audio"
)

// Client is the portaudio device backend: a 16kHz mono capture stream and
// a 24kHz mono playback stream on the default devices.
type Client struct {
	captureBufferSize int

	captureStream  *portaudio.Stream
	playbackStream *portaudio.Stream

	in  []int16
	out []int16

	leftoverAudio []byte
	playbackMu    sync.Mutex

	stopCapture chan struct{}
	captureMu   sync.Mutex
}

func NewClient(captureBufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, captureBufferSize)
	captureStream, err := portaudio.OpenDefaultStream(1, 0, audio.CaptureSampleRate, captureBufferSize, in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}

	out := make([]int16, captureBufferSize)
	playbackStream, err := portaudio.OpenDefaultStream(0, 1, audio.PlaybackSampleRate, captureBufferSize, out)
	if err != nil {
		captureStream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open playback stream: %w", err)
	}

	if err := playbackStream.Start(); err != nil {
		captureStream.Close()
		playbackStream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start playback stream: %w", err)
	}

	return &Client{
		captureBufferSize: captureBufferSize,
		captureStream:     captureStream,
		playbackStream:    playbackStream,
		in:                in,
		out:               out,
	}, nil
}

func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.captureMu.Lock()
	defer c.captureMu.Unlock()

	if c.stopCapture != nil {
		return nil
	}

	if err := c.captureStream.Start(); err != nil {
		return fmt.Errorf("failed to start capture stream: %w", err)
	}

	stop := make(chan struct{})
	c.stopCapture = stop

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			default:
				if err := c.captureStream.Read(); err != nil {
					log.Printf("Failed to read from capture stream: %v", err)
					continue
				}

				audioBuffer := bytes.Buffer{}
				binary.Write(&audioBuffer, binary.LittleEndian, c.in)
				onAudio(audioBuffer.Bytes())
			}
		}
	}()

	return nil
}

func (c *Client) StopCapture() error {
	c.captureMu.Lock()
	defer c.captureMu.Unlock()

	if c.stopCapture == nil {
		return nil
	}
	close(c.stopCapture)
	c.stopCapture = nil

	if err := c.captureStream.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture stream: %w", err)
	}
	return nil
}

func (c *Client) SendAudio(audio []byte) error {
	bufferSize := c.captureBufferSize * 2

	c.playbackMu.Lock()
	defer c.playbackMu.Unlock()

	audio = append(c.leftoverAudio, audio...)
	for i := range len(audio)/bufferSize + 1 {
		if (i+1)*bufferSize > len(audio) {
			c.leftoverAudio = make([]byte, len(audio)-i*bufferSize)
			copy(c.leftoverAudio, audio[i*bufferSize:])
			break
		}

		binary.Read(bytes.NewBuffer(audio[i*bufferSize:(i+1)*bufferSize]), binary.LittleEndian, c.out)
		c.playbackStream.Write()
	}

	return nil
}

func (c *Client) ClearBuffer() {
	c.playbackMu.Lock()
	defer c.playbackMu.Unlock()
	c.leftoverAudio = make([]byte, 0)
}

func (c *Client) Close() {
	_ = c.StopCapture()
	c.captureStream.Close()
	c.playbackStream.Close()
	portaudio.Terminate()
}

func (c *Client) CaptureEncodingInfo() audio.EncodingInfo {
	return audio.GetCaptureEncodingInfo()
}

func (c *Client) PlaybackEncodingInfo() audio.EncodingInfo {
	return audio.GetPlaybackEncodingInfo()
}
