package audio

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/torflstudy/torfl/pkg/audio/portaudio"
)

const (
	// CaptureSampleRate is the microphone capture rate. Speech endpoints
	// accept 16 kHz mono and it keeps uploads small.
	CaptureSampleRate = 16000

	captureChunk = 20 * time.Millisecond
)

// Mic is a Recorder backed by the default PortAudio input device. It
// captures 16 kHz mono L16 and returns the session as a WAV buffer.
type Mic struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	buf     bytes.Buffer
	done    chan struct{}
	reading bool
}

var _ Recorder = (*Mic)(nil)

// NewMic returns an idle microphone recorder. The capture device is opened
// lazily on Start and released on Stop.
func NewMic() *Mic {
	return &Mic{}
}

func (m *Mic) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reading {
		return ErrAlreadyRecording
	}

	frames := CaptureSampleRate * int(captureChunk) / int(time.Second)
	stream, err := portaudio.OpenInput(CaptureSampleRate, frames)
	if err != nil {
		return &DeviceError{Err: err}
	}

	m.stream = stream
	m.buf.Reset()
	m.done = make(chan struct{})
	m.reading = true

	go m.capture(ctx, stream, frames, m.done)
	return nil
}

// capture pulls sample chunks until the stream is closed or ctx is
// canceled. Samples are accumulated as little-endian bytes.
func (m *Mic) capture(ctx context.Context, stream *portaudio.Stream, frames int, done chan struct{}) {
	defer close(done)
	samples := make([]int16, frames)
	raw := make([]byte, frames*2)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := stream.ReadInt16(samples)
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			raw[i*2] = byte(samples[i])
			raw[i*2+1] = byte(samples[i] >> 8)
		}
		m.mu.Lock()
		m.buf.Write(raw[:n*2])
		m.mu.Unlock()
	}
}

func (m *Mic) Stop() (Buffer, error) {
	m.mu.Lock()
	if !m.reading {
		m.mu.Unlock()
		return Buffer{}, nil
	}
	stream, done := m.stream, m.done
	m.reading = false
	m.stream = nil
	m.mu.Unlock()

	// Closing the stream makes the capture goroutine's next read fail,
	// which ends it; wait so no write races the buffer snapshot.
	stream.Close()
	<-done

	m.mu.Lock()
	defer m.mu.Unlock()
	pcm := m.buf.Bytes()
	if len(pcm) == 0 {
		return Buffer{}, nil
	}
	out := Buffer{
		MIMEType: MIMEWAV,
		Data:     EncodeWAV(pcm, CaptureSampleRate, 1),
	}
	m.buf = bytes.Buffer{}
	return out, nil
}
