package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/torflstudy/torfl/pkg/audio/portaudio"
)

const playbackChunk = 50 * time.Millisecond

// Speaker is a Player backed by the default PortAudio output device.
// It decodes WAV buffers and writes PCM to the device; at most one buffer
// plays at a time.
type Speaker struct {
	mu      sync.Mutex
	current *portaudio.Stream
}

var _ Player = (*Speaker)(nil)

// NewSpeaker returns an idle speaker. The output device is opened per
// Play call and released when playback finishes or is stopped.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

func (s *Speaker) Play(ctx context.Context, buf Buffer) error {
	if buf.Empty() {
		return nil
	}
	pcm, rate, channels, err := DecodeWAV(buf.Data)
	if err != nil {
		return &PlaybackError{Err: err}
	}
	if channels < 1 || channels > 2 {
		return &PlaybackError{Err: fmt.Errorf("unsupported channel count %d", channels)}
	}

	// Interrupt whatever is still playing before starting this buffer.
	s.Stop()

	frames := rate * int(playbackChunk) / int(time.Second)
	stream, err := portaudio.OpenOutput(channels, rate, frames)
	if err != nil {
		return &PlaybackError{Err: err}
	}
	s.mu.Lock()
	s.current = stream
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.current == stream {
			s.current = nil
		}
		s.mu.Unlock()
		stream.Close()
	}()

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}

	step := frames * channels
	for off := 0; off < len(samples); off += step {
		select {
		case <-ctx.Done():
			stream.Abort()
			return ctx.Err()
		default:
		}
		end := min(off+step, len(samples))
		if err := stream.WriteInt16(samples[off:end]); err != nil {
			return &PlaybackError{Err: err}
		}
	}
	return nil
}

func (s *Speaker) Stop() {
	s.mu.Lock()
	stream := s.current
	s.current = nil
	s.mu.Unlock()
	if stream != nil {
		stream.Abort()
		stream.Close()
	}
}
