// Package portaudio is a minimal CGO binding to the PortAudio library,
// covering just what microphone capture and speaker playback need:
// blocking 16-bit streams on the default devices.
//
// Requires portaudio installed via pkg-config (e.g. brew install portaudio).
package portaudio

/*
#cgo pkg-config: portaudio-2.0

#include <portaudio.h>
#include <stdlib.h>

static PaError open_default(void **stream, int inputChannels, int outputChannels,
                            double sampleRate, unsigned long framesPerBuffer) {
    return Pa_OpenDefaultStream((PaStream**)stream, inputChannels, outputChannels,
                                paInt16, sampleRate, framesPerBuffer, NULL, NULL);
}

static PaError start_stream(void *stream)  { return Pa_StartStream((PaStream*)stream); }
static PaError stop_stream(void *stream)   { return Pa_StopStream((PaStream*)stream); }
static PaError abort_stream(void *stream)  { return Pa_AbortStream((PaStream*)stream); }
static PaError close_stream(void *stream)  { return Pa_CloseStream((PaStream*)stream); }

static PaError read_stream(void *stream, void *buf, unsigned long frames) {
    return Pa_ReadStream((PaStream*)stream, buf, frames);
}

static PaError write_stream(void *stream, const void *buf, unsigned long frames) {
    return Pa_WriteStream((PaStream*)stream, buf, frames);
}
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"
)

var (
	initOnce sync.Once
	initErr  error
)

func paError(code C.PaError) error {
	if code == C.paNoError {
		return nil
	}
	return errors.New(C.GoString(C.Pa_GetErrorText(code)))
}

// Initialize initializes the PortAudio library. Safe to call repeatedly.
func Initialize() error {
	initOnce.Do(func() {
		initErr = paError(C.Pa_Initialize())
	})
	return initErr
}

// Terminate shuts the library down.
func Terminate() error {
	return paError(C.Pa_Terminate())
}

// Stream is a started blocking stream on a default device.
type Stream struct {
	ptr      unsafe.Pointer
	frames   int
	channels int
	mu       sync.Mutex
	closed   bool
}

func open(inputChannels, outputChannels, sampleRate, framesPerBuffer int) (*Stream, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	var ptr unsafe.Pointer
	if err := paError(C.open_default(&ptr, C.int(inputChannels), C.int(outputChannels),
		C.double(sampleRate), C.ulong(framesPerBuffer))); err != nil {
		return nil, err
	}
	channels := max(inputChannels, outputChannels)
	s := &Stream{ptr: ptr, frames: framesPerBuffer, channels: channels}
	if err := paError(C.start_stream(s.ptr)); err != nil {
		C.close_stream(s.ptr)
		return nil, err
	}
	return s, nil
}

// OpenInput opens and starts a capture stream on the default input device.
func OpenInput(sampleRate, framesPerBuffer int) (*Stream, error) {
	return open(1, 0, sampleRate, framesPerBuffer)
}

// OpenOutput opens and starts a playback stream on the default output device.
func OpenOutput(channels, sampleRate, framesPerBuffer int) (*Stream, error) {
	return open(0, channels, sampleRate, framesPerBuffer)
}

// chunkFrames returns how many whole frames of a sample slice fit into
// one buffer-sized device call. PortAudio counts frames, not samples:
// one frame is channels interleaved samples.
func chunkFrames(samples, maxFrames, channels int) int {
	frames := samples / channels
	if frames > maxFrames {
		frames = maxFrames
	}
	return frames
}

// ReadInt16 reads up to one buffer worth of samples into p and returns the
// number of samples read. Input overflow is not treated as an error;
// PortAudio resynchronizes on the next read.
func (s *Stream) ReadInt16(p []int16) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.New("portaudio: stream closed")
	}
	frames := chunkFrames(len(p), s.frames, s.channels)
	if frames == 0 {
		return 0, nil
	}
	code := C.read_stream(s.ptr, unsafe.Pointer(&p[0]), C.ulong(frames))
	if code != C.paNoError && code != C.paInputOverflowed {
		return 0, paError(code)
	}
	return frames * s.channels, nil
}

// WriteInt16 writes samples to the output device, blocking until
// consumed. p holds interleaved whole frames; a trailing partial frame
// is dropped.
func (s *Stream) WriteInt16(p []int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("portaudio: stream closed")
	}
	for {
		frames := chunkFrames(len(p), s.frames, s.channels)
		if frames == 0 {
			return nil
		}
		code := C.write_stream(s.ptr, unsafe.Pointer(&p[0]), C.ulong(frames))
		if code != C.paNoError && code != C.paOutputUnderflowed {
			return paError(code)
		}
		p = p[frames*s.channels:]
	}
}

// Abort discards queued audio and stops the stream immediately.
func (s *Stream) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return paError(C.abort_stream(s.ptr))
}

// Close stops and closes the stream. Safe to call more than once.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	C.stop_stream(s.ptr)
	return paError(C.close_stream(s.ptr))
}
