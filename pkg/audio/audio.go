// Package audio provides microphone capture and speaker playback for the
// study tool's voice pipeline. A Recorder produces one finite Buffer per
// recording session; a Player plays one synthesized Buffer at a time.
package audio

import (
	"context"
	"errors"
	"fmt"
)

// ErrAlreadyRecording is returned by Recorder.Start while a session is
// active. Starting is explicit rather than a silent no-op so callers can
// keep their toggle state honest.
var ErrAlreadyRecording = errors.New("audio: recording already in progress")

// Buffer is a finite piece of encoded audio tagged with its MIME type.
// A recording session produces exactly one Buffer; it is consumed once
// by transcription and then discarded.
type Buffer struct {
	MIMEType string
	Data     []byte
}

// Empty reports whether the buffer holds no audio data.
func (b Buffer) Empty() bool {
	return len(b.Data) == 0
}

// Recorder captures microphone input into a single Buffer per session.
type Recorder interface {
	// Start begins a capture session. It returns ErrAlreadyRecording if a
	// session is active, or a *DeviceError if the capture device cannot be
	// opened (missing hardware, access denied by the platform).
	Start(ctx context.Context) error

	// Stop finalizes the session and returns the captured Buffer, releasing
	// the capture device. Stopping without an active session returns an
	// empty Buffer and no error.
	Stop() (Buffer, error)
}

// Player plays one synthesized Buffer to completion.
type Player interface {
	// Play begins playback immediately, stopping any buffer that is still
	// playing. It returns when playback ends naturally, or a *PlaybackError
	// on decode or device failure.
	Play(ctx context.Context, buf Buffer) error

	// Stop halts any active playback. Idempotent.
	Stop()
}

// DeviceError reports a capture device failure: the device is missing,
// busy, or access to it was denied.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio: capture device unavailable: %v", e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// PlaybackError reports a decode or playback failure. Playback failures
// are non-fatal to a conversation turn; callers log and move on.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("audio: playback failed: %v", e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }
