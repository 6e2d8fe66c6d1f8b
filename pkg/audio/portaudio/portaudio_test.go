package portaudio

import "testing"

func TestChunkFrames(t *testing.T) {
	tests := []struct {
		name     string
		samples  int
		frames   int
		channels int
		want     int
	}{
		{"mono full buffer", 320, 320, 1, 320},
		{"mono short tail", 100, 320, 1, 100},
		{"mono oversized", 1000, 320, 1, 320},
		{"stereo exactly one buffer", 2400, 1200, 2, 1200},
		{"stereo oversized", 4800, 1200, 2, 1200},
		{"stereo partial frame", 3, 1200, 2, 1},
		{"empty", 0, 1200, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chunkFrames(tt.samples, tt.frames, tt.channels); got != tt.want {
				t.Errorf("chunkFrames(%d, %d, %d) = %d, want %d",
					tt.samples, tt.frames, tt.channels, got, tt.want)
			}
		})
	}
}

// TestStereoWriteStaysInBounds walks the arithmetic WriteInt16 uses on
// a stereo buffer: each device call must consume frames*channels
// samples and the chunks together must cover the slice exactly,
// never reading past it.
func TestStereoWriteStaysInBounds(t *testing.T) {
	const frames, channels, total = 1200, 2, 4800
	consumed := 0
	for {
		n := chunkFrames(total-consumed, frames, channels)
		if n == 0 {
			break
		}
		if consumed+n*channels > total {
			t.Fatalf("chunk of %d frames overruns slice at offset %d", n, consumed)
		}
		consumed += n * channels
	}
	if consumed != total {
		t.Fatalf("consumed %d samples, want %d", consumed, total)
	}
}
