// Package audio holds captured PCM and the helpers that turn it into files
// a transcription service accepts.
package audio

import "time"

// Buffer is interleaved 16-bit PCM captured during one session.
type Buffer struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames is the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Empty reports whether the buffer holds no complete frame.
func (b *Buffer) Empty() bool {
	return b.Frames() == 0
}

// Duration is the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}
