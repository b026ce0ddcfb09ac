// Package ffmpeg shrinks recordings before upload by shelling out to ffmpeg.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"speechcli/internal/logging"
)

// Options selects the target encoding.
type Options struct {
	Codec      string
	Channels   int
	SampleRate int
	BitRate    int // kbps
}

type codec struct {
	encoder string
	ext     string
	bitrate bool
}

var codecs = map[string]codec{
	"opus":      {"libopus", "ogg", true},
	"libopus":   {"libopus", "ogg", true},
	"vorbis":    {"libvorbis", "ogg", true},
	"libvorbis": {"libvorbis", "ogg", true},
	"mp3":       {"libmp3lame", "mp3", true},
	"aac":       {"aac", "m4a", true},
	"flac":      {"flac", "flac", false},
	"pcm":       {"pcm_s16le", "wav", false},
	"pcm_s16le": {"pcm_s16le", "wav", false},
}

// Supported reports whether name is a known codec.
func Supported(name string) bool {
	_, ok := codecs[strings.ToLower(name)]
	return ok
}

// Ext returns the file extension used for codec name.
func Ext(name string) string {
	if c, ok := codecs[strings.ToLower(name)]; ok {
		return c.ext
	}
	return "wav"
}

// Args builds the ffmpeg argument list converting in to out.
func Args(opts Options, in, out string) ([]string, error) {
	c, ok := codecs[strings.ToLower(opts.Codec)]
	if !ok {
		return nil, fmt.Errorf("unsupported codec: %s", opts.Codec)
	}
	channels := opts.Channels
	if channels <= 0 {
		channels = 1
	}
	rate := opts.SampleRate
	if rate <= 0 {
		rate = 16000
	}
	bitrate := opts.BitRate
	if bitrate <= 0 {
		bitrate = 64
	}

	args := []string{"-y", "-loglevel", "error", "-i", in, "-ac", strconv.Itoa(channels), "-ar", strconv.Itoa(rate), "-c:a", c.encoder}
	if c.bitrate {
		args = append(args, "-b:a", fmt.Sprintf("%dk", bitrate))
	}
	return append(args, out), nil
}

// Convert runs ffmpeg; it must be on PATH.
func Convert(ctx context.Context, opts Options, in, out string) error {
	args, err := Args(opts, in, out)
	if err != nil {
		return err
	}
	logger := logging.WithComponent("ffmpeg")
	logger.Debug().Str("args", strings.Join(args, " ")).Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
