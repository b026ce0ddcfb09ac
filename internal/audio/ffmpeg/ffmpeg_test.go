package ffmpeg

import (
	"strings"
	"testing"
)

func TestArgs(t *testing.T) {
	args, err := Args(Options{Codec: "OPUS", Channels: 1, SampleRate: 16000, BitRate: 32}, "in.wav", "out.ogg")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := strings.Join(args, " ")
	want := "-y -loglevel error -i in.wav -ac 1 -ar 16000 -c:a libopus -b:a 32k out.ogg"
	if got != want {
		t.Fatalf("args mismatch:\n got %s\nwant %s", got, want)
	}

	args, err = Args(Options{Codec: "flac"}, "a.wav", "a.flac")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if strings.Contains(strings.Join(args, " "), "-b:a") {
		t.Fatalf("flac must not get a bitrate: %v", args)
	}
}

func TestUnsupportedCodec(t *testing.T) {
	if Supported("wavpack") {
		t.Fatalf("wavpack should not be supported")
	}
	if _, err := Args(Options{Codec: "wavpack"}, "a", "b"); err == nil {
		t.Fatalf("expected error")
	}
	if Ext("unknown") != "wav" || Ext("aac") != "m4a" {
		t.Fatalf("unexpected ext mapping")
	}
}
