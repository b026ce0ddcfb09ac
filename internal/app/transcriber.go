package app

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"speechcli/internal/asr"
	"speechcli/internal/audio"
	"speechcli/internal/audio/ffmpeg"
	"speechcli/internal/errorsx"
	"speechcli/internal/record"
	"speechcli/internal/session"
)

// bufferTranscriber writes the captured audio to a temp file, optionally
// transcodes it and hands it to the backend.
type bufferTranscriber struct {
	backend asr.Backend
	tempDir string
	codec   ffmpeg.Options
	cache   *cache
	log     zerolog.Logger
}

func (t *bufferTranscriber) Transcribe(ctx context.Context, buf *audio.Buffer) (string, error) {
	wav := audio.TempPath(t.tempDir, "wav")
	if err := audio.WriteWAV(wav, buf); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonSTTUnknown)
	}

	upload := t.encode(ctx, wav)
	res, err := t.backend.TranscribeFile(ctx, upload)
	if upload == wav {
		upload = ""
	}
	t.cache.handle(artifacts{wav: wav, upload: upload, response: res.Raw, ok: err == nil})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}

// encode returns the path to upload. A failed transcode falls back to the
// WAV file.
func (t *bufferTranscriber) encode(ctx context.Context, wav string) string {
	if t.codec.Codec == "" {
		return wav
	}
	out := audio.TempPath(t.tempDir, ffmpeg.Ext(t.codec.Codec))
	if err := ffmpeg.Convert(ctx, t.codec, wav, out); err != nil {
		t.log.Warn().Err(err).Msg("transcode failed; uploading wav")
		_ = os.Remove(out)
		return wav
	}
	return out
}

// recorderAdapter exposes a record.Recorder as a session.Recorder.
type recorderAdapter struct {
	rec *record.Recorder
}

func (a recorderAdapter) Begin(ctx context.Context) (session.Capture, error) {
	c, err := a.rec.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}
