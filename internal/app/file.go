package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"speechcli/internal/asr"
	"speechcli/internal/audio"
	"speechcli/internal/audio/ffmpeg"
	"speechcli/internal/config"
	"speechcli/internal/errorsx"
	"speechcli/internal/logging"
)

// RunFile transcribes an existing audio file. The text goes to outPath, or
// to stdout when outPath is empty.
func RunFile(ctx context.Context, cfg config.Config, inPath, outPath string, stdout io.Writer) error {
	backend, err := asr.New(BackendOptions(cfg))
	if err != nil {
		return err
	}
	return transcribeFile(ctx, cfg, backend, inPath, outPath, stdout)
}

func transcribeFile(ctx context.Context, cfg config.Config, backend asr.Backend, inPath, outPath string, stdout io.Writer) error {
	logger := logging.WithComponent("app")
	if _, err := os.Stat(inPath); err != nil {
		return errorsx.Wrap(fmt.Errorf("file %s stat failed: %w", inPath, err), errorsx.ReasonConfiguration)
	}

	tempDir := config.TempDir(&cfg)
	upload := inPath
	var converted string
	if cfg.Codec != "" {
		converted = audio.TempPath(tempDir, ffmpeg.Ext(cfg.Codec))
		opts := ffmpeg.Options{Codec: cfg.Codec, Channels: cfg.Channels, SampleRate: cfg.SampleRate, BitRate: cfg.BitRate}
		if err := ffmpeg.Convert(ctx, opts, inPath, converted); err != nil {
			_ = os.Remove(converted)
			return err
		}
		upload = converted
	}

	c := &cache{dir: cfg.CacheDir, keep: cfg.KeepCache, now: time.Now, log: logging.WithComponent("cache")}
	res, err := backend.TranscribeFile(ctx, upload)
	c.handle(artifacts{upload: converted, response: res.Raw, ok: err == nil})
	if err != nil {
		return err
	}

	text := strings.TrimSpace(res.Text)
	if outPath == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return err
	}
	logger.Info().Str("output", outPath).Int("chars", len(text)).Msg("transcription written")
	return nil
}
