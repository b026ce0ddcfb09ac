// Package app wires configuration, platform, recorder, backend and session
// machine into the two run modes: the push-to-talk daemon and file mode.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"speechcli/internal/asr"
	"speechcli/internal/audio"
	"speechcli/internal/audio/ffmpeg"
	"speechcli/internal/config"
	"speechcli/internal/hotkey"
	"speechcli/internal/logging"
	"speechcli/internal/metrics"
	"speechcli/internal/notify"
	"speechcli/internal/platform"
	"speechcli/internal/record"
	"speechcli/internal/session"
)

// Deps are the pieces RunDaemon builds from the configuration. Tests supply
// their own.
type Deps struct {
	Platform platform.Handler
	Recorder session.Recorder
	Backend  asr.Backend
	Registry *prometheus.Registry
	Clock    session.Clock
}

// BackendOptions maps the configuration onto backend options.
func BackendOptions(cfg config.Config) asr.Options {
	return asr.Options{
		Backend:     cfg.Backend,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Language:    cfg.Language,
		Prompt:      cfg.Prompt,
		BaseURL:     cfg.BaseURL,
		Endpoint:    cfg.APIEndpoint,
		TextPath:    cfg.TextPath,
		ExtraConfig: cfg.ExtraConfig,
		Timeout:     cfg.RequestTimeout,
		EnableHTTP2: cfg.EnableHTTP2,
		VerifySSL:   cfg.VerifySSL,
	}
}

// RunDaemon opens the audio device and the backend, then runs until ctx is
// done. Startup failures carry a configuration or device reason.
func RunDaemon(ctx context.Context, cfg config.Config, handler platform.Handler) error {
	backend, err := asr.New(BackendOptions(cfg))
	if err != nil {
		return err
	}
	rec, err := record.Open(cfg.SampleRate, cfg.Channels)
	if err != nil {
		return err
	}
	defer rec.Close()

	return Run(ctx, cfg, Deps{
		Platform: handler,
		Recorder: recorderAdapter{rec: rec},
		Backend:  backend,
	})
}

// Run is the daemon loop with injected dependencies. It returns nil when ctx
// is cancelled.
func Run(ctx context.Context, cfg config.Config, deps Deps) error {
	logger := logging.WithComponent("app")
	key, err := cfg.Key()
	if err != nil {
		return err
	}

	tempDir := config.TempDir(&cfg)
	if removed, err := audio.CleanupTemp(tempDir); err != nil {
		logger.Warn().Err(err).Str("dir", tempDir).Msg("temp cleanup failed")
	} else if len(removed) > 0 {
		logger.Info().Int("files", len(removed)).Str("dir", tempDir).Msg("removed stale temp files")
	}

	transcriber := &bufferTranscriber{
		backend: deps.Backend,
		tempDir: tempDir,
		codec:   ffmpeg.Options{Codec: cfg.Codec, Channels: cfg.Channels, SampleRate: cfg.SampleRate, BitRate: cfg.BitRate},
		cache:   &cache{dir: cfg.CacheDir, keep: cfg.KeepCache, now: time.Now, log: logging.WithComponent("cache")},
		log:     logging.WithComponent("asr"),
	}

	var observers []session.Observer
	var server *metrics.Server
	if cfg.MetricsAddr != "" {
		reg := deps.Registry
		if reg == nil {
			reg = prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}
		observers = append(observers, metrics.New(reg))
		server = metrics.NewServer(cfg.MetricsAddr, reg)
	}
	if cfg.Notification {
		n := notify.New()
		defer n.Close()
		observers = append(observers, n)
	}

	machine := session.New(session.Config{
		Key:            key,
		MaxDuration:    cfg.MaxDuration(),
		PressEnter:     cfg.PressEnter,
		LogTranscripts: cfg.LogTranscripts,
	}, session.Deps{
		Recorder:    deps.Recorder,
		Transcriber: transcriber,
		Typist:      deps.Platform,
		Clock:       deps.Clock,
		Observers:   observers,
	})

	logger.Info().
		Str("platform", deps.Platform.Name()).
		Str("backend", deps.Backend.Name()).
		Str("key", key.Name).
		Bool("press_enter", cfg.PressEnter).
		Msg("daemon ready; hold the key to talk")

	g, gctx := errgroup.WithContext(ctx)
	raw := make(chan hotkey.Event, 1)
	events := make(chan hotkey.Event, 1)

	// The channels are never closed: every stage stops on gctx, so the
	// listener's own error is the one the group reports.
	g.Go(func() error {
		err := deps.Platform.Listen(gctx, key, raw)
		if err == nil && gctx.Err() == nil {
			err = session.ErrMonitorClosed
		}
		return err
	})
	g.Go(func() error {
		hotkey.Dedup(gctx, raw, events)
		return nil
	})
	g.Go(func() error {
		return machine.Run(gctx, events)
	})
	if server != nil {
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	err = g.Wait()
	if ctx.Err() != nil && errors.Is(err, session.ErrMonitorClosed) {
		return nil
	}
	logger.Info().Msg("shutting down")
	return err
}
