// Command speechcli is a push-to-talk dictation daemon: hold the key, speak,
// release, and the transcript is typed into the focused window.
//
// Build notes:
//   - Recording uses PortAudio through cgo; the native library must be installed.
//   - Linux needs read access to /dev/input (input group) and xdotool on PATH.
//   - macOS needs the Accessibility permission for the terminal running it.
//   - ffmpeg is only needed when a codec is configured or for -file conversion.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"speechcli/internal/app"
	"speechcli/internal/config"
	"speechcli/internal/errorsx"
	"speechcli/internal/logging"
	"speechcli/internal/platform"
)

const (
	exitOK      = 0
	exitConfig  = 1
	exitRuntime = 2
	exitFailed  = 3
)

const defaultConfigFile = "config.json"

func usage(fs *flag.FlagSet) func() {
	return func() {
		name := filepath.Base(os.Args[0])
		fmt.Fprintf(fs.Output(), `Usage: %s [options]

Hold the push-to-talk key to record, release it to transcribe and type the
text into the focused window.

  -config <path>        configuration file (json, yaml or toml); ./%s is
                        read when present
  -write-config <path>  write the default configuration to path and exit
  -file <path>          transcribe an existing audio file instead of running
                        the daemon
  -output <path>        with -file, write the text here instead of stdout

The API key is read from SPEECH_API_KEY or OPENAI_API_KEY (a .env file in
the working directory is loaded first). Every option below can also be set
as SPEECH_<NAME> in the environment.

`, name, defaultConfigFile)
		fs.PrintDefaults()
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logging.Init(logging.Config{Out: os.Stderr})

	fs := flag.NewFlagSet("speechcli", flag.ContinueOnError)
	fs.Usage = usage(fs)
	configPath := fs.String("config", "", "path to config file")
	writeConfig := fs.String("write-config", "", "write the default config to this path and exit")
	filePath := fs.String("file", "", "transcribe an existing audio file and exit")
	outPath := fs.String("output", "", "with -file, write the transcript to this path")
	fv := config.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}

	if *writeConfig != "" {
		if err := config.SaveDefault(*writeConfig); err != nil {
			log.Error().Err(err).Str("path", *writeConfig).Msg("failed to write default config")
			return exitConfig
		}
		log.Info().Str("path", *writeConfig).Msg("default config written; edit it and re-run")
		return exitOK
	}

	path := *configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to load config")
		return exitConfig
	}
	if err := config.ApplyFlags(&cfg, fv); err != nil {
		log.Error().Err(err).Msg("invalid flag value")
		return exitConfig
	}
	if err := config.Validate(&cfg); err != nil {
		log.Error().Err(err).Msg("invalid config")
		return exitConfig
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Out: os.Stderr})
	logger := logging.WithComponent("main")

	if err := config.InitCacheDir(&cfg); err != nil {
		logger.Warn().Err(err).Msg("cache directory unavailable; using the system temp directory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *filePath != "" {
		if err := app.RunFile(ctx, cfg, *filePath, *outPath, os.Stdout); err != nil {
			logger.Error().Err(err).Str("reason", string(errorsx.Reason(err))).Msg("transcription failed")
			return exitCode(err, exitFailed)
		}
		return exitOK
	}

	handler, err := platform.New()
	if err != nil {
		logger.Error().Err(err).Msg("no keyboard monitor for this platform")
		return exitCode(err, exitRuntime)
	}
	logger.Info().Str("platform", handler.Name()).Str("backend", cfg.Backend).Msg("starting")

	if err := app.RunDaemon(ctx, cfg, handler); err != nil {
		logger.Error().Err(err).Str("reason", string(errorsx.Reason(err))).Msg("daemon stopped")
		return exitCode(err, exitRuntime)
	}
	logger.Info().Msg("shutdown complete")
	return exitOK
}

// exitCode maps startup failures onto the documented exit codes; anything
// else gets fallback.
func exitCode(err error, fallback int) int {
	switch {
	case errorsx.HasReason(err, errorsx.ReasonConfiguration):
		return exitConfig
	case errorsx.IsFatal(err):
		return exitRuntime
	default:
		return fallback
	}
}
