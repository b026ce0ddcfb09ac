package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"speechcli/internal/errorsx"
)

// FlagValues records the flags the user set explicitly, keyed by config
// option name, so unset flags never mask file or environment values.
type FlagValues struct {
	values map[string]any
}

func (fv *FlagValues) record(key string, v any) {
	if fv.values == nil {
		fv.values = make(map[string]any)
	}
	fv.values[key] = v
}

type stringFlag struct {
	fv  *FlagValues
	key string
	cur string
}

func (s *stringFlag) String() string {
	if s == nil {
		return ""
	}
	return s.cur
}

func (s *stringFlag) Set(v string) error {
	s.cur = v
	s.fv.record(s.key, v)
	return nil
}

type intFlag struct {
	fv  *FlagValues
	key string
	cur int
}

func (i *intFlag) String() string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(i.cur)
}

func (i *intFlag) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	i.cur = n
	i.fv.record(i.key, n)
	return nil
}

type durationFlag struct {
	fv  *FlagValues
	key string
	cur time.Duration
}

func (d *durationFlag) String() string {
	if d == nil {
		return ""
	}
	return d.cur.String()
}

// Set accepts a Go duration or a plain number of seconds.
func (d *durationFlag) Set(v string) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		secs, nerr := strconv.ParseFloat(v, 64)
		if nerr != nil {
			return err
		}
		dur = time.Duration(secs * float64(time.Second))
	}
	d.cur = dur
	d.fv.record(d.key, dur)
	return nil
}

// boolFlag stores value (or its negation when invert is set) under key.
// A fixed value turns it into a switch like -verbose.
type boolFlag struct {
	fv     *FlagValues
	key    string
	invert bool
	fixed  any
	cur    bool
}

func (b *boolFlag) String() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("%v", b.cur)
}

func (b *boolFlag) IsBoolFlag() bool { return true }

func parseBoolExt(v string) (bool, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean: %s", v)
}

func (b *boolFlag) Set(v string) error {
	n, err := parseBoolExt(v)
	if err != nil {
		return err
	}
	b.cur = n
	switch {
	case b.fixed != nil:
		if n {
			b.fv.record(b.key, b.fixed)
		}
	case b.invert:
		b.fv.record(b.key, !n)
	default:
		b.fv.record(b.key, n)
	}
	return nil
}

func varAliases(fs *flag.FlagSet, v flag.Value, usage string, names ...string) {
	for _, name := range names {
		fs.Var(v, name, usage)
	}
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *flag.FlagSet) *FlagValues {
	fv := &FlagValues{}

	varAliases(fs, &stringFlag{fv: fv, key: "ptt_key"}, "push-to-talk key name (e.g. f13, pause, shift_r)", "key", "k")
	fs.Var(&stringFlag{fv: fv, key: "ptt_keysym"}, "keysym", "X keysym released before typing on Linux (none to disable)")
	fs.Var(&boolFlag{fv: fv, key: "press_enter"}, "enter", "press Enter after typing")
	fs.Var(&boolFlag{fv: fv, key: "press_enter", invert: true}, "no-enter", "do not press Enter after typing")

	fs.Var(&stringFlag{fv: fv, key: "backend"}, "backend", "transcription backend (openai, http)")
	varAliases(fs, &stringFlag{fv: fv, key: "model"}, "transcription model", "model", "m")
	varAliases(fs, &stringFlag{fv: fv, key: "language"}, "language code", "language", "l")
	fs.Var(&stringFlag{fv: fv, key: "prompt"}, "prompt", "prompt sent with the audio")
	fs.Var(&stringFlag{fv: fv, key: "base_url"}, "base-url", "OpenAI-compatible API base URL")
	fs.Var(&stringFlag{fv: fv, key: "api_endpoint"}, "api-endpoint", "endpoint URL for the http backend")
	fs.Var(&stringFlag{fv: fv, key: "api_key"}, "token", "API key / bearer token")
	fs.Var(&stringFlag{fv: fv, key: "text_path"}, "text-path", "JSON path to extract text")
	fs.Var(&stringFlag{fv: fv, key: "extra_config"}, "extra-config", "extra JSON object merged into the request form")

	varAliases(fs, &intFlag{fv: fv, key: "sample_rate"}, "sampling rate (Hz)", "sample-rate", "rate")
	fs.Var(&intFlag{fv: fv, key: "channels"}, "channels", "channels (int)")
	fs.Var(&intFlag{fv: fv, key: "max_seconds"}, "max-seconds", "maximum recording length in seconds")
	fs.Var(&stringFlag{fv: fv, key: "codec"}, "codec", "transcode with ffmpeg before upload (opus, mp3, aac, flac)")
	fs.Var(&intFlag{fv: fv, key: "bit_rate"}, "bit-rate", "bit rate (kbps)")

	fs.Var(&durationFlag{fv: fv, key: "request_timeout"}, "request-timeout", "request timeout (e.g. 30s)")
	fs.Var(&boolFlag{fv: fv, key: "enable_http2"}, "enable-http2", "enable HTTP/2 (true/false)")
	fs.Var(&boolFlag{fv: fv, key: "verify_ssl"}, "verify-ssl", "verify TLS certificates (true/false)")

	fs.Var(&stringFlag{fv: fv, key: "cache_dir"}, "cache-dir", "cache directory")
	fs.Var(&boolFlag{fv: fv, key: "keep_cache"}, "keep-cache", "keep recordings and responses in the cache directory")
	fs.Var(&boolFlag{fv: fv, key: "notification"}, "notification", "enable desktop notifications")

	varAliases(fs, &boolFlag{fv: fv, key: "log_level", fixed: "debug"}, "enable verbose logging", "verbose", "v")
	fs.Var(&stringFlag{fv: fv, key: "log_level"}, "log-level", "log level (debug, info, warn, error)")
	fs.Var(&stringFlag{fv: fv, key: "log_format"}, "log-format", "log format (console, json)")
	fs.Var(&boolFlag{fv: fv, key: "log_transcripts"}, "log-transcripts", "log transcription text")
	fs.Var(&stringFlag{fv: fv, key: "metrics_addr"}, "metrics-addr", "serve Prometheus metrics on this address")

	return fv
}

// ApplyFlags copies the explicitly set flags onto cfg.
func ApplyFlags(cfg *Config, fv *FlagValues) error {
	if !fv.AnySet() {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(fv.values); err != nil {
		return errorsx.Wrap(fmt.Errorf("apply flags: %w", err), errorsx.ReasonConfiguration)
	}
	return nil
}

// AnySet reports whether any flag was explicitly set by the user.
func (fv *FlagValues) AnySet() bool {
	return len(fv.values) > 0
}

// IsSet reports whether the option key was set by a flag.
func (fv *FlagValues) IsSet(key string) bool {
	_, ok := fv.values[key]
	return ok
}
