// Package config loads the daemon configuration from defaults, an optional
// config file, a .env file, SPEECH_* environment variables and flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"github.com/tidwall/gjson"

	"speechcli/internal/audio/ffmpeg"
	"speechcli/internal/errorsx"
	"speechcli/internal/keys"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SPEECH"

// Config is the immutable snapshot the daemon runs with.
type Config struct {
	APIKey     string `mapstructure:"api_key"`
	PTTKey     string `mapstructure:"ptt_key"`
	PTTKeysym  string `mapstructure:"ptt_keysym"`
	PressEnter bool   `mapstructure:"press_enter"`

	Backend     string `mapstructure:"backend"`
	Model       string `mapstructure:"model"`
	Language    string `mapstructure:"language"`
	Prompt      string `mapstructure:"prompt"`
	BaseURL     string `mapstructure:"base_url"`
	APIEndpoint string `mapstructure:"api_endpoint"`
	TextPath    string `mapstructure:"text_path"`
	ExtraConfig string `mapstructure:"extra_config"`

	SampleRate int    `mapstructure:"sample_rate"`
	Channels   int    `mapstructure:"channels"`
	MaxSeconds int    `mapstructure:"max_seconds"`
	Codec      string `mapstructure:"codec"`
	BitRate    int    `mapstructure:"bit_rate"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	EnableHTTP2    bool          `mapstructure:"enable_http2"`
	VerifySSL      bool          `mapstructure:"verify_ssl"`

	CacheDir  string `mapstructure:"cache_dir"`
	KeepCache bool   `mapstructure:"keep_cache"`

	Notification   bool   `mapstructure:"notification"`
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
	LogTranscripts bool   `mapstructure:"log_transcripts"`
	MetricsAddr    string `mapstructure:"metrics_addr"`
}

var defaults = map[string]any{
	"api_key":         "",
	"ptt_key":         keys.Default(),
	"ptt_keysym":      "",
	"press_enter":     true,
	"backend":         "openai",
	"model":           "gpt-4o-transcribe",
	"language":        "en",
	"prompt":          "",
	"base_url":        "",
	"api_endpoint":    "",
	"text_path":       "text",
	"extra_config":    "",
	"sample_rate":     16000,
	"channels":        1,
	"max_seconds":     60,
	"codec":           "",
	"bit_rate":        64,
	"request_timeout": "30s",
	"enable_http2":    true,
	"verify_ssl":      true,
	"cache_dir":       "",
	"keep_cache":      false,
	"notification":    false,
	"log_level":       "info",
	"log_format":      "console",
	"log_transcripts": false,
	"metrics_addr":    "",
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api_key", EnvPrefix+"_API_KEY", "OPENAI_API_KEY")
	return v
}

// Default returns the built-in configuration.
func Default() Config {
	cfg, _ := decode(newViperNoEnv())
	return cfg
}

func newViperNoEnv() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Load reads path (optional) and the environment. A .env file in the working
// directory is applied first without overriding variables already set.
func Load(path string) (Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (Config, error) {
	if dotenv != "" {
		if err := gotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, errorsx.Wrap(fmt.Errorf("read %s: %w", dotenv, err), errorsx.ReasonConfiguration)
		}
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errorsx.Wrap(fmt.Errorf("read config: %w", err), errorsx.ReasonConfiguration)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook()))
	if err != nil {
		return Config{}, errorsx.Wrap(fmt.Errorf("decode config: %w", err), errorsx.ReasonConfiguration)
	}
	return cfg, nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToBoolHook,
	)
}

// stringToBoolHook lets environment and file values use yes/no as well as
// the spellings strconv accepts.
func stringToBoolHook(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.String || to != reflect.Bool {
		return data, nil
	}
	return parseBoolExt(reflect.ValueOf(data).String())
}

// SaveDefault writes the default configuration to path. The format follows
// the file extension (json, yaml or toml).
func SaveDefault(path string) error {
	v := newViperNoEnv()
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	return v.WriteConfigAs(path)
}

// Key resolves the push-to-talk key, applying the keysym override.
func (c *Config) Key() (keys.Key, error) {
	k, err := keys.Lookup(c.PTTKey)
	if err != nil {
		return keys.Key{}, errorsx.Wrap(err, errorsx.ReasonConfiguration)
	}
	switch {
	case strings.EqualFold(c.PTTKeysym, "none"):
		k.XKeysym = ""
	case c.PTTKeysym != "":
		k.XKeysym = c.PTTKeysym
	}
	return k, nil
}

// MaxDuration is the recording cap.
func (c *Config) MaxDuration() time.Duration {
	return time.Duration(c.MaxSeconds) * time.Second
}

// Validate reports the first invalid value as a configuration error.
func Validate(cfg *Config) error {
	bad := func(format string, args ...any) error {
		return errorsx.Errorf(errorsx.ReasonConfiguration, format, args...)
	}

	switch strings.ToLower(cfg.Backend) {
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return bad("OPENAI_API_KEY is not set. Set it in your environment or .env file")
		}
	case "http":
		if cfg.APIEndpoint == "" {
			return bad("api_endpoint is required for the http backend")
		}
	default:
		return bad("invalid backend: %s (allowed: openai, http)", cfg.Backend)
	}
	if _, err := cfg.Key(); err != nil {
		return err
	}
	if cfg.Channels < 1 || cfg.Channels > 8 {
		return bad("invalid channels: %d (allowed 1..8)", cfg.Channels)
	}
	if cfg.SampleRate <= 0 {
		return bad("invalid sample_rate: %d (must be > 0)", cfg.SampleRate)
	}
	if cfg.MaxSeconds <= 0 {
		return bad("invalid max_seconds: %d (must be > 0)", cfg.MaxSeconds)
	}
	if cfg.RequestTimeout < 0 {
		return bad("invalid request_timeout: %s", cfg.RequestTimeout)
	}
	if cfg.Codec != "" && !ffmpeg.Supported(cfg.Codec) {
		return bad("invalid codec: %s (allowed: opus, vorbis, mp3, aac, flac, pcm)", cfg.Codec)
	}
	if cfg.Codec != "" && cfg.BitRate <= 0 {
		return bad("invalid bit_rate: %d (must be > 0)", cfg.BitRate)
	}
	if cfg.ExtraConfig != "" && !validJSONObject(cfg.ExtraConfig) {
		return bad("invalid extra_config: must be a JSON object")
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return bad("invalid log_level: %s", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return bad("invalid log_format: %s (allowed: console, json)", cfg.LogFormat)
	}
	return nil
}

func validJSONObject(s string) bool {
	return gjson.Valid(s) && gjson.Parse(s).IsObject()
}

// InitCacheDir makes CacheDir absolute and creates it. On failure the cache
// directory is cleared and the returned error says why.
func InitCacheDir(cfg *Config) error {
	if cfg.CacheDir == "" {
		return nil
	}
	abs, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		cfg.CacheDir = ""
		return fmt.Errorf("cache-dir path invalid: %w", err)
	}
	info, err := os.Stat(abs)
	switch {
	case err == nil && !info.IsDir():
		cfg.CacheDir = ""
		return fmt.Errorf("cache-dir %s exists but is not a directory", abs)
	case err == nil:
		cfg.CacheDir = abs
		return nil
	case os.IsNotExist(err):
		if err := os.MkdirAll(abs, 0o755); err != nil {
			cfg.CacheDir = ""
			return fmt.Errorf("cannot create cache-dir %s: %w", abs, err)
		}
		cfg.CacheDir = abs
		return nil
	default:
		cfg.CacheDir = ""
		return fmt.Errorf("cannot access cache-dir %s: %w", abs, err)
	}
}

// TempDir returns the directory for recording artifacts.
func TempDir(cfg *Config) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	return os.TempDir()
}
