package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"speechcli/internal/errorsx"
)

func TestRunWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.json")
	if code := run([]string{"-write-config", path}); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("SPEECH_API_KEY", "sk-test")
	if code := run([]string{"-backend", "carrier-pigeon"}); code != exitConfig {
		t.Fatalf("exit code = %d, want %d", code, exitConfig)
	}
	if code := run([]string{"-no-such-flag"}); code != exitConfig {
		t.Fatalf("unknown flag exit code = %d, want %d", code, exitConfig)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errorsx.Errorf(errorsx.ReasonConfiguration, "bad"), exitConfig},
		{errorsx.Errorf(errorsx.ReasonAudioDevice, "no mic"), exitRuntime},
		{errorsx.Errorf(errorsx.ReasonInputDevice, "no keyboard"), exitRuntime},
		{errorsx.Errorf(errorsx.ReasonSTTAuth, "401"), exitFailed},
		{errors.New("plain"), exitFailed},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err, exitFailed); got != tc.want {
			t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
