package typist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"speechcli/internal/errorsx"
	"speechcli/internal/keys"
)

type call struct {
	name string
	args []string
}

type recorder struct {
	calls []call
	err   error
}

func (r *recorder) run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, call{name: name, args: args})
	return r.err
}

func lookup(t *testing.T, name string) keys.Key {
	t.Helper()
	k, err := keys.Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return k
}

func TestXdotoolCommands(t *testing.T) {
	rec := &recorder{}
	x := &Xdotool{bin: "xdotool", run: rec.run}
	ctx := context.Background()

	if err := x.ReleaseKey(ctx, lookup(t, "shift_r")); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := x.Type(ctx, "-n hello"); err != nil {
		t.Fatalf("type: %v", err)
	}
	if err := x.PressEnter(ctx); err != nil {
		t.Fatalf("enter: %v", err)
	}

	want := []string{
		"keyup --clearmodifiers Shift_R",
		"type --delay 0 --clearmodifiers -- -n hello",
		"key --clearmodifiers Return",
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(rec.calls))
	}
	for i, c := range rec.calls {
		if got := strings.Join(c.args, " "); got != want[i] {
			t.Fatalf("call %d: got %q want %q", i, got, want[i])
		}
	}
}

func TestXdotoolErrorIsTypingError(t *testing.T) {
	rec := &recorder{err: errors.New("exit status 1")}
	x := &Xdotool{bin: "xdotool", run: rec.run}
	err := x.Type(context.Background(), "hi")
	if !errorsx.HasReason(err, errorsx.ReasonTyping) {
		t.Fatalf("expected typing reason, got %v", err)
	}
}

func TestAppleScriptCommands(t *testing.T) {
	rec := &recorder{}
	a := &AppleScript{bin: "osascript", run: rec.run}
	ctx := context.Background()

	if err := a.Type(ctx, `say "hi"`); err != nil {
		t.Fatalf("type: %v", err)
	}
	args := rec.calls[0].args
	if args[len(args)-1] != `say "hi"` || args[len(args)-2] != "--" {
		t.Fatalf("text must be passed as argv, got %v", args)
	}

	if err := a.PressEnter(ctx); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if got := rec.calls[1].args[1]; !strings.HasSuffix(got, "key code 36") {
		t.Fatalf("unexpected enter script %q", got)
	}

	if err := a.ReleaseKey(ctx, lookup(t, "alt_r")); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := rec.calls[2].args[1]; !strings.HasSuffix(got, "key up option") {
		t.Fatalf("unexpected release script %q", got)
	}

	// Non-modifiers have nothing to release.
	if err := a.ReleaseKey(ctx, lookup(t, "f13")); err != nil {
		t.Fatalf("release: %v", err)
	}
	if len(rec.calls) != 3 {
		t.Fatalf("expected no command for a non-modifier, got %d calls", len(rec.calls))
	}
}
