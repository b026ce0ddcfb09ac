package keys

import "testing"

func TestLookupSpellings(t *testing.T) {
	cases := []struct {
		in       string
		want     string
		modifier bool
	}{
		{"KEY_RIGHTSHIFT", "shift_r", true},
		{"shift_r", "shift_r", true},
		{"Shift_R", "shift_r", true},
		{"KEY_PAUSE", "pause", false},
		{"Pause", "pause", false},
		{"f13", "f13", false},
		{"KEY_F13", "f13", false},
		{"alt_r", "alt_r", true},
		{"AltGr", "alt_r", true},
		{"scroll-lock", "scroll_lock", false},
		{"Prior", "page_up", false},
	}
	for _, c := range cases {
		k, err := Lookup(c.in)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", c.in, err)
		}
		if k.Name != c.want {
			t.Fatalf("Lookup(%q) = %s, want %s", c.in, k.Name, c.want)
		}
		if k.Modifier != c.modifier {
			t.Fatalf("Lookup(%q) modifier = %v, want %v", c.in, k.Modifier, c.modifier)
		}
	}
}

func TestLookupCodes(t *testing.T) {
	k, err := Lookup("KEY_RIGHTSHIFT")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if k.Evdev != 54 || k.WinVK != 0xA1 || k.MacVK != 0x3C || k.XKeysym != "Shift_R" {
		t.Fatalf("unexpected codes: %+v", k)
	}

	f13, err := Lookup("f13")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f13.Evdev != 183 || f13.WinVK != 0x7C || f13.MacVK != 0x69 || f13.XKeysym != "F13" {
		t.Fatalf("unexpected f13 codes: %+v", f13)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("KEY_DOES_NOT_EXIST"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if _, err := Lookup("  "); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestDefaultFor(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		k, err := Lookup(DefaultFor(goos))
		if err != nil {
			t.Fatalf("default key for %s does not resolve: %v", goos, err)
		}
		if k.Name != "shift_r" {
			t.Fatalf("default key for %s = %s", goos, k.Name)
		}
	}
}

func TestLookupLettersDigitsSpace(t *testing.T) {
	cases := []struct {
		in     string
		name   string
		evdev  uint16
		mac    uint16
		win    uint32
		keysym string
	}{
		{"a", "a", 30, 0x00, 0x41, "a"},
		{"KEY_A", "a", 30, 0x00, 0x41, "a"},
		{"Z", "z", 44, 0x06, 0x5A, "z"},
		{"KEY_Q", "q", 16, 0x0C, 0x51, "q"},
		{"1", "1", 2, 0x12, 0x31, "1"},
		{"KEY_0", "0", 11, 0x1D, 0x30, "0"},
		{"space", "space", 57, 0x31, 0x20, "space"},
		{"KEY_SPACE", "space", 57, 0x31, 0x20, "space"},
	}
	for _, c := range cases {
		k, err := Lookup(c.in)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", c.in, err)
		}
		if k.Name != c.name || k.Evdev != c.evdev || k.MacVK != c.mac || k.WinVK != c.win || k.XKeysym != c.keysym {
			t.Fatalf("Lookup(%q) = %+v", c.in, k)
		}
		if k.Modifier {
			t.Fatalf("Lookup(%q) should not be a modifier", c.in)
		}
		if !k.OnMac() {
			t.Fatalf("Lookup(%q) should exist on macOS", c.in)
		}
	}
}

func TestOnMac(t *testing.T) {
	for name, want := range map[string]bool{"a": true, "shift_r": true, "f13": true, "pause": false, "f21": false} {
		k, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", name, err)
		}
		if k.OnMac() != want {
			t.Errorf("%s OnMac() = %v, want %v", name, k.OnMac(), want)
		}
	}
	if (Key{}).OnMac() {
		t.Errorf("zero key should not be on macOS")
	}
}
