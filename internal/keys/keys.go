// Package keys maps push-to-talk key names to the native codes each
// platform listener and typist needs.
//
// A key can be named the way evdev does (KEY_RIGHTSHIFT), the way X keysyms
// do (Shift_R) or the way pynput does (shift_r). Lookup is case insensitive
// and ignores underscores and dashes.
package keys

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Key identifies one physical key across platforms. A zero Evdev or WinVK
// code means the key does not exist on that platform. macOS uses 0 for the
// A key, so its absence is marked with NoMac instead.
type Key struct {
	Name     string
	Modifier bool
	Evdev    uint16
	MacVK    uint16
	NoMac    bool
	WinVK    uint32
	XKeysym  string
}

// OnMac reports whether the key has a macOS virtual key code.
func (k Key) OnMac() bool { return k.Name != "" && !k.NoMac }

func (k Key) String() string { return k.Name }

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k.Name == "" }

var table = []struct {
	key     Key
	aliases []string
}{
	{Key{Name: "shift_l", Modifier: true, Evdev: 42, MacVK: 0x38, WinVK: 0xA0, XKeysym: "Shift_L"}, []string{"shift", "leftshift", "lshift"}},
	{Key{Name: "shift_r", Modifier: true, Evdev: 54, MacVK: 0x3C, WinVK: 0xA1, XKeysym: "Shift_R"}, []string{"rightshift", "rshift"}},
	{Key{Name: "ctrl_l", Modifier: true, Evdev: 29, MacVK: 0x3B, WinVK: 0xA2, XKeysym: "Control_L"}, []string{"ctrl", "control", "leftctrl", "lctrl", "controll"}},
	{Key{Name: "ctrl_r", Modifier: true, Evdev: 97, MacVK: 0x3E, WinVK: 0xA3, XKeysym: "Control_R"}, []string{"rightctrl", "rctrl", "controlr"}},
	{Key{Name: "alt_l", Modifier: true, Evdev: 56, MacVK: 0x3A, WinVK: 0xA4, XKeysym: "Alt_L"}, []string{"alt", "leftalt", "lalt", "option"}},
	{Key{Name: "alt_r", Modifier: true, Evdev: 100, MacVK: 0x3D, WinVK: 0xA5, XKeysym: "Alt_R"}, []string{"rightalt", "ralt", "altgr", "isolevel3shift"}},
	{Key{Name: "cmd_l", Modifier: true, Evdev: 125, MacVK: 0x37, WinVK: 0x5B, XKeysym: "Super_L"}, []string{"cmd", "super", "win", "meta", "leftmeta", "superl"}},
	{Key{Name: "cmd_r", Modifier: true, Evdev: 126, MacVK: 0x36, WinVK: 0x5C, XKeysym: "Super_R"}, []string{"rightmeta", "superr"}},
	{Key{Name: "caps_lock", Evdev: 58, MacVK: 0x39, WinVK: 0x14, XKeysym: "Caps_Lock"}, []string{"capslock", "capital"}},
	{Key{Name: "pause", NoMac: true, Evdev: 119, WinVK: 0x13, XKeysym: "Pause"}, []string{"break"}},
	{Key{Name: "scroll_lock", NoMac: true, Evdev: 70, WinVK: 0x91, XKeysym: "Scroll_Lock"}, []string{"scrolllock", "scroll"}},
	{Key{Name: "print_screen", NoMac: true, Evdev: 99, WinVK: 0x2C, XKeysym: "Print"}, []string{"print", "sysrq", "snapshot", "printscreen"}},
	{Key{Name: "insert", Evdev: 110, MacVK: 0x72, WinVK: 0x2D, XKeysym: "Insert"}, []string{"help"}},
	{Key{Name: "delete", Evdev: 111, MacVK: 0x75, WinVK: 0x2E, XKeysym: "Delete"}, nil},
	{Key{Name: "home", Evdev: 102, MacVK: 0x73, WinVK: 0x24, XKeysym: "Home"}, nil},
	{Key{Name: "end", Evdev: 107, MacVK: 0x77, WinVK: 0x23, XKeysym: "End"}, nil},
	{Key{Name: "page_up", Evdev: 104, MacVK: 0x74, WinVK: 0x21, XKeysym: "Prior"}, []string{"pageup", "prior"}},
	{Key{Name: "page_down", Evdev: 109, MacVK: 0x79, WinVK: 0x22, XKeysym: "Next"}, []string{"pagedown", "next"}},
	{Key{Name: "left", Evdev: 105, MacVK: 0x7B, WinVK: 0x25, XKeysym: "Left"}, nil},
	{Key{Name: "right", Evdev: 106, MacVK: 0x7C, WinVK: 0x27, XKeysym: "Right"}, nil},
	{Key{Name: "down", Evdev: 108, MacVK: 0x7D, WinVK: 0x28, XKeysym: "Down"}, nil},
	{Key{Name: "up", Evdev: 103, MacVK: 0x7E, WinVK: 0x26, XKeysym: "Up"}, nil},
	{Key{Name: "esc", Evdev: 1, MacVK: 0x35, WinVK: 0x1B, XKeysym: "Escape"}, []string{"escape"}},
	{Key{Name: "space", Evdev: 57, MacVK: 0x31, WinVK: 0x20, XKeysym: "space"}, []string{"spacebar"}},
	{Key{Name: "menu", NoMac: true, Evdev: 127, WinVK: 0x5D, XKeysym: "Menu"}, []string{"compose", "apps"}},
}

// Letters and digits in evdev, macOS and Windows order. Windows uses the
// ASCII code of the upper-case character.
var letterCodes = map[rune][2]uint16{
	'a': {30, 0x00}, 'b': {48, 0x0B}, 'c': {46, 0x08}, 'd': {32, 0x02},
	'e': {18, 0x0E}, 'f': {33, 0x03}, 'g': {34, 0x05}, 'h': {35, 0x04},
	'i': {23, 0x22}, 'j': {36, 0x26}, 'k': {37, 0x28}, 'l': {38, 0x25},
	'm': {50, 0x2E}, 'n': {49, 0x2D}, 'o': {24, 0x1F}, 'p': {25, 0x23},
	'q': {16, 0x0C}, 'r': {19, 0x0F}, 's': {31, 0x01}, 't': {20, 0x11},
	'u': {22, 0x20}, 'v': {47, 0x09}, 'w': {17, 0x0D}, 'x': {45, 0x07},
	'y': {21, 0x10}, 'z': {44, 0x06},
	'1': {2, 0x12}, '2': {3, 0x13}, '3': {4, 0x14}, '4': {5, 0x15},
	'5': {6, 0x17}, '6': {7, 0x16}, '7': {8, 0x1A}, '8': {9, 0x1C},
	'9': {10, 0x19}, '0': {11, 0x1D},
}

// macOS has no function key codes that follow a formula.
var macFunctionKeys = [...]uint16{
	0x7A, 0x78, 0x63, 0x76, 0x60, 0x61, 0x62, 0x64, 0x65, 0x6D, 0x67, 0x6F,
	0x69, 0x6B, 0x71, 0x6A, 0x40, 0x4F, 0x50, 0x5A, 0, 0, 0, 0,
}

var evdevFunctionKeys = [...]uint16{
	59, 60, 61, 62, 63, 64, 65, 66, 67, 68, 87, 88,
	183, 184, 185, 186, 187, 188, 189, 190, 191, 192, 193, 194,
}

var index = buildIndex()

func buildIndex() map[string]Key {
	m := make(map[string]Key)
	for _, e := range table {
		m[normalize(e.key.Name)] = e.key
		m[normalize(e.key.XKeysym)] = e.key
		for _, a := range e.aliases {
			m[normalize(a)] = e.key
		}
	}
	for r, c := range letterCodes {
		name := string(r)
		m[name] = Key{
			Name:    name,
			Evdev:   c[0],
			MacVK:   c[1],
			WinVK:   uint32(strings.ToUpper(name)[0]),
			XKeysym: name,
		}
	}
	for i := 0; i < 24; i++ {
		name := fmt.Sprintf("f%d", i+1)
		m[name] = Key{
			Name:    name,
			Evdev:   evdevFunctionKeys[i],
			MacVK:   macFunctionKeys[i],
			NoMac:   macFunctionKeys[i] == 0,
			WinVK:   0x70 + uint32(i),
			XKeysym: strings.ToUpper(name),
		}
	}
	return m
}

func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "key_")
	n = strings.NewReplacer("_", "", "-", "", " ", "").Replace(n)
	return n
}

// Lookup resolves a key name.
func Lookup(name string) (Key, error) {
	if strings.TrimSpace(name) == "" {
		return Key{}, fmt.Errorf("empty key name")
	}
	if k, ok := index[normalize(name)]; ok {
		return k, nil
	}
	return Key{}, fmt.Errorf("unknown key name: %s (available: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the canonical key names, sorted.
func Names() []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range index {
		if !seen[k.Name] {
			seen[k.Name] = true
			out = append(out, k.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Default returns the default push-to-talk key name for the running platform.
func Default() string {
	return DefaultFor(runtime.GOOS)
}

// DefaultFor returns the default push-to-talk key name for goos.
func DefaultFor(goos string) string {
	if goos == "linux" {
		return "KEY_RIGHTSHIFT"
	}
	return "shift_r"
}
