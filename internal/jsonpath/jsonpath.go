// Package jsonpath pulls the transcript out of an arbitrary JSON response.
//
// Paths use the familiar bracket form ("results[0].alternatives[0].transcript")
// and are translated to gjson syntax before lookup.
package jsonpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractText returns the value at textPath. When the path is empty or
// missing it falls back to a top-level "text" key, then to the first
// non-empty top-level string.
func ExtractText(body []byte, textPath string) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	root := gjson.ParseBytes(body)

	if textPath != "" {
		if v, ok := ExtractByPath(body, textPath); ok {
			return v
		}
	}

	if !root.IsObject() {
		return ""
	}
	if v, ok := scalar(root.Get("text")); ok {
		return v
	}
	var first string
	root.ForEach(func(_, val gjson.Result) bool {
		if val.Type == gjson.String && val.Str != "" {
			first = val.Str
			return false
		}
		return true
	})
	return first
}

// ExtractByPath looks up a dot separated path with optional [n] indexes.
func ExtractByPath(body []byte, path string) (string, bool) {
	gpath, err := ToGJSON(path)
	if err != nil {
		return "", false
	}
	return scalar(gjson.GetBytes(body, gpath))
}

// ToGJSON converts "data.items[1].value" to "data.items.1.value".
func ToGJSON(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	var out []string
	for _, part := range strings.Split(path, ".") {
		key, idxs, err := ParseKeyAndIndexes(part)
		if err != nil {
			return "", err
		}
		if key != "" {
			out = append(out, escape(key))
		}
		for _, idx := range idxs {
			if idx < 0 {
				return "", fmt.Errorf("negative index in %s", part)
			}
			out = append(out, strconv.Itoa(idx))
		}
	}
	return strings.Join(out, "."), nil
}

// ParseKeyAndIndexes parses a token like "foo[0][1]" or "[0]" or "bar" into base key and indexes.
func ParseKeyAndIndexes(token string) (string, []int, error) {
	if token == "" {
		return "", nil, fmt.Errorf("empty token")
	}
	idxs := []int{}
	br := strings.Index(token, "[")
	if br == -1 {
		return token, idxs, nil
	}
	key := token[:br]
	rest := token[br:]
	for len(rest) > 0 {
		if !strings.HasPrefix(rest, "[") {
			return "", nil, fmt.Errorf("invalid index syntax in %s", token)
		}
		closePos := strings.Index(rest, "]")
		if closePos == -1 {
			return "", nil, fmt.Errorf("missing closing ] in %s", token)
		}
		numStr := rest[1:closePos]
		if numStr == "" {
			return "", nil, fmt.Errorf("empty index in %s", token)
		}
		n, err := strconv.Atoi(numStr)
		if err != nil {
			return "", nil, fmt.Errorf("invalid index '%s' in %s", numStr, token)
		}
		idxs = append(idxs, n)
		rest = rest[closePos+1:]
	}
	return key, idxs, nil
}

func escape(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '*', '?', '|', '#', '@', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func scalar(r gjson.Result) (string, bool) {
	switch r.Type {
	case gjson.String:
		return r.Str, true
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return strconv.FormatInt(int64(r.Num), 10), true
		}
		return strconv.FormatFloat(r.Num, 'f', -1, 64), true
	case gjson.True:
		return "true", true
	case gjson.False:
		return "false", true
	default:
		return "", false
	}
}
