package jsonpath

import "testing"

const sample = `{
	"text": "hello",
	"data": {"items": [{"value": "a"}, {"value": "b"}]},
	"results": [{"alternatives": [{"transcript": "ok", "confidence": 0.5}]}],
	"count": 3
}`

func TestExtractByPath(t *testing.T) {
	body := []byte(sample)

	if v, ok := ExtractByPath(body, "data.items[1].value"); !ok || v != "b" {
		t.Fatalf("expected b, got %v (ok=%v)", v, ok)
	}
	if v, ok := ExtractByPath(body, "results[0].alternatives[0].transcript"); !ok || v != "ok" {
		t.Fatalf("expected ok, got %v (ok=%v)", v, ok)
	}
	if v, ok := ExtractByPath(body, "results[0].alternatives[0].confidence"); !ok || v != "0.5" {
		t.Fatalf("expected 0.5, got %v (ok=%v)", v, ok)
	}
	if v, ok := ExtractByPath(body, "count"); !ok || v != "3" {
		t.Fatalf("expected 3, got %v (ok=%v)", v, ok)
	}
	if _, ok := ExtractByPath(body, "data.items[99].value"); ok {
		t.Fatalf("expected not found")
	}
	if _, ok := ExtractByPath(body, "data"); ok {
		t.Fatalf("objects are not text")
	}
}

func TestExtractTextFallbacks(t *testing.T) {
	if got := ExtractText([]byte(sample), "missing.path"); got != "hello" {
		t.Fatalf("expected text fallback, got %q", got)
	}
	if got := ExtractText([]byte(`{"n": 1, "a": "", "b": "first", "c": "second"}`), ""); got != "first" {
		t.Fatalf("expected first non-empty string, got %q", got)
	}
	if got := ExtractText([]byte(`not json`), "text"); got != "" {
		t.Fatalf("expected empty for invalid json, got %q", got)
	}
	if got := ExtractText([]byte(`["x"]`), ""); got != "" {
		t.Fatalf("expected empty for array root, got %q", got)
	}
}

func TestToGJSON(t *testing.T) {
	got, err := ToGJSON("results[0].alternatives[0].transcript")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "results.0.alternatives.0.transcript" {
		t.Fatalf("unexpected path %q", got)
	}
	if got, _ := ToGJSON("a*b"); got != `a\*b` {
		t.Fatalf("wildcards must be escaped, got %q", got)
	}
	if _, err := ToGJSON("a[x]"); err == nil {
		t.Fatalf("expected error for bad index")
	}
}

func TestParseKeyAndIndexes(t *testing.T) {
	key, idxs, err := ParseKeyAndIndexes("foo[0][1]")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if key != "foo" || len(idxs) != 2 || idxs[0] != 0 || idxs[1] != 1 {
		t.Fatalf("unexpected parse result: key=%s idxs=%v", key, idxs)
	}
	if _, _, err := ParseKeyAndIndexes("foo[1"); err == nil {
		t.Fatalf("expected error for missing ]")
	}
}
