package asr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"speechcli/internal/errorsx"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFFtest"), 0o644); err != nil {
		t.Fatalf("write temp file failed: %v", err)
	}
	return path
}

func TestOpenAITranscribe(t *testing.T) {
	var gotAuth, gotModel, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLang = r.FormValue("language")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"hello world"}`)
	}))
	defer server.Close()

	b, err := New(Options{Backend: "openai", APIKey: "sk-test", BaseURL: server.URL + "/", Language: "en", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := b.TranscribeFile(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if res.Text != "hello world" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotModel != DefaultModel || gotLang != "en" {
		t.Fatalf("unexpected form fields model=%q language=%q", gotModel, gotLang)
	}
}

func TestOpenAIStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   errorsx.ReasonCode
	}{
		{http.StatusTooManyRequests, errorsx.ReasonSTTRateLimit},
		{http.StatusUnauthorized, errorsx.ReasonSTTAuth},
		{http.StatusInternalServerError, errorsx.ReasonSTTUnknown},
	}
	for _, tc := range cases {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, `{"error":{"message":"nope","type":"test"}}`)
		}))

		b, err := NewOpenAI(Options{APIKey: "sk-test", BaseURL: server.URL + "/", Timeout: 5 * time.Second}, nil)
		if err != nil {
			server.Close()
			t.Fatalf("NewOpenAI failed: %v", err)
		}
		_, err = b.TranscribeFile(context.Background(), writeTempAudio(t))
		server.Close()
		if got := errorsx.Reason(err); got != tc.want {
			t.Fatalf("status %d: expected %s, got %s (%v)", tc.status, tc.want, got, err)
		}
		if calls != 1 {
			t.Fatalf("status %d: expected exactly one request, got %d", tc.status, calls)
		}
	}
}

func TestOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(Options{}, nil)
	if !errorsx.HasReason(err, errorsx.ReasonConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestHTTPBackendTextPath(t *testing.T) {
	var fields map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		fields = map[string]string{
			"model":       r.FormValue("model"),
			"temperature": r.FormValue("temperature"),
			"format":      r.FormValue("format"),
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		_, _ = io.WriteString(w, `{"results":[{"alternatives":[{"transcript":"from path"}]}]}`)
	}))
	defer server.Close()

	b, err := New(Options{
		Backend:     "http",
		Endpoint:    server.URL,
		Model:       "whisper-1",
		TextPath:    "results[0].alternatives[0].transcript",
		ExtraConfig: `{"temperature": 0, "format": "json"}`,
		Timeout:     5 * time.Second,
		VerifySSL:   true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := b.TranscribeFile(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if res.Text != "from path" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if fields["model"] != "whisper-1" || fields["temperature"] != "0" || fields["format"] != "json" {
		t.Fatalf("unexpected form fields %v", fields)
	}
	if len(res.Raw) == 0 {
		t.Fatalf("raw body should be kept")
	}
}

func TestHTTPBackendStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "denied")
	}))
	defer server.Close()

	b, err := NewHTTP(Options{Endpoint: server.URL}, nil)
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}
	_, err = b.TranscribeFile(context.Background(), writeTempAudio(t))
	if !errorsx.HasReason(err, errorsx.ReasonSTTAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if !strings.Contains(err.Error(), "denied") {
		t.Fatalf("error should carry the response body: %v", err)
	}
}

func TestHTTPBackendUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	b, err := NewHTTP(Options{Endpoint: url}, &http.Client{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}
	_, err = b.TranscribeFile(context.Background(), writeTempAudio(t))
	if !errorsx.HasReason(err, errorsx.ReasonSTTConnect) {
		t.Fatalf("expected connect error, got %v", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Options{Backend: "grpc"}); !errorsx.HasReason(err, errorsx.ReasonConfiguration) {
		t.Fatalf("expected configuration error for unknown backend, got %v", err)
	}
	if _, err := New(Options{Backend: "http", Endpoint: "http://x", ExtraConfig: "{"}); !errorsx.HasReason(err, errorsx.ReasonConfiguration) {
		t.Fatalf("expected configuration error for bad extra config, got %v", err)
	}
}

func TestFormatResponse(t *testing.T) {
	if formatResponse(nil) != "<empty>" {
		t.Fatalf("expected <empty>")
	}
	long := strings.Repeat("x", 1200)
	if got := formatResponse([]byte(long)); !strings.Contains(got, "truncated, total 1200 bytes") {
		t.Fatalf("expected truncation, got %q", got[len(got)-40:])
	}
	if got := formatResponse([]byte{0xff, 0xfe}); got != "<binary 2 bytes, hex: fffe>" {
		t.Fatalf("unexpected binary format %q", got)
	}
}
