package asr

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"speechcli/internal/errorsx"
	"speechcli/internal/jsonpath"
	"speechcli/internal/logging"
)

// HTTPBackend posts the audio as multipart/form-data to any
// OpenAI-compatible or custom endpoint.
type HTTPBackend struct {
	opts       Options
	httpClient *http.Client
	extra      map[string]interface{}
	log        zerolog.Logger
}

// NewHTTP parses ExtraConfig and returns the backend.
func NewHTTP(opts Options, httpClient *http.Client) (*HTTPBackend, error) {
	if opts.Endpoint == "" {
		return nil, errorsx.Errorf(errorsx.ReasonConfiguration, "api endpoint is empty")
	}
	b := &HTTPBackend{opts: opts, httpClient: httpClient, log: logging.WithComponent("asr")}
	if opts.ExtraConfig != "" {
		b.extra = make(map[string]interface{})
		if err := json.Unmarshal([]byte(opts.ExtraConfig), &b.extra); err != nil {
			return nil, errorsx.Wrap(fmt.Errorf("invalid extra-config JSON: %w", err), errorsx.ReasonConfiguration)
		}
	}
	if b.httpClient == nil {
		b.httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return b, nil
}

func (b *HTTPBackend) Name() string { return "http" }

// TranscribeFile uploads path and extracts the text from the JSON reply.
func (b *HTTPBackend) TranscribeFile(ctx context.Context, path string) (Result, error) {
	body, contentType, err := b.form(path)
	if err != nil {
		return Result{}, errorsx.Wrap(err, errorsx.ReasonSTTUnknown)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.opts.Endpoint, body)
	if err != nil {
		return Result{}, errorsx.Wrap(fmt.Errorf("new request error: %w", err), errorsx.ReasonSTTUnknown)
	}
	req.Header.Set("Content-Type", contentType)
	if b.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.opts.APIKey)
	}
	req.Header.Set("User-Agent", "speechcli/1.0")

	b.log.Debug().Str("file", path).Str("endpoint", b.opts.Endpoint).Msg("uploading")
	start := time.Now()
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Result{}, transportError(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, transportError(err)
	}
	b.log.Debug().Dur("duration", time.Since(start)).Int("status", resp.StatusCode).Msg("upload finished")

	if resp.StatusCode != http.StatusOK {
		return Result{Raw: raw}, statusError(resp.StatusCode, raw)
	}
	return Result{Text: jsonpath.ExtractText(raw, b.opts.TextPath), Raw: raw}, nil
}

func (b *HTTPBackend) form(path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open file error: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("create form file error: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy file error: %w", err)
	}

	fields := make(map[string]interface{})
	if b.opts.Model != "" {
		fields["model"] = b.opts.Model
	}
	if b.opts.Language != "" {
		fields["language"] = b.opts.Language
	}
	if b.opts.Prompt != "" {
		fields["prompt"] = b.opts.Prompt
	}
	for k, v := range b.extra {
		fields[k] = v
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := writer.WriteField(k, fieldValue(fields[k])); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func fieldValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool, float64, int:
		return fmt.Sprintf("%v", val)
	default:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", val)
	}
}

func formatResponse(b []byte) string {
	if len(b) == 0 {
		return "<empty>"
	}
	const maxText = 1000
	const maxBin = 256

	if utf8.Valid(b) {
		s := string(b)
		if len(s) > maxText {
			return fmt.Sprintf("%s... (truncated, total %d bytes)", s[:maxText], len(b))
		}
		return s
	}

	if len(b) > maxBin {
		return fmt.Sprintf("<binary %d bytes, prefix hex: %s...>", len(b), hex.EncodeToString(b[:maxBin]))
	}
	return fmt.Sprintf("<binary %d bytes, hex: %s>", len(b), hex.EncodeToString(b))
}
