// Package asr sends recorded audio files to a speech-to-text service.
//
// Two backends exist: the OpenAI audio transcription API and a generic
// multipart endpoint whose JSON response is searched with a text path.
// Failures are classified as connectivity, auth, rate limit or unknown
// using the errorsx reason codes. No backend retries.
package asr

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"speechcli/internal/errorsx"
)

// Result is one transcription. Raw is the response body, kept for the cache.
type Result struct {
	Text string
	Raw  []byte
}

// Backend transcribes an audio file.
type Backend interface {
	TranscribeFile(ctx context.Context, path string) (Result, error)
	Name() string
}

// Options configures a backend.
type Options struct {
	Backend     string
	APIKey      string
	Model       string
	Language    string
	Prompt      string
	BaseURL     string
	Endpoint    string
	TextPath    string
	ExtraConfig string
	Timeout     time.Duration
	EnableHTTP2 bool
	VerifySSL   bool
}

// New builds the backend named by opts.Backend.
func New(opts Options) (Backend, error) {
	client := NewHTTPClient(opts.Timeout, opts.EnableHTTP2, opts.VerifySSL)
	switch strings.ToLower(opts.Backend) {
	case "", "openai":
		return NewOpenAI(opts, client)
	case "http":
		return NewHTTP(opts, client)
	default:
		return nil, errorsx.Errorf(errorsx.ReasonConfiguration, "unknown backend %q (supported: openai, http)", opts.Backend)
	}
}

// NewHTTPClient returns a pooled client shared by uploads.
func NewHTTPClient(timeout time.Duration, enableHTTP2, verifySSL bool) *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if !verifySSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if enableHTTP2 {
		_ = http2.ConfigureTransport(tr)
	}
	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}
}

// classifyStatus maps an HTTP status of a failed request to a reason.
func classifyStatus(code int) errorsx.ReasonCode {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errorsx.ReasonSTTAuth
	case code == http.StatusTooManyRequests:
		return errorsx.ReasonSTTRateLimit
	default:
		return errorsx.ReasonSTTUnknown
	}
}

// classifyTransport maps a request error that produced no response.
func classifyTransport(err error) errorsx.ReasonCode {
	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		return errorsx.ReasonSTTUnknown
	}
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return errorsx.ReasonSTTConnect
	}
	return errorsx.ReasonSTTUnknown
}

func statusError(code int, body []byte) error {
	return errorsx.Errorf(classifyStatus(code), "transcription request failed: status %d: %s", code, formatResponse(body))
}

func transportError(err error) error {
	return errorsx.Wrap(fmt.Errorf("transcription request failed: %w", err), classifyTransport(err))
}
