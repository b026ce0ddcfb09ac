package asr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"speechcli/internal/errorsx"
	"speechcli/internal/logging"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-transcribe"

// OpenAIBackend calls the audio transcription endpoint through openai-go.
type OpenAIBackend struct {
	client   oai.Client
	model    string
	language string
	prompt   string
	log      zerolog.Logger
}

// NewOpenAI returns a backend that never retries; one failed request
// aborts the session.
func NewOpenAI(opts Options, httpClient *http.Client) (*OpenAIBackend, error) {
	if opts.APIKey == "" {
		return nil, errorsx.Errorf(errorsx.ReasonConfiguration, "openai: api key must not be empty")
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(httpClient))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	return &OpenAIBackend{
		client:   oai.NewClient(reqOpts...),
		model:    model,
		language: opts.Language,
		prompt:   opts.Prompt,
		log:      logging.WithComponent("asr"),
	}, nil
}

func (b *OpenAIBackend) Name() string { return "openai" }

// TranscribeFile uploads the file at path.
func (b *OpenAIBackend) TranscribeFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, errorsx.Wrap(fmt.Errorf("open file error: %w", err), errorsx.ReasonSTTUnknown)
	}
	defer f.Close()

	params := oai.AudioTranscriptionNewParams{
		File:  f,
		Model: oai.AudioModel(b.model),
	}
	if b.language != "" {
		params.Language = oai.String(b.language)
	}
	if b.prompt != "" {
		params.Prompt = oai.String(b.prompt)
	}

	start := time.Now()
	resp, err := b.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		var apierr *oai.Error
		if errors.As(err, &apierr) {
			return Result{}, errorsx.Wrap(
				fmt.Errorf("transcription request failed: status %d: %w", apierr.StatusCode, err),
				classifyStatus(apierr.StatusCode))
		}
		return Result{}, transportError(err)
	}
	b.log.Debug().Dur("duration", time.Since(start)).Str("model", b.model).Msg("transcription received")
	return Result{Text: resp.Text, Raw: []byte(resp.RawJSON())}, nil
}
