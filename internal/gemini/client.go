package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/arthabot/ai-service/internal/config"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// ErrMissingAPIKey indicates the gateway has no credential configured.
// It is a per-request configuration error, never silently defaulted.
var ErrMissingAPIKey = errors.New("gemini: GEMINI_API_KEY is not configured")

// GatewayError wraps a failed upstream call (network error, non-success
// status, timeout, or an empty reply).
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gemini: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Client is the gateway to the Gemini generative-model endpoint. It issues
// one synchronous call per request under a bounded timeout and returns the
// raw reply text. Safe for concurrent use.
type Client struct {
	genai        *genai.Client
	textModel    string
	visionModel  string
	textTimeout  time.Duration
	mediaTimeout time.Duration
	log          zerolog.Logger
}

// NewClient creates a Gemini gateway from configuration. A missing API key
// is not fatal here; each call reports ErrMissingAPIKey instead, so the
// service can still start and serve /health.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log zerolog.Logger) (*Client, error) {
	c := &Client{
		textModel:    cfg.TextModel,
		visionModel:  cfg.VisionModel,
		textTimeout:  cfg.TextTimeout,
		mediaTimeout: cfg.MediaTimeout,
		log:          log,
	}

	if cfg.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set - model calls will fail with a configuration error")
		return c, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.genai = gc

	return c, nil
}

// GenerateText sends a text-only prompt and returns the raw reply text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.genai == nil {
		return "", ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.textTimeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	return c.generate(ctx, c.textModel, contents, "generate text")
}

// GenerateWithImage sends a prompt plus an inline base64-encoded JPEG and
// returns the raw reply text.
func (c *Client) GenerateWithImage(ctx context.Context, prompt, imageBase64 string) (string, error) {
	if c.genai == nil {
		return "", ErrMissingAPIKey
	}

	imageBytes, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return "", &GatewayError{Op: "decode image", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.mediaTimeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "image/jpeg",
						Data:     imageBytes,
					},
				},
			},
		},
	}

	return c.generate(ctx, c.visionModel, contents, "generate with image")
}

// GenerateWithAudio runs the two-step audio protocol: upload the blob to
// the file service to obtain a reference handle, then generate against the
// handle. Upload failure aborts the operation without attempting step two.
func (c *Client) GenerateWithAudio(ctx context.Context, prompt string, audio []byte) (string, error) {
	if c.genai == nil {
		return "", ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.mediaTimeout)
	defer cancel()

	file, err := c.genai.Files.Upload(ctx, bytes.NewReader(audio), &genai.UploadFileConfig{
		MIMEType: "audio/mp3",
	})
	if err != nil {
		return "", &GatewayError{Op: "upload audio", Err: err}
	}

	c.log.Info().Str("file_uri", file.URI).Msg("Audio uploaded to file service")

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					FileData: &genai.FileData{
						FileURI:  file.URI,
						MIMEType: file.MIMEType,
					},
				},
			},
		},
	}

	return c.generate(ctx, c.textModel, contents, "generate with audio")
}

func (c *Client) generate(ctx context.Context, model string, contents []*genai.Content, op string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", &GatewayError{Op: op, Err: err}
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", &GatewayError{Op: op, Err: errors.New("empty response from model")}
	}

	c.log.Debug().Str("model", model).Int("reply_len", len(rawText)).Msg("Model reply received")

	return rawText, nil
}
