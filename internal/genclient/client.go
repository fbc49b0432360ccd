package genclient

import (
	"context"
	"errors"
	"strings"

	"genstudio/internal/metrics"

	"github.com/rs/zerolog"
	genai "google.golang.org/genai"
)

const (
	DefaultImageModel = "gemini-2.5-flash-image"
	DefaultTextModel  = "gemini-2.5-flash"
)

// ErrMissingAPIKey is returned when a Gemini client is built without a key.
var ErrMissingAPIKey = errors.New("genclient: api key is required")

// ContentGenerator is the slice of *genai.Models the client needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client issues one generation call per operation and maps every failure to
// a fixed user-facing message. It never retries.
type Client struct {
	models     ContentGenerator
	imageModel string
	textModel  string
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Client)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithModels overrides the model names. Empty values keep the defaults.
func WithModels(imageModel, textModel string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(imageModel); s != "" {
			c.imageModel = s
		}
		if s := strings.TrimSpace(textModel); s != "" {
			c.textModel = s
		}
	}
}

func New(models ContentGenerator, opts ...Option) *Client {
	c := &Client{
		models:     models,
		imageModel: DefaultImageModel,
		textModel:  DefaultTextModel,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewGemini builds a Client on the Gemini API backend.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return New(cli.Models, opts...), nil
}

func (c *Client) Name() string { return "Gemini:" + c.imageModel + "," + c.textModel }

func (c *Client) ImageModel() string { return c.imageModel }
func (c *Client) TextModel() string  { return c.textModel }
