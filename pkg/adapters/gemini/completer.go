// Package gemini implements ports.Completer on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/aretw0/citywalk/internal/logging"
	"github.com/aretw0/citywalk/pkg/ports"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

// ErrMissingAPIKey is returned by New when no API key is available.
var ErrMissingAPIKey = errors.New("gemini: missing API key")

// contentGenerator is the subset of *genai.Models used by the Completer.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Completer sends structured-output requests to a Gemini model.
type Completer struct {
	models      contentGenerator
	model       string
	temperature *float32
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures the Completer.
type Option func(*Completer)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(c *Completer) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(c *Completer) {
		c.temperature = genai.Ptr(t)
	}
}

// WithTimeout bounds each call. Zero means no bound besides the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Completer) {
		c.timeout = d
	}
}

// WithLogger configures a logger for the Completer.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Completer) {
		c.logger = logger
	}
}

var _ ports.Completer = (*Completer)(nil)

// New creates a Completer talking to the Gemini Developer API.
func New(ctx context.Context, apiKey string, opts ...Option) (*Completer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return newCompleter(client.Models, opts...), nil
}

func newCompleter(models contentGenerator, opts ...Option) *Completer {
	c := &Completer{
		models: models,
		model:  DefaultModel,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Completer) Model() string {
	return c.model
}

// Complete performs one GenerateContent call with a JSON response schema.
func (c *Completer) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: c.temperature,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(req.Schema)
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := extractText(resp)
	c.logger.Debug("gemini call completed",
		"model", c.model,
		"elapsed", time.Since(start),
		"size", len(text),
	)
	return text, nil
}

// extractText concatenates the text parts of the first candidate that has any.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			if part != nil && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}

var schemaTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
}

// toGenaiSchema converts a provider-neutral schema into the SDK representation.
// Property ordering follows the required list so replies keep a stable field order.
func toGenaiSchema(s *ports.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        schemaTypes[strings.ToLower(s.Type)],
		Description: s.Description,
		Required:    append([]string(nil), s.Required...),
		MinItems:    s.MinItems,
		MaxItems:    s.MaxItems,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
		out.PropertyOrdering = append([]string(nil), s.Required...)
	}
	return out
}
