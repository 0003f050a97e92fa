package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/aretw0/citywalk/pkg/ports"
	"github.com/aretw0/citywalk/pkg/routegen"
)

type fakeModels struct {
	resp  *genai.GenerateContentResponse
	err   error
	model string
	cfg   *genai.GenerateContentConfig
	text  string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.cfg = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.text = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func reply(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestNew_MissingKey(t *testing.T) {
	_, err := New(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCompleter_Complete(t *testing.T) {
	t.Run("Builds Structured Request", func(t *testing.T) {
		f := &fakeModels{resp: reply(`{"title":`, `"x"}`)}
		c := newCompleter(f, WithModel("gemini-test"), WithTemperature(0.4))

		text, err := c.Complete(context.Background(), ports.CompletionRequest{
			Prompt:            "hello",
			SystemInstruction: "persona",
			Schema:            routegen.RouteSchema(),
		})
		require.NoError(t, err)
		assert.Equal(t, `{"title":"x"}`, text)
		assert.Equal(t, "gemini-test", f.model)
		assert.Equal(t, "hello", f.text)
		require.NotNil(t, f.cfg)
		assert.Equal(t, "application/json", f.cfg.ResponseMIMEType)
		require.NotNil(t, f.cfg.ResponseSchema)
		assert.Equal(t, genai.TypeObject, f.cfg.ResponseSchema.Type)
		require.NotNil(t, f.cfg.SystemInstruction)
		assert.Equal(t, "persona", f.cfg.SystemInstruction.Parts[0].Text)
		require.NotNil(t, f.cfg.Temperature)
		assert.InDelta(t, 0.4, *f.cfg.Temperature, 1e-6)
	})

	t.Run("Default Model", func(t *testing.T) {
		f := &fakeModels{resp: reply("ok")}
		c := newCompleter(f, WithModel(""))
		_, err := c.Complete(context.Background(), ports.CompletionRequest{Prompt: "p"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, f.model)
		assert.Empty(t, f.cfg.ResponseMIMEType)
	})

	t.Run("No Candidates", func(t *testing.T) {
		f := &fakeModels{resp: &genai.GenerateContentResponse{}}
		text, err := newCompleter(f).Complete(context.Background(), ports.CompletionRequest{Prompt: "p"})
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("Transport Error", func(t *testing.T) {
		f := &fakeModels{err: errors.New("503")}
		_, err := newCompleter(f).Complete(context.Background(), ports.CompletionRequest{Prompt: "p"})
		assert.ErrorContains(t, err, "503")
	})
}

func TestToGenaiSchema(t *testing.T) {
	s := toGenaiSchema(routegen.RouteSchema())

	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, s.Required, s.PropertyOrdering)

	stops := s.Properties["stops"]
	require.NotNil(t, stops)
	assert.Equal(t, genai.TypeArray, stops.Type)
	require.NotNil(t, stops.MinItems)
	assert.Equal(t, int64(3), *stops.MinItems)

	stop := stops.Items
	require.NotNil(t, stop)
	assert.Equal(t, genai.TypeNumber, stop.Properties["estimatedTimeMinutes"].Type)
	assert.Equal(t, genai.TypeArray, stop.Properties["tags"].Type)
	assert.Equal(t, genai.TypeString, stop.Properties["tags"].Items.Type)
	assert.Equal(t, genai.TypeNumber, stop.Properties["coordinates"].Properties["latitude"].Type)

	assert.Nil(t, toGenaiSchema(nil))
}
