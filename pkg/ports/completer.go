package ports

import "context"

// CompletionRequest is a single structured-output request to a generative model.
type CompletionRequest struct {
	// Prompt is the user-role instruction.
	Prompt string
	// SystemInstruction sets the persona of the model.
	SystemInstruction string
	// Schema constrains the JSON reply. It uses the OpenAPI subset understood by
	// structured-output APIs (type, properties, items, required, description).
	Schema *Schema
}

// Schema is a provider-neutral JSON schema node.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	MinItems    *int64             `json:"minItems,omitempty"`
	MaxItems    *int64             `json:"maxItems,omitempty"`
}

// Completer defines the generation service boundary.
type Completer interface {
	// Complete sends the request and returns the raw reply text.
	// An empty string with a nil error is a valid (but unusable) reply.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
