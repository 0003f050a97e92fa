package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// Message is one NDJSON line written by the JSONHandler.
type Message struct {
	Type    string `json:"type"` // "view" or "system"
	View    *View  `json:"view,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Output emits the view as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, view View) error {
	return h.Encoder.Encode(Message{Type: "view", View: &view})
}

// Input reads one line: a JSON string ("t 2"), a command object
// ({"command":"theme","arg":"2"}) or plain text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(text) == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return SanitizeInput(val)
	}
	var obj struct {
		Command string `json:"command"`
		Arg     string `json:"arg"`
	}
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj.Command != "" {
		return SanitizeInput(strings.TrimSpace(obj.Command + " " + obj.Arg))
	}

	// Fallback: raw text
	return SanitizeInput(text)
}

// SystemOutput emits a system message line.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Message{Type: "system", Message: msg})
}
