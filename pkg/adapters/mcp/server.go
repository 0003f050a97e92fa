// Package mcp exposes the planner as Model Context Protocol tools, so an assistant
// can drive the walk flow or ask for a one-off route.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/citywalk"
	"github.com/aretw0/citywalk/internal/logging"
	"github.com/aretw0/citywalk/pkg/adapters/locator"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
	"github.com/aretw0/citywalk/pkg/runner"
)

const (
	stateURI   = "citywalk://state"
	catalogURI = "citywalk://catalog"
)

// TriggerResponse is the result of every flow tool: the snapshot after the trigger settled,
// the rejection or failure message if any, and the map link for open_map.
type TriggerResponse struct {
	Snapshot *domain.Snapshot `json:"snapshot" jsonschema_description:"The view model after the call"`
	Error    string           `json:"error,omitempty" jsonschema_description:"Why the trigger was rejected or failed"`
	URL      string           `json:"url,omitempty" jsonschema_description:"Directions link (open_map only)"`
}

// Catalog lists the selectable preference labels.
type Catalog struct {
	Themes    []string `json:"themes"`
	Durations []string `json:"durations"`
}

// Server wraps the controller and exposes it as an MCP server.
type Server struct {
	ctrl      ports.Controller
	generator ports.RouteGenerator
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGenerator enables the stateless generate_route tool.
func WithGenerator(g ports.RouteGenerator) Option {
	return func(s *Server) {
		s.generator = g
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(ctrl ports.Controller, opts ...Option) *Server {
	s := &Server{
		ctrl:      ctrl,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("citywalk-mcp", strings.TrimSpace(citywalk.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("MCP Server shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the current view model: state, location, preferences, route and walkthrough progress."),
		mcp.WithOutputSchema[TriggerResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("start",
		mcp.WithDescription("Acquire the location and move from WELCOME to PREFERENCES. Pass latitude and longitude to use a known position."),
		mcp.WithNumber("latitude", mcp.Min(-90), mcp.Max(90), mcp.Description("Known latitude (optional)")),
		mcp.WithNumber("longitude", mcp.Min(-180), mcp.Max(180), mcp.Description("Known longitude (optional)")),
		mcp.WithOutputSchema[TriggerResponse](),
	), s.handleStart)

	s.mcpServer.AddTool(mcp.NewTool("set_preferences",
		mcp.WithDescription("Change the theme and duration while in PREFERENCES."),
		mcp.WithString("theme", mcp.Required(), mcp.Description("Walk theme: "+strings.Join(domain.Themes, ", "))),
		mcp.WithString("duration", mcp.Required(), mcp.Description("Walk duration: "+strings.Join(domain.Durations, ", "))),
		mcp.WithOutputSchema[TriggerResponse](),
	), s.handleSetPreferences)

	s.mcpServer.AddTool(mcp.NewTool("submit_preferences",
		mcp.WithDescription("Generate a route for the selected (or given) preferences and move to ROUTE_PREVIEW."),
		mcp.WithString("theme", mcp.Description("Walk theme (defaults to the current selection)")),
		mcp.WithString("duration", mcp.Description("Walk duration (defaults to the current selection)")),
		mcp.WithOutputSchema[TriggerResponse](),
	), s.handleSubmit)

	s.mcpServer.AddTool(mcp.NewTool("start_navigation",
		mcp.WithDescription("Start the walkthrough at the first stop."),
		mcp.WithOutputSchema[TriggerResponse](),
	), s.trigger(s.ctrl.StartNavigation))

	s.mcpServer.AddTool(mcp.NewTool("back",
		mcp.WithDescription("Leave the route preview and return to PREFERENCES."),
		mcp.WithOutputSchema[TriggerResponse](),
	), s.trigger(s.ctrl.Back))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Mark the current stop as visited and move to the next one."),
		mcp.WithOutputSchema[TriggerResponse](),
	), s.trigger(s.ctrl.Advance))

	s.mcpServer.AddTool(mcp.NewTool("open_map",
		mcp.WithDescription("Return a walking directions link to the current stop."),
		mcp.WithOutputSchema[TriggerResponse](),
	), s.handleOpenMap)

	s.mcpServer.AddTool(mcp.NewTool("end_navigation",
		mcp.WithDescription("Discard the route and return to WELCOME."),
		mcp.WithOutputSchema[TriggerResponse](),
	), s.trigger(s.ctrl.End))

	s.mcpServer.AddTool(mcp.NewTool("dismiss_error",
		mcp.WithDescription("Clear the current alert."),
		mcp.WithOutputSchema[TriggerResponse](),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.result(TriggerResponse{Snapshot: s.ctrl.DismissError()}, nil), nil
	})

	if s.generator != nil {
		s.mcpServer.AddTool(mcp.NewTool("generate_route",
			mcp.WithDescription("Generate a walking route for a position without touching the current session."),
			mcp.WithNumber("latitude", mcp.Required(), mcp.Min(-90), mcp.Max(90)),
			mcp.WithNumber("longitude", mcp.Required(), mcp.Min(-180), mcp.Max(180)),
			mcp.WithString("theme", mcp.Required(), mcp.Description("Walk theme")),
			mcp.WithString("duration", mcp.Required(), mcp.Description("Walk duration")),
			mcp.WithOutputSchema[domain.WalkRoute](),
		), mcp.NewStructuredToolHandler(s.handleGenerateRoute))
	}
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TriggerResponse, error) {
	return TriggerResponse{Snapshot: s.ctrl.Snapshot()}, nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	_, hasLat := args["latitude"]
	_, hasLng := args["longitude"]
	if hasLat != hasLng {
		return mcp.NewToolResultError("latitude and longitude must be given together"), nil
	}

	var (
		snap *domain.Snapshot
		err  error
	)
	if hasLat {
		loc := domain.Coordinates{
			Latitude:  request.GetFloat("latitude", 0),
			Longitude: request.GetFloat("longitude", 0),
		}
		snap, err = s.ctrl.StartWith(ctx, locator.Static(loc))
	} else {
		snap, err = s.ctrl.Start(ctx)
	}
	return s.result(TriggerResponse{Snapshot: snap}, err), nil
}

func (s *Server) handleSetPreferences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefs, err := s.preferences(request, s.ctrl.Snapshot().Preferences)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.ctrl.SetPreferences(prefs)
	return s.result(TriggerResponse{Snapshot: snap}, err), nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefs, err := s.preferences(request, s.ctrl.Snapshot().Preferences)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.ctrl.Submit(ctx, prefs)
	return s.result(TriggerResponse{Snapshot: snap}, err), nil
}

func (s *Server) handleOpenMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := s.ctrl.OpenMap(ctx)
	if err != nil && url != "" {
		// The link stays usable when the host-side launcher fails.
		s.logger.Warn("MCP OpenMap: launcher failed", "err", err)
		err = nil
	}
	return s.result(TriggerResponse{Snapshot: s.ctrl.Snapshot(), URL: url}, err), nil
}

func (s *Server) handleGenerateRoute(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.WalkRoute, error) {
	loc := domain.Coordinates{
		Latitude:  request.GetFloat("latitude", 0),
		Longitude: request.GetFloat("longitude", 0),
	}
	if err := loc.Validate(); err != nil {
		return domain.WalkRoute{}, err
	}
	prefs, err := s.preferences(request, domain.UserPreferences{})
	if err != nil {
		return domain.WalkRoute{}, err
	}
	if err := prefs.Validate(true); err != nil {
		return domain.WalkRoute{}, err
	}

	route, err := s.generator.Generate(ctx, loc, prefs)
	if err != nil {
		s.logger.Error("MCP GenerateRoute: failed", "err", err)
		return domain.WalkRoute{}, fmt.Errorf("generate failed: %w", err)
	}
	return *route, nil
}

// trigger adapts a context-only controller call to a tool handler.
func (s *Server) trigger(call func(context.Context) (*domain.Snapshot, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := call(ctx)
		return s.result(TriggerResponse{Snapshot: snap}, err), nil
	}
}

// preferences reads theme and duration from the request, falling back to def for missing labels.
func (s *Server) preferences(request mcp.CallToolRequest, def domain.UserPreferences) (domain.UserPreferences, error) {
	prefs := def
	for key, dst := range map[string]*string{"theme": &prefs.Theme, "duration": &prefs.Duration} {
		raw := request.GetString(key, "")
		if raw == "" {
			continue
		}
		clean, err := runner.SanitizeLabel(raw)
		if err != nil {
			s.logger.Warn("MCP: input rejected", "field", key, "err", err, "size", len(raw))
			return prefs, fmt.Errorf("%s rejected: %w", key, err)
		}
		*dst = clean
	}
	return prefs, nil
}

// result builds a structured tool result. Controller errors are reported in-band
// with the snapshot, flagged as tool errors.
func (s *Server) result(resp TriggerResponse, err error) *mcp.CallToolResult {
	if err != nil {
		resp.Error = err.Error()
	}
	text, mErr := json.Marshal(resp)
	if mErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", mErr))
	}
	res := mcp.NewToolResultStructured(resp, string(text))
	res.IsError = err != nil
	return res
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(stateURI, "Current Walk State",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.ctrl.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode state: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: stateURI, MIMEType: "application/json", Text: string(jsonBytes)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Theme And Duration Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(Catalog{Themes: domain.Themes, Durations: domain.Durations})
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: catalogURI, MIMEType: "application/json", Text: string(jsonBytes)},
		}, nil
	})
}
