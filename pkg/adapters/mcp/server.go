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

	"github.com/aretw0/metamaze"
	"github.com/aretw0/metamaze/internal/logging"
	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/aretw0/metamaze/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// MazesURI lists the maze library.
const MazesURI = "metamaze://mazes"

// SessionResponse is returned by new_session.
type SessionResponse struct {
	State *domain.State `json:"state" jsonschema_description:"The stored session"`
	Room  maze.RoomView `json:"room" jsonschema_description:"What the agent senses in the start room"`
}

// StepResponse is returned by choose_door.
type StepResponse struct {
	Result *metamaze.StepResult `json:"result" jsonschema_description:"Outcome of the chosen door"`
	Diff   *domain.StateDiff    `json:"diff,omitempty" jsonschema_description:"Changes to the stored session"`
}

type sessionArgs struct {
	SessionID string `mapstructure:"session_id"`
	Maze      string `mapstructure:"maze"`
	Goal      *int   `mapstructure:"goal"`
	Door      *int   `mapstructure:"door"`
	Format    string `mapstructure:"format"`
}

// Server exposes a session Host as an MCP server, so a model can play the
// maze through tools.
type Server struct {
	host      *session.Host
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(host *session.Host, opts ...Option) *Server {
	s := &Server{
		host:      host,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("metamaze-mcp", metamaze.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("new_session",
		mcp.WithDescription("Start a session in a maze from the library. Goals are numbered from 0."),
		mcp.WithString("maze", mcp.Required(), mcp.Description("Name of the maze, see "+MazesURI)),
		mcp.WithNumber("goal", mcp.Description("Goal to chase (default 0)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleNewSession))

	s.mcpServer.AddTool(mcp.NewTool("get_room",
		mcp.WithDescription("Describe the current room: open doors, visible goals and mark."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[maze.RoomView](),
	), mcp.NewStructuredToolHandler(s.handleGetRoom))

	s.mcpServer.AddTool(mcp.NewTool("choose_door",
		mcp.WithDescription("Choose a door of the current room. Doors may fail to open."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithNumber("door", mcp.Required(), mcp.Description("Door index")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleChooseDoor))

	s.mcpServer.AddTool(mcp.NewTool("plan",
		mcp.WithDescription("Ask the planner which door leads toward a goal."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithNumber("goal", mcp.Description("Goal index (defaults to the session goal)")),
		mcp.WithOutputSchema[metamaze.Advice](),
	), mcp.NewStructuredToolHandler(s.handlePlan))

	s.mcpServer.AddTool(mcp.NewTool("dump_map",
		mcp.WithDescription("Dump the planner's map with the path walked so far."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("format", mcp.Description("text or dot"), mcp.Enum("text", "dot")),
	), s.handleDumpMap)
}

func decodeArgs(args map[string]any) (sessionArgs, error) {
	var out sessionArgs
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(args); err != nil {
		return out, fmt.Errorf("invalid arguments: %w", err)
	}
	return out, nil
}

func (s *Server) handleNewSession(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (SessionResponse, error) {
	a, err := decodeArgs(args)
	if err != nil {
		return SessionResponse{}, err
	}
	if a.Maze == "" {
		return SessionResponse{}, errors.New("maze is required")
	}
	goal := 0
	if a.Goal != nil {
		goal = *a.Goal
	}

	state, err := s.host.Create(ctx, a.Maze, goal)
	if err != nil {
		return SessionResponse{}, err
	}
	room, err := s.host.Room(ctx, state.SessionID)
	if err != nil {
		return SessionResponse{}, err
	}
	s.logger.Info("MCP session created", "session_id", state.SessionID, "maze", a.Maze)
	return SessionResponse{State: state, Room: room}, nil
}

func (s *Server) handleGetRoom(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (maze.RoomView, error) {
	a, err := decodeArgs(args)
	if err != nil {
		return maze.RoomView{}, err
	}
	return s.host.Room(ctx, a.SessionID)
}

func (s *Server) handleChooseDoor(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (StepResponse, error) {
	a, err := decodeArgs(args)
	if err != nil {
		return StepResponse{}, err
	}
	if a.Door == nil {
		return StepResponse{}, errors.New("door is required")
	}
	res, diff, err := s.host.Step(ctx, a.SessionID, *a.Door)
	if err != nil {
		return StepResponse{}, err
	}
	return StepResponse{Result: res, Diff: diff}, nil
}

func (s *Server) handlePlan(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (metamaze.Advice, error) {
	a, err := decodeArgs(args)
	if err != nil {
		return metamaze.Advice{}, err
	}
	advice, err := s.host.Plan(ctx, a.SessionID, a.Goal)
	if err != nil {
		return metamaze.Advice{}, err
	}
	return *advice, nil
}

func (s *Server) handleDumpMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := decodeArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := mazemap.ParseDumpFormat(a.Format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	if err := s.host.Dump(ctx, a.SessionID, &sb, format); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dump failed: %v", err)), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(MazesURI, "Maze Library",
		mcp.WithResourceDescription("Names of the mazes new_session accepts"),
		mcp.WithMIMEType("application/json"),
	), s.readMazes)
}

func (s *Server) readMazes(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.host.Mazes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mazes: %w", err)
	}
	jsonBytes, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      MazesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
