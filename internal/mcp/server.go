// Package mcp serves the effect and stacking controls as MCP tools over
// stdio, forwarding every call to a running daemon.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/stratum/internal/ipc"
)

const (
	ServerName    = "stratum"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for stratum effect and stacking control.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       ipc.Controller
	log       *slog.Logger
}

// NewServer creates a new MCP server backed by ctl, normally an ipc.Client.
func NewServer(ctl ipc.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{ctl: ctl, log: logger}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_effects",
		Description: "List the compositor effects stratum knows about, with whether each is loaded, currently active, enabled by default and triggerable.",
	}, s.handleListEffects)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "load_effect",
		Description: "Load an effect by name. Fails when the effect is unknown or cannot be created on this display.",
	}, s.handleLoadEffect)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "unload_effect",
		Description: "Unload a loaded effect by name.",
	}, s.handleUnloadEffect)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_effect",
		Description: "Unload the effect if it is loaded, load it otherwise.",
	}, s.handleToggleEffect)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reconfigure_effect",
		Description: "Make a loaded effect re-read its settings from the current configuration.",
	}, s.handleReconfigureEffect)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trigger_effect",
		Description: "Start a triggerable effect such as presentwindows, as its hotkey or screen edge would.",
	}, s.handleTriggerEffect)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_stacking_order",
		Description: "Return the window stacking order from bottom to top, with each window's type, layer, desktop and state. Optionally filter to one desktop.",
	}, s.handleGetStack)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "raise_window",
		Description: "Raise a window to the top of its layer. Transients stay above their parents. Omit window to raise the active window.",
	}, s.handleRaiseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "lower_window",
		Description: "Lower a window to the bottom of its layer. Omit window to lower the active window.",
	}, s.handleLowerWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Return daemon status: uptime, managed window count, active window, loaded and active effects and compositor statistics.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Re-read the configuration files and apply them. An invalid file leaves the running configuration untouched.",
	}, s.handleReload)
}
