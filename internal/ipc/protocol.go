package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/stratum/internal/compositor"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/workspace"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload            CommandType = "RELOAD"
	CommandGetStatus         CommandType = "GET_STATUS"
	CommandGetMonitors       CommandType = "GET_MONITORS"
	CommandListEffects       CommandType = "LIST_EFFECTS"
	CommandLoadEffect        CommandType = "LOAD_EFFECT"
	CommandUnloadEffect      CommandType = "UNLOAD_EFFECT"
	CommandToggleEffect      CommandType = "TOGGLE_EFFECT"
	CommandReconfigureEffect CommandType = "RECONFIGURE_EFFECT"
	CommandTriggerEffect     CommandType = "TRIGGER_EFFECT"
	CommandGetStack          CommandType = "GET_STACK"
	CommandRaise             CommandType = "RAISE"
	CommandLower             CommandType = "LOWER"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	DaemonRunning bool             `json:"daemon_running"`
	Windows       int              `json:"windows"`
	ActiveWindow  uint32           `json:"active_window,omitempty"`
	Loaded        []string         `json:"loaded_effects"`
	Active        []string         `json:"active_effects"`
	Compositor    compositor.Stats `json:"compositor"`
	ConfigPath    string           `json:"config_path,omitempty"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

type EffectsData struct {
	Effects []effects.Status `json:"effects"`
}

// EffectPayload names the effect for the *_EFFECT commands.
type EffectPayload struct {
	Name string `json:"name"`
}

type StackData struct {
	Windows []workspace.StackEntry `json:"windows"`
}

// WindowPayload names the window for RAISE and LOWER. Zero means the active
// window.
type WindowPayload struct {
	Window uint32 `json:"window"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
