package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/runtimepath"
	"github.com/1broseidon/stratum/internal/workspace"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

var _ Controller = (*Client)(nil)

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the daemon listening on socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Status retrieves daemon status
func (c *Client) Status() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Monitors retrieves monitor information
func (c *Client) Monitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// Effects lists every registered effect and its state.
func (c *Client) Effects() ([]effects.Status, error) {
	var data EffectsData
	if err := c.call(CommandListEffects, nil, &data); err != nil {
		return nil, err
	}
	return data.Effects, nil
}

func (c *Client) LoadEffect(name string) error {
	return c.call(CommandLoadEffect, EffectPayload{Name: name}, nil)
}

func (c *Client) UnloadEffect(name string) error {
	return c.call(CommandUnloadEffect, EffectPayload{Name: name}, nil)
}

func (c *Client) ToggleEffect(name string) error {
	return c.call(CommandToggleEffect, EffectPayload{Name: name}, nil)
}

func (c *Client) ReconfigureEffect(name string) error {
	return c.call(CommandReconfigureEffect, EffectPayload{Name: name}, nil)
}

func (c *Client) TriggerEffect(name string) error {
	return c.call(CommandTriggerEffect, EffectPayload{Name: name}, nil)
}

// Stack retrieves the stacking order, bottom to top.
func (c *Client) Stack() ([]workspace.StackEntry, error) {
	var data StackData
	if err := c.call(CommandGetStack, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

func (c *Client) Raise(window uint32) error {
	return c.call(CommandRaise, WindowPayload{Window: window}, nil)
}

func (c *Client) Lower(window uint32) error {
	return c.call(CommandLower, WindowPayload{Window: window}, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.Status()
	return err
}
