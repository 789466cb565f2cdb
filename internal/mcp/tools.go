package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/ipc"
	"github.com/1broseidon/stratum/internal/window"
	"github.com/1broseidon/stratum/internal/workspace"
)

func (s *Server) handleListEffects(_ context.Context, _ *mcpsdk.CallToolRequest, args ListEffectsInput) (*mcpsdk.CallToolResult, ListEffectsOutput, error) {
	list, err := s.ctl.Effects()
	if err != nil {
		return nil, ListEffectsOutput{}, err
	}
	out := ListEffectsOutput{Effects: make([]effects.Status, 0, len(list))}
	for _, st := range list {
		if args.LoadedOnly && !st.Loaded {
			continue
		}
		out.Effects = append(out.Effects, st)
	}
	return nil, out, nil
}

// effectTool runs op on the named effect and reports its state afterwards.
func (s *Server) effectTool(tool, name string, op func(string) error) (*mcpsdk.CallToolResult, EffectOutput, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, EffectOutput{}, fmt.Errorf("name is required")
	}
	if err := op(name); err != nil {
		s.log.Debug("mcp tool failed", "tool", tool, "effect", name, "error", err)
		return nil, EffectOutput{}, err
	}
	s.log.Info("mcp tool", "tool", tool, "effect", name)

	out := EffectOutput{Name: name}
	list, err := s.ctl.Effects()
	if err != nil {
		return nil, out, err
	}
	for _, st := range list {
		if st.Name == name {
			out.Loaded = st.Loaded
			out.Active = st.Active
		}
	}
	return nil, out, nil
}

func (s *Server) handleLoadEffect(_ context.Context, _ *mcpsdk.CallToolRequest, args EffectInput) (*mcpsdk.CallToolResult, EffectOutput, error) {
	return s.effectTool("load_effect", args.Name, s.ctl.LoadEffect)
}

func (s *Server) handleUnloadEffect(_ context.Context, _ *mcpsdk.CallToolRequest, args EffectInput) (*mcpsdk.CallToolResult, EffectOutput, error) {
	return s.effectTool("unload_effect", args.Name, s.ctl.UnloadEffect)
}

func (s *Server) handleToggleEffect(_ context.Context, _ *mcpsdk.CallToolRequest, args EffectInput) (*mcpsdk.CallToolResult, EffectOutput, error) {
	return s.effectTool("toggle_effect", args.Name, s.ctl.ToggleEffect)
}

func (s *Server) handleReconfigureEffect(_ context.Context, _ *mcpsdk.CallToolRequest, args EffectInput) (*mcpsdk.CallToolResult, EffectOutput, error) {
	return s.effectTool("reconfigure_effect", args.Name, s.ctl.ReconfigureEffect)
}

func (s *Server) handleTriggerEffect(_ context.Context, _ *mcpsdk.CallToolRequest, args EffectInput) (*mcpsdk.CallToolResult, EffectOutput, error) {
	return s.effectTool("trigger_effect", args.Name, s.ctl.TriggerEffect)
}

func (s *Server) handleGetStack(_ context.Context, _ *mcpsdk.CallToolRequest, args StackInput) (*mcpsdk.CallToolResult, StackOutput, error) {
	stack, err := s.ctl.Stack()
	if err != nil {
		return nil, StackOutput{}, err
	}
	if args.Desktop == nil {
		return nil, StackOutput{Windows: stack}, nil
	}
	out := StackOutput{Windows: make([]workspace.StackEntry, 0, len(stack))}
	for _, w := range stack {
		if w.Desktop == window.AllDesktops || w.Desktop == *args.Desktop {
			out.Windows = append(out.Windows, w)
		}
	}
	return nil, out, nil
}

func (s *Server) handleRaiseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowTool("raise_window", args.Window, s.ctl.Raise)
}

func (s *Server) handleLowerWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowTool("lower_window", args.Window, s.ctl.Lower)
}

func (s *Server) windowTool(tool string, id uint32, op func(uint32) error) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if err := op(id); err != nil {
		return nil, WindowOutput{}, err
	}
	s.log.Info("mcp tool", "tool", tool, "window", fmt.Sprintf("0x%x", id))

	stack, err := s.ctl.Stack()
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, position(stack, id), nil
}

// position finds id in stack. Id 0 matches the active window.
func position(stack []workspace.StackEntry, id uint32) WindowOutput {
	out := WindowOutput{Window: id, Position: -1, Total: len(stack)}
	for i, w := range stack {
		if w.ID == id || (id == 0 && w.Active) {
			out.Window = w.ID
			out.Position = i
		}
	}
	return out
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, ipc.StatusData, error) {
	st, err := s.ctl.Status()
	if err != nil {
		return nil, ipc.StatusData{}, err
	}
	return nil, *st, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadInput) (*mcpsdk.CallToolResult, ReloadOutput, error) {
	if err := s.ctl.Reload(); err != nil {
		return nil, ReloadOutput{}, err
	}
	s.log.Info("mcp tool", "tool", "reload_config")
	return nil, ReloadOutput{Reloaded: true}, nil
}
