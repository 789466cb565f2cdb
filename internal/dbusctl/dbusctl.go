// Package dbusctl exports the effect and stacking controls on D-Bus, using
// the same method names as KWin's org.kde.kwin.Effects interface.
package dbusctl

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/ipc"
)

const (
	ObjectPath = dbus.ObjectPath("/Effects")
	Interface  = "io.github.stratum.Effects"
)

// methodNames maps Go method names to their D-Bus names.
var methodNames = map[string]string{
	"LoadEffect":        "loadEffect",
	"UnloadEffect":      "unloadEffect",
	"ToggleEffect":      "toggleEffect",
	"ReconfigureEffect": "reconfigureEffect",
	"IsEffectLoaded":    "isEffectLoaded",
	"Trigger":           "trigger",
	"ListOfEffects":     "listOfEffects",
	"LoadedEffects":     "loadedEffects",
	"ActiveEffects":     "activeEffects",
	"StackingOrder":     "stackingOrder",
	"Raise":             "raise",
	"Lower":             "lower",
	"Reload":            "reload",
}

// Effects is the exported object. Every method forwards to the controller.
type Effects struct {
	ctl ipc.Controller
	log *slog.Logger
}

func NewEffects(ctl ipc.Controller, logger *slog.Logger) *Effects {
	if logger == nil {
		logger = slog.Default()
	}
	return &Effects{ctl: ctl, log: logger}
}

func toError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	return dbus.MakeFailedError(err)
}

// LoadEffect reports whether the effect is loaded afterwards.
func (e *Effects) LoadEffect(name string) (bool, *dbus.Error) {
	if err := e.ctl.LoadEffect(name); err != nil {
		e.log.Debug("dbus loadEffect failed", "effect", name, "error", err)
		return false, nil
	}
	return true, nil
}

func (e *Effects) UnloadEffect(name string) *dbus.Error {
	return toError(e.ctl.UnloadEffect(name))
}

func (e *Effects) ToggleEffect(name string) *dbus.Error {
	return toError(e.ctl.ToggleEffect(name))
}

func (e *Effects) ReconfigureEffect(name string) *dbus.Error {
	return toError(e.ctl.ReconfigureEffect(name))
}

func (e *Effects) IsEffectLoaded(name string) (bool, *dbus.Error) {
	loaded, err := e.loaded()
	if err != nil {
		return false, toError(err)
	}
	for _, n := range loaded {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (e *Effects) Trigger(name string) *dbus.Error {
	return toError(e.ctl.TriggerEffect(name))
}

func (e *Effects) ListOfEffects() ([]string, *dbus.Error) {
	list, err := e.ctl.Effects()
	if err != nil {
		return nil, toError(err)
	}
	names := make([]string, len(list))
	for i, st := range list {
		names[i] = st.Name
	}
	return names, nil
}

func (e *Effects) loaded() ([]string, error) {
	st, err := e.ctl.Status()
	if err != nil {
		return nil, err
	}
	return st.Loaded, nil
}

func (e *Effects) LoadedEffects() ([]string, *dbus.Error) {
	names, err := e.loaded()
	if names == nil {
		names = []string{}
	}
	return names, toError(err)
}

func (e *Effects) ActiveEffects() ([]string, *dbus.Error) {
	st, err := e.ctl.Status()
	if err != nil {
		return nil, toError(err)
	}
	if st.Active == nil {
		return []string{}, nil
	}
	return st.Active, nil
}

// StackingOrder returns window ids bottom to top.
func (e *Effects) StackingOrder() ([]uint32, *dbus.Error) {
	stack, err := e.ctl.Stack()
	if err != nil {
		return nil, toError(err)
	}
	ids := make([]uint32, len(stack))
	for i, w := range stack {
		ids[i] = w.ID
	}
	return ids, nil
}

func (e *Effects) Raise(window uint32) *dbus.Error {
	return toError(e.ctl.Raise(window))
}

func (e *Effects) Lower(window uint32) *dbus.Error {
	return toError(e.ctl.Lower(window))
}

func (e *Effects) Reload() *dbus.Error {
	return toError(e.ctl.Reload())
}

// Service owns the bus connection and the exported object.
type Service struct {
	conn *dbus.Conn
	name string
	log  *slog.Logger
}

// Start connects to the configured bus, exports obj and claims the name.
func Start(cfg config.DBusConfig, obj *Effects, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		conn *dbus.Conn
		err  error
	)
	switch cfg.Bus {
	case "system":
		conn, err = dbus.ConnectSystemBus()
	default:
		conn, err = dbus.ConnectSessionBus()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s bus: %w", busName(cfg.Bus), err)
	}

	if err := conn.ExportWithMap(obj, methodNames, ObjectPath, Interface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export effects object: %w", err)
	}
	node := &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: Interface, Methods: Methods()},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export introspection data: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = config.DefaultBusName
	}
	reply, err := conn.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to request bus name %s: %w", name, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s is already taken", name)
	}

	logger.Info("dbus service started", "bus", busName(cfg.Bus), "name", name, "path", ObjectPath)
	return &Service{conn: conn, name: name, log: logger}, nil
}

func busName(bus string) string {
	if bus == "system" {
		return "system"
	}
	return "session"
}

// Stop releases the name and closes the connection.
func (s *Service) Stop() error {
	if _, err := s.conn.ReleaseName(s.name); err != nil {
		s.log.Debug("failed to release bus name", "name", s.name, "error", err)
	}
	return s.conn.Close()
}

// Methods describes the exported interface for introspection.
func Methods() []introspect.Method {
	in := func(name, typ string) introspect.Arg { return introspect.Arg{Name: name, Type: typ, Direction: "in"} }
	out := func(name, typ string) introspect.Arg { return introspect.Arg{Name: name, Type: typ, Direction: "out"} }
	name := in("name", "s")
	window := in("window", "u")
	return []introspect.Method{
		{Name: "loadEffect", Args: []introspect.Arg{name, out("ok", "b")}},
		{Name: "unloadEffect", Args: []introspect.Arg{name}},
		{Name: "toggleEffect", Args: []introspect.Arg{name}},
		{Name: "reconfigureEffect", Args: []introspect.Arg{name}},
		{Name: "isEffectLoaded", Args: []introspect.Arg{name, out("loaded", "b")}},
		{Name: "trigger", Args: []introspect.Arg{name}},
		{Name: "listOfEffects", Args: []introspect.Arg{out("effects", "as")}},
		{Name: "loadedEffects", Args: []introspect.Arg{out("effects", "as")}},
		{Name: "activeEffects", Args: []introspect.Arg{out("effects", "as")}},
		{Name: "stackingOrder", Args: []introspect.Arg{out("windows", "au")}},
		{Name: "raise", Args: []introspect.Arg{window}},
		{Name: "lower", Args: []introspect.Arg{window}},
		{Name: "reload"},
	}
}
