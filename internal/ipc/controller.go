package ipc

import (
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/workspace"
)

// Controller is the effect and stacking control surface of a running
// daemon. The daemon implements it in-process; Client implements it over
// the socket.
type Controller interface {
	Reload() error
	Status() (*StatusData, error)
	Monitors() (*MonitorsData, error)

	Effects() ([]effects.Status, error)
	LoadEffect(name string) error
	UnloadEffect(name string) error
	ToggleEffect(name string) error
	ReconfigureEffect(name string) error
	TriggerEffect(name string) error

	Stack() ([]workspace.StackEntry, error)
	Raise(window uint32) error
	Lower(window uint32) error
}
