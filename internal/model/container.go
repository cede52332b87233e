// internal/model/container.go
package model

import "time"

// Container is a Docker container as shown on the grid
type Container struct {
	ID          string
	Name        string
	Image       string
	Status      string
	State       string
	Created     time.Time
	Ports       []Port
	NetworkMode string
}

// Port is a published or exposed container port
type Port struct {
	Private int
	Public  int
	Type    string
}

// Running reports whether the container is up
func (c Container) Running() bool {
	return c.State == "running" || c.State == "paused"
}

// Stopped reports whether the container has no live process to sample
func (c Container) Stopped() bool {
	return IsStoppedState(c.State)
}

// Networkless reports whether the container has no network of its own to
// account traffic for
func (c Container) Networkless() bool {
	return c.NetworkMode == "none" || c.NetworkMode == "host"
}

// IsStoppedState reports whether a Docker state string means stopped
func IsStoppedState(state string) bool {
	switch state {
	case "exited", "dead", "created", "removing":
		return true
	}
	return false
}
