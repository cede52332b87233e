// internal/docker/interface.go
package docker

import "github.com/rusenback/dockerconsole/internal/model"

// DockerClient lets the UI run against a fake in tests
type DockerClient interface {
	ListContainers() ([]model.Container, error)
	StartContainer(id string) error
	StopContainer(id string) error
	RestartContainer(id string) error
	GetContainerStats(id string) (*model.Stats, error)
	StreamContainerStats(id string) (<-chan *model.Stats, <-chan error, func())
	Close() error
}

var _ DockerClient = (*Client)(nil)
