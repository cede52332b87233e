// internal/docker/container.go
package docker

import (
	"context"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/rusenback/dockerconsole/internal/model"
)

// ListContainers returns all containers, running and stopped
func (c *Client) ListContainers() ([]model.Container, error) {
	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	containers, err := c.cli.ContainerList(ctx, container.ListOptions{
		All: true,
	})
	if err != nil {
		return nil, err
	}

	result := make([]model.Container, 0, len(containers))
	for _, cont := range containers {
		result = append(result, toContainer(cont))
	}

	return result, nil
}

func toContainer(cont types.Container) model.Container {
	name := cont.ID
	if len(cont.Names) > 0 {
		name = strings.TrimPrefix(cont.Names[0], "/")
	}

	id := cont.ID
	if len(id) > 12 {
		id = id[:12]
	}

	ports := make([]model.Port, 0, len(cont.Ports))
	for _, p := range cont.Ports {
		ports = append(ports, model.Port{
			Private: int(p.PrivatePort),
			Public:  int(p.PublicPort),
			Type:    p.Type,
		})
	}

	return model.Container{
		ID:          id,
		Name:        name,
		Image:       cont.Image,
		Status:      cont.Status,
		State:       cont.State,
		Created:     time.Unix(cont.Created, 0),
		Ports:       ports,
		NetworkMode: cont.HostConfig.NetworkMode,
	}
}

// StartContainer starts a container
func (c *Client) StartContainer(id string) error {
	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	return c.cli.ContainerStart(ctx, id, container.StartOptions{})
}

// StopContainer stops a container, giving it ten seconds to exit
func (c *Client) StopContainer(id string) error {
	ctx, cancel := context.WithTimeout(c.ctx, 20*time.Second)
	defer cancel()

	timeout := 10
	return c.cli.ContainerStop(ctx, id, container.StopOptions{
		Timeout: &timeout,
	})
}

// RestartContainer restarts a container
func (c *Client) RestartContainer(id string) error {
	ctx, cancel := context.WithTimeout(c.ctx, 20*time.Second)
	defer cancel()

	timeout := 10
	return c.cli.ContainerRestart(ctx, id, container.StopOptions{
		Timeout: &timeout,
	})
}
