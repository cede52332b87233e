package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rusenback/dockerconsole/internal/docker"
	"github.com/rusenback/dockerconsole/internal/model"
	"github.com/rusenback/dockerconsole/internal/storage"
)

// Message types for the Bubble Tea update loop
type tickMsg time.Time

type popInDoneMsg time.Time

type containersMsg struct {
	containers []model.Container
	err        error
}

type actionMsg struct {
	message string
	err     error
}

type statsMsg struct {
	id    string
	stats *model.Stats
	err   error
}

// snapshotMsg carries a one-shot sample taken when the panel opens
type snapshotMsg struct {
	id    string
	stats *model.Stats
	err   error
}

// statsDoneMsg is sent when a stats stream has closed
type statsDoneMsg struct {
	id string
}

type historyMsg struct {
	id     string
	points []storage.DataPoint
	err    error
}

// tickCmd sends a tick after every refresh interval
func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func popInCmd(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(t time.Time) tea.Msg {
		return popInDoneMsg(t)
	})
}

// fetchContainers creates a command to fetch the container list
func fetchContainers(client docker.DockerClient) tea.Cmd {
	return func() tea.Msg {
		containers, err := client.ListContainers()
		return containersMsg{containers: containers, err: err}
	}
}

// fetchSnapshot takes a single stats sample of container id
func fetchSnapshot(client docker.DockerClient, id string) tea.Cmd {
	return func() tea.Msg {
		s, err := client.GetContainerStats(id)
		return snapshotMsg{id: id, stats: s, err: err}
	}
}

// waitForStats waits for the next sample of the stream for container id
func waitForStats(id string, statsChan <-chan *model.Stats, errChan <-chan error) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case stats, ok := <-statsChan:
				if !ok {
					return statsDoneMsg{id: id}
				}
				return statsMsg{id: id, stats: stats}
			case err, ok := <-errChan:
				if !ok {
					errChan = nil
					continue
				}
				return statsMsg{id: id, err: err}
			}
		}
	}
}

func loadHistory(h History, id string, r storage.TimeRange) tea.Cmd {
	return func() tea.Msg {
		points, err := h.Query(id, r)
		return historyMsg{id: id, points: points, err: err}
	}
}

// startContainer creates a command to start a container
func startContainer(client docker.DockerClient, id, name string) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{
			message: fmt.Sprintf("Started: %s", name),
			err:     client.StartContainer(id),
		}
	}
}

// stopContainer creates a command to stop a container
func stopContainer(client docker.DockerClient, id, name string) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{
			message: fmt.Sprintf("Stopped: %s", name),
			err:     client.StopContainer(id),
		}
	}
}

// restartContainer creates a command to restart a container
func restartContainer(client docker.DockerClient, id, name string) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{
			message: fmt.Sprintf("Restarted: %s", name),
			err:     client.RestartContainer(id),
		}
	}
}
