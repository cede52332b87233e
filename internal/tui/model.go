package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rusenback/dockerconsole/internal/config"
	"github.com/rusenback/dockerconsole/internal/docker"
	"github.com/rusenback/dockerconsole/internal/grid"
	"github.com/rusenback/dockerconsole/internal/metrics"
	"github.com/rusenback/dockerconsole/internal/model"
	"github.com/rusenback/dockerconsole/internal/stats"
	"github.com/rusenback/dockerconsole/internal/storage"
)

// History persists samples and answers range queries. *storage.Storage
// satisfies it.
type History interface {
	Write(entry *storage.StatsEntry)
	Query(containerID string, timeRange storage.TimeRange) ([]storage.DataPoint, error)
}

// Options wires the model to its collaborators
type Options struct {
	Config config.Config
	Client docker.DockerClient
	// History is optional, nil disables persistence
	History History
	// Metrics is optional
	Metrics *metrics.Recorder
	Logger  *slog.Logger
	// Now defaults to time.Now
	Now func() time.Time
}

// Model represents the TUI application state
type Model struct {
	cfg     config.Config
	client  docker.DockerClient
	history History
	metrics *metrics.Recorder
	log     *slog.Logger
	now     func() time.Time

	keys      keyMap
	help      help.Model
	filter    textinput.Model
	filtering bool

	host   *cardHost
	engine *grid.Engine

	containers []model.Container
	cursor     int
	selectedID string
	offset     int

	width   int
	height  int
	loading bool
	err     error
	message string

	showStats    bool
	panel        *stats.Panel
	statsCancel  func()
	statsChan    <-chan *model.Stats
	statsErrChan <-chan error
	streamID     string

	historyPoints []storage.DataPoint
	preloaded     bool
	timeRange     storage.TimeRange
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	host := newCardHost(opts.Config.Grid, now)
	rec := opts.Metrics
	engine := grid.NewEngine(host, grid.Options{
		Count:  opts.Config.Grid.Count,
		OnPass: rec.ObserveLayout,
		Logger: logger,
	})

	filter := textinput.New()
	filter.Prompt = "Filter: "
	filter.Placeholder = "name, image or state"
	filter.CharLimit = 64

	return Model{
		cfg:       opts.Config,
		client:    opts.Client,
		history:   opts.History,
		metrics:   rec,
		log:       logger.With("component", "tui"),
		now:       now,
		keys:      defaultKeyMap(),
		help:      help.New(),
		filter:    filter,
		host:      host,
		engine:    engine,
		loading:   true,
		timeRange: storage.Range30Min,
	}
}

// Init initializes the model and returns initial commands
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchContainers(m.client), tickCmd(m.cfg.Docker.Refresh.Duration))
}

// Engine exposes the grid engine
func (m Model) Engine() *grid.Engine { return m.engine }

// Close stops the running stats stream
func (m Model) Close() {
	if m.statsCancel != nil {
		m.statsCancel()
	}
}

func (m Model) selected() (model.Container, bool) {
	for _, c := range m.containers {
		if c.ID == m.selectedID {
			return c, true
		}
	}
	return model.Container{}, false
}
