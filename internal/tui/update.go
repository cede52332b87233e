package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rusenback/dockerconsole/internal/gauge"
	"github.com/rusenback/dockerconsole/internal/grid"
	"github.com/rusenback/dockerconsole/internal/model"
	"github.com/rusenback/dockerconsole/internal/stats"
	"github.com/rusenback/dockerconsole/internal/storage"
)

// narrowStep is how many cells [ takes off the grid width
const narrowStep = 8

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := m.engine.Update(msg); cmd != nil {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.host.setAvailable(m.gridWidth())
		return m, tea.Batch(m.engine.OnWidthChanged(m.host.Width()), m.engine.OnResize())

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.handleKey(msg)

	case tickMsg:
		cmds := []tea.Cmd{fetchContainers(m.client), tickCmd(m.cfg.Docker.Refresh.Duration)}
		if m.panel != nil && m.history != nil {
			cmds = append(cmds, loadHistory(m.history, m.panel.ContainerID(), m.timeRange))
		}
		return m, tea.Batch(cmds...)

	case containersMsg:
		return m.updateContainers(msg)

	case actionMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Error: %v", msg.err)
			m.log.Warn("container action failed", "error", msg.err)
		} else {
			m.message = msg.message
		}
		return m, fetchContainers(m.client)

	case statsMsg:
		if m.panel == nil || msg.id != m.streamID {
			return m, nil
		}
		if msg.err != nil {
			m.message = fmt.Sprintf("Stats error: %v", msg.err)
			m.log.Warn("stats stream failed", "container", msg.id, "error", msg.err)
			return m, waitForStats(msg.id, m.statsChan, m.statsErrChan)
		}
		m.recordStats(msg.stats)
		return m, waitForStats(msg.id, m.statsChan, m.statsErrChan)

	case snapshotMsg:
		if m.panel == nil || msg.id != m.panel.ContainerID() {
			return m, nil
		}
		if msg.err != nil {
			m.log.Debug("stats snapshot failed", "container", msg.id, "error", msg.err)
			return m, nil
		}
		// The stream wins once it has delivered a sample
		if msg.stats != nil && !m.panel.HasData() {
			m.panel.OnDataUpdate(msg.stats)
		}
		return m, nil

	case statsDoneMsg:
		if msg.id == m.streamID {
			m.stopStream()
		}
		return m, nil

	case historyMsg:
		if m.panel == nil || msg.id != m.panel.ContainerID() {
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn("history query failed", "container", msg.id, "error", msg.err)
			return m, nil
		}
		m.historyPoints = msg.points
		if !m.preloaded {
			m.panel.Preload(trafficSamples(msg.points))
			m.preloaded = true
		}
		return m, nil

	case grid.LayoutCompleteMsg:
		if msg.ID != m.engine.ID() {
			return m, nil
		}
		m.clampOffset()
		cmds := []tea.Cmd{m.syncCursor()}
		if m.host.popping() {
			cmds = append(cmds, popInCmd(m.cfg.Grid.PopIn.Duration))
		}
		return m, tea.Batch(cmds...)

	case popInDoneMsg:
		if m.host.expirePopIns(time.Time(msg), m.cfg.Grid.PopIn.Duration) {
			return m, popInCmd(m.cfg.Grid.PopIn.Duration)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopStream()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		cmd = m.moveCursor(-m.columns())
	case key.Matches(msg, m.keys.Down):
		cmd = m.moveCursor(m.columns())
	case key.Matches(msg, m.keys.Left):
		cmd = m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		cmd = m.moveCursor(1)

	case key.Matches(msg, m.keys.Stats):
		if m.showStats {
			cmd = m.closeStats()
		} else {
			cmd = m.openStats()
		}

	case key.Matches(msg, m.keys.Start):
		if c, ok := m.selected(); ok {
			cmd = startContainer(m.client, c.ID, c.Name)
		}
	case key.Matches(msg, m.keys.Stop):
		if c, ok := m.selected(); ok {
			cmd = stopContainer(m.client, c.ID, c.Name)
		}
	case key.Matches(msg, m.keys.Restart):
		if c, ok := m.selected(); ok {
			cmd = restartContainer(m.client, c.ID, c.Name)
		}
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.message = "Refreshing..."
		cmd = fetchContainers(m.client)

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		cmd = m.filter.Focus()

	case key.Matches(msg, m.keys.More):
		cmd = m.engine.OnCountChanged(min(m.countBase()+1, m.host.Len()))
	case key.Matches(msg, m.keys.Fewer):
		cmd = m.engine.OnCountChanged(max(m.countBase()-1, 1))
	case key.Matches(msg, m.keys.All):
		cmd = m.engine.OnCountChanged(0)

	case key.Matches(msg, m.keys.Narrow):
		narrowed := max(int(m.host.Width())-narrowStep, m.cfg.Grid.MinCardWidth)
		cmd = m.engine.SetPreferredWidth(narrowed)
	case key.Matches(msg, m.keys.Widen):
		cmd = m.engine.SetPreferredWidth(0)

	case key.Matches(msg, m.keys.Range):
		r := rangeForKey(msg.String())
		if r == m.timeRange {
			break
		}
		m.timeRange = r
		m.historyPoints = nil
		if m.panel != nil && m.history != nil {
			cmd = loadHistory(m.history, m.panel.ContainerID(), r)
		}
	}

	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.AcceptFilter):
		m.filtering = false
		m.filter.Blur()
	case key.Matches(msg, m.keys.CancelFilter):
		m.filtering = false
		m.filter.SetValue("")
		m.filter.Blur()
	default:
		m.filter, cmd = m.filter.Update(msg)
	}

	if m.host.SetQuery(m.filter.Value()) {
		return m, tea.Batch(cmd, m.engine.OnItemsChanged())
	}
	return m, cmd
}

func (m Model) updateContainers(msg containersMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		m.log.Error("list containers", "error", msg.err)
		return m, nil
	}
	m.err = nil
	if m.message == "Refreshing..." {
		m.message = ""
	}

	current := make(map[string]model.Container, len(msg.containers))
	for _, c := range msg.containers {
		current[c.ID] = c
	}
	for _, old := range m.containers {
		if _, ok := current[old.ID]; !ok {
			m.metrics.Forget(old.Name)
		}
	}
	m.containers = msg.containers

	var cmds []tea.Cmd
	if m.host.SetContainers(msg.containers) {
		cmds = append(cmds, m.engine.OnItemsChanged())
	}

	if m.panel != nil {
		if c, ok := current[m.panel.ContainerID()]; ok {
			cmds = append(cmds, m.trackPanelState(c))
		}
	}

	return m, tea.Batch(cmds...)
}

// trackPanelState follows state changes of the panel's container
func (m *Model) trackPanelState(c model.Container) tea.Cmd {
	wasStopped := m.panel.Stopped()
	m.panel.OnContainerUpdate(c.State)

	switch {
	case m.panel.Stopped() && !wasStopped:
		m.stopStream()
	case !m.panel.Stopped() && m.streamID == "" && c.Running():
		return m.startStream(c)
	}
	return nil
}

func (m *Model) recordStats(s *model.Stats) {
	m.panel.OnDataUpdate(s)

	c, ok := m.selected()
	name := m.streamID
	if ok && c.ID == m.streamID {
		name = c.Name
	}
	m.metrics.ObserveStats(name, s)

	if m.history == nil || s == nil {
		return
	}
	at := s.Timestamp
	if at.IsZero() {
		at = m.now()
	}
	m.history.Write(&storage.StatsEntry{
		ContainerID:   m.streamID,
		Timestamp:     at,
		CPUPercent:    s.CPUPercent,
		MemoryPercent: s.MemoryPercent(),
		MemoryUsage:   s.MemoryUsage,
		MemoryLimit:   s.MemoryLimit,
		NetworkRx:     s.NetworkRx,
		NetworkTx:     s.NetworkTx,
		BlockRead:     s.BlockRead,
		BlockWrite:    s.BlockWrite,
		PIDs:          s.PIDs,
	})
}

func (m *Model) openStats() tea.Cmd {
	c, ok := m.selected()
	if !ok {
		m.message = "No container selected"
		return nil
	}
	m.showStats = true
	m.host.setAvailable(m.gridWidth())
	return tea.Batch(m.attachPanel(c), m.engine.OnWidthChanged(m.host.Width()))
}

func (m *Model) closeStats() tea.Cmd {
	m.stopStream()
	m.showStats = false
	m.panel = nil
	m.historyPoints = nil
	m.host.setAvailable(m.gridWidth())
	return m.engine.OnWidthChanged(m.host.Width())
}

// attachPanel points the stats panel at c and starts sampling it
func (m *Model) attachPanel(c model.Container) tea.Cmd {
	m.stopStream()
	m.panel = stats.NewPanel(c, stats.Options{
		Diameter:      m.cfg.Stats.GaugeDiameter,
		TrafficPoints: m.cfg.Stats.TrafficPoints,
	})
	m.historyPoints = nil
	m.preloaded = false

	var cmds []tea.Cmd
	if m.history != nil {
		cmds = append(cmds, loadHistory(m.history, c.ID, m.timeRange))
	}
	if c.Running() {
		cmds = append(cmds, fetchSnapshot(m.client, c.ID), m.startStream(c))
	}
	return tea.Batch(cmds...)
}

func (m *Model) startStream(c model.Container) tea.Cmd {
	statsChan, errChan, cancel := m.client.StreamContainerStats(c.ID)
	m.statsCancel = cancel
	m.statsChan = statsChan
	m.statsErrChan = errChan
	m.streamID = c.ID
	return waitForStats(c.ID, statsChan, errChan)
}

func (m *Model) stopStream() {
	if m.statsCancel != nil {
		m.statsCancel()
	}
	m.statsCancel = nil
	m.statsChan = nil
	m.statsErrChan = nil
	m.streamID = ""
}

// moveCursor moves the selection by delta cards in layout order
func (m *Model) moveCursor(delta int) tea.Cmd {
	cards := m.host.selectable()
	if len(cards) == 0 {
		return nil
	}
	next := min(max(m.cursor+delta, 0), len(cards)-1)
	if next == m.cursor && cards[next].container.ID == m.selectedID {
		return nil
	}
	m.cursor = next
	return m.selectCard(cards[next])
}

// syncCursor keeps the selection on the same container after the cards
// were reordered, or picks a neighbour when it went away.
func (m *Model) syncCursor() tea.Cmd {
	cards := m.host.selectable()
	if len(cards) == 0 {
		m.cursor = 0
		return nil
	}
	idx := -1
	for i, c := range cards {
		if c.container.ID == m.selectedID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		m.cursor = idx
		return nil
	}
	m.cursor = min(max(m.cursor, 0), len(cards)-1)
	return m.selectCard(cards[m.cursor])
}

func (m *Model) selectCard(c *card) tea.Cmd {
	m.selectedID = c.container.ID
	m.ensureVisible(c)

	cmds := []tea.Cmd{m.engine.OnContextSelected(m.selectedID)}
	if m.showStats && (m.panel == nil || m.panel.ContainerID() != m.selectedID) {
		cmds = append(cmds, m.attachPanel(c.container))
	}
	return tea.Batch(cmds...)
}

func (m *Model) ensureVisible(c *card) {
	top := int(math.Round(c.placement.Y))
	view := m.gridHeight()
	if top < m.offset {
		m.offset = top
	}
	if top+cardHeight > m.offset+view {
		m.offset = top + cardHeight - view
	}
	m.clampOffset()
}

// clampOffset keeps the scroll offset inside the laid out grid
func (m *Model) clampOffset() {
	limit := max(m.host.Height()-m.gridHeight(), 0)
	m.offset = min(max(m.offset, 0), limit)
}

func (m Model) columns() int {
	return max(m.engine.Last().Columns, 1)
}

// countBase is the effective visible count the +/- keys step from
func (m Model) countBase() int {
	if c := m.engine.Count(); c > 0 {
		return c
	}
	return m.host.Len()
}

func (m Model) panelWidth() int {
	if !m.showStats {
		return 0
	}
	w := max(m.width*2/5, m.cfg.Stats.GaugeDiameter*2+8)
	return min(w, max(m.width-m.cfg.Grid.MinCardWidth, 0))
}

func (m Model) gridWidth() int {
	return max(m.width-m.panelWidth(), 0)
}

// chromeLines are the rows taken by header, filter, message and help
const chromeLines = 5

func (m Model) gridHeight() int {
	return max(m.height-chromeLines, 1)
}

func rangeForKey(k string) storage.TimeRange {
	switch k {
	case "2":
		return storage.Range1Hour
	case "3":
		return storage.Range6Hour
	case "4":
		return storage.Range1Day
	case "5":
		return storage.Range1Week
	default:
		return storage.Range30Min
	}
}

func trafficSamples(points []storage.DataPoint) []gauge.Sample {
	out := make([]gauge.Sample, 0, len(points))
	for _, p := range points {
		out = append(out, gauge.Sample{At: p.Timestamp, Rx: p.NetworkRx, Tx: p.NetworkTx})
	}
	return out
}
