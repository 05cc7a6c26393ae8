package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/value"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// WatchModel - live view of a graph driven by the execution trigger
// =============================================================================

// tickMsg drives one trigger tick per frame.
type tickMsg time.Time

// WatchModel is the bubbletea model behind the watch command. Every frame
// ticks the trigger, so passes start when something requested one and
// finished passes are joined without blocking the UI.
type WatchModel struct {
	Title    string
	Graph    *graph.Graph
	Trigger  *engine.Trigger
	Interval time.Duration

	ctx    context.Context
	nodes  []*graph.Node
	cursor int
	events int // pin changes seen since start
	status string
}

// NewWatchModel creates a model for g. ctx bounds the passes it starts.
func NewWatchModel(ctx context.Context, title string, g *graph.Graph, t *engine.Trigger, interval time.Duration) WatchModel {
	return WatchModel{
		Title:    title,
		Graph:    g,
		Trigger:  t,
		Interval: interval,
		ctx:      ctx,
		nodes:    g.Nodes(),
	}
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m WatchModel) Init() tea.Cmd {
	return m.tick()
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.Trigger.Tick(m.ctx)
		m.events += m.Graph.Events().Drain(nil)
		return m, m.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.Trigger.RequestExecution()
			m.status = "pass requested"
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
			}
		case "+", "=":
			m.status = m.nudge(1)
		case "-", "_":
			m.status = m.nudge(-1)
		}
	}
	return m, nil
}

// nudge adds delta to the first unlinked numeric input of the selected
// node. A changed value requests a pass.
func (m WatchModel) nudge(delta int) string {
	if len(m.nodes) == 0 {
		return ""
	}
	n := m.nodes[m.cursor]
	for _, p := range n.Inputs {
		if m.Graph.IsPinLinked(p.ID) {
			continue
		}
		var err error
		switch p.Kind {
		case value.KindInt:
			cur, _ := graph.Get[value.Int](p)
			err = graph.SetThen(p, cur+value.Int(delta), m.Trigger.RequestExecution)
		case value.KindFloat:
			cur, _ := graph.Get[value.Float](p)
			err = graph.SetThen(p, cur+value.Float(delta), m.Trigger.RequestExecution)
		default:
			continue
		}
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("%s.%s = %s", nodeLabel(m.Graph, n.ID), p.Name, p.Value())
	}
	return "no editable number input"
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  +/- edit  r run  q quit"))
	b.WriteString("\n\n")

	st := m.Trigger.Stats()
	state := "idle"
	switch {
	case st.Running:
		state = "running"
	case st.Needs:
		state = "pending"
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		outcomeStyle(stateOutcome(state)).Render(state),
		StyleDim.Render(fmt.Sprintf("%d passes", st.Passes)),
		StyleDim.Render(fmt.Sprintf("%d pin changes", m.events))))

	last := m.Trigger.LastReport()
	if last != nil {
		b.WriteString(reportSummary(last))
		b.WriteString("\n")
	}

	rows := m.rows(last)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("", "ID", "Name", "Type", "Status", "Runs", "Time", "Outputs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleTableHeader
			case col == 4 && row < len(rows):
				return outcomeStyle(rows[row][4])
			case row == m.cursor:
				return listSelectedStyle
			case col == 1 || col == 5 || col == 6:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(listDimStyle.Render("  " + m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m WatchModel) rows(last *engine.Report) [][]string {
	rows := make([][]string, 0, len(m.nodes))
	for i, n := range m.nodes {
		st := n.Status()
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		elapsed := ""
		if st.HasResult {
			elapsed = st.Duration.Round(time.Microsecond).String()
		}
		outs := make([]string, 0, len(n.Outputs))
		for _, p := range n.Outputs {
			if p.HasValue() {
				outs = append(outs, p.Name+"="+p.Value().String())
			}
		}
		rows = append(rows, []string{
			cursor,
			strconv.FormatInt(int64(n.ID), 10),
			n.Name,
			n.Type.String(),
			nodeOutcome(n, st, last),
			strconv.Itoa(st.Runs),
			elapsed,
			strings.Join(outs, " "),
		})
	}
	return rows
}

// nodeOutcome labels a node from its status and the last report. Tainted
// and stuck nodes keep their previous result, so the report decides.
func nodeOutcome(n *graph.Node, st graph.Status, last *engine.Report) string {
	switch {
	case st.Running:
		return outcomeRunning
	case last != nil && slices.Contains(last.Tainted, n.ID):
		return outcomeTainted
	case last != nil && slices.Contains(last.Stuck, n.ID):
		return outcomeStuck
	case !st.HasResult:
		return outcomeIdle
	case st.Result.OK():
		return outcomeOK
	default:
		return string(st.Result.Code)
	}
}

func stateOutcome(state string) string {
	switch state {
	case "running":
		return outcomeRunning
	case "pending":
		return outcomeTainted
	}
	return outcomeIdle
}
