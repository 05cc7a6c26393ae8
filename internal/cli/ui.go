package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/graph"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, tainted
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError     = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}

// printStats prints graph size and whether the report was reused.
func printStats(nodeCount, linkCount int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", nodeCount),
		fmt.Sprintf("%d links", linkCount),
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	var b strings.Builder
	b.WriteString("  ")
	for _, part := range parts {
		b.WriteString(StyleDim.Render(part))
		b.WriteString(StyleDim.Render(" · "))
	}
	b.WriteString(statusStyle.Render(status))
	fmt.Println(b.String())
}

// =============================================================================
// Reports
// =============================================================================

// Outcome labels shown in report tables and the watch view.
const (
	outcomeOK      = "ok"
	outcomeTainted = "tainted"
	outcomeStuck   = "stuck"
	outcomeIdle    = "idle"
	outcomeRunning = "running"
)

// outcomeStyle colours an outcome label. Result codes are errors.
func outcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case outcomeOK:
		return StyleSuccess
	case outcomeTainted:
		return StyleWarning
	case outcomeStuck, outcomeIdle:
		return StyleDim
	case outcomeRunning:
		return StyleHighlight
	default:
		return StyleError
	}
}

// reportSummary is the one-line verdict for a pass.
func reportSummary(rep *engine.Report) string {
	parts := []string{
		fmt.Sprintf("%d executed", len(rep.Executed)),
		fmt.Sprintf("%d steps", len(rep.Steps)),
	}
	if n := len(rep.Failed); n > 0 {
		parts = append(parts, StyleError.Render(fmt.Sprintf("%d failed", n)))
	}
	if n := len(rep.Tainted); n > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d tainted", n)))
	}
	if n := len(rep.Stuck); n > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d stuck", n)))
	}
	if rep.BoundHit {
		parts = append(parts, StyleError.Render("iteration bound hit"))
	}
	if rep.Cancelled {
		parts = append(parts, StyleWarning.Render("cancelled"))
	}
	parts = append(parts, StyleDim.Render(rep.Duration.Round(time.Microsecond).String()))
	return strings.Join(parts, StyleDim.Render(" · "))
}

// reportRows lists executed nodes in step order, then tainted and stuck
// nodes. v supplies names for nodes that did not run; it may be nil.
func reportRows(rep *engine.Report, v graph.View) [][]string {
	rows := make([][]string, 0, len(rep.Results)+len(rep.Tainted)+len(rep.Stuck))
	for _, nr := range rep.Results {
		outcome := outcomeOK
		if !nr.Result.OK() {
			outcome = string(nr.Result.Code)
		}
		rows = append(rows, []string{
			strconv.FormatInt(int64(nr.Node), 10),
			nr.Name,
			nr.Type,
			strconv.Itoa(nr.Step),
			outcome,
			nr.Duration.Round(time.Microsecond).String(),
			nr.Result.Message,
		})
	}
	skipped := func(ids []graph.NodeID, outcome string) {
		for _, id := range ids {
			name, typ := "", ""
			if v != nil {
				if n, ok := v.FindNode(id); ok {
					name, typ = n.Name, n.Type.String()
				}
			}
			rows = append(rows, []string{strconv.FormatInt(int64(id), 10), name, typ, "", outcome, "", ""})
		}
	}
	skipped(rep.Tainted, outcomeTainted)
	skipped(rep.Stuck, outcomeStuck)
	return rows
}

// reportTable renders the per-node outcome table of a pass.
func reportTable(rep *engine.Report, v graph.View) string {
	rows := reportRows(rep, v)
	const outcomeCol = 4
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("ID", "Name", "Type", "Step", "Result", "Time", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleTableHeader
			case col == outcomeCol && row < len(rows):
				return outcomeStyle(rows[row][outcomeCol])
			case col == 0 || col == 3 || col == 5:
				return StyleDim
			default:
				return lipgloss.NewStyle()
			}
		}).
		Render()
}

// writeReport prints the summary line and table for a pass.
func writeReport(w io.Writer, rep *engine.Report, v graph.View) {
	icon := styleIconSuccess.Render(iconSuccess)
	if !rep.OK() {
		icon = styleIconError.Render(iconError)
	}
	fmt.Fprintf(w, "%s Pass %s  %s\n", icon, StyleHighlight.Render(shortPassID(rep.PassID)), reportSummary(rep))
	if len(rep.Results)+len(rep.Tainted)+len(rep.Stuck) > 0 {
		fmt.Fprintln(w, reportTable(rep, v))
	}
}

func shortPassID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
