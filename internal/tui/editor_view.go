package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/program"
)

var (
	kindStyleTrigger   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	kindStyleAction    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	kindStyleCondition = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	kindStyleDelay     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B388FF")).Bold(true)
	detailTextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	dimTextStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	paneTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	paneBorderStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(36, width/2-2)
	leftWidth := width - rightWidth - 4
	if leftWidth < 30 {
		leftWidth = width - 4
		rightWidth = 0
	}

	var left string
	switch a.state {
	case stateAddNode:
		left = a.addMenu.View()
	case stateEditLabel:
		left = lipgloss.JoinVertical(lipgloss.Left,
			a.renderCanvas(leftWidth-4),
			"",
			fmt.Sprintf("New label: %s", a.labelInput.View()),
		)
	default:
		left = a.renderCanvas(leftWidth - 4)
	}
	leftBox := paneBorderStyle.Width(max(24, leftWidth)).Render(
		lipgloss.JoinVertical(lipgloss.Left, paneTitleStyle.Render("CANVAS"), left),
	)

	body := leftBox
	if rightWidth > 0 {
		rightBox := paneBorderStyle.Width(max(24, rightWidth)).Render(
			lipgloss.JoinVertical(lipgloss.Left, paneTitleStyle.Render("PROGRAM"), a.renderProgram()),
		)
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render(fmt.Sprintf("⬡ WEFT · %s", a.recordTitle()))
	sections := []string{header, body}
	if a.showLog {
		if panel := a.renderLogPanel(); panel != "" {
			sections = append(sections, panel)
		}
	}
	sections = append(sections, a.renderFooter())
	return strings.Join(sections, "\n")
}

func (a *App) recordTitle() string {
	if a.recordPath == "" {
		return "untitled"
	}
	name := filepath.Base(a.recordPath)
	if a.dirty {
		name += " *"
	}
	return name
}

func (a *App) renderCanvas(width int) string {
	nodes := a.session.Nodes()
	if len(nodes) == 0 {
		return dimTextStyle.Render("Empty workflow. Press a to add a node.")
	}
	var lines []string
	for i, node := range nodes {
		lines = append(lines, a.renderNodeLine(i, node))
		if i == a.selection && a.state != stateConnect {
			lines = append(lines, a.renderNodeDetails(node))
		}
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderNodeLine(idx int, node graph.Node) string {
	indicator := " "
	if idx == a.selection {
		indicator = ">"
	}
	if a.state == stateConnect && idx == a.connectTarget {
		indicator = "→"
	}
	label := node.Label
	if strings.TrimSpace(label) == "" {
		label = shortID(node.ID)
	}
	kind := kindStyle(node.Kind).Render(strings.ToUpper(string(node.Kind)))
	line := fmt.Sprintf("%s %s [%s]", indicator, label, kind)
	if suffix := a.edgeSummary(node); suffix != "" {
		line += dimTextStyle.Render("  " + suffix)
	}
	return line
}

// edgeSummary describes the node's outgoing connections by target label.
func (a *App) edgeSummary(node graph.Node) string {
	var parts []string
	for _, edge := range a.session.Edges() {
		if edge.Source != node.ID {
			continue
		}
		target, ok := a.session.Node(edge.Target)
		name := edge.Target
		if ok && strings.TrimSpace(target.Label) != "" {
			name = target.Label
		} else {
			name = shortID(name)
		}
		switch edge.Branch {
		case graph.BranchTrue:
			parts = append(parts, fmt.Sprintf("T→%s", name))
		case graph.BranchFalse:
			parts = append(parts, fmt.Sprintf("F→%s", name))
		default:
			parts = append(parts, fmt.Sprintf("→%s", name))
		}
	}
	return strings.Join(parts, " ")
}

func (a *App) renderNodeDetails(node graph.Node) string {
	var details []string
	switch payload := node.Payload.(type) {
	case graph.TriggerPayload:
		details = append(details, fmt.Sprintf("trigger: %s", payload.TriggerType))
		details = append(details, configLines(payload.Config)...)
	case graph.ActionPayload:
		details = append(details, fmt.Sprintf("action: %s", payload.ActionType))
		details = append(details, configLines(payload.Config)...)
	case graph.ConditionPayload:
		details = append(details, fmt.Sprintf("if %s %s %v", payload.Field, payload.Operator, payload.Value))
	case graph.DelayPayload:
		details = append(details, fmt.Sprintf("wait %d %s", payload.Amount, payload.Unit))
	}
	if len(details) == 0 {
		return detailTextStyle.Render("  no configuration")
	}
	return detailTextStyle.Render("  " + strings.Join(details, "\n  "))
}

// renderProgram shows the live compilation result: the trigger descriptor
// followed by the numbered instruction listing.
func (a *App) renderProgram() string {
	var lines []string
	if a.snapshot.Trigger.IsZero() {
		lines = append(lines, dimTextStyle.Render("(no trigger)"))
	} else {
		lines = append(lines, kindStyleTrigger.Render(fmt.Sprintf("on %s", a.snapshot.Trigger.Type)))
	}
	if len(a.snapshot.Program) == 0 {
		lines = append(lines, dimTextStyle.Render("(no steps)"))
	}
	for i, in := range a.snapshot.Program {
		lines = append(lines, renderInstruction(i, in))
	}
	lines = append(lines, "", dimTextStyle.Render(fmt.Sprintf("rev %d", a.snapshot.Revision)))
	return strings.Join(lines, "\n")
}

func renderInstruction(idx int, in program.Instruction) string {
	var body string
	switch in.Kind {
	case program.StepAction:
		body = kindStyleAction.Render(in.ActionType)
	case program.StepCondition:
		body = kindStyleCondition.Render("condition")
		if in.ElseGoto != nil {
			body += dimTextStyle.Render(fmt.Sprintf(" else→#%d", *in.ElseGoto))
		}
	case program.StepDelay:
		body = kindStyleDelay.Render("delay")
	default:
		body = dimTextStyle.Render(string(in.Kind))
	}
	return fmt.Sprintf("#%d %s", idx, body)
}

func configLines(config map[string]any) []string {
	keys := make([]string, 0, len(config))
	for key := range config {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", key, config[key]))
	}
	return lines
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(8)
	if len(lines) == 0 {
		return ""
	}
	head := paneTitleStyle.Render(fmt.Sprintf("LOG · %s (%d)", filepath.Base(a.logbook.Path()), total))
	body := detailTextStyle.Render(strings.Join(lines, "\n"))
	return paneBorderStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderFooter() string {
	var hint string
	switch a.state {
	case stateAddNode:
		hint = "enter=add  esc=cancel"
	case stateConnect:
		hint = "enter=connect  t=true branch  f=false branch  esc=cancel"
	case stateEditLabel:
		hint = "enter=rename  esc=cancel"
	default:
		hint = "a=add  c=connect  d=delete  e=rename  x=disconnect  s=save  L=log  q=quit"
	}
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")).Render(a.statusMsg)
	return lipgloss.JoinVertical(lipgloss.Left, status, dimTextStyle.Render(hint))
}

func kindStyle(kind graph.NodeKind) lipgloss.Style {
	switch kind {
	case graph.KindTrigger:
		return kindStyleTrigger
	case graph.KindAction:
		return kindStyleAction
	case graph.KindCondition:
		return kindStyleCondition
	case graph.KindDelay:
		return kindStyleDelay
	default:
		return dimTextStyle
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
