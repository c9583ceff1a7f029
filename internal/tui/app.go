// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for weft.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/logbook"
	"github.com/weftlabs/weft/internal/program"
	"github.com/weftlabs/weft/internal/session"
)

// appState represents which "screen" we're on
type appState int

const (
	stateEditor    appState = iota // Main canvas plus live program pane
	stateAddNode                   // Node template picker
	stateConnect                   // Choosing a target for a new edge
	stateEditLabel                 // Renaming the selected node
)

const snapshotBufferSize = 16

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithSession replaces the editing session the app drives.
func WithSession(ses *session.Session) AppOption {
	return func(a *App) {
		if ses != nil {
			a.session = ses
		}
	}
}

// snapshotMsg carries one published compilation result into the update loop.
type snapshotMsg struct {
	snapshot session.Snapshot
}

// nodeTemplate is one entry in the add-node picker.
type nodeTemplate struct {
	title string
	desc  string
	label string
	build func() graph.Payload
}

func (t nodeTemplate) Title() string       { return t.title }
func (t nodeTemplate) Description() string { return t.desc }
func (t nodeTemplate) FilterValue() string { return t.title }

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state      appState
	config     *config.Config
	session    *session.Session
	logbook    *logbook.Logbook
	recordPath string

	// Live compilation feed
	snapshots   chan session.Snapshot
	done        chan struct{}
	unsubscribe func()
	snapshot    session.Snapshot

	// UI components
	addMenu    list.Model
	labelInput textinput.Model
	statusMsg  string
	showLog    bool

	// Canvas selection
	selection     int
	connectTarget int
	dirty         bool

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a new App instance editing the record at recordPath. A
// missing record file starts an empty workflow.
func NewApp(projectDir, recordPath string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		lb = nil
	}

	ses, fresh, err := openSession(cfg, recordPath)
	if err != nil {
		return nil, err
	}

	addMenu := list.New(templateItems(), list.NewDefaultDelegate(), 0, 0)
	addMenu.Title = "Add Node"
	addMenu.SetShowStatusBar(false)
	addMenu.SetFilteringEnabled(false)

	labelInput := textinput.New()
	labelInput.Placeholder = "node label"
	labelInput.CharLimit = 64

	app := &App{
		state:      stateEditor,
		config:     cfg,
		session:    ses,
		logbook:    lb,
		recordPath: recordPath,
		addMenu:    addMenu,
		labelInput: labelInput,
		statusMsg:  "Ready",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	app.snapshots = make(chan session.Snapshot, snapshotBufferSize)
	app.done = make(chan struct{})
	app.unsubscribe = app.session.Subscribe(app.receiveSnapshot)
	app.snapshot = app.session.Preview()

	if fresh {
		app.logInfo("Opened new workflow at %s", recordPath)
	} else {
		app.logInfo("Opened workflow %s with %d step(s)", recordPath, len(app.snapshot.Program))
	}
	return app, nil
}

// openSession builds the editing session, decompiling an existing record when
// one is present. The bool reports whether the workflow started empty.
func openSession(cfg *config.Config, recordPath string) (*session.Session, bool, error) {
	opts := []session.Option{session.WithDebounce(cfg.DebounceInterval())}
	if recordPath != "" {
		if _, err := os.Stat(recordPath); err == nil {
			rec, err := program.LoadRecordFile(recordPath)
			if err != nil {
				return nil, false, fmt.Errorf("tui: load record: %w", err)
			}
			return session.FromRecord(rec, opts...), false, nil
		}
	}
	return session.New(graph.New(), opts...), true, nil
}

// receiveSnapshot is the session subscriber. It must never block the
// publisher, so a full buffer drops the oldest pending snapshot.
func (a *App) receiveSnapshot(snap session.Snapshot) {
	select {
	case a.snapshots <- snap:
	default:
		select {
		case <-a.snapshots:
		default:
		}
		select {
		case a.snapshots <- snap:
		default:
		}
	}
}

// listenForSnapshots waits for the next published compilation result. The
// done channel releases the command when the app quits, otherwise the
// goroutine would block on the feed forever.
func (a *App) listenForSnapshots() tea.Cmd {
	snapshots, done := a.snapshots, a.done
	return func() tea.Msg {
		select {
		case snap := <-snapshots:
			return snapshotMsg{snapshot: snap}
		case <-done:
			return nil
		}
	}
}

func templateItems() []list.Item {
	templates := []nodeTemplate{
		{
			title: "Webhook Trigger",
			desc:  "Start when an HTTP request arrives",
			label: "Webhook",
			build: func() graph.Payload {
				return graph.TriggerPayload{TriggerType: "webhook", Config: map[string]any{"path": "/hook"}}
			},
		},
		{
			title: "Schedule Trigger",
			desc:  "Start on a cron schedule",
			label: "Schedule",
			build: func() graph.Payload {
				return graph.TriggerPayload{TriggerType: "schedule", Config: map[string]any{"cron": "0 9 * * *"}}
			},
		},
		{
			title: "HTTP Request",
			desc:  "Call an external service",
			label: "HTTP Request",
			build: func() graph.Payload {
				return graph.ActionPayload{ActionType: "http_request", Config: map[string]any{"method": "GET", "url": ""}}
			},
		},
		{
			title: "Send Email",
			desc:  "Deliver a templated email",
			label: "Send Email",
			build: func() graph.Payload {
				return graph.ActionPayload{ActionType: "send_email", Config: map[string]any{"to": "", "subject": ""}}
			},
		},
		{
			title: "Condition",
			desc:  "Branch on a field comparison",
			label: "Condition",
			build: func() graph.Payload {
				return graph.ConditionPayload{Field: "status", Operator: "equals", Value: ""}
			},
		},
		{
			title: "Delay",
			desc:  "Pause before the next step",
			label: "Delay",
			build: func() graph.Payload {
				return graph.DelayPayload{Amount: 5, Unit: "minutes"}
			},
		},
	}
	items := make([]list.Item, len(templates))
	for i := range templates {
		items[i] = templates[i]
	}
	return items
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.listenForSnapshots()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.addMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		return a, nil

	case snapshotMsg:
		a.snapshot = msg.snapshot
		a.statusMsg = fmt.Sprintf("Compiled %d step(s) (rev %d)", len(a.snapshot.Program), a.snapshot.Revision)
		return a, a.listenForSnapshots()

	case tea.KeyMsg:
		switch a.state {
		case stateEditor:
			return a.handleEditorKey(msg.String())
		case stateAddNode:
			return a.handleAddNodeKey(msg)
		case stateConnect:
			return a.handleConnectKey(msg.String())
		case stateEditLabel:
			return a.handleEditLabelKey(msg)
		}
	}

	return a, nil
}

func (a *App) handleEditorKey(key string) (tea.Model, tea.Cmd) {
	nodes := a.session.Nodes()
	switch key {
	case "ctrl+c", "q":
		return a.quit()
	case "up", "k":
		if a.selection > 0 {
			a.selection--
		}
	case "down", "j":
		if a.selection < len(nodes)-1 {
			a.selection++
		}
	case "a":
		return a.beginAddNode()
	case "d":
		return a.deleteSelected()
	case "e":
		return a.beginEditLabel()
	case "c":
		return a.beginConnect()
	case "x":
		return a.disconnectSelected()
	case "+":
		return a.adjustDelay(1)
	case "-":
		return a.adjustDelay(-1)
	case "s":
		return a.saveRecord()
	case "L":
		a.showLog = !a.showLog
	}
	return a, nil
}

func (a *App) handleAddNodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a.quit()
	case "esc":
		a.state = stateEditor
		a.statusMsg = "Add cancelled"
		return a, nil
	case "enter":
		tpl, ok := a.addMenu.SelectedItem().(nodeTemplate)
		if !ok {
			a.state = stateEditor
			return a, nil
		}
		a.state = stateEditor
		return a.addTemplateNode(tpl)
	}
	var cmd tea.Cmd
	a.addMenu, cmd = a.addMenu.Update(msg)
	return a, cmd
}

func (a *App) handleConnectKey(key string) (tea.Model, tea.Cmd) {
	nodes := a.session.Nodes()
	switch key {
	case "ctrl+c":
		return a.quit()
	case "esc":
		a.state = stateEditor
		a.statusMsg = "Connect cancelled"
	case "up", "k":
		if a.connectTarget > 0 {
			a.connectTarget--
		}
	case "down", "j":
		if a.connectTarget < len(nodes)-1 {
			a.connectTarget++
		}
	case "enter":
		return a.connectNodes(graph.BranchNone)
	case "t":
		return a.connectNodes(graph.BranchTrue)
	case "f":
		return a.connectNodes(graph.BranchFalse)
	}
	return a, nil
}

func (a *App) handleEditLabelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a.quit()
	case "esc":
		a.state = stateEditor
		a.statusMsg = "Rename cancelled"
		return a, nil
	case "enter":
		return a.commitLabel()
	}
	var cmd tea.Cmd
	a.labelInput, cmd = a.labelInput.Update(msg)
	return a, cmd
}

func (a *App) beginAddNode() (tea.Model, tea.Cmd) {
	a.state = stateAddNode
	if a.width > 0 && a.height > 0 {
		a.addMenu.SetSize(max(0, a.width-6), max(0, a.height-10))
	}
	a.statusMsg = "Pick a node template"
	return a, nil
}

func (a *App) addTemplateNode(tpl nodeTemplate) (tea.Model, tea.Cmd) {
	node, err := a.session.AddNode(tpl.label, tpl.build())
	if err != nil {
		a.statusMsg = fmt.Sprintf("Add failed: %v", err)
		a.logError("Add %s failed: %v", tpl.title, err)
		return a, nil
	}
	// Stack new nodes down the canvas column so hand-built workflows and
	// decompiled ones share a layout.
	count := len(a.session.Nodes())
	_ = a.session.MoveNode(node.ID, graph.Position{X: 420, Y: 80 + 140*float64(count-1)})
	a.selection = count - 1
	a.dirty = true
	a.statusMsg = fmt.Sprintf("Added %s", tpl.title)
	a.logInfo("Added node %s (%s)", node.Label, node.Kind)
	return a, nil
}

func (a *App) deleteSelected() (tea.Model, tea.Cmd) {
	node, ok := a.selectedNode()
	if !ok {
		return a, nil
	}
	if a.session.RemoveNode(node.ID) {
		if a.selection >= len(a.session.Nodes()) && a.selection > 0 {
			a.selection--
		}
		a.dirty = true
		a.statusMsg = fmt.Sprintf("Removed %s", node.Label)
		a.logInfo("Removed node %s (%s)", node.Label, node.Kind)
	}
	return a, nil
}

func (a *App) beginEditLabel() (tea.Model, tea.Cmd) {
	node, ok := a.selectedNode()
	if !ok {
		return a, nil
	}
	a.state = stateEditLabel
	a.labelInput.SetValue(node.Label)
	a.labelInput.CursorEnd()
	a.labelInput.Focus()
	a.statusMsg = "Rename node"
	return a, nil
}

func (a *App) commitLabel() (tea.Model, tea.Cmd) {
	node, ok := a.selectedNode()
	a.state = stateEditor
	a.labelInput.Blur()
	if !ok {
		return a, nil
	}
	label := strings.TrimSpace(a.labelInput.Value())
	if label == "" || label == node.Label {
		a.statusMsg = "Rename cancelled"
		return a, nil
	}
	if err := a.session.UpdateLabel(node.ID, label); err != nil {
		a.statusMsg = fmt.Sprintf("Rename failed: %v", err)
		return a, nil
	}
	a.dirty = true
	a.statusMsg = fmt.Sprintf("Renamed to %s", label)
	return a, nil
}

func (a *App) beginConnect() (tea.Model, tea.Cmd) {
	nodes := a.session.Nodes()
	if len(nodes) < 2 {
		a.statusMsg = "Need two nodes to connect"
		return a, nil
	}
	if _, ok := a.selectedNode(); !ok {
		return a, nil
	}
	a.state = stateConnect
	a.connectTarget = 0
	if a.connectTarget == a.selection {
		a.connectTarget = 1
	}
	a.statusMsg = "Pick a target (enter=next, t=true, f=false)"
	return a, nil
}

func (a *App) connectNodes(branch graph.Branch) (tea.Model, tea.Cmd) {
	a.state = stateEditor
	source, ok := a.selectedNode()
	if !ok {
		return a, nil
	}
	nodes := a.session.Nodes()
	if a.connectTarget < 0 || a.connectTarget >= len(nodes) {
		return a, nil
	}
	target := nodes[a.connectTarget]
	if _, err := a.session.Connect(source.ID, target.ID, branch); err != nil {
		a.statusMsg = fmt.Sprintf("Connect failed: %v", err)
		a.logError("Connect %s -> %s failed: %v", source.Label, target.Label, err)
		return a, nil
	}
	a.dirty = true
	a.statusMsg = fmt.Sprintf("Connected %s -> %s", source.Label, target.Label)
	a.logInfo("Connected %s -> %s (%s)", source.Label, target.Label, branchName(branch))
	return a, nil
}

func (a *App) disconnectSelected() (tea.Model, tea.Cmd) {
	node, ok := a.selectedNode()
	if !ok {
		return a, nil
	}
	removed := 0
	for _, edge := range a.session.Edges() {
		if edge.Source == node.ID {
			if a.session.RemoveEdge(edge.ID) {
				removed++
			}
		}
	}
	if removed == 0 {
		a.statusMsg = "No outgoing connections"
		return a, nil
	}
	a.dirty = true
	a.statusMsg = fmt.Sprintf("Removed %d connection(s)", removed)
	return a, nil
}

// adjustDelay nudges the wait on a selected delay node.
func (a *App) adjustDelay(delta int) (tea.Model, tea.Cmd) {
	node, ok := a.selectedNode()
	if !ok || node.Kind != graph.KindDelay {
		return a, nil
	}
	payload, ok := node.Payload.(graph.DelayPayload)
	if !ok {
		return a, nil
	}
	payload.Amount += delta
	if payload.Amount < 1 {
		payload.Amount = 1
	}
	if err := a.session.UpdatePayload(node.ID, payload); err != nil {
		a.statusMsg = fmt.Sprintf("Update failed: %v", err)
		return a, nil
	}
	a.dirty = true
	a.statusMsg = fmt.Sprintf("Delay set to %d %s", payload.Amount, payload.Unit)
	return a, nil
}

// saveRecord compiles immediately and writes the wire-format record to disk.
func (a *App) saveRecord() (tea.Model, tea.Cmd) {
	if a.recordPath == "" {
		a.statusMsg = "No record path to save to"
		return a, nil
	}
	snap := a.session.Flush()
	a.snapshot = snap
	if err := program.SaveRecordFile(a.recordPath, snap.Record()); err != nil {
		a.statusMsg = fmt.Sprintf("Save failed: %v", err)
		a.logError("Save %s failed: %v", a.recordPath, err)
		return a, nil
	}
	a.dirty = false
	a.statusMsg = fmt.Sprintf("Saved %s (%d step(s))", filepath.Base(a.recordPath), len(snap.Program))
	if snap.Trigger.IsZero() {
		a.statusMsg += " (no trigger; workflow cannot activate)"
		a.logWarn("Saved %s without a trigger", a.recordPath)
	} else {
		a.logInfo("Saved %s with %d step(s)", a.recordPath, len(snap.Program))
	}
	return a, nil
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
		close(a.done)
	}
	if a.dirty {
		a.logWarn("Exited with unsaved changes")
	}
	a.logInfo("Session closed")
	return a, tea.Quit
}

func (a *App) selectedNode() (graph.Node, bool) {
	nodes := a.session.Nodes()
	if a.selection < 0 || a.selection >= len(nodes) {
		return graph.Node{}, false
	}
	return nodes[a.selection], true
}

func branchName(branch graph.Branch) string {
	switch branch {
	case graph.BranchTrue:
		return "true"
	case graph.BranchFalse:
		return "false"
	default:
		return "next"
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
