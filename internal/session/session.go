// Package session wraps one rule graph in a live compilation loop: every
// mutation re-arms a single-slot debounce timer, and only the graph state
// present when the window elapses is compiled and published. Earlier pending
// compilations are cancelled and replaced, never queued or merged.
package session

import (
	"sync"
	"time"

	"github.com/weftlabs/weft/internal/compile"
	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/program"
)

// DefaultDebounce is the edit-coalescing window used when no override is
// configured.
const DefaultDebounce = 250 * time.Millisecond

// Snapshot is one published compilation result. Revision increases with every
// publish so consumers can tell stale results apart.
type Snapshot struct {
	Trigger  program.TriggerDescriptor
	Program  program.Program
	Revision uint64
}

// Record packs the snapshot into its wire shape.
func (s Snapshot) Record() program.Record {
	return program.NewRecord(s.Trigger, s.Program)
}

// ScheduleFunc arms a single-shot delayed call and returns a cancel function.
// The default implementation wraps time.AfterFunc; tests substitute a manual
// scheduler to drive the debounce deterministically.
type ScheduleFunc func(delay time.Duration, fn func()) (cancel func())

// Option customizes Session construction.
type Option func(*Session)

// WithDebounce overrides the debounce window. Zero or negative values keep
// the default.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithScheduler replaces the timer implementation.
func WithScheduler(schedule ScheduleFunc) Option {
	return func(s *Session) {
		if schedule != nil {
			s.schedule = schedule
		}
	}
}

// Session owns one graph for the lifetime of an editing surface. All
// mutations go through it so the debounced recompile can observe them.
type Session struct {
	mu          sync.Mutex
	graph       *graph.Graph
	debounce    time.Duration
	schedule    ScheduleFunc
	cancel      func()
	pending     uint64
	revision    uint64
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// New wraps the given graph. A nil graph starts an empty rule.
func New(g *graph.Graph, opts ...Option) *Session {
	if g == nil {
		g = graph.New()
	}
	s := &Session{
		graph:       g,
		debounce:    DefaultDebounce,
		schedule:    afterFuncScheduler,
		subscribers: map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// FromRecord decompiles a stored workflow record and starts a session on the
// synthesized graph.
func FromRecord(rec program.Record, opts ...Option) *Session {
	g := compile.Decompile(rec.Descriptor(), rec.Program())
	return New(g, opts...)
}

func afterFuncScheduler(delay time.Duration, fn func()) func() {
	timer := time.AfterFunc(delay, fn)
	return func() { timer.Stop() }
}

// Subscribe registers for published snapshots and returns an unsubscribe
// function. Subscribers run on the scheduling goroutine, after the lock is
// released.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// AddNode mints a node from the payload and inserts it.
func (s *Session) AddNode(label string, payload graph.Payload) (graph.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node := graph.NewNode(label, payload)
	if err := s.graph.AddNode(node); err != nil {
		return graph.Node{}, err
	}
	s.arm()
	return node, nil
}

// RemoveNode deletes a node together with every incident edge before the next
// compilation can run.
func (s *Session) RemoveNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.graph.RemoveNode(id) {
		return false
	}
	s.arm()
	return true
}

// Connect adds or reconnects an edge.
func (s *Session) Connect(source, target string, branch graph.Branch) (graph.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge, err := s.graph.Connect(source, target, branch)
	if err != nil {
		return graph.Edge{}, err
	}
	s.arm()
	return edge, nil
}

// RemoveEdge deletes an edge by id.
func (s *Session) RemoveEdge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.graph.RemoveEdge(id) {
		return false
	}
	s.arm()
	return true
}

// UpdatePayload replaces a node's configuration.
func (s *Session) UpdatePayload(id string, payload graph.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.UpdatePayload(id, payload); err != nil {
		return err
	}
	s.arm()
	return nil
}

// UpdateLabel renames a node. Labels never affect the compiled program, but
// the publish keeps subscribers' views consistent with the graph.
func (s *Session) UpdateLabel(id, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.UpdateLabel(id, label); err != nil {
		return err
	}
	s.arm()
	return nil
}

// MoveNode records a new canvas position. Presentation only; no recompile.
func (s *Session) MoveNode(id string, position graph.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.MoveNode(id, position)
}

// Nodes returns the graph's nodes in declaration order.
func (s *Session) Nodes() []graph.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Nodes()
}

// Edges returns the graph's edges in declaration order.
func (s *Session) Edges() []graph.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Edges()
}

// Node retrieves one node by id.
func (s *Session) Node(id string) (graph.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Node(id)
}

// Trigger returns the trigger node when one exists.
func (s *Session) Trigger() (graph.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Trigger()
}

// Preview compiles the current graph without publishing. The returned
// revision is the last published one.
func (s *Session) Preview() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	trigger, prog := compile.Compile(s.graph)
	return Snapshot{Trigger: trigger, Program: prog, Revision: s.revision}
}

// Flush cancels any pending debounce and compiles immediately, publishing the
// result to subscribers.
func (s *Session) Flush() Snapshot {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.pending++
	snapshot, subscribers := s.publishLocked()
	s.mu.Unlock()
	for _, fn := range subscribers {
		fn(snapshot)
	}
	return snapshot
}

// arm resets the debounce window: the pending timer (if any) is cancelled and
// a fresh single-shot compile is scheduled. Callers hold s.mu.
func (s *Session) arm() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.pending++
	generation := s.pending
	s.cancel = s.schedule(s.debounce, func() {
		s.fire(generation)
	})
}

func (s *Session) fire(generation uint64) {
	s.mu.Lock()
	// A timer that lost the cancel race is stale; a newer window owns the
	// next publish.
	if generation != s.pending {
		s.mu.Unlock()
		return
	}
	s.cancel = nil
	snapshot, subscribers := s.publishLocked()
	s.mu.Unlock()
	for _, fn := range subscribers {
		fn(snapshot)
	}
}

func (s *Session) publishLocked() (Snapshot, []func(Snapshot)) {
	trigger, prog := compile.Compile(s.graph)
	s.revision++
	snapshot := Snapshot{Trigger: trigger, Program: prog, Revision: s.revision}
	subscribers := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	return snapshot, subscribers
}
