// Package flow is a small engine for directed-graph workflows over a shared
// state. Nodes are pure functions producing a partial update; the engine
// merges each update into the running state and follows static or
// conditional edges until the End pseudo-node is reached. Cycles are
// allowed: the engine enforces a whole-run step budget and stops with the
// best available state when it runs out.
package flow

import (
	"context"
	"fmt"
	"time"
)

// Label selects an outgoing route from a branch table.
type Label string

// End is the terminal pseudo-node name. A route targeting End completes the run.
const End = "_end"

// DefaultMaxSteps bounds a run when no explicit budget is configured.
const DefaultMaxSteps = 25

// NodeFunc executes one node. It receives the current state and returns a
// partial update to be merged; it must not retain or mutate the state.
type NodeFunc[S, U any] func(ctx context.Context, state S) (U, error)

// Router evaluates the full current state after a node and picks the label
// of the route to follow. The label must be one of the keys declared in the
// branch table at build time.
type Router[S any] func(state S) Label

// route is the single outgoing connection of a node: either a static edge
// (next set, router nil) or a conditional branch (router + targets).
type route[S any] struct {
	next    string
	router  Router[S]
	targets map[Label]string
}

// Graph is a compiled workflow. Construction goes through a Builder;
// a compiled Graph is immutable and safe for concurrent Run calls, each of
// which owns its state and trace.
type Graph[S, U any] struct {
	name     string
	merge    func(S, U) S
	start    string
	nodes    map[string]NodeFunc[S, U]
	routes   map[string]route[S]
	maxSteps int
	observer Observer
}

// Builder accumulates nodes and edges and validates the whole graph at
// Compile time, so routing mistakes surface at construction rather than
// mid-run.
type Builder[S, U any] struct {
	name   string
	merge  func(S, U) S
	nodes  map[string]NodeFunc[S, U]
	routes map[string]route[S]
	errs   []error
}

// NewBuilder starts a graph definition. merge is applied after every node to
// fold its partial update into the running state.
func NewBuilder[S, U any](name string, merge func(S, U) S) *Builder[S, U] {
	if merge == nil {
		panic("flow: NewBuilder requires a merge function")
	}
	return &Builder[S, U]{
		name:   name,
		merge:  merge,
		nodes:  make(map[string]NodeFunc[S, U]),
		routes: make(map[string]route[S]),
	}
}

// AddNode registers a named node.
func (b *Builder[S, U]) AddNode(name string, fn NodeFunc[S, U]) *Builder[S, U] {
	if _, ok := b.nodes[name]; ok {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrDuplicateNode, name))
		return b
	}
	if fn == nil {
		b.errs = append(b.errs, fmt.Errorf("flow: node %q has nil func", name))
		return b
	}
	b.nodes[name] = fn
	return b
}

// AddEdge registers a static edge from → to. to may be End.
func (b *Builder[S, U]) AddEdge(from, to string) *Builder[S, U] {
	if _, ok := b.routes[from]; ok {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrDuplicateRoute, from))
		return b
	}
	b.routes[from] = route[S]{next: to}
	return b
}

// AddBranch registers a conditional edge: after from runs, router picks a
// label and the run continues at targets[label]. Every label the router can
// return must appear in targets; an unlisted label fails the run with
// ErrUnknownLabel.
func (b *Builder[S, U]) AddBranch(from string, router Router[S], targets map[Label]string) *Builder[S, U] {
	if _, ok := b.routes[from]; ok {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrDuplicateRoute, from))
		return b
	}
	if router == nil || len(targets) == 0 {
		b.errs = append(b.errs, fmt.Errorf("flow: branch from %q needs a router and a non-empty target table", from))
		return b
	}
	b.routes[from] = route[S]{router: router, targets: targets}
	return b
}

// GraphOption configures a Graph during Compile.
type GraphOption[S, U any] func(*Graph[S, U])

// WithMaxSteps sets the whole-run step budget. The budget counts node
// executions across the entire run, so it bounds every cycle in the graph
// regardless of what individual nodes do.
func WithMaxSteps[S, U any](n int) GraphOption[S, U] {
	return func(g *Graph[S, U]) {
		if n > 0 {
			g.maxSteps = n
		}
	}
}

// WithObserver attaches an observer that receives run events.
func WithObserver[S, U any](obs Observer) GraphOption[S, U] {
	return func(g *Graph[S, U]) { g.observer = obs }
}

// Compile validates the accumulated definition and returns an immutable
// Graph starting at start. Referential integrity failures (edges to missing
// nodes, nodes without routes, duplicate routes) are reported here.
func (b *Builder[S, U]) Compile(start string, opts ...GraphOption[S, U]) (*Graph[S, U], error) {
	for _, err := range b.errs {
		return nil, err
	}
	if _, ok := b.nodes[start]; !ok {
		return nil, fmt.Errorf("%w: start node %q", ErrNodeNotFound, start)
	}
	for from, r := range b.routes {
		if _, ok := b.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: route source %q", ErrNodeNotFound, from)
		}
		if r.router == nil {
			if err := b.checkTarget(from, r.next); err != nil {
				return nil, err
			}
			continue
		}
		for label, to := range r.targets {
			if err := b.checkTarget(from, to); err != nil {
				return nil, fmt.Errorf("label %q: %w", label, err)
			}
		}
	}
	for name := range b.nodes {
		if _, ok := b.routes[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoRoute, name)
		}
	}

	g := &Graph[S, U]{
		name:     b.name,
		merge:    b.merge,
		start:    start,
		nodes:    b.nodes,
		routes:   b.routes,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (b *Builder[S, U]) checkTarget(from, to string) error {
	if to == End {
		return nil
	}
	if _, ok := b.nodes[to]; !ok {
		return fmt.Errorf("%w: route %q -> %q", ErrNodeNotFound, from, to)
	}
	return nil
}

// Name returns the graph's name.
func (g *Graph[S, U]) Name() string { return g.name }

// MaxSteps returns the configured whole-run step budget.
func (g *Graph[S, U]) MaxSteps() int { return g.maxSteps }

// Run executes the graph from its start node over the given initial state.
// Nodes run strictly one after another; after each node its partial update
// is merged into the state, then the node's route decides the next node.
//
// Run returns when a route targets End (StatusDone), when the step budget is
// exhausted (StatusExhausted — the current state is returned without error,
// so a bounded cycle always yields a usable result), or when a node or the
// routing fails (StatusError plus the error).
func (g *Graph[S, U]) Run(ctx context.Context, initial S) (S, *Trace, error) {
	state := initial
	trace := newTrace(g.name)
	current := g.start

	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			trace.Status = StatusError
			emit(g.observer, Event{Type: EventRunError, Graph: g.name, Node: current, Step: step, Error: err})
			return state, trace, err
		}
		if step >= g.maxSteps {
			trace.Status = StatusExhausted
			emit(g.observer, Event{Type: EventExhausted, Graph: g.name, Node: current, Step: step})
			return state, trace, nil
		}

		fn := g.nodes[current]
		emit(g.observer, Event{Type: EventNodeEnter, Graph: g.name, Node: current, Step: step})
		started := time.Now()
		update, err := fn(ctx, state)
		elapsed := time.Since(started)
		if err != nil {
			trace.Status = StatusError
			emit(g.observer, Event{Type: EventNodeExit, Graph: g.name, Node: current, Step: step, Elapsed: elapsed, Error: err})
			emit(g.observer, Event{Type: EventRunError, Graph: g.name, Node: current, Step: step, Error: err})
			return state, trace, fmt.Errorf("node %s: %w", current, err)
		}
		state = g.merge(state, update)
		emit(g.observer, Event{Type: EventNodeExit, Graph: g.name, Node: current, Step: step, Elapsed: elapsed})

		r := g.routes[current]
		var label Label
		next := r.next
		if r.router != nil {
			label = r.router(state)
			target, ok := r.targets[label]
			if !ok {
				trace.Status = StatusError
				err := fmt.Errorf("%w: node %q, label %q", ErrUnknownLabel, current, label)
				emit(g.observer, Event{Type: EventRunError, Graph: g.name, Node: current, Step: step, Error: err})
				return state, trace, err
			}
			next = target
			emit(g.observer, Event{Type: EventBranch, Graph: g.name, Node: current, Label: label, Next: next, Step: step})
		}

		trace.record(current, label, next, elapsed)

		if next == End {
			trace.Status = StatusDone
			emit(g.observer, Event{Type: EventRunDone, Graph: g.name, Node: current, Step: step})
			return state, trace, nil
		}
		current = next
	}
}
