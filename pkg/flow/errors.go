package flow

import "errors"

var (
	// ErrNodeNotFound is returned at compile time when an edge or branch
	// references a node that was never added to the graph.
	ErrNodeNotFound = errors.New("flow: node not found")

	// ErrUnknownLabel is returned when a router yields a label that has no
	// entry in its branch table. This is a graph definition defect, not a
	// runtime condition, and always fails the run.
	ErrUnknownLabel = errors.New("flow: router returned unknown label")

	// ErrNoRoute is returned when a non-terminal node has no outgoing edge
	// or branch. Detected at compile time.
	ErrNoRoute = errors.New("flow: no route from node")

	// ErrDuplicateRoute is returned at compile time when a node is given
	// more than one outgoing edge or branch.
	ErrDuplicateRoute = errors.New("flow: duplicate route from node")

	// ErrDuplicateNode is returned at compile time when two nodes share a name.
	ErrDuplicateNode = errors.New("flow: duplicate node")
)
