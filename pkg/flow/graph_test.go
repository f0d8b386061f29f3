package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// --- test helpers ---

type testState struct {
	Log   []string
	Count int
}

type testUpdate struct {
	Append *string
	Count  *int
}

func mergeTest(s testState, u testUpdate) testState {
	if u.Append != nil {
		s.Log = append(s.Log, *u.Append)
	}
	if u.Count != nil {
		s.Count = *u.Count
	}
	return s
}

func appendNode(tag string) NodeFunc[testState, testUpdate] {
	return func(_ context.Context, _ testState) (testUpdate, error) {
		return testUpdate{Append: &tag}, nil
	}
}

func countNode(tag string) NodeFunc[testState, testUpdate] {
	return func(_ context.Context, s testState) (testUpdate, error) {
		n := s.Count + 1
		return testUpdate{Append: &tag, Count: &n}, nil
	}
}

// --- tests ---

func TestGraph_LinearRun(t *testing.T) {
	g, err := NewBuilder("linear", mergeTest).
		AddNode("a", appendNode("a")).
		AddNode("b", appendNode("b")).
		AddNode("c", appendNode("c")).
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", End).
		Compile("a")
	if err != nil {
		t.Fatal(err)
	}

	state, trace, err := g.Run(context.Background(), testState{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if trace.Status != StatusDone {
		t.Errorf("status = %s, want %s", trace.Status, StatusDone)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, state.Log); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, trace.Path()); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestGraph_BranchRouting(t *testing.T) {
	build := func(count int) (*Graph[testState, testUpdate], error) {
		return NewBuilder("branch", mergeTest).
			AddNode("check", func(_ context.Context, _ testState) (testUpdate, error) {
				return testUpdate{Count: &count}, nil
			}).
			AddNode("high", appendNode("high")).
			AddNode("low", appendNode("low")).
			AddBranch("check", func(s testState) Label {
				if s.Count > 5 {
					return "high"
				}
				return "low"
			}, map[Label]string{"high": "high", "low": "low"}).
			AddEdge("high", End).
			AddEdge("low", End).
			Compile("check")
	}

	g, err := build(10)
	if err != nil {
		t.Fatal(err)
	}
	state, _, err := g.Run(context.Background(), testState{})
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Log) != 1 || state.Log[0] != "high" {
		t.Errorf("expected high branch, got %v", state.Log)
	}

	g, err = build(3)
	if err != nil {
		t.Fatal(err)
	}
	state, _, err = g.Run(context.Background(), testState{})
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Log) != 1 || state.Log[0] != "low" {
		t.Errorf("expected low branch, got %v", state.Log)
	}
}

func TestGraph_UnknownLabelIsFatal(t *testing.T) {
	g, err := NewBuilder("bad-router", mergeTest).
		AddNode("a", appendNode("a")).
		AddNode("b", appendNode("b")).
		AddBranch("a", func(testState) Label { return "nope" },
			map[Label]string{"ok": "b"}).
		AddEdge("b", End).
		Compile("a")
	if err != nil {
		t.Fatal(err)
	}

	_, trace, err := g.Run(context.Background(), testState{})
	if !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("expected ErrUnknownLabel, got %v", err)
	}
	if trace.Status != StatusError {
		t.Errorf("status = %s, want %s", trace.Status, StatusError)
	}
}

func TestGraph_CycleExhaustsBudget(t *testing.T) {
	g, err := NewBuilder("cycle", mergeTest).
		AddNode("spin", countNode("spin")).
		AddEdge("spin", "spin").
		Compile("spin", WithMaxSteps[testState, testUpdate](4))
	if err != nil {
		t.Fatal(err)
	}

	state, trace, err := g.Run(context.Background(), testState{})
	if err != nil {
		t.Fatalf("exhaustion must not be an error, got %v", err)
	}
	if trace.Status != StatusExhausted {
		t.Errorf("status = %s, want %s", trace.Status, StatusExhausted)
	}
	if state.Count != 4 {
		t.Errorf("count = %d, want 4", state.Count)
	}
	if trace.Visits["spin"] != 4 {
		t.Errorf("visits = %d, want 4", trace.Visits["spin"])
	}
}

func TestGraph_NodeErrorStopsRun(t *testing.T) {
	boom := errors.New("boom")
	g, err := NewBuilder("failing", mergeTest).
		AddNode("a", appendNode("a")).
		AddNode("b", func(context.Context, testState) (testUpdate, error) {
			return testUpdate{}, boom
		}).
		AddEdge("a", "b").
		AddEdge("b", End).
		Compile("a")
	if err != nil {
		t.Fatal(err)
	}

	state, trace, err := g.Run(context.Background(), testState{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if trace.Status != StatusError {
		t.Errorf("status = %s, want %s", trace.Status, StatusError)
	}
	// State from completed nodes is preserved.
	if diff := cmp.Diff([]string{"a"}, state.Log); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestGraph_ContextCancellation(t *testing.T) {
	g, err := NewBuilder("cancel", mergeTest).
		AddNode("spin", countNode("spin")).
		AddEdge("spin", "spin").
		Compile("spin")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = g.Run(ctx, testState{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCompile_Validation(t *testing.T) {
	cases := []struct {
		name    string
		build   func() (*Graph[testState, testUpdate], error)
		wantErr error
	}{
		{
			name: "missing start",
			build: func() (*Graph[testState, testUpdate], error) {
				return NewBuilder("g", mergeTest).
					AddNode("a", appendNode("a")).
					AddEdge("a", End).
					Compile("nope")
			},
			wantErr: ErrNodeNotFound,
		},
		{
			name: "edge to missing node",
			build: func() (*Graph[testState, testUpdate], error) {
				return NewBuilder("g", mergeTest).
					AddNode("a", appendNode("a")).
					AddEdge("a", "ghost").
					Compile("a")
			},
			wantErr: ErrNodeNotFound,
		},
		{
			name: "branch target missing",
			build: func() (*Graph[testState, testUpdate], error) {
				return NewBuilder("g", mergeTest).
					AddNode("a", appendNode("a")).
					AddBranch("a", func(testState) Label { return "x" },
						map[Label]string{"x": "ghost"}).
					Compile("a")
			},
			wantErr: ErrNodeNotFound,
		},
		{
			name: "node without route",
			build: func() (*Graph[testState, testUpdate], error) {
				return NewBuilder("g", mergeTest).
					AddNode("a", appendNode("a")).
					AddNode("orphan", appendNode("o")).
					AddEdge("a", End).
					Compile("a")
			},
			wantErr: ErrNoRoute,
		},
		{
			name: "duplicate route",
			build: func() (*Graph[testState, testUpdate], error) {
				return NewBuilder("g", mergeTest).
					AddNode("a", appendNode("a")).
					AddEdge("a", End).
					AddEdge("a", End).
					Compile("a")
			},
			wantErr: ErrDuplicateRoute,
		},
		{
			name: "duplicate node",
			build: func() (*Graph[testState, testUpdate], error) {
				return NewBuilder("g", mergeTest).
					AddNode("a", appendNode("a")).
					AddNode("a", appendNode("a")).
					AddEdge("a", End).
					Compile("a")
			},
			wantErr: ErrDuplicateNode,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestGraph_DeterministicTrace(t *testing.T) {
	g, err := NewBuilder("det", mergeTest).
		AddNode("a", countNode("a")).
		AddNode("b", appendNode("b")).
		AddBranch("a", func(s testState) Label {
			if s.Count < 3 {
				return "again"
			}
			return "next"
		}, map[Label]string{"again": "a", "next": "b"}).
		AddEdge("b", End).
		Compile("a")
	if err != nil {
		t.Fatal(err)
	}

	s1, t1, err := g.Run(context.Background(), testState{})
	if err != nil {
		t.Fatal(err)
	}
	s2, t2, err := g.Run(context.Background(), testState{})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("states differ (-first +second):\n%s", diff)
	}
	ignoreElapsed := cmpopts.IgnoreFields(StepRecord{}, "Elapsed")
	if diff := cmp.Diff(t1, t2, ignoreElapsed); diff != "" {
		t.Errorf("traces differ (-first +second):\n%s", diff)
	}
}

func TestGraph_ObserverEvents(t *testing.T) {
	var events []EventType
	obs := ObserverFunc(func(e Event) { events = append(events, e.Type) })

	g, err := NewBuilder("observed", mergeTest).
		AddNode("a", appendNode("a")).
		AddEdge("a", End).
		Compile("a", WithObserver[testState, testUpdate](obs))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := g.Run(context.Background(), testState{}); err != nil {
		t.Fatal(err)
	}

	want := []EventType{EventNodeEnter, EventNodeExit, EventRunDone}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}
