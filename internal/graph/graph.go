// Package graph answers reachability questions over task dependency edges.
//
// Edges point from predecessor to successor: the predecessor must finish
// before the successor starts. Traversals use explicit stacks so deep chains
// never grow the call stack.
package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyNodeID is returned when a node identifier is blank.
var ErrEmptyNodeID = errors.New("node id must not be empty")

// CycleError reports a dependency that would close a loop. Chain starts and
// ends at the same node.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency would create a cycle: %s", strings.Join(e.Chain, " -> "))
}

// Graph is a directed graph keyed by string node ids. Node and edge order is
// insertion order, which keeps every traversal deterministic.
type Graph struct {
	index map[string]int
	nodes []string
	out   [][]int
	edges map[[2]int]struct{}
}

func New() *Graph {
	return &Graph{
		index: make(map[string]int),
		edges: make(map[[2]int]struct{}),
	}
}

// AddNode registers id and returns its index. Re-adding is a no-op.
func (g *Graph) AddNode(id string) (int, error) {
	if strings.TrimSpace(id) == "" {
		return 0, ErrEmptyNodeID
	}
	if i, ok := g.index[id]; ok {
		return i, nil
	}
	i := len(g.nodes)
	g.index[id] = i
	g.nodes = append(g.nodes, id)
	g.out = append(g.out, nil)
	return i, nil
}

// AddEdge records predecessor -> successor. Duplicate edges are ignored.
func (g *Graph) AddEdge(predecessor, successor string) error {
	from, err := g.AddNode(predecessor)
	if err != nil {
		return err
	}
	to, err := g.AddNode(successor)
	if err != nil {
		return err
	}
	key := [2]int{from, to}
	if _, ok := g.edges[key]; ok {
		return nil
	}
	g.edges[key] = struct{}{}
	g.out[from] = append(g.out[from], to)
	return nil
}

// HasEdge reports whether predecessor -> successor is present.
func (g *Graph) HasEdge(predecessor, successor string) bool {
	from, ok := g.index[predecessor]
	if !ok {
		return false
	}
	to, ok := g.index[successor]
	if !ok {
		return false
	}
	_, ok = g.edges[[2]int{from, to}]
	return ok
}

// Nodes returns node ids in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// WouldCreateCycle reports whether adding predecessor -> successor closes a
// loop: either both ids are the same node or successor already reaches
// predecessor.
func (g *Graph) WouldCreateCycle(successor, predecessor string) (bool, error) {
	if err := checkIDs(successor, predecessor); err != nil {
		return false, err
	}
	if successor == predecessor {
		return true, nil
	}
	return g.pathBetween(successor, predecessor) != nil, nil
}

// CycleChain returns the loop that predecessor -> successor would close,
// written from predecessor through successor and back, e.g. [C A B C].
// A self edge yields [A A]. The result is nil when no cycle would form.
func (g *Graph) CycleChain(successor, predecessor string) ([]string, error) {
	if err := checkIDs(successor, predecessor); err != nil {
		return nil, err
	}
	if successor == predecessor {
		return []string{predecessor, successor}, nil
	}
	path := g.pathBetween(successor, predecessor)
	if path == nil {
		return nil, nil
	}
	return append([]string{predecessor}, path...), nil
}

// CheckEdge returns a *CycleError when predecessor -> successor would close a
// loop, and nil otherwise.
func (g *Graph) CheckEdge(successor, predecessor string) error {
	chain, err := g.CycleChain(successor, predecessor)
	if err != nil {
		return err
	}
	if chain != nil {
		return &CycleError{Chain: chain}
	}
	return nil
}

type frame struct {
	node int
	next int
}

// pathBetween returns the first path from -> ... -> to found by depth-first
// search, or nil. The frames on the stack are the current path; exhausted
// frames are popped, which is the backtracking step.
func (g *Graph) pathBetween(from, to string) []string {
	start, ok := g.index[from]
	if !ok {
		return nil
	}
	target, ok := g.index[to]
	if !ok {
		return nil
	}

	visited := make([]bool, len(g.nodes))
	visited[start] = true
	stack := []frame{{node: start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(g.out[top.node]) {
			stack = stack[:len(stack)-1]
			continue
		}
		v := g.out[top.node][top.next]
		top.next++

		if v == target {
			path := make([]string, 0, len(stack)+1)
			for _, f := range stack {
				path = append(path, g.nodes[f.node])
			}
			return append(path, g.nodes[target])
		}
		if !visited[v] {
			visited[v] = true
			stack = append(stack, frame{node: v})
		}
	}
	return nil
}

// DetectAllCycles returns every node that sits on some cycle, in insertion
// order. A back edge u -> v marks the stack segment from v up to u.
func (g *Graph) DetectAllCycles() []string {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(g.nodes))
	onCycle := make([]bool, len(g.nodes))
	pos := make([]int, len(g.nodes))

	for root := range g.nodes {
		if color[root] != white {
			continue
		}
		color[root] = gray
		pos[root] = 0
		stack := []frame{{node: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(g.out[top.node]) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			v := g.out[top.node][top.next]
			top.next++

			switch color[v] {
			case white:
				color[v] = gray
				pos[v] = len(stack)
				stack = append(stack, frame{node: v})
			case gray:
				for _, f := range stack[pos[v]:] {
					onCycle[f.node] = true
				}
			}
		}
	}

	var out []string
	for i, id := range g.nodes {
		if onCycle[i] {
			out = append(out, id)
		}
	}
	return out
}

func checkIDs(ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return ErrEmptyNodeID
		}
	}
	return nil
}
