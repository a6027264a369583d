package atrium

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUnitCycle is returned when a dependency cycle between Units is
	// found; a Unit declares a child that, directly or through other
	// Units, declares the original Unit as a child again. It always
	// indicates a misconfiguration of the Units being declared, and is
	// reported when the declaration that closes the cycle is made.
	ErrUnitCycle = errors.New("unit dependency cycle detected")
)

// graph is a directed acyclic graph of type Node. It's used to validate and
// order the parent/child relationships between Units.
type graph[Node cmp.Ordered] struct {
	// nodes holds the nodes in the graph.
	nodes []Node

	// edgesTo holds graph edges, with the key being the position of the
	// node in the nodes slice that the edges are pointing to. It is a list
	// of edges indexed by what they're pointing to.
	//
	// if there's a node 1 and a node 2, and an edge from 1->2, edgesTo
	// will have a key of 2 with a value of [1].
	edgesTo map[int]map[int]struct{}

	// edgesFrom holds graph edges, with the key being the position of the
	// node in the nodes slice that the edges are pointing from. It is a
	// list of edges indexed by what's doing the pointing.
	//
	// if there's a node 1 and a node 2, and an edge from 1->2, edgesFrom
	// will have a key of 1 with a value of [2].
	//
	// nodes point to their children and children are always walked first;
	// i.e., if there's a node 1 and a node 2, and an edge from 1->2, 2
	// will always appear before 1 when walking the graph.
	edgesFrom map[int]map[int]struct{}
}

func newGraph[Node cmp.Ordered]() graph[Node] {
	return graph[Node]{
		edgesTo:   map[int]map[int]struct{}{},
		edgesFrom: map[int]map[int]struct{}{},
	}
}

// add puts a node in the graph, if it's not already in it, and returns its
// position.
func (g *graph[Node]) add(node Node) int {
	pos := slices.Index(g.nodes, node)
	if pos >= 0 {
		return pos
	}
	g.nodes = append(g.nodes, node)
	return len(g.nodes) - 1
}

// link records an edge from parent to child, adding either node to the graph
// if it's not already in it.
func (g *graph[Node]) link(parent, child Node) {
	parentPos := g.add(parent)
	childPos := g.add(child)
	if g.edgesFrom[parentPos] == nil {
		g.edgesFrom[parentPos] = map[int]struct{}{}
	}
	if g.edgesTo[childPos] == nil {
		g.edgesTo[childPos] = map[int]struct{}{}
	}
	g.edgesFrom[parentPos][childPos] = struct{}{}
	g.edgesTo[childPos][parentPos] = struct{}{}
}

// buildUnitGraph creates a graph of the passed Units' names, with an edge
// from each Unit to each of its declared children. Children that aren't in
// the passed map contribute no edges; dangling names are a resolution
// problem, not an ordering one.
func buildUnitGraph(ctx context.Context, units map[string]Unit) graph[string] {
	result := newGraph[string]()
	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		result.add(name)
		declarer, ok := units[name].(ChildDeclarer)
		if !ok {
			continue
		}
		for _, child := range declarer.DeclareChildren(ctx) {
			if _, ok := units[child]; !ok {
				continue
			}
			result.link(name, child)
		}
	}
	return result
}

// walkGraph returns the graph's nodes in an order that guarantees every node
// appears after all the nodes it has edges to, breaking ties by sorting the
// nodes themselves so the order is deterministic. If the graph has a cycle,
// the returned error wraps ErrUnitCycle and lists the edges that couldn't be
// resolved.
func walkGraph[Node cmp.Ordered](_ context.Context, g graph[Node]) ([]Node, error) {
	noParents := make([]int, 0, len(g.nodes))
	results := make([]Node, 0, len(g.nodes))
	for pos := range g.nodes {
		edges, ok := g.edgesFrom[pos]
		if !ok {
			noParents = append(noParents, pos)
			continue
		}
		if len(edges) < 1 {
			noParents = append(noParents, pos)
			continue
		}
	}
	slices.SortFunc(noParents, func(a, b int) int {
		return cmp.Compare(g.nodes[a], g.nodes[b])
	})
	for len(noParents) > 0 {
		pos := noParents[0]
		node := g.nodes[pos]
		noParents = noParents[1:]
		results = append(results, node)
		var noParentsChanged bool
		for parent := range g.edgesTo[pos] {
			delete(g.edgesFrom[parent], pos)
			delete(g.edgesTo[pos], parent)
			if len(g.edgesFrom[parent]) < 1 {
				delete(g.edgesFrom, parent)
				noParents = append(noParents, parent)
				noParentsChanged = true
			}
			if len(g.edgesTo[pos]) < 1 {
				delete(g.edgesTo, pos)
			}
		}
		if noParentsChanged {
			slices.SortFunc(noParents, func(a, b int) int {
				return cmp.Compare(g.nodes[a], g.nodes[b])
			})
		}
	}
	if len(g.edgesTo) > 0 || len(g.edgesFrom) > 0 {
		var edges []string
		for parent, children := range g.edgesFrom {
			for child := range children {
				edges = append(edges, fmt.Sprintf("%v->%v", g.nodes[parent], g.nodes[child]))
			}
		}
		slices.Sort(edges)
		return results, fmt.Errorf("%w: edges=[%s]", ErrUnitCycle, strings.Join(edges, ", "))
	}
	return results, nil
}
