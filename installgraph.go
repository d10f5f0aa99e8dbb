/*
Copyright 2023 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package index

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/opkg-go/pkgresolve/dep"
)

// NodeID identifies a node in an InstallGraph. It is always scoped to a
// specific graph, and is an index into that graph's Nodes slice.
type NodeID int

// Node is one resolved package in an install set.
type Node struct {
	Name    string
	Version string
	Errors  []NodeError

	// AlreadyInstalled marks a node whose own package status was already
	// installed/unpacked when the resolver picked it, rather than
	// something that needs fetching: opkg's install set, unlike a
	// language-ecosystem dependency graph, mixes packages already present
	// on the target with ones still to be unpacked, and a reader of the
	// rendered tree needs to tell which is which.
	AlreadyInstalled bool
}

// NodeError records a dependency of this node that could not be satisfied.
type NodeError struct {
	Want  string // the atom string, e.g. "libfoo (>= 1.2.3)"
	Error string
}

func (ne NodeError) Compare(other NodeError) int {
	if c := strings.Compare(ne.Want, other.Want); c != 0 {
		return c
	}
	return strings.Compare(ne.Error, other.Error)
}

// Edge represents the satisfying relationship from a dependent Node to the
// Node chosen to satisfy one of its dependency compounds.
type Edge struct {
	From        NodeID
	To          NodeID
	Requirement string
	Kind        dep.Kind
}

// InstallGraph holds the result of a resolver run: the transitive install
// set and the edges that justify each member's presence. Grounded on the
// teacher's graph.go Graph/Node/Edge/NodeID design, adapted from a
// multi-ecosystem resolution graph (VersionKey-keyed nodes, dep.Type-typed
// edges) to a single-ecosystem install set (name+version nodes,
// dep.Kind-typed edges).
type InstallGraph struct {
	// Nodes[0] is always the root (the package whose dependencies were
	// resolved). NodeID is the index into this slice.
	Nodes []Node

	Edges []Edge

	// Error is a graph-wide resolution failure, set when the resolver could
	// not complete (as opposed to a single unsatisfied dependency, which is
	// recorded per-node in Errors).
	Error string

	// Duration is how long ResolveInstall took to build this graph.
	Duration time.Duration
}

// AddNode inserts a node, unconnected to anything. The returned ID is
// required to add edges.
func (g *InstallGraph) AddNode(name, version string) NodeID {
	return g.AddNodeInstalled(name, version, false)
}

// AddNodeInstalled is AddNode plus the already-installed marker (see
// Node.AlreadyInstalled).
func (g *InstallGraph) AddNodeInstalled(name, version string, alreadyInstalled bool) NodeID {
	g.Nodes = append(g.Nodes, Node{Name: name, Version: version, AlreadyInstalled: alreadyInstalled})
	return NodeID(len(g.Nodes) - 1)
}

// AddEdge inserts an edge between two nodes already in the graph.
func (g *InstallGraph) AddEdge(from, to NodeID, req string, kind dep.Kind) error {
	if !g.contains(from) {
		return fmt.Errorf("installgraph: node not in graph: %v", from)
	}
	if !g.contains(to) {
		return fmt.Errorf("installgraph: node not in graph: %v", to)
	}
	g.Edges = append(g.Edges, Edge{From: from, To: to, Requirement: req, Kind: kind})
	return nil
}

// AddError associates an unsatisfied dependency with a node.
func (g *InstallGraph) AddError(n NodeID, want, err string) error {
	if !g.contains(n) {
		return fmt.Errorf("installgraph: node not in graph: %v", n)
	}
	g.Nodes[n].Errors = append(g.Nodes[n].Errors, NodeError{Want: want, Error: err})
	return nil
}

func (g *InstallGraph) contains(n NodeID) bool {
	return n >= 0 && int(n) < len(g.Nodes)
}

// Canon converts the graph, in place, into a canonical form suitable for
// comparison with other graphs (chiefly in tests): nodes are sorted, with
// the root pinned at index 0, and edges are renumbered and sorted to match.
func (g *InstallGraph) Canon() error {
	for _, n := range g.Nodes {
		sort.Slice(n.Errors, func(i, j int) bool {
			return n.Errors[i].Compare(n.Errors[j]) < 0
		})
	}

	on := newOrderedNodes(g.Nodes)
	on.KeepZero = true
	sort.Sort(on)
	if on.Root != 0 {
		panic("installgraph: root " + g.Nodes[on.Root].Name + " no longer at index 0")
	}
	g.renumber(on.Mapping(), false)

	if on.Dupe {
		m, err := g.canonBFS()
		if err != nil {
			return err
		}
		g.renumber(m, true)
	}
	return nil
}

func (g *InstallGraph) renumber(oldToNew []int, includeNodes bool) {
	if includeNodes {
		nn := make([]Node, len(g.Nodes))
		for i, j := range oldToNew {
			nn[j] = g.Nodes[i]
		}
		g.Nodes = nn
	}
	for i, e := range g.Edges {
		e.From = NodeID(oldToNew[e.From])
		e.To = NodeID(oldToNew[e.To])
		g.Edges[i] = e
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		ei, ej := g.Edges[i], g.Edges[j]
		if ej.From != ei.From {
			return ei.From < ej.From
		}
		if ei.To != ej.To {
			return ei.To < ej.To
		}
		if ei.Requirement != ej.Requirement {
			return ei.Requirement < ej.Requirement
		}
		return ei.Kind < ej.Kind
	})
}

func (g *InstallGraph) canonBFS() ([]int, error) {
	edges := make([][]int, len(g.Nodes))
	for _, e := range g.Edges {
		edges[int(e.From)] = append(edges[int(e.From)], int(e.To))
	}

	oldToNew := make([]int, len(g.Nodes))
	for i := range oldToNew {
		oldToNew[i] = -1
	}
	nextLabel := 0
	queue := []int{0}

	var onScratch orderedNodes
	for len(queue) > 0 {
		n := queue[0]
		copy(queue, queue[1:])
		queue = queue[:len(queue)-1]
		if oldToNew[n] > -1 {
			continue
		}

		oldToNew[n] = nextLabel
		nextLabel++

		onScratch.Nodes, onScratch.IDs = onScratch.Nodes[:0], onScratch.IDs[:0]
		for _, to := range edges[n] {
			if oldToNew[to] == -1 {
				onScratch.Nodes = append(onScratch.Nodes, g.Nodes[to])
				onScratch.IDs = append(onScratch.IDs, to)
			}
		}
		if len(onScratch.Nodes) > 1 {
			sort.Sort(&onScratch)
			if onScratch.Dupe {
				return nil, fmt.Errorf("installgraph: node %s has duplicate direct dependency", g.Nodes[n].Name)
			}
		}
		queue = append(queue, onScratch.IDs...)
	}
	if rem := len(g.Nodes) - nextLabel; rem > 0 {
		return nil, fmt.Errorf("installgraph: failed labeling all nodes; %d unreachable from root", rem)
	}
	return oldToNew, nil
}

// orderedNodes is a sort.Interface over a slice of Node, used by Canon to
// detect duplicate nodes while sorting.
type orderedNodes struct {
	KeepZero bool

	Nodes []Node
	IDs   []int

	Root int
	Dupe bool
}

func newOrderedNodes(nodes []Node) *orderedNodes {
	ids := make([]int, len(nodes))
	for i := range ids {
		ids[i] = i
	}
	return &orderedNodes{Nodes: nodes, IDs: ids}
}

func (n *orderedNodes) Mapping() []int {
	m := make([]int, len(n.IDs))
	for i, j := range n.IDs {
		m[j] = i
	}
	return m
}

func (n *orderedNodes) Len() int { return len(n.IDs) }
func (n *orderedNodes) Swap(i, j int) {
	n.Nodes[i], n.Nodes[j] = n.Nodes[j], n.Nodes[i]
	n.IDs[i], n.IDs[j] = n.IDs[j], n.IDs[i]
	if i == n.Root {
		n.Root = j
	} else if j == n.Root {
		n.Root = i
	}
}

func (n *orderedNodes) Less(i, j int) bool {
	ni, nj := n.Nodes[i], n.Nodes[j]
	c := ni.Compare(nj)
	if c == 0 {
		n.Dupe = true
	}
	if n.KeepZero && (i == n.Root || j == n.Root) {
		return i == n.Root
	}
	return c < 0
}

// Compare orders nodes by name, then version, then error content.
func (n Node) Compare(o Node) int {
	if c := strings.Compare(n.Name, o.Name); c != 0 {
		return c
	}
	if c := strings.Compare(n.Version, o.Version); c != 0 {
		return c
	}
	if li, lj := len(n.Errors), len(o.Errors); li != lj {
		if li < lj {
			return -1
		}
		return 1
	}
	for i := range n.Errors {
		if c := n.Errors[i].Compare(o.Errors[i]); c != 0 {
			return c
		}
	}
	return 0
}

// String renders the graph as an ASCII tree rooted at Nodes[0]: the
// spanning tree built from the first-seen satisfying edge for each node,
// with additional (non-creating) edges and unsatisfied-dependency errors
// shown as labeled leaves.
func (g *InstallGraph) String() string {
	var b strings.Builder
	if g.Error != "" {
		for _, l := range strings.Split(g.Error, "\n") {
			fmt.Fprintf(&b, "ERROR: %s\n", l)
		}
	}
	if len(g.Nodes) == 0 {
		return b.String()
	}

	creator := make(map[NodeID]NodeID, len(g.Nodes))
	dependents := make([]int, len(g.Nodes))
	creator[0] = 0
	dependents[0] = 1
	for _, e := range g.Edges {
		dependents[e.To]++
		if _, ok := creator[e.To]; !ok && e.To != e.From {
			creator[e.To] = e.From
		}
	}

	type treeNode struct {
		label    int
		nid      NodeID
		n        *Node
		req      string
		err      string
		children []*treeNode
		kind     dep.Kind
	}
	nodes := make([]*treeNode, len(g.Nodes))
	label := 0
	for i, n := range g.Nodes {
		id, n := NodeID(i), n
		nodes[id] = &treeNode{nid: id, n: &n}
		if dependents[id] > 1 {
			label++
			nodes[id].label = label
		}
	}

	seen := make([]bool, len(g.Nodes))
	for _, e := range g.Edges {
		nf, nt := nodes[e.From], nodes[e.To]
		if e.From != creator[e.To] || seen[e.To] || e.From == e.To {
			nt = &treeNode{label: nt.label}
		}
		if e.From == creator[e.To] {
			seen[e.To] = true
		}
		nt.req = e.Requirement
		nt.kind = e.Kind
		nf.children = append(nf.children, nt)
	}
	for i, n := range g.Nodes {
		tn := nodes[i]
		for _, ne := range n.Errors {
			tn.children = append(tn.children, &treeNode{
				n:   &Node{Name: ne.Want},
				req: ne.Want,
				err: ne.Error,
			})
		}
	}

	seen = make([]bool, len(g.Nodes))
	var walk func(n *treeNode, req, prefix1, prefix2 string)
	walk = func(n *treeNode, req, prefix1, prefix2 string) {
		seen[n.nid] = true
		fmt.Fprint(&b, prefix1)
		if n.n == nil {
			if !n.kind.IsRegular() {
				fmt.Fprintf(&b, "%s | ", n.kind)
			}
			fmt.Fprintf(&b, "$%d@%s\n", n.label, req)
			return
		}
		if n.label > 0 {
			fmt.Fprintf(&b, "%d: ", n.label)
		}
		if !n.kind.IsRegular() {
			fmt.Fprintf(&b, "%s | ", n.kind)
		}
		if prefix1 == "" {
			fmt.Fprintf(&b, "%s ", n.n.Name)
		} else {
			fmt.Fprintf(&b, "%s@%s ", n.n.Name, req)
		}
		if n.err != "" {
			fmt.Fprintf(&b, "ERROR: %s\n", n.err)
		} else if n.n.AlreadyInstalled {
			fmt.Fprintf(&b, "%s [installed]\n", n.n.Version)
		} else {
			fmt.Fprintf(&b, "%s\n", n.n.Version)
		}
		for i, c := range n.children {
			p1, p2 := "├─ ", "│  "
			if i == len(n.children)-1 {
				p1, p2 = "└─ ", "   "
			}
			walk(c, c.req, prefix2+p1, prefix2+p2)
		}
	}
	walk(nodes[0], "", "", "")
	for i, ok := range seen {
		if !ok {
			fmt.Fprintf(&b, "ORPHAN: %s %s\n", g.Nodes[i].Name, g.Nodes[i].Version)
		}
	}
	return b.String()
}
