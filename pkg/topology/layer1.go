// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"cmp"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gohugoio/hashstructure"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

const invalidInterfaceName = "INVALID_INTERFACE"

// Layer1Node is one end of a physical or logical wire.
type Layer1Node struct {
	Hostname      string
	InterfaceName string

	invalid bool
}

// InvalidInterface stands for an endpoint that could not be resolved against
// the configurations. It never equals a node built by NewLayer1Node.
var InvalidInterface = Layer1Node{
	Hostname:      invalidInterfaceName,
	InterfaceName: invalidInterfaceName,
	invalid:       true,
}

// NewLayer1Node builds a node with a lowercased hostname.
func NewLayer1Node(hostname, iface string) Layer1Node {
	return Layer1Node{Hostname: strings.ToLower(hostname), InterfaceName: iface}
}

func layer1NodeOf(p netconf.NodeInterfacePair) Layer1Node {
	return NewLayer1Node(p.Hostname, p.Interface)
}

// IsValid reports whether n refers to a real interface.
func (n Layer1Node) IsValid() bool {
	return !n.invalid
}

// Pair returns the node as a hostname/interface pair.
func (n Layer1Node) Pair() netconf.NodeInterfacePair {
	return netconf.NodeInterfacePair{Hostname: n.Hostname, Interface: n.InterfaceName}
}

// Compare orders the invalid sentinel first, then by hostname and interface.
func (n Layer1Node) Compare(other Layer1Node) int {
	if n.invalid != other.invalid {
		if n.invalid {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(n.Hostname, other.Hostname); c != 0 {
		return c
	}
	return cmp.Compare(n.InterfaceName, other.InterfaceName)
}

func (n Layer1Node) String() string {
	if n.invalid {
		return invalidInterfaceName
	}
	return fmt.Sprintf("%s[%s]", n.Hostname, n.InterfaceName)
}

type layer1NodeJSON struct {
	Hostname      string `json:"hostname"`
	InterfaceName string `json:"interfaceName"`
}

func (n Layer1Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(layer1NodeJSON{Hostname: n.Hostname, InterfaceName: n.InterfaceName})
}

func (n *Layer1Node) UnmarshalJSON(data []byte) error {
	var v layer1NodeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = NewLayer1Node(v.Hostname, v.InterfaceName)
	return nil
}

// Layer1Edge is a directed wire from Node1 to Node2.
type Layer1Edge struct {
	Node1 Layer1Node `json:"node1"`
	Node2 Layer1Node `json:"node2"`
}

func NewLayer1Edge(host1, iface1, host2, iface2 string) Layer1Edge {
	return Layer1Edge{Node1: NewLayer1Node(host1, iface1), Node2: NewLayer1Node(host2, iface2)}
}

// Reverse returns the edge with its endpoints swapped.
func (e Layer1Edge) Reverse() Layer1Edge {
	return Layer1Edge{Node1: e.Node2, Node2: e.Node1}
}

func (e Layer1Edge) Compare(other Layer1Edge) int {
	if c := e.Node1.Compare(other.Node1); c != 0 {
		return c
	}
	return e.Node2.Compare(other.Node2)
}

func (e Layer1Edge) String() string {
	return e.Node1.String() + " -> " + e.Node2.String()
}

// Layer1Topology is an immutable directed graph of Layer1 edges. Parallel
// edges and self-loops are dropped on construction.
type Layer1Topology struct {
	g digraph[Layer1Node]
}

func NewLayer1Topology(edges ...Layer1Edge) Layer1Topology {
	pairs := make([][2]Layer1Node, len(edges))
	for i, e := range edges {
		pairs[i] = [2]Layer1Node{e.Node1, e.Node2}
	}
	return Layer1Topology{g: newDigraph(pairs)}
}

// Nodes returns every node incident to an edge, sorted.
func (t Layer1Topology) Nodes() []Layer1Node { return t.g.nodeList() }

// Edges returns every edge, sorted.
func (t Layer1Topology) Edges() []Layer1Edge {
	pairs := t.g.edgePairs()
	out := make([]Layer1Edge, len(pairs))
	for i, p := range pairs {
		out[i] = Layer1Edge{Node1: p[0], Node2: p[1]}
	}
	return out
}

func (t Layer1Topology) Len() int { return t.g.size }

func (t Layer1Topology) IsEmpty() bool { return t.g.size == 0 }

func (t Layer1Topology) Contains(n Layer1Node) bool { return t.g.contains(n) }

func (t Layer1Topology) HasEdge(e Layer1Edge) bool { return t.g.hasEdge(e.Node1, e.Node2) }

// Successors returns the heads of the edges leaving n.
func (t Layer1Topology) Successors(n Layer1Node) []Layer1Node { return t.g.successors(n) }

// Predecessors returns the tails of the edges entering n.
func (t Layer1Topology) Predecessors(n Layer1Node) []Layer1Node { return t.g.predecessors(n) }

// Neighbors returns the nodes wired to n in either direction.
func (t Layer1Topology) Neighbors(n Layer1Node) []Layer1Node { return t.g.neighbors(n) }

func (t Layer1Topology) Equal(other Layer1Topology) bool { return t.g.equal(other.g) }

// Hash returns a hash stable across runs for equal topologies.
func (t Layer1Topology) Hash() (uint64, error) {
	edges := t.Edges()
	view := make([]string, len(edges))
	for i, e := range edges {
		view[i] = e.String()
	}
	return hashstructure.Hash(view, nil)
}

func (t Layer1Topology) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Edges []Layer1Edge `json:"edges"`
	}{Edges: t.Edges()})
}

func (t *Layer1Topology) UnmarshalJSON(data []byte) error {
	var v struct {
		Edges []Layer1Edge `json:"edges"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = NewLayer1Topology(v.Edges...)
	return nil
}

// Union returns a topology holding the edges of every input.
func Union(topologies ...Layer1Topology) Layer1Topology {
	var edges []Layer1Edge
	for _, t := range topologies {
		edges = append(edges, t.Edges()...)
	}
	return NewLayer1Topology(edges...)
}
