// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// VxlanNode is a VNI endpoint on one device.
type VxlanNode struct {
	Hostname string `yaml:"hostname" json:"hostname"`
	VNI      int    `yaml:"vni" json:"vni"`
}

func NewVxlanNode(hostname string, vni int) VxlanNode {
	return VxlanNode{Hostname: strings.ToLower(hostname), VNI: vni}
}

func (n VxlanNode) Compare(other VxlanNode) int {
	if c := cmp.Compare(n.Hostname, other.Hostname); c != 0 {
		return c
	}
	return cmp.Compare(n.VNI, other.VNI)
}

func (n VxlanNode) String() string {
	return fmt.Sprintf("%s[vni %d]", n.Hostname, n.VNI)
}

// VxlanEdge is an undirected VXLAN adjacency between two VNI endpoints.
type VxlanEdge struct {
	Node1 VxlanNode `yaml:"node1" json:"node1"`
	Node2 VxlanNode `yaml:"node2" json:"node2"`
}

// VxlanTopology holds the distinct undirected VXLAN adjacencies of a snapshot.
type VxlanTopology struct {
	edges []VxlanEdge
}

// NewVxlanTopology normalizes every edge so that Node1 sorts first and drops
// duplicates and self-adjacencies.
func NewVxlanTopology(edges ...VxlanEdge) VxlanTopology {
	out := make([]VxlanEdge, 0, len(edges))
	for _, e := range edges {
		e.Node1 = NewVxlanNode(e.Node1.Hostname, e.Node1.VNI)
		e.Node2 = NewVxlanNode(e.Node2.Hostname, e.Node2.VNI)
		switch c := e.Node1.Compare(e.Node2); {
		case c == 0:
			continue
		case c > 0:
			e.Node1, e.Node2 = e.Node2, e.Node1
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b VxlanEdge) int {
		if c := a.Node1.Compare(b.Node1); c != 0 {
			return c
		}
		return a.Node2.Compare(b.Node2)
	})
	return VxlanTopology{edges: slices.Compact(out)}
}

// Edges returns the normalized undirected edges, sorted.
func (t VxlanTopology) Edges() []VxlanEdge {
	return slices.Clone(t.edges)
}
