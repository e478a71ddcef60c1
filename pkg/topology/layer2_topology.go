// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gohugoio/hashstructure"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

// Layer2Topology partitions interfaces into broadcast domains. Each interface
// maps to the smallest Layer2Node of its domain.
type Layer2Topology struct {
	representatives map[netconf.NodeInterfacePair]Layer2Node
}

// NewLayer2Topology builds the partition from disjoint broadcast domains.
// Only untagged members (VLAN zero) are addressable by interface; tagged
// members still take part in choosing the representative. A node listed in
// two domains panics.
func NewLayer2Topology(domains ...[]Layer2Node) Layer2Topology {
	t := Layer2Topology{representatives: make(map[netconf.NodeInterfacePair]Layer2Node)}
	seen := make(map[Layer2Node]int)
	for i, domain := range domains {
		if len(domain) == 0 {
			continue
		}
		rep := slices.MinFunc(domain, Layer2Node.Compare)
		for _, n := range domain {
			if j, ok := seen[n]; ok && j != i {
				panic(fmt.Sprintf("topology: %s is in broadcast domains #%d and #%d", n, j, i))
			}
			seen[n] = i
			if n.VLAN == 0 {
				t.representatives[n.Pair()] = rep
			}
		}
	}
	return t
}

// ComputeLayer2Topology derives broadcast domains from the Layer1 wiring,
// device switching configuration and VXLAN adjacencies. Every active
// interface belongs to at least its own domain.
func ComputeLayer2Topology(layer1 Layer1Topology, vxlan VxlanTopology, configs netconf.Configurations) Layer2Topology {
	uf := newUnionFind[Layer2Node]()
	for _, p := range configs.ActiveInterfacePairs() {
		uf.add(newLayer2Node(p, nil))
	}
	for _, e := range ComputeLayer2Edges(layer1, vxlan, configs) {
		uf.union(e.Node1, e.Node2)
	}
	return NewLayer2Topology(uf.sets()...)
}

// Representative returns the canonical member of the domain of p.
func (t Layer2Topology) Representative(p netconf.NodeInterfacePair) (Layer2Node, bool) {
	n, ok := t.representatives[p]
	return n, ok
}

// InSameBroadcastDomain reports whether both interfaces have a domain and it
// is the same one. Interfaces without domain information are never together.
func (t Layer2Topology) InSameBroadcastDomain(a, b netconf.NodeInterfacePair) bool {
	ra, ok := t.representatives[a]
	if !ok {
		return false
	}
	rb, ok := t.representatives[b]
	return ok && ra == rb
}

// Domains returns the interfaces of each domain, sorted, ordered by
// representative.
func (t Layer2Topology) Domains() [][]netconf.NodeInterfacePair {
	byRep := make(map[Layer2Node][]netconf.NodeInterfacePair)
	for p, rep := range t.representatives {
		byRep[rep] = append(byRep[rep], p)
	}
	reps := slices.SortedFunc(maps.Keys(byRep), Layer2Node.Compare)
	out := make([][]netconf.NodeInterfacePair, len(reps))
	for i, rep := range reps {
		members := byRep[rep]
		slices.SortFunc(members, netconf.NodeInterfacePair.Compare)
		out[i] = members
	}
	return out
}

func (t Layer2Topology) Equal(other Layer2Topology) bool {
	return maps.Equal(t.representatives, other.representatives)
}

// Hash returns a hash stable across runs for equal topologies.
func (t Layer2Topology) Hash() (uint64, error) {
	var view [][]string
	for _, domain := range t.Domains() {
		names := make([]string, len(domain))
		for i, p := range domain {
			names[i] = p.String()
		}
		view = append(view, names)
	}
	return hashstructure.Hash(view, nil)
}
