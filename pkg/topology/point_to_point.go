// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"fmt"
	"slices"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

// PointToPointInterfaces pairs interfaces wired exclusively to each other and
// maps interfaces to the physical interface they ride on.
type PointToPointInterfaces struct {
	peers   map[netconf.NodeInterfacePair]netconf.NodeInterfacePair
	parents map[netconf.NodeInterfacePair]netconf.NodeInterfacePair
}

// Peer returns the point-to-point peer of a physical interface.
func (p PointToPointInterfaces) Peer(iface netconf.NodeInterfacePair) (netconf.NodeInterfacePair, bool) {
	v, ok := p.peers[iface]
	return v, ok
}

// PhysicalParent returns the interface carrying iface on the wire. Physical,
// aggregated and redundant interfaces are their own parent; bound
// subinterfaces map to the interface they are bound to. Purely virtual
// interfaces have no parent.
func (p PointToPointInterfaces) PhysicalParent(iface netconf.NodeInterfacePair) (netconf.NodeInterfacePair, bool) {
	v, ok := p.parents[iface]
	return v, ok
}

// Interfaces returns every interface that has a point-to-point peer, sorted.
func (p PointToPointInterfaces) Interfaces() []netconf.NodeInterfacePair {
	out := make([]netconf.NodeInterfacePair, 0, len(p.peers))
	for k := range p.peers {
		out = append(out, k)
	}
	slices.SortFunc(out, netconf.NodeInterfacePair.Compare)
	return out
}

// ComputePointToPointInterfaces pairs every valid node whose only neighbor
// has no neighbor but itself. It must be given the logical topology: the
// active logical view has lost the fan-out needed to reject shared segments.
func ComputePointToPointInterfaces(t Layer1Topology, configs netconf.Configurations) PointToPointInterfaces {
	p := PointToPointInterfaces{
		peers:   make(map[netconf.NodeInterfacePair]netconf.NodeInterfacePair),
		parents: physicalParents(configs),
	}

	for _, n := range t.Nodes() {
		if !n.IsValid() {
			continue
		}
		neighbors := t.Neighbors(n)
		if len(neighbors) != 1 || !neighbors[0].IsValid() {
			continue
		}
		m := neighbors[0]
		if back := t.Neighbors(m); len(back) > 1 || (len(back) == 1 && back[0] != n) {
			continue
		}
		p.record(n.Pair(), m.Pair())
		p.record(m.Pair(), n.Pair())
	}
	return p
}

func (p PointToPointInterfaces) record(from, to netconf.NodeInterfacePair) {
	if prev, ok := p.peers[from]; ok && prev != to {
		panic(fmt.Sprintf("topology: conflicting point-to-point peers for %s: %s and %s", from, prev, to))
	}
	p.peers[from] = to
}

func physicalParents(configs netconf.Configurations) map[netconf.NodeInterfacePair]netconf.NodeInterfacePair {
	out := make(map[netconf.NodeInterfacePair]netconf.NodeInterfacePair)
	for _, host := range configs.Hostnames() {
		cfg := configs[host]
		for _, name := range cfg.InterfaceNames() {
			iface := cfg.Interfaces[name]
			self := netconf.NodeInterfacePair{Hostname: host, Interface: name}
			if iface.IsPhysicalLike() {
				out[self] = self
				continue
			}
			if parent, ok := iface.BindParent(); ok {
				out[self] = netconf.NodeInterfacePair{Hostname: host, Interface: parent}
			}
		}
	}
	return out
}
