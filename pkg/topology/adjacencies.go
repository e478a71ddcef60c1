// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"slices"

	"github.com/netdata/netdata/go/topology/logger"
	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

// L3Adjacencies answers Layer3 adjacency questions about interfaces.
type L3Adjacencies interface {
	// InSameBroadcastDomain reports whether two interfaces may exchange
	// unrouted frames.
	InSameBroadcastDomain(a, b netconf.NodeInterfacePair) bool
	// PairedPointToPointL3Interface returns the single Layer3 interface at the
	// far end of the point-to-point link iface is on.
	PairedPointToPointL3Interface(iface netconf.NodeInterfacePair) (netconf.NodeInterfacePair, bool)
	// InSamePointToPointDomain reports whether a and b are each other's
	// point-to-point peer.
	InSamePointToPointDomain(a, b netconf.NodeInterfacePair) bool
}

// InSamePointToPointDomain implements L3Adjacencies.InSamePointToPointDomain
// in terms of PairedPointToPointL3Interface.
func InSamePointToPointDomain(adj L3Adjacencies, a, b netconf.NodeInterfacePair) bool {
	pa, ok := adj.PairedPointToPointL3Interface(a)
	if !ok || pa != b {
		return false
	}
	pb, ok := adj.PairedPointToPointL3Interface(b)
	return ok && pb == a
}

// HybridL3Adjacencies trusts observed wiring for devices that have it and
// assumes adjacency wherever Layer2 configuration allows for the rest.
type HybridL3Adjacencies struct {
	*logger.Logger

	hasL1Info map[string]bool
	layer2    Layer2Topology
	p2p       PointToPointInterfaces
	// children maps a physical interface to the interfaces riding on it.
	children map[netconf.NodeInterfacePair][]netconf.NodeInterfacePair
}

var _ L3Adjacencies = (*HybridL3Adjacencies)(nil)

func NewHybridL3Adjacencies(log *logger.Logger, layer1 Layer1Topologies, layer2 Layer2Topology, configs netconf.Configurations) *HybridL3Adjacencies {
	a := &HybridL3Adjacencies{
		Logger:    log.With("component", "l3_adjacencies"),
		hasL1Info: hostsWithLayer1Info(configs, layer1.UserProvided, layer1.ActiveLogical),
		layer2:    layer2,
		p2p:       ComputePointToPointInterfaces(layer1.Logical, configs),
		children:  make(map[netconf.NodeInterfacePair][]netconf.NodeInterfacePair),
	}
	for child, parent := range a.p2p.parents {
		a.children[parent] = append(a.children[parent], child)
	}
	for _, v := range a.children {
		slices.SortFunc(v, netconf.NodeInterfacePair.Compare)
	}
	return a
}

// hostsWithLayer1Info returns the tails of every edge that is not a border
// edge towards an ISP or internet device.
func hostsWithLayer1Info(configs netconf.Configurations, topologies ...Layer1Topology) map[string]bool {
	out := make(map[string]bool)
	for _, t := range topologies {
		for _, e := range t.Edges() {
			if !e.Node1.IsValid() || isBorderToISP(e, configs) {
				continue
			}
			out[e.Node1.Hostname] = true
		}
	}
	return out
}

func isBorderToISP(e Layer1Edge, configs netconf.Configurations) bool {
	isp := func(n Layer1Node) bool {
		cfg, ok := configs.Get(n.Hostname)
		return n.IsValid() && ok && cfg.IsISP()
	}
	return isp(e.Node1) != isp(e.Node2)
}

// HasLayer1Info reports whether observed wiring pins the device.
func (a *HybridL3Adjacencies) HasLayer1Info(hostname string) bool {
	return a.hasL1Info[hostname]
}

func (a *HybridL3Adjacencies) InSameBroadcastDomain(i1, i2 netconf.NodeInterfacePair) bool {
	if !a.hasL1Info[i1.Hostname] || !a.hasL1Info[i2.Hostname] {
		return true
	}
	return a.layer2.InSameBroadcastDomain(i1, i2)
}

func (a *HybridL3Adjacencies) PairedPointToPointL3Interface(iface netconf.NodeInterfacePair) (netconf.NodeInterfacePair, bool) {
	parent, ok := a.p2p.PhysicalParent(iface)
	if !ok {
		return netconf.NodeInterfacePair{}, false
	}
	peerParent, ok := a.p2p.Peer(parent)
	if !ok {
		return netconf.NodeInterfacePair{}, false
	}

	var matches []netconf.NodeInterfacePair
	for _, candidate := range a.children[peerParent] {
		if a.layer2.InSameBroadcastDomain(iface, candidate) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return netconf.NodeInterfacePair{}, false
	case 1:
		return matches[0], true
	default:
		a.Warningf("interface %s has %d point-to-point peers in one broadcast domain: %v", iface, len(matches), matches)
		return netconf.NodeInterfacePair{}, false
	}
}

func (a *HybridL3Adjacencies) InSamePointToPointDomain(i1, i2 netconf.NodeInterfacePair) bool {
	return InSamePointToPointDomain(a, i1, i2)
}
