// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

func TestComputePointToPointInterfaces(t *testing.T) {
	tests := map[string]struct {
		edges     []Layer1Edge
		wantPeers map[netconf.NodeInterfacePair]netconf.NodeInterfacePair
	}{
		"bidirectional wire": {
			edges: wire("a", "e0", "b", "e0"),
			wantPeers: map[netconf.NodeInterfacePair]netconf.NodeInterfacePair{
				pair("a", "e0"): pair("b", "e0"),
				pair("b", "e0"): pair("a", "e0"),
			},
		},
		"one direction observed": {
			edges: []Layer1Edge{NewLayer1Edge("a", "e0", "b", "e0")},
			wantPeers: map[netconf.NodeInterfacePair]netconf.NodeInterfacePair{
				pair("a", "e0"): pair("b", "e0"),
				pair("b", "e0"): pair("a", "e0"),
			},
		},
		"fan-out is not point-to-point": {
			edges: wires(wire("a", "e0", "b", "e0"), wire("a", "e0", "c", "e0")),
		},
		"shared neighbor is not point-to-point": {
			edges: []Layer1Edge{NewLayer1Edge("a", "e0", "b", "e0"), NewLayer1Edge("c", "e0", "b", "e0")},
		},
		"invalid neighbor": {
			edges: []Layer1Edge{{Node1: NewLayer1Node("a", "e0"), Node2: InvalidInterface}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			p := ComputePointToPointInterfaces(NewLayer1Topology(test.edges...), netconf.Configurations{})

			got := make(map[netconf.NodeInterfacePair]netconf.NodeInterfacePair)
			for _, iface := range p.Interfaces() {
				peer, ok := p.Peer(iface)
				assert.True(t, ok)
				got[iface] = peer
			}
			if test.wantPeers == nil {
				test.wantPeers = map[netconf.NodeInterfacePair]netconf.NodeInterfacePair{}
			}
			assert.Equal(t, test.wantPeers, got)
		})
	}
}

func TestComputePointToPointInterfaces_MultiNeighborNeverKey(t *testing.T) {
	topo := NewLayer1Topology(wires(
		wire("hub", "e0", "a", "e0"),
		wire("hub", "e0", "b", "e0"),
		wire("hub", "e0", "c", "e0"),
		wire("x", "e0", "y", "e0"),
	)...)

	p := ComputePointToPointInterfaces(topo, netconf.Configurations{})

	for _, n := range topo.Nodes() {
		if len(topo.Neighbors(n)) >= 2 {
			_, ok := p.Peer(n.Pair())
			assert.Falsef(t, ok, "%s has several neighbors", n)
		}
	}
	assert.Equal(t, []netconf.NodeInterfacePair{pair("x", "e0"), pair("y", "e0")}, p.Interfaces())
}

func TestPointToPointInterfaces_PhysicalParent(t *testing.T) {
	po := physical("Port-channel1")
	po.Type = netconf.InterfaceAggregated
	vlanIf := irb("Vlan10", 10)
	loop := physical("Loopback0")
	loop.Type = netconf.InterfaceLoopback

	configs := netconf.NewConfigurations(device("r1",
		physical("Gi0/0"),
		subinterface("Gi0/0.10", "Gi0/0", 10),
		po,
		vlanIf,
		loop,
	))

	p := ComputePointToPointInterfaces(NewLayer1Topology(), configs)

	tests := map[string]struct {
		iface      string
		wantParent string
		wantOK     bool
	}{
		"physical":     {iface: "Gi0/0", wantParent: "Gi0/0", wantOK: true},
		"subinterface": {iface: "Gi0/0.10", wantParent: "Gi0/0", wantOK: true},
		"aggregate":    {iface: "Port-channel1", wantParent: "Port-channel1", wantOK: true},
		"irb":          {iface: "Vlan10"},
		"loopback":     {iface: "Loopback0"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			parent, ok := p.PhysicalParent(pair("r1", test.iface))
			assert.Equal(t, test.wantOK, ok)
			if test.wantOK {
				assert.Equal(t, pair("r1", test.wantParent), parent)
			}
		})
	}
}
