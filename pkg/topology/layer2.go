// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

// Layer2Node is an attachment point to a broadcast domain. VLAN is the
// switchport VLAN the node stands for; zero means the interface itself.
type Layer2Node struct {
	Hostname      string
	InterfaceName string
	VLAN          int
}

func newLayer2Node(p netconf.NodeInterfacePair, vlan *int) Layer2Node {
	n := Layer2Node{Hostname: p.Hostname, InterfaceName: p.Interface}
	if vlan != nil {
		n.VLAN = *vlan
	}
	return n
}

func (n Layer2Node) Pair() netconf.NodeInterfacePair {
	return netconf.NodeInterfacePair{Hostname: n.Hostname, Interface: n.InterfaceName}
}

// Compare orders nodes by hostname, interface, then VLAN with untagged first.
func (n Layer2Node) Compare(other Layer2Node) int {
	if c := cmp.Compare(n.Hostname, other.Hostname); c != 0 {
		return c
	}
	if c := cmp.Compare(n.InterfaceName, other.InterfaceName); c != 0 {
		return c
	}
	return cmp.Compare(n.VLAN, other.VLAN)
}

func (n Layer2Node) String() string {
	if n.VLAN == 0 {
		return fmt.Sprintf("%s[%s]", n.Hostname, n.InterfaceName)
	}
	return fmt.Sprintf("%s[%s vlan %d]", n.Hostname, n.InterfaceName, n.VLAN)
}

// Layer2Edge is a directed Layer2 adjacency. Encapsulation is the 802.1Q tag
// carried on the wire, zero when frames are untagged.
type Layer2Edge struct {
	Node1         Layer2Node
	Node2         Layer2Node
	Encapsulation int
}

func (e Layer2Edge) Compare(other Layer2Edge) int {
	if c := e.Node1.Compare(other.Node1); c != 0 {
		return c
	}
	if c := e.Node2.Compare(other.Node2); c != 0 {
		return c
	}
	return cmp.Compare(e.Encapsulation, other.Encapsulation)
}

func (e Layer2Edge) String() string {
	if e.Encapsulation == 0 {
		return e.Node1.String() + " -> " + e.Node2.String()
	}
	return e.Node1.String() + " -> " + e.Node2.String() + " (tag " + strconv.Itoa(e.Encapsulation) + ")"
}

// VNIInterfaceName is the pseudo-interface name of a VNI in Layer2 nodes.
func VNIInterfaceName(vni int) string {
	return "vni:" + strconv.Itoa(vni)
}

type layer2EdgeSet map[Layer2Edge]struct{}

func (s layer2EdgeSet) add(n1, n2 Layer2Node, encapsulation int) {
	if n1 == n2 {
		return
	}
	s[Layer2Edge{Node1: n1, Node2: n2, Encapsulation: encapsulation}] = struct{}{}
}

func (s layer2EdgeSet) addBoth(n1, n2 Layer2Node) {
	s.add(n1, n2, 0)
	s.add(n2, n1, 0)
}

func (s layer2EdgeSet) sorted() []Layer2Edge {
	if len(s) == 0 {
		return nil
	}
	out := make([]Layer2Edge, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	slices.SortFunc(out, Layer2Edge.Compare)
	return out
}

// ComputeLayer2Edges derives every Layer2 edge of the snapshot: edges across
// each Layer1 wire and its bound subinterfaces, intra-device switching edges
// and VXLAN edges between VNIs.
func ComputeLayer2Edges(layer1 Layer1Topology, vxlan VxlanTopology, configs netconf.Configurations) []Layer2Edge {
	edges := make(layer2EdgeSet)

	for _, e := range layer1.Edges() {
		if !e.Node1.IsValid() || !e.Node2.IsValid() {
			continue
		}
		for _, i1 := range withBoundChildren(e.Node1.Pair(), configs) {
			for _, i2 := range withBoundChildren(e.Node2.Pair(), configs) {
				addLayer1Layer2Edges(edges, i1, i2, configs)
			}
		}
	}

	for _, host := range configs.Hostnames() {
		addSelfEdges(edges, host, configs[host])
	}

	addVxlanEdges(edges, vxlan, configs)

	return edges.sorted()
}

func withBoundChildren(p netconf.NodeInterfacePair, configs netconf.Configurations) []netconf.NodeInterfacePair {
	out := []netconf.NodeInterfacePair{p}
	cfg, ok := configs.Get(p.Hostname)
	if !ok {
		return out
	}
	for _, child := range cfg.BoundChildren(p.Interface) {
		out = append(out, netconf.NodeInterfacePair{Hostname: p.Hostname, Interface: child})
	}
	return out
}

func addLayer1Layer2Edges(edges layer2EdgeSet, p1, p2 netconf.NodeInterfacePair, configs netconf.Configurations) {
	i1, ok1 := configs.Interface(p1)
	i2, ok2 := configs.Interface(p2)
	if !ok1 || !ok2 || !i1.Active() || !i2.Active() {
		return
	}

	switch {
	case i1.IsTrunk() && i2.IsTrunk():
		addTrunkTrunkEdges(edges, p1, i1, p2, i2)
	case i1.IsTaggedL3() && i2.IsTrunk():
		if vlan, ok := taggedOntoTrunk(i1, i2); ok {
			edges.add(newLayer2Node(p1, nil), newLayer2Node(p2, &vlan), vlan)
		}
	case i1.IsTrunk() && i2.IsTaggedL3():
		if vlan, ok := taggedOntoTrunk(i2, i1); ok {
			edges.add(newLayer2Node(p1, &vlan), newLayer2Node(p2, nil), vlan)
		}
	case i1.IsTaggedL3() && i2.IsTaggedL3():
		if *i1.EncapsulationVLAN == *i2.EncapsulationVLAN {
			edges.add(newLayer2Node(p1, nil), newLayer2Node(p2, nil), *i1.EncapsulationVLAN)
		}
	case i1.IsTaggedL3() || i2.IsTaggedL3():
		// tagged frames never meet an untagged port
	case i1.IsTrunk():
		if native, ok := untaggedNative(i1); ok {
			edges.add(newLayer2Node(p1, &native), newLayer2Node(p2, i2.AccessVLANOrNil()), 0)
		}
	case i2.IsTrunk():
		if native, ok := untaggedNative(i2); ok {
			edges.add(newLayer2Node(p1, i1.AccessVLANOrNil()), newLayer2Node(p2, &native), 0)
		}
	default:
		edges.add(newLayer2Node(p1, i1.AccessVLANOrNil()), newLayer2Node(p2, i2.AccessVLANOrNil()), 0)
	}
}

func addTrunkTrunkEdges(edges layer2EdgeSet, p1 netconf.NodeInterfacePair, i1 *netconf.Interface, p2 netconf.NodeInterfacePair, i2 *netconf.Interface) {
	native2, hasNative2 := untaggedNative(i2)
	for _, vlan := range i1.SortedAllowedVLANs() {
		if i1.NativeVLAN != nil && vlan == *i1.NativeVLAN && hasNative2 {
			edges.add(newLayer2Node(p1, &vlan), newLayer2Node(p2, &native2), 0)
		} else if i2.AllowsVLAN(vlan) {
			edges.add(newLayer2Node(p1, &vlan), newLayer2Node(p2, &vlan), vlan)
		}
	}
}

// untaggedNative returns the native VLAN of a trunk when it is carried.
func untaggedNative(trunk *netconf.Interface) (int, bool) {
	if trunk.NativeVLAN == nil || !trunk.AllowsVLAN(*trunk.NativeVLAN) {
		return 0, false
	}
	return *trunk.NativeVLAN, true
}

// taggedOntoTrunk returns the VLAN a tagged routed interface lands in on a
// trunk. Frames tagged with the native VLAN are not accepted.
func taggedOntoTrunk(tagged, trunk *netconf.Interface) (int, bool) {
	vlan := *tagged.EncapsulationVLAN
	if trunk.NativeVLAN != nil && *trunk.NativeVLAN == vlan {
		return 0, false
	}
	if !trunk.AllowsVLAN(vlan) {
		return 0, false
	}
	return vlan, true
}

func addSelfEdges(edges layer2EdgeSet, host string, cfg *netconf.Configuration) {
	byVLAN := make(map[int][]netconf.NodeInterfacePair)
	var irbs []*netconf.Interface

	for _, iface := range cfg.ActiveInterfaces() {
		p := netconf.NodeInterfacePair{Hostname: host, Interface: iface.Name}
		switch {
		case iface.IsTrunk():
			for _, vlan := range iface.SortedAllowedVLANs() {
				byVLAN[vlan] = append(byVLAN[vlan], p)
			}
		case iface.IsAccess() && iface.AccessVLAN != nil:
			byVLAN[*iface.AccessVLAN] = append(byVLAN[*iface.AccessVLAN], p)
		case iface.Type == netconf.InterfaceVLAN && iface.VLAN != nil:
			irbs = append(irbs, iface)
		}
	}

	for vlan, ports := range byVLAN {
		for i := range ports {
			for j := i + 1; j < len(ports); j++ {
				edges.addBoth(newLayer2Node(ports[i], &vlan), newLayer2Node(ports[j], &vlan))
			}
		}
	}

	vniToVLAN := cfg.VNIToVLAN()
	for vni, vlan := range vniToVLAN {
		vniNode := Layer2Node{Hostname: host, InterfaceName: VNIInterfaceName(vni)}
		for _, port := range byVLAN[vlan] {
			edges.addBoth(vniNode, newLayer2Node(port, &vlan))
		}
	}

	for _, irb := range irbs {
		vlan := *irb.VLAN
		irbNode := Layer2Node{Hostname: host, InterfaceName: irb.Name}
		for _, port := range byVLAN[vlan] {
			edges.addBoth(irbNode, newLayer2Node(port, &vlan))
		}
		for vni, vniVLAN := range vniToVLAN {
			if vniVLAN == vlan {
				edges.addBoth(irbNode, Layer2Node{Hostname: host, InterfaceName: VNIInterfaceName(vni)})
			}
		}
	}
}

func addVxlanEdges(edges layer2EdgeSet, vxlan VxlanTopology, configs netconf.Configurations) {
	for _, e := range vxlan.Edges() {
		if !hasVNI(configs, e.Node1) || !hasVNI(configs, e.Node2) {
			continue
		}
		edges.addBoth(
			Layer2Node{Hostname: e.Node1.Hostname, InterfaceName: VNIInterfaceName(e.Node1.VNI)},
			Layer2Node{Hostname: e.Node2.Hostname, InterfaceName: VNIInterfaceName(e.Node2.VNI)},
		)
	}
}

func hasVNI(configs netconf.Configurations, n VxlanNode) bool {
	cfg, ok := configs.Get(n.Hostname)
	if !ok {
		return false
	}
	_, ok = cfg.VNIToVLAN()[n.VNI]
	return ok
}
