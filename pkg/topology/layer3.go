// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"cmp"
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"github.com/gohugoio/hashstructure"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

// Layer3Node is an IP-capable interface.
type Layer3Node struct {
	Hostname      string `json:"hostname"`
	InterfaceName string `json:"interfaceName"`
}

func NewLayer3Node(hostname, iface string) Layer3Node {
	return Layer3Node{Hostname: strings.ToLower(hostname), InterfaceName: iface}
}

func (n Layer3Node) Pair() netconf.NodeInterfacePair {
	return netconf.NodeInterfacePair{Hostname: n.Hostname, Interface: n.InterfaceName}
}

func (n Layer3Node) Compare(other Layer3Node) int {
	if c := cmp.Compare(n.Hostname, other.Hostname); c != 0 {
		return c
	}
	return cmp.Compare(n.InterfaceName, other.InterfaceName)
}

func (n Layer3Node) String() string {
	return fmt.Sprintf("%s[%s]", n.Hostname, n.InterfaceName)
}

type Layer3Edge struct {
	Node1 Layer3Node `json:"node1"`
	Node2 Layer3Node `json:"node2"`
}

func (e Layer3Edge) Reverse() Layer3Edge {
	return Layer3Edge{Node1: e.Node2, Node2: e.Node1}
}

func (e Layer3Edge) String() string {
	return e.Node1.String() + " -> " + e.Node2.String()
}

// Layer3Topology is an immutable directed graph of Layer3 edges.
type Layer3Topology struct {
	g digraph[Layer3Node]
}

func NewLayer3Topology(edges ...Layer3Edge) Layer3Topology {
	pairs := make([][2]Layer3Node, len(edges))
	for i, e := range edges {
		pairs[i] = [2]Layer3Node{e.Node1, e.Node2}
	}
	return Layer3Topology{g: newDigraph(pairs)}
}

func (t Layer3Topology) Nodes() []Layer3Node { return t.g.nodeList() }

func (t Layer3Topology) Edges() []Layer3Edge {
	pairs := t.g.edgePairs()
	out := make([]Layer3Edge, len(pairs))
	for i, p := range pairs {
		out[i] = Layer3Edge{Node1: p[0], Node2: p[1]}
	}
	return out
}

func (t Layer3Topology) Len() int { return t.g.size }

func (t Layer3Topology) HasEdge(e Layer3Edge) bool { return t.g.hasEdge(e.Node1, e.Node2) }

func (t Layer3Topology) Successors(n Layer3Node) []Layer3Node { return t.g.successors(n) }

func (t Layer3Topology) Equal(other Layer3Topology) bool { return t.g.equal(other.g) }

func (t Layer3Topology) Hash() (uint64, error) {
	edges := t.Edges()
	view := make([]string, len(edges))
	for i, e := range edges {
		view[i] = e.String()
	}
	return hashstructure.Hash(view, nil)
}

// SynthesizeLayer3Topology connects interfaces by subnet overlap. It is used
// when no Layer1 wiring is known.
func SynthesizeLayer3Topology(configs netconf.Configurations) Layer3Topology {
	return NewLayer3Topology(layer3Candidates(configs)...)
}

// ComputeLayer3Topology keeps the subnet-overlap candidates that the
// adjacency oracle places in one broadcast domain.
func ComputeLayer3Topology(configs netconf.Configurations, adj L3Adjacencies) Layer3Topology {
	var edges []Layer3Edge
	for _, e := range layer3Candidates(configs) {
		if adj.InSameBroadcastDomain(e.Node1.Pair(), e.Node2.Pair()) {
			edges = append(edges, e)
		}
	}
	return NewLayer3Topology(edges...)
}

// l3Member is one interface address placed in a subnet bucket.
type l3Member struct {
	node  Layer3Node
	iface *netconf.Interface
	ip    netip.Addr
}

// subnetIndex groups interface addresses by their configured network.
type subnetIndex struct {
	members map[netip.Prefix][]l3Member
}

func (s *subnetIndex) add(m l3Member, network netip.Prefix) {
	s.members[network] = append(s.members[network], m)
}

// containing returns the members of every configured network that could hold
// ip, from /0 up to one bit short of a host route.
func (s *subnetIndex) containing(ip netip.Addr) []l3Member {
	var out []l3Member
	for bits := 0; bits < ip.BitLen(); bits++ {
		p, err := ip.Prefix(bits)
		if err != nil {
			continue
		}
		out = append(out, s.members[p]...)
	}
	return out
}

func layer3Candidates(configs netconf.Configurations) []Layer3Edge {
	idx := &subnetIndex{members: make(map[netip.Prefix][]l3Member)}
	var all []l3Member

	for _, host := range configs.Hostnames() {
		for _, iface := range configs[host].ActiveInterfaces() {
			if iface.IsLoopback() {
				continue
			}
			node := Layer3Node{Hostname: host, InterfaceName: iface.Name}
			for _, addr := range iface.ConcreteAddresses() {
				m := l3Member{node: node, iface: iface, ip: addr.Addr().Unmap()}
				idx.add(m, netip.PrefixFrom(m.ip, addr.Bits()).Masked())
				all = append(all, m)
			}
		}
	}

	var edges []Layer3Edge
	for _, m := range all {
		for _, other := range idx.containing(m.ip) {
			if !layer3Compatible(m, other) {
				continue
			}
			edges = append(edges, Layer3Edge{Node1: m.node, Node2: other.node})
		}
	}
	return edges
}

func layer3Compatible(a, b l3Member) bool {
	if a.node == b.node {
		return false
	}
	if a.node.Hostname == b.node.Hostname && a.iface.VRFName() == b.iface.VRFName() {
		return false
	}
	if a.iface.IsTunnel() || b.iface.IsTunnel() {
		return false
	}
	return !shareAddress(a.iface, b.iface)
}

func shareAddress(a, b *netconf.Interface) bool {
	for _, pa := range a.ConcreteAddresses() {
		if slices.ContainsFunc(b.ConcreteAddresses(), func(pb netip.Prefix) bool {
			return pa.Addr().Unmap() == pb.Addr().Unmap()
		}) {
			return true
		}
	}
	return false
}
