// SPDX-License-Identifier: GPL-3.0-or-later

package ipowners

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

// Protocol is a first-hop redundancy protocol.
type Protocol string

const (
	VRRP Protocol = "vrrp"
	HSRP Protocol = "hsrp"
)

// GroupElection records how one interface fared in one election. VRRP
// elects per virtual address, so VirtualAddress is set for VRRP records and
// left zero for HSRP ones.
type GroupElection struct {
	VirtualAddress   netip.Addr                  `json:"virtual_address,omitzero"`
	ActualPriority   int                         `json:"actual_priority"`
	SuccessfulTracks []string                    `json:"successful_tracks,omitempty"`
	FailedTracks     []string                    `json:"failed_tracks,omitempty"`
	Candidates       []netconf.NodeInterfacePair `json:"candidates"`
	Winner           netconf.NodeInterfacePair   `json:"winner"`
}

type electionKey struct {
	group int
	vip   netip.Addr
}

func (k electionKey) String() string {
	if !k.vip.IsValid() {
		return fmt.Sprintf("group %d", k.group)
	}
	return fmt.Sprintf("group %d (%s)", k.group, k.vip)
}

// ElectionDetails holds diagnostic records of every election, keyed by
// protocol, interface, group number and, for VRRP, virtual address. It has
// no effect on the outcome.
type ElectionDetails struct {
	elections map[Protocol]map[netconf.NodeInterfacePair]map[electionKey]*GroupElection
}

func newElectionDetails() *ElectionDetails {
	return &ElectionDetails{elections: make(map[Protocol]map[netconf.NodeInterfacePair]map[electionKey]*GroupElection)}
}

func (d *ElectionDetails) entry(protocol Protocol, iface netconf.NodeInterfacePair, key electionKey) *GroupElection {
	byIface, ok := d.elections[protocol]
	if !ok {
		byIface = make(map[netconf.NodeInterfacePair]map[electionKey]*GroupElection)
		d.elections[protocol] = byIface
	}
	byKey, ok := byIface[iface]
	if !ok {
		byKey = make(map[electionKey]*GroupElection)
		byIface[iface] = byKey
	}
	g, ok := byKey[key]
	if !ok {
		g = &GroupElection{VirtualAddress: key.vip}
		byKey[key] = g
	}
	return g
}

func (d *ElectionDetails) setPriority(protocol Protocol, iface netconf.NodeInterfacePair, key electionKey, priority int, succeeded, failed []string) {
	g := d.entry(protocol, iface, key)
	g.ActualPriority = priority
	g.SuccessfulTracks = succeeded
	g.FailedTracks = failed
}

func (d *ElectionDetails) setOutcome(protocol Protocol, iface netconf.NodeInterfacePair, key electionKey, candidates []netconf.NodeInterfacePair, winner netconf.NodeInterfacePair) {
	g := d.entry(protocol, iface, key)
	g.Candidates = slices.Clone(candidates)
	g.Winner = winner
}

// Election returns the record of iface in the given group. For a VRRP group
// with several virtual addresses it is the record of the lowest address; use
// Elections or VRRPElection for the others.
func (d *ElectionDetails) Election(protocol Protocol, iface netconf.NodeInterfacePair, group int) (GroupElection, bool) {
	all := d.Elections(protocol, iface, group)
	if len(all) == 0 {
		return GroupElection{}, false
	}
	return all[0], true
}

// VRRPElection returns the record of iface in the election of vrid for ip.
func (d *ElectionDetails) VRRPElection(iface netconf.NodeInterfacePair, vrid int, ip netip.Addr) (GroupElection, bool) {
	if d == nil {
		return GroupElection{}, false
	}
	g, ok := d.elections[VRRP][iface][electionKey{group: vrid, vip: ip.Unmap()}]
	if !ok {
		return GroupElection{}, false
	}
	return g.clone(), true
}

// Elections returns every record of iface in the given group, ordered by
// virtual address.
func (d *ElectionDetails) Elections(protocol Protocol, iface netconf.NodeInterfacePair, group int) []GroupElection {
	if d == nil {
		return nil
	}
	var out []GroupElection
	for key, g := range d.elections[protocol][iface] {
		if key.group == group {
			out = append(out, g.clone())
		}
	}
	slices.SortFunc(out, func(a, b GroupElection) int {
		return a.VirtualAddress.Compare(b.VirtualAddress)
	})
	return out
}

func (g *GroupElection) clone() GroupElection {
	out := *g
	out.SuccessfulTracks = slices.Clone(g.SuccessfulTracks)
	out.FailedTracks = slices.Clone(g.FailedTracks)
	out.Candidates = slices.Clone(g.Candidates)
	return out
}

// Interfaces returns the interfaces that took part in a protocol's elections.
func (d *ElectionDetails) Interfaces(protocol Protocol) []netconf.NodeInterfacePair {
	if d == nil {
		return nil
	}
	return slices.SortedFunc(maps.Keys(d.elections[protocol]), netconf.NodeInterfacePair.Compare)
}
