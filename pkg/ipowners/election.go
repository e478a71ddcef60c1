// SPDX-License-Identifier: GPL-3.0-or-later

package ipowners

import (
	"cmp"
	"maps"
	"net/netip"
	"slices"

	"github.com/netdata/netdata/go/topology/logger"
	"github.com/netdata/netdata/go/topology/pkg/netconf"
	"github.com/netdata/netdata/go/topology/pkg/topology"
)

// PartitionCandidates splits candidates into groups sharing a broadcast
// domain. Each candidate, in sorted order, joins the first partition whose
// first member is in its domain, or starts a new one.
func PartitionCandidates(candidates []netconf.NodeInterfacePair, adj topology.L3Adjacencies) [][]netconf.NodeInterfacePair {
	sorted := slices.Clone(candidates)
	slices.SortFunc(sorted, netconf.NodeInterfacePair.Compare)
	sorted = slices.Compact(sorted)

	var partitions [][]netconf.NodeInterfacePair
	for _, c := range sorted {
		placed := false
		for i, p := range partitions {
			if adj.InSameBroadcastDomain(p[0], c) {
				partitions[i] = append(partitions[i], c)
				placed = true
				break
			}
		}
		if !placed {
			partitions = append(partitions, []netconf.NodeInterfacePair{c})
		}
	}
	return partitions
}

type candidate struct {
	iface    netconf.NodeInterfacePair
	cfg      *netconf.Configuration
	priority int
	source   netip.Addr
	tracks   map[string]netconf.TrackAction

	vrrp *netconf.VRRPGroup
	hsrp *netconf.HSRPGroup
}

type vrrpKey struct {
	ip   netip.Addr
	vrid int
}

type elector struct {
	*logger.Logger

	configs    netconf.Configurations
	adj        topology.L3Adjacencies
	provider   EvaluatorProvider
	evaluators map[string]TrackMethodEvaluator
	details    *ElectionDetails
}

func (e *elector) evaluator(cfg *netconf.Configuration) TrackMethodEvaluator {
	if ev, ok := e.evaluators[cfg.Hostname]; ok {
		return ev
	}
	ev := e.provider(cfg)
	e.evaluators[cfg.Hostname] = ev
	return ev
}

// vrrpCandidates groups valid VRRP groups on active interfaces by virtual
// address and VRID.
func vrrpCandidates(configs netconf.Configurations) map[vrrpKey]map[netconf.NodeInterfacePair]candidate {
	out := make(map[vrrpKey]map[netconf.NodeInterfacePair]candidate)
	for _, host := range configs.Hostnames() {
		for _, iface := range configs[host].ActiveInterfaces() {
			for _, vrid := range sortedKeys(iface.VRRPGroups) {
				group := iface.VRRPGroups[vrid]
				if !group.Valid() {
					continue
				}
				c := candidate{
					iface:    netconf.NodeInterfacePair{Hostname: host, Interface: iface.Name},
					cfg:      configs[host],
					priority: group.Priority,
					source:   group.SourceAddress.Addr(),
					tracks:   group.TrackActions,
					vrrp:     group,
				}
				for _, ips := range group.VirtualAddresses {
					for _, ip := range ips {
						key := vrrpKey{ip: ip.Unmap(), vrid: vrid}
						if out[key] == nil {
							out[key] = make(map[netconf.NodeInterfacePair]candidate)
						}
						out[key][c.iface] = c
					}
				}
			}
		}
	}
	return out
}

// hsrpCandidates groups valid HSRP groups on active interfaces by group number.
func hsrpCandidates(configs netconf.Configurations) map[int]map[netconf.NodeInterfacePair]candidate {
	out := make(map[int]map[netconf.NodeInterfacePair]candidate)
	for _, host := range configs.Hostnames() {
		for _, iface := range configs[host].ActiveInterfaces() {
			for _, num := range sortedKeys(iface.HSRPGroups) {
				group := iface.HSRPGroups[num]
				if !group.Valid() {
					continue
				}
				c := candidate{
					iface:    netconf.NodeInterfacePair{Hostname: host, Interface: iface.Name},
					cfg:      configs[host],
					priority: group.Priority,
					source:   group.SourceAddress.Addr(),
					tracks:   group.TrackActions,
					hsrp:     group,
				}
				if out[num] == nil {
					out[num] = make(map[netconf.NodeInterfacePair]candidate)
				}
				out[num][c.iface] = c
			}
		}
	}
	return out
}

func (e *elector) electVRRP(owners ...ownersBuilder) {
	groups := vrrpCandidates(e.configs)
	keys := slices.SortedFunc(maps.Keys(groups), func(a, b vrrpKey) int {
		if c := a.ip.Compare(b.ip); c != 0 {
			return c
		}
		return cmp.Compare(a.vrid, b.vrid)
	})

	for _, key := range keys {
		for _, winner := range e.elect(VRRP, electionKey{group: key.vrid, vip: key.ip}, groups[key]) {
			for _, recv := range winner.vrrp.ReceivingInterfaces(key.ip) {
				for _, b := range owners {
					b.add(key.ip, winner.iface.Hostname, recv)
				}
			}
		}
	}
}

func (e *elector) electHSRP(owners ...ownersBuilder) {
	groups := hsrpCandidates(e.configs)
	for _, num := range sortedKeys(groups) {
		for _, winner := range e.elect(HSRP, electionKey{group: num}, groups[num]) {
			for _, ip := range winner.hsrp.VirtualAddresses {
				for _, b := range owners {
					b.add(ip, winner.iface.Hostname, winner.iface.Interface)
				}
			}
		}
	}
}

// elect runs one election per broadcast-domain partition of the candidates
// and returns the winners.
func (e *elector) elect(protocol Protocol, key electionKey, candidates map[netconf.NodeInterfacePair]candidate) []candidate {
	ifaces := slices.Collect(maps.Keys(candidates))

	var winners []candidate
	for _, partition := range PartitionCandidates(ifaces, e.adj) {
		if len(partition) != 2 {
			e.Warningf("%s %s: %d candidates share a broadcast domain (%v), expected 2", protocol, key, len(partition), partition)
		}

		scored := make([]scoredCandidate, len(partition))
		for i, iface := range partition {
			c := candidates[iface]
			scored[i] = scoredCandidate{candidate: c, actual: e.actualPriority(protocol, key, c)}
		}
		winner := slices.MaxFunc(scored, compareScored)
		winners = append(winners, winner.candidate)

		if e.details != nil {
			for _, s := range scored {
				e.details.setOutcome(protocol, s.iface, key, partition, winner.iface)
			}
		}
	}
	return winners
}

type scoredCandidate struct {
	candidate
	actual int
}

// compareScored orders candidates by actual priority, then source address,
// hostname and interface name. The greatest candidate wins.
func compareScored(a, b scoredCandidate) int {
	if c := cmp.Compare(a.actual, b.actual); c != 0 {
		return c
	}
	if c := a.source.Compare(b.source); c != 0 {
		return c
	}
	return a.iface.Compare(b.iface)
}

// actualPriority applies the track actions whose track method holds.
func (e *elector) actualPriority(protocol Protocol, key electionKey, c candidate) int {
	ev := e.evaluator(c.cfg)

	priority := c.priority
	var succeeded, failed []string
	for _, name := range sortedKeys(c.tracks) {
		method, ok := c.cfg.TrackingGroups[name]
		if ok && ev.Evaluate(method) {
			priority = c.tracks[name].Apply(priority)
			succeeded = append(succeeded, name)
		} else {
			failed = append(failed, name)
		}
	}

	if e.details != nil {
		e.details.setPriority(protocol, c.iface, key, priority, succeeded, failed)
	}
	return priority
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
