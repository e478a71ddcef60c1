// SPDX-License-Identifier: GPL-3.0-or-later

package netconf

import (
	"net/netip"
	"slices"
)

// TrackAction adjusts an FHRP priority when its track method holds.
type TrackAction struct {
	DecrementPriority int `yaml:"decrement_priority" json:"decrement_priority"`
}

// Apply returns priority adjusted by the action, floored at zero.
func (a TrackAction) Apply(priority int) int {
	return max(0, priority-a.DecrementPriority)
}

// VRRPGroup is one VRRP virtual router (VRID) configured on an interface.
type VRRPGroup struct {
	Priority      int          `yaml:"priority" json:"priority"`
	Preempt       bool         `yaml:"preempt,omitempty" json:"preempt,omitempty"`
	SourceAddress netip.Prefix `yaml:"source_address" json:"source_address"`
	// VirtualAddresses maps a receiving interface name to the virtual IPs it
	// answers for. A sync-group member may receive on behalf of several peers.
	VirtualAddresses map[string][]netip.Addr `yaml:"virtual_addresses,omitempty" json:"virtual_addresses,omitempty"`
	TrackActions     map[string]TrackAction  `yaml:"track_actions,omitempty" json:"track_actions,omitempty"`
}

// Valid reports whether the group may take part in an election.
func (g *VRRPGroup) Valid() bool {
	if g == nil || !g.SourceAddress.IsValid() {
		return false
	}
	for _, ips := range g.VirtualAddresses {
		if len(ips) > 0 {
			return true
		}
	}
	return false
}

// ReceivingInterfaces returns the receiving interfaces answering for ip, sorted.
func (g *VRRPGroup) ReceivingInterfaces(ip netip.Addr) []string {
	if g == nil {
		return nil
	}
	var out []string
	for iface, ips := range g.VirtualAddresses {
		if slices.Contains(ips, ip) {
			out = append(out, iface)
		}
	}
	slices.Sort(out)
	return out
}

// HSRPGroup is one HSRP standby group configured on an interface.
type HSRPGroup struct {
	Priority         int                    `yaml:"priority" json:"priority"`
	Preempt          bool                   `yaml:"preempt,omitempty" json:"preempt,omitempty"`
	SourceAddress    netip.Prefix           `yaml:"source_address" json:"source_address"`
	VirtualAddresses []netip.Addr           `yaml:"virtual_addresses,omitempty" json:"virtual_addresses,omitempty"`
	TrackActions     map[string]TrackAction `yaml:"track_actions,omitempty" json:"track_actions,omitempty"`
}

// Valid reports whether the group may take part in an election.
func (g *HSRPGroup) Valid() bool {
	return g != nil && g.SourceAddress.IsValid() && len(g.VirtualAddresses) > 0
}
