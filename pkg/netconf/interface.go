// SPDX-License-Identifier: GPL-3.0-or-later

package netconf

import (
	"net/netip"
	"slices"
	"strings"
)

// InterfaceType classifies an interface by how it attaches to the wire.
type InterfaceType string

const (
	InterfaceUnknown        InterfaceType = ""
	InterfacePhysical       InterfaceType = "physical"
	InterfaceAggregated     InterfaceType = "aggregated"
	InterfaceRedundant      InterfaceType = "redundant"
	InterfaceAggregateChild InterfaceType = "aggregate_child"
	InterfaceLogical        InterfaceType = "logical"
	InterfaceLoopback       InterfaceType = "loopback"
	InterfaceVLAN           InterfaceType = "vlan"
	InterfaceTunnel         InterfaceType = "tunnel"
	InterfaceNull           InterfaceType = "null"
)

// SwitchportMode is the layer-2 mode of an interface.
type SwitchportMode string

const (
	SwitchportNone   SwitchportMode = ""
	SwitchportAccess SwitchportMode = "access"
	SwitchportTrunk  SwitchportMode = "trunk"
)

// DependencyType tells how an interface depends on another one.
type DependencyType string

const (
	// DependencyBind marks a subinterface riding on its parent.
	DependencyBind DependencyType = "bind"
	// DependencyAggregate marks a bundle member feeding an aggregate.
	DependencyAggregate DependencyType = "aggregate"
)

// Dependency is one edge of the intra-device interface dependency graph.
type Dependency struct {
	Interface string         `yaml:"interface" json:"interface"`
	Type      DependencyType `yaml:"type" json:"type"`
}

// Interface is the parsed configuration of one device interface.
type Interface struct {
	Name        string        `yaml:"name,omitempty" json:"name,omitempty"`
	Type        InterfaceType `yaml:"type,omitempty" json:"type,omitempty"`
	Shutdown    bool          `yaml:"shutdown,omitempty" json:"shutdown,omitempty"`
	Blacklisted bool          `yaml:"blacklisted,omitempty" json:"blacklisted,omitempty"`
	VRF         string        `yaml:"vrf,omitempty" json:"vrf,omitempty"`

	// Addresses are the concrete addresses, each an address plus its subnet length.
	Addresses []netip.Prefix `yaml:"addresses,omitempty" json:"addresses,omitempty"`

	SwitchportMode    SwitchportMode `yaml:"switchport_mode,omitempty" json:"switchport_mode,omitempty"`
	AllowedVLANs      []int          `yaml:"allowed_vlans,omitempty" json:"allowed_vlans,omitempty"`
	NativeVLAN        *int           `yaml:"native_vlan,omitempty" json:"native_vlan,omitempty"`
	AccessVLAN        *int           `yaml:"access_vlan,omitempty" json:"access_vlan,omitempty"`
	EncapsulationVLAN *int           `yaml:"encapsulation_vlan,omitempty" json:"encapsulation_vlan,omitempty"`
	// VLAN is the VLAN routed by an IRB (vlan-type) interface.
	VLAN *int `yaml:"vlan,omitempty" json:"vlan,omitempty"`

	ChannelGroup string       `yaml:"channel_group,omitempty" json:"channel_group,omitempty"`
	Dependencies []Dependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	VRRPGroups map[int]*VRRPGroup `yaml:"vrrp_groups,omitempty" json:"vrrp_groups,omitempty"`
	HSRPGroups map[int]*HSRPGroup `yaml:"hsrp_groups,omitempty" json:"hsrp_groups,omitempty"`
}

// Active reports whether the interface is administratively up and not blacklisted.
func (i *Interface) Active() bool {
	return i != nil && !i.Shutdown && !i.Blacklisted
}

func (i *Interface) IsTrunk() bool {
	return i != nil && i.SwitchportMode == SwitchportTrunk
}

func (i *Interface) IsAccess() bool {
	return i != nil && i.SwitchportMode == SwitchportAccess
}

func (i *Interface) IsSwitchport() bool {
	return i.IsTrunk() || i.IsAccess()
}

// IsTaggedL3 reports a routed interface carrying an 802.1Q encapsulation tag.
func (i *Interface) IsTaggedL3() bool {
	return i != nil && !i.IsSwitchport() && i.EncapsulationVLAN != nil
}

// AllowsVLAN reports whether a trunk carries vlan.
func (i *Interface) AllowsVLAN(vlan int) bool {
	return i != nil && slices.Contains(i.AllowedVLANs, vlan)
}

// SortedAllowedVLANs returns the distinct allowed VLANs in ascending order.
func (i *Interface) SortedAllowedVLANs() []int {
	if i == nil || len(i.AllowedVLANs) == 0 {
		return nil
	}
	out := slices.Clone(i.AllowedVLANs)
	slices.Sort(out)
	return slices.Compact(out)
}

// AccessVLANOrNil returns the access VLAN only when the interface is in access mode.
func (i *Interface) AccessVLANOrNil() *int {
	if !i.IsAccess() {
		return nil
	}
	return i.AccessVLAN
}

func (i *Interface) IsLoopback() bool {
	if i == nil {
		return false
	}
	if i.Type == InterfaceLoopback {
		return true
	}
	name := strings.ToLower(i.Name)
	return strings.HasPrefix(name, "loopback") || name == "lo" || strings.HasPrefix(name, "lo0")
}

func (i *Interface) IsTunnel() bool {
	return i != nil && i.Type == InterfaceTunnel
}

// IsPhysicalLike reports the interface types that terminate a wire.
func (i *Interface) IsPhysicalLike() bool {
	if i == nil {
		return false
	}
	switch i.Type {
	case InterfacePhysical, InterfaceAggregated, InterfaceRedundant:
		return true
	}
	return false
}

// BindParent returns the interface this one is bound to, if any.
func (i *Interface) BindParent() (string, bool) {
	if i == nil {
		return "", false
	}
	for _, dep := range i.Dependencies {
		if dep.Type == DependencyBind && dep.Interface != "" {
			return dep.Interface, true
		}
	}
	return "", false
}

// ConcreteAddresses returns the valid configured addresses.
func (i *Interface) ConcreteAddresses() []netip.Prefix {
	if i == nil {
		return nil
	}
	out := make([]netip.Prefix, 0, len(i.Addresses))
	for _, p := range i.Addresses {
		if p.IsValid() {
			out = append(out, p)
		}
	}
	return out
}

// VRFName returns the VRF of the interface, defaulting to DefaultVRF.
func (i *Interface) VRFName() string {
	if i == nil || i.VRF == "" {
		return DefaultVRF
	}
	return i.VRF
}
