// SPDX-License-Identifier: GPL-3.0-or-later

package netconf

import (
	"fmt"
	"net/netip"
)

// TrackKind selects which condition a TrackMethod tests.
type TrackKind string

const (
	// TrackInterfaceActive holds when the named interface is active.
	TrackInterfaceActive TrackKind = "interface"
	// TrackRoute holds when Prefix is routable in VRF.
	TrackRoute TrackKind = "route"
	// TrackReachability holds when IP is reachable from VRF.
	TrackReachability TrackKind = "reachability"
	// TrackTrue always holds.
	TrackTrue TrackKind = "true"
	// TrackNegated holds when Inner does not.
	TrackNegated TrackKind = "negated"
	// TrackReference defers to the tracking group named Ref.
	TrackReference TrackKind = "reference"
)

// TrackMethod is a condition evaluated during FHRP elections. Only the fields
// relevant to Kind are set.
type TrackMethod struct {
	Kind      TrackKind    `yaml:"kind" json:"kind"`
	Interface string       `yaml:"interface,omitempty" json:"interface,omitempty"`
	Prefix    netip.Prefix `yaml:"prefix" json:"prefix"`
	IP        netip.Addr   `yaml:"ip" json:"ip"`
	VRF       string       `yaml:"vrf,omitempty" json:"vrf,omitempty"`
	Ref       string       `yaml:"ref,omitempty" json:"ref,omitempty"`
	Inner     *TrackMethod `yaml:"inner,omitempty" json:"inner,omitempty"`
}

func TrackInterface(name string) TrackMethod {
	return TrackMethod{Kind: TrackInterfaceActive, Interface: name}
}

func TrackRoutePresent(prefix netip.Prefix, vrf string) TrackMethod {
	return TrackMethod{Kind: TrackRoute, Prefix: prefix, VRF: vrf}
}

func TrackReachable(ip netip.Addr, vrf string) TrackMethod {
	return TrackMethod{Kind: TrackReachability, IP: ip, VRF: vrf}
}

func TrackAlways() TrackMethod {
	return TrackMethod{Kind: TrackTrue}
}

func Negate(m TrackMethod) TrackMethod {
	return TrackMethod{Kind: TrackNegated, Inner: &m}
}

func TrackRef(name string) TrackMethod {
	return TrackMethod{Kind: TrackReference, Ref: name}
}

// VRFName returns the VRF the method is evaluated in, defaulting to DefaultVRF.
func (m TrackMethod) VRFName() string {
	if m.VRF == "" {
		return DefaultVRF
	}
	return m.VRF
}

func (m TrackMethod) String() string {
	switch m.Kind {
	case TrackInterfaceActive:
		return fmt.Sprintf("interface(%s)", m.Interface)
	case TrackRoute:
		return fmt.Sprintf("route(%s, vrf=%s)", m.Prefix, m.VRFName())
	case TrackReachability:
		return fmt.Sprintf("reachability(%s, vrf=%s)", m.IP, m.VRFName())
	case TrackTrue:
		return "true"
	case TrackNegated:
		if m.Inner == nil {
			return "not(<nil>)"
		}
		return "not(" + m.Inner.String() + ")"
	case TrackReference:
		return fmt.Sprintf("ref(%s)", m.Ref)
	default:
		return fmt.Sprintf("unknown(%s)", m.Kind)
	}
}
