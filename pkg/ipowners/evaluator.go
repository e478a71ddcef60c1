// SPDX-License-Identifier: GPL-3.0-or-later

package ipowners

import (
	"net/netip"
	"strings"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

// TrackMethodEvaluator decides whether a track method currently holds on the
// device it was built for.
type TrackMethodEvaluator interface {
	Evaluate(m netconf.TrackMethod) bool
}

// EvaluatorProvider returns the evaluator for one device configuration.
type EvaluatorProvider func(cfg *netconf.Configuration) TrackMethodEvaluator

// StaticEvaluators evaluates tracks from configuration alone, before any
// data plane exists. Routes are present when connected or statically
// configured; every address is assumed reachable.
func StaticEvaluators() EvaluatorProvider {
	return func(cfg *netconf.Configuration) TrackMethodEvaluator {
		return &trackEvaluator{cfg: cfg, leaf: staticLeaf{cfg: cfg}}
	}
}

// DataPlane is the routing state computed for a snapshot.
type DataPlane interface {
	HasRoute(hostname, vrf string, prefix netip.Prefix) bool
	Reachable(hostname, vrf string, ip netip.Addr) bool
}

// DataPlaneEvaluators evaluates route and reachability tracks against dp.
func DataPlaneEvaluators(dp DataPlane) EvaluatorProvider {
	return func(cfg *netconf.Configuration) TrackMethodEvaluator {
		return &trackEvaluator{cfg: cfg, leaf: dataPlaneLeaf{host: cfg.Hostname, dp: dp}}
	}
}

// leafEvaluator answers the track kinds that depend on routing state.
type leafEvaluator interface {
	hasRoute(vrf string, prefix netip.Prefix) bool
	reachable(vrf string, ip netip.Addr) bool
}

type trackEvaluator struct {
	cfg  *netconf.Configuration
	leaf leafEvaluator
}

func (e *trackEvaluator) Evaluate(m netconf.TrackMethod) bool {
	return e.evaluate(m, make(map[string]bool))
}

// evaluate resolves references through the tracking groups; a reference
// cycle or an unknown name evaluates to false.
func (e *trackEvaluator) evaluate(m netconf.TrackMethod, visiting map[string]bool) bool {
	switch m.Kind {
	case netconf.TrackTrue:
		return true
	case netconf.TrackInterfaceActive:
		iface, ok := e.cfg.Interface(m.Interface)
		return ok && iface.Active()
	case netconf.TrackRoute:
		return m.Prefix.IsValid() && e.leaf.hasRoute(m.VRFName(), m.Prefix.Masked())
	case netconf.TrackReachability:
		return m.IP.IsValid() && e.leaf.reachable(m.VRFName(), m.IP)
	case netconf.TrackNegated:
		return m.Inner != nil && !e.evaluate(*m.Inner, visiting)
	case netconf.TrackReference:
		target, ok := e.cfg.TrackingGroups[m.Ref]
		if !ok || visiting[m.Ref] {
			return false
		}
		visiting[m.Ref] = true
		defer delete(visiting, m.Ref)
		return e.evaluate(target, visiting)
	default:
		return false
	}
}

type staticLeaf struct {
	cfg *netconf.Configuration
}

func (s staticLeaf) hasRoute(vrf string, prefix netip.Prefix) bool {
	for _, iface := range s.cfg.ActiveInterfaces() {
		if iface.VRFName() != vrf {
			continue
		}
		for _, addr := range iface.ConcreteAddresses() {
			if addr.Masked() == prefix {
				return true
			}
		}
	}
	v, ok := s.cfg.VRF(vrf)
	if !ok {
		return false
	}
	for _, route := range v.StaticRoutes {
		if route.Masked() == prefix {
			return true
		}
	}
	return false
}

func (staticLeaf) reachable(string, netip.Addr) bool { return true }

type dataPlaneLeaf struct {
	host string
	dp   DataPlane
}

func (d dataPlaneLeaf) hasRoute(vrf string, prefix netip.Prefix) bool {
	return d.dp != nil && d.dp.HasRoute(d.host, vrf, prefix)
}

func (d dataPlaneLeaf) reachable(vrf string, ip netip.Addr) bool {
	return d.dp != nil && d.dp.Reachable(d.host, vrf, ip)
}

type routeKey struct {
	host   string
	vrf    string
	prefix netip.Prefix
}

type reachKey struct {
	host string
	vrf  string
	ip   netip.Addr
}

// StaticDataPlane is a DataPlane backed by explicit route and reachability
// facts.
type StaticDataPlane struct {
	routes    map[routeKey]bool
	reachable map[reachKey]bool
}

func NewStaticDataPlane() *StaticDataPlane {
	return &StaticDataPlane{
		routes:    make(map[routeKey]bool),
		reachable: make(map[reachKey]bool),
	}
}

func (d *StaticDataPlane) AddRoute(hostname, vrf string, prefix netip.Prefix) *StaticDataPlane {
	d.routes[routeKey{host: strings.ToLower(hostname), vrf: vrfOrDefault(vrf), prefix: prefix.Masked()}] = true
	return d
}

func (d *StaticDataPlane) AddReachable(hostname, vrf string, ip netip.Addr) *StaticDataPlane {
	d.reachable[reachKey{host: strings.ToLower(hostname), vrf: vrfOrDefault(vrf), ip: ip}] = true
	return d
}

func (d *StaticDataPlane) HasRoute(hostname, vrf string, prefix netip.Prefix) bool {
	return d.routes[routeKey{host: strings.ToLower(hostname), vrf: vrfOrDefault(vrf), prefix: prefix.Masked()}]
}

func (d *StaticDataPlane) Reachable(hostname, vrf string, ip netip.Addr) bool {
	return d.reachable[reachKey{host: strings.ToLower(hostname), vrf: vrfOrDefault(vrf), ip: ip}]
}

func vrfOrDefault(vrf string) string {
	if vrf == "" {
		return netconf.DefaultVRF
	}
	return vrf
}
