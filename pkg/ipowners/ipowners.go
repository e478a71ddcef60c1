// SPDX-License-Identifier: GPL-3.0-or-later

package ipowners

import (
	"maps"
	"net/netip"
	"reflect"
	"slices"

	"github.com/gohugoio/hashstructure"

	"github.com/netdata/netdata/go/topology/logger"
	"github.com/netdata/netdata/go/topology/pkg/ipspace"
	"github.com/netdata/netdata/go/topology/pkg/netconf"
	"github.com/netdata/netdata/go/topology/pkg/topology"
)

// Owners maps an IP address to hostname to the sorted names of the owning
// interfaces (or VRFs, for VRF ownership).
type Owners map[netip.Addr]map[string][]string

// IPOwners resolves which device interfaces own each IP address of a
// snapshot once first-hop redundancy elections are decided. It is immutable.
type IPOwners struct {
	allDeviceOwnedIPs         Owners
	activeDeviceOwnedIPs      Owners
	ipVRFOwners               Owners
	interfaceOwnedIPSpaces    map[string]map[string]ipspace.Space
	vrfInterfaceOwnedIPSpaces map[string]map[string]map[string]ipspace.Space
	details                   *ElectionDetails
}

// New computes IP ownership. Track methods are evaluated with the
// evaluators from provider; election records are kept when recordElections
// is set.
func New(log *logger.Logger, configs netconf.Configurations, adj topology.L3Adjacencies, provider EvaluatorProvider, recordElections bool) *IPOwners {
	e := &elector{
		Logger:     log.With("component", "ip_owners"),
		configs:    configs,
		adj:        adj,
		provider:   provider,
		evaluators: make(map[string]TrackMethodEvaluator),
	}
	if recordElections {
		e.details = newElectionDetails()
	}

	all, active := make(ownersBuilder), make(ownersBuilder)
	for _, host := range configs.Hostnames() {
		cfg := configs[host]
		for _, name := range cfg.InterfaceNames() {
			iface := cfg.Interfaces[name]
			for _, addr := range iface.ConcreteAddresses() {
				ip := addr.Addr().Unmap()
				all.add(ip, host, name)
				if iface.Active() {
					active.add(ip, host, name)
				}
			}
		}
	}

	e.electVRRP(all, active)
	e.electHSRP(all, active)

	o := &IPOwners{
		allDeviceOwnedIPs:    all.freeze(),
		activeDeviceOwnedIPs: active.freeze(),
		details:              e.details,
	}
	o.ipVRFOwners = vrfOwners(configs, o.activeDeviceOwnedIPs)
	o.vrfInterfaceOwnedIPSpaces = vrfInterfaceSpaces(configs, o.activeDeviceOwnedIPs)
	o.interfaceOwnedIPSpaces = interfaceSpaces(o.vrfInterfaceOwnedIPSpaces)
	return o
}

// NewStatic computes ownership before a data plane exists.
func NewStatic(log *logger.Logger, configs netconf.Configurations, adj topology.L3Adjacencies, recordElections bool) *IPOwners {
	return New(log, configs, adj, StaticEvaluators(), recordElections)
}

// NewWithDataPlane computes ownership with tracks evaluated against dp.
func NewWithDataPlane(log *logger.Logger, configs netconf.Configurations, adj topology.L3Adjacencies, dp DataPlane, recordElections bool) *IPOwners {
	return New(log, configs, adj, DataPlaneEvaluators(dp), recordElections)
}

type ownersBuilder map[netip.Addr]map[string]map[string]bool

func (b ownersBuilder) add(ip netip.Addr, host, name string) {
	byHost, ok := b[ip]
	if !ok {
		byHost = make(map[string]map[string]bool)
		b[ip] = byHost
	}
	names, ok := byHost[host]
	if !ok {
		names = make(map[string]bool)
		byHost[host] = names
	}
	names[name] = true
}

func (b ownersBuilder) freeze() Owners {
	out := make(Owners, len(b))
	for ip, byHost := range b {
		hosts := make(map[string][]string, len(byHost))
		for host, names := range byHost {
			hosts[host] = slices.Sorted(maps.Keys(names))
		}
		out[ip] = hosts
	}
	return out
}

func vrfOwners(configs netconf.Configurations, owners Owners) Owners {
	b := make(ownersBuilder)
	for ip, byHost := range owners {
		for host, names := range byHost {
			cfg, _ := configs.Get(host)
			for _, name := range names {
				b.add(ip, host, cfg.Interfaces[name].VRFName())
			}
		}
	}
	return b.freeze()
}

func vrfInterfaceSpaces(configs netconf.Configurations, owners Owners) map[string]map[string]map[string]ipspace.Space {
	builders := make(map[string]map[string]map[string]*ipspace.Builder)
	for ip, byHost := range owners {
		for host, names := range byHost {
			cfg, _ := configs.Get(host)
			for _, name := range names {
				vrf := cfg.Interfaces[name].VRFName()
				if builders[host] == nil {
					builders[host] = make(map[string]map[string]*ipspace.Builder)
				}
				if builders[host][vrf] == nil {
					builders[host][vrf] = make(map[string]*ipspace.Builder)
				}
				if builders[host][vrf][name] == nil {
					builders[host][vrf][name] = &ipspace.Builder{}
				}
				builders[host][vrf][name].Add(ip)
			}
		}
	}

	out := make(map[string]map[string]map[string]ipspace.Space, len(builders))
	for host, byVRF := range builders {
		out[host] = make(map[string]map[string]ipspace.Space, len(byVRF))
		for vrf, byIface := range byVRF {
			out[host][vrf] = make(map[string]ipspace.Space, len(byIface))
			for name, b := range byIface {
				out[host][vrf][name] = b.Build()
			}
		}
	}
	return out
}

func interfaceSpaces(byVRF map[string]map[string]map[string]ipspace.Space) map[string]map[string]ipspace.Space {
	out := make(map[string]map[string]ipspace.Space, len(byVRF))
	for host, vrfs := range byVRF {
		out[host] = make(map[string]ipspace.Space)
		for _, ifaces := range vrfs {
			maps.Copy(out[host], ifaces)
		}
	}
	return out
}

// AllDeviceOwnedIPs includes addresses of inactive interfaces.
func (o *IPOwners) AllDeviceOwnedIPs() Owners { return o.allDeviceOwnedIPs.clone() }

// ActiveDeviceOwnedIPs only includes active interfaces and election winners.
func (o *IPOwners) ActiveDeviceOwnedIPs() Owners { return o.activeDeviceOwnedIPs.clone() }

// IPVRFOwners maps each actively owned IP to hostname to VRF names.
func (o *IPOwners) IPVRFOwners() Owners { return o.ipVRFOwners.clone() }

// InterfaceOwnedIPSpaces maps hostname to interface to its owned addresses.
func (o *IPOwners) InterfaceOwnedIPSpaces() map[string]map[string]ipspace.Space {
	out := make(map[string]map[string]ipspace.Space, len(o.interfaceOwnedIPSpaces))
	for host, ifaces := range o.interfaceOwnedIPSpaces {
		out[host] = maps.Clone(ifaces)
	}
	return out
}

// VRFInterfaceOwnedIPSpaces maps hostname to VRF to interface to its owned
// addresses.
func (o *IPOwners) VRFInterfaceOwnedIPSpaces() map[string]map[string]map[string]ipspace.Space {
	out := make(map[string]map[string]map[string]ipspace.Space, len(o.vrfInterfaceOwnedIPSpaces))
	for host, vrfs := range o.vrfInterfaceOwnedIPSpaces {
		out[host] = make(map[string]map[string]ipspace.Space, len(vrfs))
		for vrf, ifaces := range vrfs {
			out[host][vrf] = maps.Clone(ifaces)
		}
	}
	return out
}

// ElectionDetails returns the election records, or nil when not recorded.
func (o *IPOwners) ElectionDetails() *ElectionDetails { return o.details }

// OwnersOf returns the hostnames and interfaces actively owning ip.
func (o *IPOwners) OwnersOf(ip netip.Addr) map[string][]string {
	byHost, ok := o.activeDeviceOwnedIPs[ip.Unmap()]
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(byHost))
	for host, names := range byHost {
		out[host] = slices.Clone(names)
	}
	return out
}

// IsOwnedBy reports whether an active interface of hostname owns ip.
func (o *IPOwners) IsOwnedBy(ip netip.Addr, hostname string) bool {
	_, ok := o.activeDeviceOwnedIPs[ip.Unmap()][hostname]
	return ok
}

// NodeOwnedIPs returns the addresses actively owned by hostname, sorted.
func (o *IPOwners) NodeOwnedIPs(hostname string) []netip.Addr {
	var out []netip.Addr
	for ip, byHost := range o.activeDeviceOwnedIPs {
		if _, ok := byHost[hostname]; ok {
			out = append(out, ip)
		}
	}
	slices.SortFunc(out, netip.Addr.Compare)
	return out
}

// InterfaceOwnedIPSpace returns the addresses owned by one interface.
func (o *IPOwners) InterfaceOwnedIPSpace(hostname, iface string) (ipspace.Space, bool) {
	s, ok := o.interfaceOwnedIPSpaces[hostname][iface]
	return s, ok
}

type ownersView struct {
	All    map[string]map[string][]string
	Active map[string]map[string][]string
	VRF    map[string]map[string][]string
}

func (o *IPOwners) view() ownersView {
	return ownersView{
		All:    o.allDeviceOwnedIPs.byString(),
		Active: o.activeDeviceOwnedIPs.byString(),
		VRF:    o.ipVRFOwners.byString(),
	}
}

// Equal reports whether both results assign the same owners. The IP spaces
// are derived from the ownership maps and need no separate comparison.
func (o *IPOwners) Equal(other *IPOwners) bool {
	if o == nil || other == nil {
		return o == other
	}
	return reflect.DeepEqual(o.view(), other.view())
}

// Hash returns a hash stable across runs for equal results.
func (o *IPOwners) Hash() (uint64, error) {
	return hashstructure.Hash(o.view(), nil)
}

func (o Owners) clone() Owners {
	out := make(Owners, len(o))
	for ip, byHost := range o {
		hosts := make(map[string][]string, len(byHost))
		for host, names := range byHost {
			hosts[host] = slices.Clone(names)
		}
		out[ip] = hosts
	}
	return out
}

func (o Owners) byString() map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(o))
	for ip, byHost := range o {
		out[ip.String()] = byHost
	}
	return out
}
