// SPDX-License-Identifier: GPL-3.0-or-later

package netconf

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"
	"strings"
)

// DefaultVRF is the VRF of interfaces that do not name one.
const DefaultVRF = "default"

// DeviceType is the role of a device in the snapshot.
type DeviceType string

const (
	DeviceRouter   DeviceType = "router"
	DeviceSwitch   DeviceType = "switch"
	DeviceHost     DeviceType = "host"
	DeviceISP      DeviceType = "isp"
	DeviceInternet DeviceType = "internet"
)

// Layer2VNI binds a VXLAN network identifier to a local VLAN.
type Layer2VNI struct {
	VNI  int `yaml:"vni" json:"vni"`
	VLAN int `yaml:"vlan" json:"vlan"`
}

// VRF carries the per-VRF settings consumed by topology and track evaluation.
type VRF struct {
	Name         string         `yaml:"name,omitempty" json:"name,omitempty"`
	StaticRoutes []netip.Prefix `yaml:"static_routes,omitempty" json:"static_routes,omitempty"`
	Layer2VNIs   []Layer2VNI    `yaml:"layer2_vnis,omitempty" json:"layer2_vnis,omitempty"`
}

// Configuration is one parsed device configuration.
type Configuration struct {
	Hostname       string                 `yaml:"hostname" json:"hostname"`
	DeviceType     DeviceType             `yaml:"device_type,omitempty" json:"device_type,omitempty"`
	Interfaces     map[string]*Interface  `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	VRFs           map[string]*VRF        `yaml:"vrfs,omitempty" json:"vrfs,omitempty"`
	TrackingGroups map[string]TrackMethod `yaml:"tracking_groups,omitempty" json:"tracking_groups,omitempty"`
}

// Normalize lowercases the hostname and fills names from map keys.
func (c *Configuration) Normalize() {
	if c == nil {
		return
	}
	c.Hostname = strings.ToLower(strings.TrimSpace(c.Hostname))
	for name, iface := range c.Interfaces {
		if iface == nil {
			delete(c.Interfaces, name)
			continue
		}
		if iface.Name == "" {
			iface.Name = name
		}
	}
	for name, vrf := range c.VRFs {
		if vrf == nil {
			delete(c.VRFs, name)
			continue
		}
		if vrf.Name == "" {
			vrf.Name = name
		}
	}
}

// Interface returns the interface with the exact name.
func (c *Configuration) Interface(name string) (*Interface, bool) {
	if c == nil {
		return nil, false
	}
	iface, ok := c.Interfaces[name]
	return iface, ok && iface != nil
}

// InterfaceNames returns all interface names sorted.
func (c *Configuration) InterfaceNames() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.Interfaces))
}

// ActiveInterfaces returns the active interfaces sorted by name.
func (c *Configuration) ActiveInterfaces() []*Interface {
	var out []*Interface
	for _, name := range c.InterfaceNames() {
		if iface := c.Interfaces[name]; iface.Active() {
			out = append(out, iface)
		}
	}
	return out
}

// BoundChildren returns the names of interfaces bound to parent, sorted.
func (c *Configuration) BoundChildren(parent string) []string {
	var out []string
	for _, name := range c.InterfaceNames() {
		if p, ok := c.Interfaces[name].BindParent(); ok && p == parent {
			out = append(out, name)
		}
	}
	return out
}

// VRF returns the VRF settings, if configured.
func (c *Configuration) VRF(name string) (*VRF, bool) {
	if c == nil {
		return nil, false
	}
	vrf, ok := c.VRFs[name]
	return vrf, ok && vrf != nil
}

// VNIToVLAN returns the VLAN bound to every layer-2 VNI across VRFs.
func (c *Configuration) VNIToVLAN() map[int]int {
	out := make(map[int]int)
	if c == nil {
		return out
	}
	for _, name := range slices.Sorted(maps.Keys(c.VRFs)) {
		for _, vni := range c.VRFs[name].Layer2VNIs {
			if _, ok := out[vni.VNI]; !ok {
				out[vni.VNI] = vni.VLAN
			}
		}
	}
	return out
}

// IsISP reports whether the device models an ISP or the internet.
func (c *Configuration) IsISP() bool {
	return c != nil && (c.DeviceType == DeviceISP || c.DeviceType == DeviceInternet)
}

// Configurations is an immutable snapshot of device configurations keyed by
// lowercased hostname. Build it with NewConfigurations: lookups lowercase
// the hostname, so a literal with mixed-case keys is never matched.
type Configurations map[string]*Configuration

// NewConfigurations normalizes and indexes configs. Later duplicates win.
func NewConfigurations(configs ...*Configuration) Configurations {
	out := make(Configurations, len(configs))
	for _, c := range configs {
		if c == nil {
			continue
		}
		c.Normalize()
		if c.Hostname == "" {
			continue
		}
		out[c.Hostname] = c
	}
	return out
}

// Get returns the configuration for hostname, matched case-insensitively.
func (cs Configurations) Get(hostname string) (*Configuration, bool) {
	c, ok := cs[strings.ToLower(hostname)]
	return c, ok && c != nil
}

// Hostnames returns all hostnames sorted.
func (cs Configurations) Hostnames() []string {
	return slices.Sorted(maps.Keys(cs))
}

// Interface resolves a pair to its interface configuration.
func (cs Configurations) Interface(p NodeInterfacePair) (*Interface, bool) {
	c, ok := cs.Get(p.Hostname)
	if !ok {
		return nil, false
	}
	return c.Interface(p.Interface)
}

// MustInterface resolves a pair the caller guarantees to exist.
func (cs Configurations) MustInterface(p NodeInterfacePair) *Interface {
	iface, ok := cs.Interface(p)
	if !ok {
		panic(fmt.Sprintf("netconf: no configuration for interface %s", p))
	}
	return iface
}

// ActiveInterfacePairs returns every active interface in the snapshot, sorted.
func (cs Configurations) ActiveInterfacePairs() []NodeInterfacePair {
	var out []NodeInterfacePair
	for _, h := range cs.Hostnames() {
		for _, iface := range cs[h].ActiveInterfaces() {
			out = append(out, NodeInterfacePair{Hostname: h, Interface: iface.Name})
		}
	}
	slices.SortFunc(out, NodeInterfacePair.Compare)
	return out
}
