// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"net/netip"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

func intPtr(v int) *int { return &v }

func pair(host, iface string) netconf.NodeInterfacePair {
	return netconf.NewNodeInterfacePair(host, iface)
}

func device(host string, ifaces ...*netconf.Interface) *netconf.Configuration {
	cfg := &netconf.Configuration{Hostname: host, Interfaces: make(map[string]*netconf.Interface)}
	for _, iface := range ifaces {
		cfg.Interfaces[iface.Name] = iface
	}
	return cfg
}

func physical(name string, addrs ...string) *netconf.Interface {
	iface := &netconf.Interface{Name: name, Type: netconf.InterfacePhysical}
	for _, a := range addrs {
		iface.Addresses = append(iface.Addresses, netip.MustParsePrefix(a))
	}
	return iface
}

func trunk(name string, native *int, allowed ...int) *netconf.Interface {
	return &netconf.Interface{
		Name:           name,
		Type:           netconf.InterfacePhysical,
		SwitchportMode: netconf.SwitchportTrunk,
		NativeVLAN:     native,
		AllowedVLANs:   allowed,
	}
}

func access(name string, vlan int) *netconf.Interface {
	return &netconf.Interface{
		Name:           name,
		Type:           netconf.InterfacePhysical,
		SwitchportMode: netconf.SwitchportAccess,
		AccessVLAN:     intPtr(vlan),
	}
}

func subinterface(name, parent string, encapsulation int, addrs ...string) *netconf.Interface {
	iface := physical(name, addrs...)
	iface.Type = netconf.InterfaceLogical
	iface.EncapsulationVLAN = intPtr(encapsulation)
	iface.Dependencies = []netconf.Dependency{{Interface: parent, Type: netconf.DependencyBind}}
	return iface
}

func irb(name string, vlan int, addrs ...string) *netconf.Interface {
	iface := physical(name, addrs...)
	iface.Type = netconf.InterfaceVLAN
	iface.VLAN = intPtr(vlan)
	return iface
}

func shutdown(iface *netconf.Interface) *netconf.Interface {
	iface.Shutdown = true
	return iface
}

func wire(host1, iface1, host2, iface2 string) []Layer1Edge {
	e := NewLayer1Edge(host1, iface1, host2, iface2)
	return []Layer1Edge{e, e.Reverse()}
}

func wires(ws ...[]Layer1Edge) []Layer1Edge {
	var out []Layer1Edge
	for _, w := range ws {
		out = append(out, w...)
	}
	return out
}
