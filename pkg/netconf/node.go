// SPDX-License-Identifier: GPL-3.0-or-later

package netconf

import (
	"cmp"
	"fmt"
	"strings"
)

// NodeInterfacePair identifies one interface on one device. The hostname is
// always stored lowercased.
type NodeInterfacePair struct {
	Hostname  string `yaml:"hostname" json:"hostname"`
	Interface string `yaml:"interface" json:"interface"`
}

// NewNodeInterfacePair builds a pair with a canonical (lowercased) hostname.
func NewNodeInterfacePair(hostname, iface string) NodeInterfacePair {
	return NodeInterfacePair{Hostname: strings.ToLower(hostname), Interface: iface}
}

// Compare orders pairs by hostname, then interface name.
func (p NodeInterfacePair) Compare(other NodeInterfacePair) int {
	if c := cmp.Compare(p.Hostname, other.Hostname); c != 0 {
		return c
	}
	return cmp.Compare(p.Interface, other.Interface)
}

func (p NodeInterfacePair) String() string {
	return fmt.Sprintf("%s[%s]", p.Hostname, p.Interface)
}
