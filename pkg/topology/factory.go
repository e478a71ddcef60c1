// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"strings"
	"unicode"

	"github.com/netdata/netdata/go/topology/logger"
	"github.com/netdata/netdata/go/topology/pkg/netconf"
)

// Layer1Topologies holds the four Layer1 views of a snapshot.
type Layer1Topologies struct {
	// UserProvided is the observed wiring with names matched to the configurations.
	UserProvided Layer1Topology
	// Synthesized is wiring inferred by other modeling, e.g. ISP peerings.
	Synthesized Layer1Topology
	// Logical maps every endpoint to its aggregate parent. It keeps inactive
	// endpoints and edges ending at InvalidInterface.
	Logical Layer1Topology
	// ActiveLogical drops invalid and inactive endpoints from Logical and
	// stores every edge in both directions.
	ActiveLogical Layer1Topology
}

// Layer1TopologiesFactory derives the logical views of observed wiring.
type Layer1TopologiesFactory struct {
	*logger.Logger
}

func NewLayer1TopologiesFactory(log *logger.Logger) *Layer1TopologiesFactory {
	return &Layer1TopologiesFactory{Logger: log.With("component", "layer1")}
}

// Create builds all Layer1 views. It never fails: unresolvable references
// degrade to InvalidInterface and are logged once.
func (f *Layer1TopologiesFactory) Create(userProvided, synthesized Layer1Topology, configs netconf.Configurations) Layer1Topologies {
	user := f.Canonicalize(userProvided, configs)
	logical := f.logical(Union(user, synthesized), configs)

	return Layer1Topologies{
		UserProvided:  user,
		Synthesized:   synthesized,
		Logical:       logical,
		ActiveLogical: activeLogical(logical, configs),
	}
}

// Canonicalize rewrites interface names to the spelling used by the device
// configuration. Unknown devices and interfaces are kept as is.
func (f *Layer1TopologiesFactory) Canonicalize(t Layer1Topology, configs netconf.Configurations) Layer1Topology {
	cache := make(map[Layer1Node]Layer1Node)
	canon := func(n Layer1Node) Layer1Node {
		if v, ok := cache[n]; ok {
			return v
		}
		v := f.canonicalNode(n, configs)
		cache[n] = v
		return v
	}

	edges := t.Edges()
	for i, e := range edges {
		edges[i] = Layer1Edge{Node1: canon(e.Node1), Node2: canon(e.Node2)}
	}
	return NewLayer1Topology(edges...)
}

func (f *Layer1TopologiesFactory) canonicalNode(n Layer1Node, configs netconf.Configurations) Layer1Node {
	if !n.IsValid() {
		return n
	}
	n = NewLayer1Node(n.Hostname, n.InterfaceName)

	cfg, ok := configs.Get(n.Hostname)
	if !ok {
		return n
	}
	if _, ok := cfg.Interface(n.InterfaceName); ok {
		return n
	}

	for _, name := range cfg.InterfaceNames() {
		if strings.EqualFold(name, n.InterfaceName) {
			f.Debugf("layer1 node %s: using interface name '%s' (case differs)", n, name)
			return NewLayer1Node(n.Hostname, name)
		}
	}

	if name, ok := expandAbbreviation(n.InterfaceName, cfg.InterfaceNames()); ok {
		f.Infof("layer1 node %s: expanding interface name to '%s'", n, name)
		return NewLayer1Node(n.Hostname, name)
	}
	return n
}

// expandAbbreviation matches short vendor spellings such as "Gi0/1" or
// "po1" against the known interface names. It succeeds only when exactly one
// known name shares the numbering and starts with the abbreviated type.
func expandAbbreviation(name string, known []string) (string, bool) {
	kind, num := splitInterfaceName(name)
	if len(kind) < 2 || num == "" {
		return "", false
	}
	kind = strings.ToLower(kind)

	var match string
	for _, candidate := range known {
		ck, cn := splitInterfaceName(candidate)
		if !strings.EqualFold(cn, num) || !strings.HasPrefix(strings.ToLower(ck), kind) {
			continue
		}
		if match != "" {
			return "", false
		}
		match = candidate
	}
	return match, match != ""
}

func splitInterfaceName(name string) (kind, num string) {
	idx := strings.IndexFunc(name, unicode.IsDigit)
	if idx < 0 {
		return name, ""
	}
	return strings.TrimSpace(name[:idx]), name[idx:]
}

func (f *Layer1TopologiesFactory) logical(t Layer1Topology, configs netconf.Configurations) Layer1Topology {
	r := &logicalResolver{Logger: f.Logger, configs: configs, warned: make(map[Layer1Node]bool)}

	edges := t.Edges()
	for i, e := range edges {
		edges[i] = Layer1Edge{Node1: r.resolveOrInvalid(e.Node1), Node2: r.resolveOrInvalid(e.Node2)}
	}
	return NewLayer1Topology(edges...)
}

type logicalResolver struct {
	*logger.Logger
	configs netconf.Configurations
	warned  map[Layer1Node]bool
}

func (r *logicalResolver) resolveOrInvalid(n Layer1Node) Layer1Node {
	if v, ok := r.resolve(n); ok {
		return v
	}
	return InvalidInterface
}

// resolve maps a physical endpoint to the interface that carries its traffic:
// the aggregate for bundle members, the interface itself otherwise.
func (r *logicalResolver) resolve(n Layer1Node) (Layer1Node, bool) {
	if !n.IsValid() {
		return Layer1Node{}, false
	}
	cfg, ok := r.configs.Get(n.Hostname)
	if !ok {
		r.warnOnce(n, "device '%s' has no configuration", n.Hostname)
		return Layer1Node{}, false
	}
	iface, ok := cfg.Interface(n.InterfaceName)
	if !ok {
		r.warnOnce(n, "device '%s' has no interface '%s'", n.Hostname, n.InterfaceName)
		return Layer1Node{}, false
	}
	if iface.ChannelGroup == "" {
		return n, true
	}
	if _, ok := cfg.Interface(iface.ChannelGroup); !ok {
		r.warnOnce(n, "interface %s is a member of missing aggregate '%s'", n, iface.ChannelGroup)
		return Layer1Node{}, false
	}
	return NewLayer1Node(n.Hostname, iface.ChannelGroup), true
}

func (r *logicalResolver) warnOnce(n Layer1Node, format string, args ...any) {
	if r.warned[n] {
		return
	}
	r.warned[n] = true
	r.Warningf("layer1 topology: "+format, args...)
}

func activeLogical(logical Layer1Topology, configs netconf.Configurations) Layer1Topology {
	var edges []Layer1Edge
	for _, e := range logical.Edges() {
		if !isActiveNode(e.Node1, configs) || !isActiveNode(e.Node2, configs) {
			continue
		}
		edges = append(edges, e, e.Reverse())
	}
	return NewLayer1Topology(edges...)
}

func isActiveNode(n Layer1Node, configs netconf.Configurations) bool {
	if !n.IsValid() {
		return false
	}
	iface, ok := configs.Interface(n.Pair())
	return ok && iface.Active()
}
