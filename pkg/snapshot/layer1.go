// SPDX-License-Identifier: GPL-3.0-or-later

package snapshot

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/netdata/netdata/go/topology/pkg/topology"
)

// ParseLayer1Edges reads observed wiring in JSON. It accepts either a bare
// array of edges or an object with an "edges" array. Each edge has node1 and
// node2 objects carrying hostname and interfaceName ("interface" is accepted
// as an alias). Incomplete edges are skipped.
func ParseLayer1Edges(data []byte) ([]topology.Layer1Edge, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: layer1 wiring is not valid json", ErrInvalidDocument)
	}

	res := gjson.ParseBytes(data)
	if res.IsObject() {
		res = res.Get("edges")
	}
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: layer1 wiring has no edge list", ErrInvalidDocument)
	}

	var edges []topology.Layer1Edge
	for _, v := range res.Array() {
		h1, i1, ok1 := edgeNode(v.Get("node1"))
		h2, i2, ok2 := edgeNode(v.Get("node2"))
		if !ok1 || !ok2 {
			continue
		}
		edges = append(edges, topology.NewLayer1Edge(h1, i1, h2, i2))
	}
	return edges, nil
}

func edgeNode(v gjson.Result) (hostname, iface string, ok bool) {
	hostname = v.Get("hostname").String()
	iface = v.Get("interfaceName").String()
	if iface == "" {
		iface = v.Get("interface").String()
	}
	return hostname, iface, hostname != "" && iface != ""
}
