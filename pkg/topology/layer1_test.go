// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayer1Edge_JSONRoundTrip(t *testing.T) {
	edge := NewLayer1Edge("R1", "GigabitEthernet0/0", "sw1", "Ethernet1")

	data, err := json.Marshal(edge)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"node1": {"hostname": "r1", "interfaceName": "GigabitEthernet0/0"},
		"node2": {"hostname": "sw1", "interfaceName": "Ethernet1"}
	}`, string(data))

	var got Layer1Edge
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, edge, got)

	var mixed Layer1Edge
	require.NoError(t, json.Unmarshal([]byte(`{
		"node1": {"hostname": "R1", "interfaceName": "GigabitEthernet0/0"},
		"node2": {"hostname": "SW1", "interfaceName": "Ethernet1"}
	}`), &mixed))
	assert.Equal(t, edge, mixed)
}

func TestLayer1Edge_Reverse(t *testing.T) {
	edge := NewLayer1Edge("a", "e0", "b", "e1")

	assert.Equal(t, NewLayer1Edge("b", "e1", "a", "e0"), edge.Reverse())
	assert.Equal(t, edge, edge.Reverse().Reverse())
}

func TestLayer1Node_InvalidSentinel(t *testing.T) {
	assert.False(t, InvalidInterface.IsValid())
	assert.True(t, NewLayer1Node("a", "e0").IsValid())
	assert.NotEqual(t, InvalidInterface, NewLayer1Node(invalidInterfaceName, invalidInterfaceName))
	assert.Negative(t, InvalidInterface.Compare(NewLayer1Node("", "")))
}

func TestNewLayer1Topology(t *testing.T) {
	topo := NewLayer1Topology(
		NewLayer1Edge("a", "e0", "b", "e0"),
		NewLayer1Edge("a", "e0", "b", "e0"),
		NewLayer1Edge("A", "e0", "b", "e0"),
		NewLayer1Edge("a", "e0", "a", "e0"),
		NewLayer1Edge("c", "e0", "a", "e0"),
	)

	assert.Equal(t, 2, topo.Len())
	assert.Equal(t, []Layer1Edge{
		NewLayer1Edge("a", "e0", "b", "e0"),
		NewLayer1Edge("c", "e0", "a", "e0"),
	}, topo.Edges())
	assert.Equal(t, []Layer1Node{
		NewLayer1Node("a", "e0"),
		NewLayer1Node("b", "e0"),
		NewLayer1Node("c", "e0"),
	}, topo.Nodes())

	a := NewLayer1Node("a", "e0")
	assert.Equal(t, []Layer1Node{NewLayer1Node("b", "e0")}, topo.Successors(a))
	assert.Equal(t, []Layer1Node{NewLayer1Node("c", "e0")}, topo.Predecessors(a))
	assert.Equal(t, []Layer1Node{NewLayer1Node("b", "e0"), NewLayer1Node("c", "e0")}, topo.Neighbors(a))
	assert.Nil(t, topo.Successors(NewLayer1Node("z", "e0")))
	assert.True(t, topo.HasEdge(NewLayer1Edge("c", "e0", "a", "e0")))
	assert.False(t, topo.HasEdge(NewLayer1Edge("a", "e0", "c", "e0")))
}

func TestLayer1Topology_EqualAndJSON(t *testing.T) {
	t1 := NewLayer1Topology(wire("a", "e0", "b", "e0")...)
	t2 := NewLayer1Topology(NewLayer1Edge("b", "e0", "a", "e0"), NewLayer1Edge("a", "e0", "b", "e0"))

	assert.True(t, t1.Equal(t2))
	assert.False(t, t1.Equal(NewLayer1Topology(NewLayer1Edge("a", "e0", "b", "e0"))))
	assert.True(t, Layer1Topology{}.Equal(NewLayer1Topology()))

	data, err := json.Marshal(t1)
	require.NoError(t, err)

	var decoded Layer1Topology
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, t1.Equal(decoded))
}

func TestUnion(t *testing.T) {
	u := Union(
		NewLayer1Topology(NewLayer1Edge("a", "e0", "b", "e0")),
		NewLayer1Topology(NewLayer1Edge("a", "e0", "b", "e0"), NewLayer1Edge("b", "e1", "c", "e0")),
	)
	assert.Equal(t, 2, u.Len())
}

func TestLayer1Topology_Hash(t *testing.T) {
	t1 := NewLayer1Topology(wire("r1", "Gi0/0", "r2", "Gi0/0")...)
	t2 := NewLayer1Topology(NewLayer1Edge("R2", "Gi0/0", "r1", "Gi0/0"), NewLayer1Edge("r1", "Gi0/0", "R2", "Gi0/0"))
	t3 := NewLayer1Topology(NewLayer1Edge("r1", "Gi0/0", "r2", "Gi0/0"))

	h1, err := t1.Hash()
	require.NoError(t, err)
	h2, err := t2.Hash()
	require.NoError(t, err)
	h3, err := t3.Hash()
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
