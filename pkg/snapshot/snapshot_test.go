// SPDX-License-Identifier: GPL-3.0-or-later

package snapshot

import (
	"encoding/json"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
	"github.com/netdata/netdata/go/topology/pkg/topology"
)

var (
	dataCampusYAML, _ = os.ReadFile("testdata/campus.yaml")
	dataLayer1JSON, _ = os.ReadFile("testdata/layer1.json")
)

func Test_testDataIsValid(t *testing.T) {
	for name, data := range map[string][]byte{
		"dataCampusYAML": dataCampusYAML,
		"dataLayer1JSON": dataLayer1JSON,
	} {
		require.NotNil(t, data, name)
	}
}

func TestLoad(t *testing.T) {
	snap, err := Load("testdata/campus.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"r1", "r2", "sw1", "sw2"}, snap.Configs.Hostnames())
	assert.True(t, snap.HasLayer1)
	assert.Equal(t, 8, snap.Layer1.Len())
	assert.True(t, snap.Layer1.HasEdge(topology.NewLayer1Edge("r1", "GigabitEthernet0/0", "sw1", "Gi0/1")))
	assert.True(t, snap.Layer1.HasEdge(topology.NewLayer1Edge("r2", "GigabitEthernet0/0", "sw2", "GigabitEthernet0/1")))
	assert.True(t, snap.Synthesized.IsEmpty())
	assert.Empty(t, snap.Vxlan.Edges())

	r1, ok := snap.Configs.Get("R1")
	require.True(t, ok)
	gi0, ok := r1.Interface("GigabitEthernet0/0")
	require.True(t, ok)
	assert.Equal(t, "GigabitEthernet0/0", gi0.Name)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.10.2/24")}, gi0.Addresses)

	group := gi0.HSRPGroups[10]
	require.NotNil(t, group)
	assert.True(t, group.Valid())
	assert.Equal(t, 110, group.Priority)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("10.0.10.1")}, group.VirtualAddresses)
	assert.Equal(t, netconf.TrackAction{DecrementPriority: 20}, group.TrackActions["uplink"])
	assert.Equal(t, netconf.Negate(netconf.TrackInterface("GigabitEthernet0/2")), r1.TrackingGroups["uplink"])

	sw1, ok := snap.Configs.Get("sw1")
	require.True(t, ok)
	trunk, ok := sw1.Interface("GigabitEthernet0/24")
	require.True(t, ok)
	assert.True(t, trunk.IsTrunk())
	assert.Equal(t, []int{10}, trunk.AllowedVLANs)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := map[string]struct {
		path    string
		invalid bool
	}{
		"missing document": {
			path: filepath.Join(dir, "absent.yaml"),
		},
		"malformed yaml": {
			path: write("malformed.yaml", "configurations: [\n"),
		},
		"no configurations": {
			path:    write("empty.yaml", "layer1_edges: []\n"),
			invalid: true,
		},
		"duplicate hostname": {
			path:    write("dup.yaml", "configurations:\n  - hostname: r1\n  - hostname: R1\n"),
			invalid: true,
		},
		"missing hostname": {
			path:    write("nohost.yaml", "configurations:\n  - device_type: router\n"),
			invalid: true,
		},
		"missing layer1 file": {
			path: write("nofile.yaml", "configurations:\n  - hostname: r1\nlayer1_file: absent.json\n"),
		},
		"invalid layer1 file": {
			path: func() string {
				write("broken.json", "{\"edges\": [")
				return write("broken.yaml", "configurations:\n  - hostname: r1\nlayer1_file: broken.json\n")
			}(),
			invalid: true,
		},
		"incomplete inline edge": {
			path: write("incomplete.yaml", `configurations:
  - hostname: r1
layer1_edges:
  - node1: {hostname: r1, interfaceName: Gi0/0}
    node2: {hostname: r2}
`),
			invalid: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			snap, err := Load(test.path)

			require.Error(t, err)
			assert.Nil(t, snap)
			if test.invalid {
				assert.ErrorIs(t, err, ErrInvalidDocument)
			} else {
				assert.NotErrorIs(t, err, ErrInvalidDocument)
			}
		})
	}
}

func TestDocument_Snapshot(t *testing.T) {
	doc, err := ParseDocument([]byte(`
configurations:
  - hostname: leaf1
    vrfs:
      default:
        layer2_vnis: [{vni: 10010, vlan: 10}]
  - hostname: leaf2
    vrfs:
      default:
        layer2_vnis: [{vni: 10010, vlan: 10}]
  - hostname: isp
    device_type: isp
layer1_edges:
  - node1: {hostname: leaf1, interfaceName: Ethernet1}
    node2: {hostname: leaf2, interfaceName: Ethernet1}
synthesized_layer1_edges:
  - node1: {hostname: leaf1, interfaceName: Ethernet2}
    node2: {hostname: isp, interfaceName: Ethernet0}
vxlan_edges:
  - node1: {hostname: leaf2, vni: 10010}
    node2: {hostname: leaf1, vni: 10010}
`))
	require.NoError(t, err)

	snap, err := doc.Snapshot()
	require.NoError(t, err)

	assert.True(t, snap.HasLayer1)
	assert.Equal(t, []topology.Layer1Edge{topology.NewLayer1Edge("leaf1", "Ethernet1", "leaf2", "Ethernet1")}, snap.Layer1.Edges())
	assert.Equal(t, []topology.Layer1Edge{topology.NewLayer1Edge("leaf1", "Ethernet2", "isp", "Ethernet0")}, snap.Synthesized.Edges())
	assert.Equal(t, []topology.VxlanEdge{{
		Node1: topology.NewVxlanNode("leaf1", 10010),
		Node2: topology.NewVxlanNode("leaf2", 10010),
	}}, snap.Vxlan.Edges())

	isp, ok := snap.Configs.Get("isp")
	require.True(t, ok)
	assert.True(t, isp.IsISP())
}

func TestDocument_SnapshotWithoutWiring(t *testing.T) {
	doc, err := ParseDocument([]byte("configurations:\n  - hostname: r1\n"))
	require.NoError(t, err)

	snap, err := doc.Snapshot()
	require.NoError(t, err)

	assert.False(t, snap.HasLayer1)
	assert.True(t, snap.Layer1.IsEmpty())
}

func TestParseLayer1Edges(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    []topology.Layer1Edge
		wantErr bool
	}{
		"object with edges": {
			input: `{"edges":[{"node1":{"hostname":"R1","interfaceName":"Gi0/0"},"node2":{"hostname":"sw1","interfaceName":"Gi0/1"}}]}`,
			want:  []topology.Layer1Edge{topology.NewLayer1Edge("r1", "Gi0/0", "sw1", "Gi0/1")},
		},
		"bare array": {
			input: `[{"node1":{"hostname":"r1","interfaceName":"Gi0/0"},"node2":{"hostname":"sw1","interfaceName":"Gi0/1"}}]`,
			want:  []topology.Layer1Edge{topology.NewLayer1Edge("r1", "Gi0/0", "sw1", "Gi0/1")},
		},
		"interface alias": {
			input: `[{"node1":{"hostname":"r1","interface":"Gi0/0"},"node2":{"hostname":"sw1","interface":"Gi0/1"}}]`,
			want:  []topology.Layer1Edge{topology.NewLayer1Edge("r1", "Gi0/0", "sw1", "Gi0/1")},
		},
		"incomplete edges are skipped": {
			input: `[{"node1":{"hostname":"r1"},"node2":{"hostname":"sw1","interfaceName":"Gi0/1"}},{"node1":{"hostname":"r1","interfaceName":"Gi0/0"}}]`,
			want:  nil,
		},
		"empty edge list": {
			input: `{"edges":[]}`,
			want:  nil,
		},
		"invalid json": {
			input:   `{"edges":[`,
			wantErr: true,
		},
		"object without edges": {
			input:   `{"links":[]}`,
			wantErr: true,
		},
		"scalar": {
			input:   `42`,
			wantErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			edges, err := ParseLayer1Edges([]byte(test.input))

			if test.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDocument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, edges)
		})
	}
}

func TestParseLayer1Edges_Testdata(t *testing.T) {
	edges, err := ParseLayer1Edges(dataLayer1JSON)
	require.NoError(t, err)

	assert.Len(t, edges, 8)
	assert.Equal(t, topology.NewLayer1Edge("r2", "GigabitEthernet0/0", "sw2", "GigabitEthernet0/1"), edges[4])
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	require.NoError(t, err)
	require.True(t, json.Valid(data))

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))

	defs, ok := schema["$defs"].(map[string]any)
	require.True(t, ok)
	for _, name := range []string{"Document", "Configuration", "Interface", "HSRPGroup", "VRRPGroup", "TrackMethod", "Edge"} {
		assert.Contains(t, defs, name)
	}

	doc := defs["Document"].(map[string]any)
	assert.Equal(t, false, doc["additionalProperties"])
	assert.Contains(t, doc["properties"], "configurations")
	assert.Contains(t, doc["properties"], "layer1_file")

	iface := defs["Interface"].(map[string]any)
	addresses := iface["properties"].(map[string]any)["addresses"].(map[string]any)
	assert.Equal(t, "string", addresses["items"].(map[string]any)["type"])
}

func TestLoadAll(t *testing.T) {
	tests := map[string]struct {
		patterns []string
		wantLen  int
		wantErr  bool
	}{
		"single pattern": {
			patterns: []string{"testdata/*.yaml"},
			wantLen:  1,
		},
		"recursive pattern": {
			patterns: []string{"testdata/**/campus.yaml"},
			wantLen:  1,
		},
		"overlapping patterns": {
			patterns: []string{"testdata/*.yaml", "testdata/campus.yaml"},
			wantLen:  1,
		},
		"no matches": {
			patterns: []string{"testdata/*.toml"},
			wantLen:  0,
		},
		"bad pattern": {
			patterns: []string{"testdata/[.yaml"},
			wantErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			snaps, err := LoadAll(test.patterns...)

			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, snaps, test.wantLen)
		})
	}
}
