// SPDX-License-Identifier: GPL-3.0-or-later

package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/netdata/netdata/go/topology/pkg/netconf"
	"github.com/netdata/netdata/go/topology/pkg/topology"
)

// ErrInvalidDocument is returned for snapshot documents that decode but
// cannot describe a snapshot.
var ErrInvalidDocument = errors.New("invalid snapshot document")

// EdgeNode is one end of a Layer1 edge as written in snapshot files.
type EdgeNode struct {
	Hostname      string `yaml:"hostname" json:"hostname"`
	InterfaceName string `yaml:"interfaceName" json:"interfaceName"`
}

// Edge is a Layer1 edge as written in snapshot files.
type Edge struct {
	Node1 EdgeNode `yaml:"node1" json:"node1"`
	Node2 EdgeNode `yaml:"node2" json:"node2"`
}

func (e Edge) layer1() topology.Layer1Edge {
	return topology.NewLayer1Edge(e.Node1.Hostname, e.Node1.InterfaceName, e.Node2.Hostname, e.Node2.InterfaceName)
}

// Document is the on-disk description of one network snapshot.
type Document struct {
	Configurations []*netconf.Configuration `yaml:"configurations" json:"configurations"`
	// Layer1Edges is observed wiring listed inline.
	Layer1Edges []Edge `yaml:"layer1_edges,omitempty" json:"layer1_edges,omitempty"`
	// Layer1File names a JSON wiring file, relative to the document.
	Layer1File             string               `yaml:"layer1_file,omitempty" json:"layer1_file,omitempty"`
	SynthesizedLayer1Edges []Edge               `yaml:"synthesized_layer1_edges,omitempty" json:"synthesized_layer1_edges,omitempty"`
	VxlanEdges             []topology.VxlanEdge `yaml:"vxlan_edges,omitempty" json:"vxlan_edges,omitempty"`
}

// Snapshot is the decoded input of one analysis run.
type Snapshot struct {
	Configs netconf.Configurations
	// Layer1 is the observed wiring; HasLayer1 tells whether any was given.
	Layer1      topology.Layer1Topology
	HasLayer1   bool
	Synthesized topology.Layer1Topology
	Vxlan       topology.VxlanTopology
}

// ParseDocument decodes a YAML snapshot document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot yaml: %w", err)
	}
	return &doc, nil
}

// LoadDocument reads and decodes a YAML snapshot document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot yaml %q: %w", path, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return doc, nil
}

// Load reads a snapshot document and the wiring file it refers to.
func Load(path string) (*Snapshot, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}

	var extra []topology.Layer1Edge
	if doc.Layer1File != "" {
		wiringPath := doc.Layer1File
		if !filepath.IsAbs(wiringPath) {
			wiringPath = filepath.Join(filepath.Dir(path), wiringPath)
		}
		data, err := os.ReadFile(wiringPath)
		if err != nil {
			return nil, fmt.Errorf("read layer1 file %q: %w", wiringPath, err)
		}
		if extra, err = ParseLayer1Edges(data); err != nil {
			return nil, fmt.Errorf("%q: %w", wiringPath, err)
		}
	}

	return doc.snapshot(extra)
}

// Snapshot validates the document and builds the analysis input.
func (d *Document) Snapshot() (*Snapshot, error) {
	return d.snapshot(nil)
}

func (d *Document) snapshot(extraLayer1 []topology.Layer1Edge) (*Snapshot, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	layer1 := extraLayer1
	for _, e := range d.Layer1Edges {
		layer1 = append(layer1, e.layer1())
	}
	synthesized := make([]topology.Layer1Edge, 0, len(d.SynthesizedLayer1Edges))
	for _, e := range d.SynthesizedLayer1Edges {
		synthesized = append(synthesized, e.layer1())
	}

	return &Snapshot{
		Configs:     netconf.NewConfigurations(d.Configurations...),
		Layer1:      topology.NewLayer1Topology(layer1...),
		HasLayer1:   len(layer1) > 0,
		Synthesized: topology.NewLayer1Topology(synthesized...),
		Vxlan:       topology.NewVxlanTopology(d.VxlanEdges...),
	}, nil
}

func (d *Document) validate() error {
	if len(d.Configurations) == 0 {
		return fmt.Errorf("%w: no configurations", ErrInvalidDocument)
	}
	seen := make(map[string]bool, len(d.Configurations))
	for i, cfg := range d.Configurations {
		if cfg == nil {
			return fmt.Errorf("%w: configuration #%d is empty", ErrInvalidDocument, i)
		}
		host := strings.ToLower(strings.TrimSpace(cfg.Hostname))
		if host == "" {
			return fmt.Errorf("%w: configuration #%d has no hostname", ErrInvalidDocument, i)
		}
		if seen[host] {
			return fmt.Errorf("%w: duplicate hostname '%s'", ErrInvalidDocument, host)
		}
		seen[host] = true
	}
	for i, e := range append(append([]Edge(nil), d.Layer1Edges...), d.SynthesizedLayer1Edges...) {
		if e.Node1.Hostname == "" || e.Node1.InterfaceName == "" || e.Node2.Hostname == "" || e.Node2.InterfaceName == "" {
			return fmt.Errorf("%w: layer1 edge #%d is incomplete", ErrInvalidDocument, i)
		}
	}
	return nil
}
