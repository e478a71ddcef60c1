// SPDX-License-Identifier: GPL-3.0-or-later

package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/gohugoio/hashstructure"
	"github.com/sourcegraph/conc/pool"

	"github.com/netdata/netdata/go/topology/logger"
	"github.com/netdata/netdata/go/topology/pkg/ipowners"
	"github.com/netdata/netdata/go/topology/pkg/netconf"
	"github.com/netdata/netdata/go/topology/pkg/snapshot"
	"github.com/netdata/netdata/go/topology/pkg/topology"
)

// Result holds everything inferred from one snapshot.
type Result struct {
	Configs     netconf.Configurations
	Layer1      topology.Layer1Topologies
	Layer2      topology.Layer2Topology
	Adjacencies *topology.HybridL3Adjacencies
	Layer3      topology.Layer3Topology
	// Layer3Synthesized tells whether Layer3 was built from subnets alone.
	Layer3Synthesized bool
	IPOwners          *ipowners.IPOwners
}

type resultView struct {
	UserProvided      uint64
	Synthesized       uint64
	Logical           uint64
	ActiveLogical     uint64
	Layer2            uint64
	Layer3            uint64
	Layer3Synthesized bool
	IPOwners          uint64
}

func (r *Result) view() (resultView, error) {
	var v resultView
	var err error
	hashes := []struct {
		dst *uint64
		fn  func() (uint64, error)
	}{
		{&v.UserProvided, r.Layer1.UserProvided.Hash},
		{&v.Synthesized, r.Layer1.Synthesized.Hash},
		{&v.Logical, r.Layer1.Logical.Hash},
		{&v.ActiveLogical, r.Layer1.ActiveLogical.Hash},
		{&v.Layer2, r.Layer2.Hash},
		{&v.Layer3, r.Layer3.Hash},
		{&v.IPOwners, r.IPOwners.Hash},
	}
	for _, h := range hashes {
		if *h.dst, err = h.fn(); err != nil {
			return v, err
		}
	}
	v.Layer3Synthesized = r.Layer3Synthesized
	return v, nil
}

// Hash returns a hash stable across runs for equal results.
func (r *Result) Hash() (uint64, error) {
	v, err := r.view()
	if err != nil {
		return 0, err
	}
	return hashstructure.Hash(v, nil)
}

// Equal compares the inferred topologies and ownership of two results.
func (r *Result) Equal(other *Result) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Layer1.UserProvided.Equal(other.Layer1.UserProvided) &&
		r.Layer1.Synthesized.Equal(other.Layer1.Synthesized) &&
		r.Layer1.Logical.Equal(other.Layer1.Logical) &&
		r.Layer1.ActiveLogical.Equal(other.Layer1.ActiveLogical) &&
		r.Layer2.Equal(other.Layer2) &&
		r.Layer3.Equal(other.Layer3) &&
		r.Layer3Synthesized == other.Layer3Synthesized &&
		r.IPOwners.Equal(other.IPOwners)
}

// Analyzer runs the inference pipeline over snapshots. It holds no per-run
// state and may be shared between goroutines.
type Analyzer struct {
	*logger.Logger

	cfg       Config
	dataPlane ipowners.DataPlane
}

// New returns an Analyzer. dp is consulted by track methods when the config
// selects data plane evaluation and may be nil otherwise.
func New(log *logger.Logger, cfg Config, dp ipowners.DataPlane) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TrackEvaluation == TrackEvaluationDataPlane && dp == nil {
		return nil, fmt.Errorf("%w: data plane track evaluation without a data plane", ErrInvalidConfig)
	}
	return &Analyzer{
		Logger:    log.With("component", "analysis"),
		cfg:       cfg,
		dataPlane: dp,
	}, nil
}

func (a *Analyzer) evaluators() ipowners.EvaluatorProvider {
	if a.cfg.TrackEvaluation == TrackEvaluationDataPlane {
		return ipowners.DataPlaneEvaluators(a.dataPlane)
	}
	return ipowners.StaticEvaluators()
}

// Run infers topology and IP ownership for one snapshot.
func (a *Analyzer) Run(ctx context.Context, snap *snapshot.Snapshot) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	configs := snap.Configs
	res := &Result{Configs: configs}

	now := time.Now()
	res.Layer1 = topology.NewLayer1TopologiesFactory(a.Logger).Create(snap.Layer1, snap.Synthesized, configs)
	a.Debugf("layer1: %d logical edges, %d active (%s)",
		res.Layer1.Logical.Len(), res.Layer1.ActiveLogical.Len(), time.Since(now))

	now = time.Now()
	res.Layer2 = topology.ComputeLayer2Topology(res.Layer1.Logical, snap.Vxlan, configs)
	a.Debugf("layer2: %d broadcast domains (%s)", len(res.Layer2.Domains()), time.Since(now))

	res.Adjacencies = topology.NewHybridL3Adjacencies(a.Logger, res.Layer1, res.Layer2, configs)

	now = time.Now()
	if !snap.HasLayer1 && a.cfg.SynthesizeL3 {
		res.Layer3 = topology.SynthesizeLayer3Topology(configs)
		res.Layer3Synthesized = true
	} else {
		res.Layer3 = topology.ComputeLayer3Topology(configs, res.Adjacencies)
	}
	a.Debugf("layer3: %d edges, synthesized=%v (%s)", res.Layer3.Len(), res.Layer3Synthesized, time.Since(now))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now = time.Now()
	res.IPOwners = ipowners.New(a.Logger, configs, res.Adjacencies, a.evaluators(), a.cfg.RecordElections)
	a.Debugf("ip owners: %d addresses (%s)", len(res.IPOwners.AllDeviceOwnedIPs()), time.Since(now))

	return res, nil
}

// RunAll analyzes independent snapshots concurrently. Results keep the order
// of snaps. The first error cancels the remaining runs.
func (a *Analyzer) RunAll(ctx context.Context, snaps []*snapshot.Snapshot) ([]*Result, error) {
	results := make([]*Result, len(snaps))

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(a.cfg.concurrency())

	for i, snap := range snaps {
		p.Go(func(ctx context.Context) error {
			res, err := a.Run(ctx, snap)
			if err != nil {
				return fmt.Errorf("snapshot #%d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
