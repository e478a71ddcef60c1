// SPDX-License-Identifier: GPL-3.0-or-later

package ipspace

import (
	"iter"
	"math/big"
	"net/netip"
	"slices"
	"sort"
	"strings"
)

// Space is an immutable set of addresses stored as sorted, disjoint,
// non-adjacent ranges. The zero value is the empty space.
type Space struct {
	ranges []Range
}

// New builds a compressed space from ranges. Invalid ranges are dropped.
func New(ranges ...Range) Space {
	valid := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.IsValid() {
			valid = append(valid, r)
		}
	}
	return Space{ranges: compress(valid)}
}

// Of builds a compressed space holding exactly ips.
func Of(ips ...netip.Addr) Space {
	ranges := make([]Range, 0, len(ips))
	for _, ip := range ips {
		if ip.IsValid() {
			ranges = append(ranges, Single(ip))
		}
	}
	return New(ranges...)
}

func compress(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	slices.SortFunc(ranges, func(a, b Range) int {
		if c := a.start.Compare(b.start); c != 0 {
			return c
		}
		return a.end.Compare(b.end)
	})
	out := make([]Range, 0, len(ranges))
	cur := ranges[0]
	for _, r := range ranges[1:] {
		if cur.touches(r) {
			if r.end.Compare(cur.end) > 0 {
				cur.end = r.end
			}
			continue
		}
		out = append(out, cur)
		cur = r
	}
	return append(out, cur)
}

// Ranges returns a copy of the compressed ranges.
func (s Space) Ranges() []Range {
	return slices.Clone(s.ranges)
}

// Len returns the number of ranges.
func (s Space) Len() int {
	return len(s.ranges)
}

func (s Space) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Contains reports whether ip belongs to the space.
func (s Space) Contains(ip netip.Addr) bool {
	ip = ip.Unmap()
	if !ip.IsValid() {
		return false
	}
	i := sort.Search(len(s.ranges), func(i int) bool {
		r := s.ranges[i]
		if r.end.BitLen() != ip.BitLen() {
			return r.end.BitLen() > ip.BitLen()
		}
		return r.end.Compare(ip) >= 0
	})
	return i < len(s.ranges) && s.ranges[i].Contains(ip)
}

// Size returns the number of addresses in the space.
func (s Space) Size() *big.Int {
	total := new(big.Int)
	for _, r := range s.ranges {
		total.Add(total, r.Size())
	}
	return total
}

// Union returns the compressed union of s and other.
func (s Space) Union(other Space) Space {
	return New(append(s.Ranges(), other.ranges...)...)
}

// Equal reports whether both spaces hold the same addresses.
func (s Space) Equal(other Space) bool {
	return slices.Equal(s.ranges, other.ranges)
}

// Iterate yields every address of the space in order.
func (s Space) Iterate() iter.Seq[netip.Addr] {
	return func(yield func(netip.Addr) bool) {
		for _, r := range s.ranges {
			for ip := range r.Iterate() {
				if !yield(ip) {
					return
				}
			}
		}
	}
}

// String returns the ranges separated by spaces.
func (s Space) String() string {
	parts := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, " ")
}

// Builder accumulates addresses and ranges before compressing them once.
type Builder struct {
	ranges []Range
}

func (b *Builder) Add(ip netip.Addr) {
	if ip.IsValid() {
		b.ranges = append(b.ranges, Single(ip))
	}
}

func (b *Builder) AddRange(r Range) {
	if r.IsValid() {
		b.ranges = append(b.ranges, r)
	}
}

// Build returns the compressed space. The builder may be reused afterwards.
func (b *Builder) Build() Space {
	return New(slices.Clone(b.ranges)...)
}
