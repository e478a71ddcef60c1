// SPDX-License-Identifier: GPL-3.0-or-later

package ipspace

import (
	"fmt"
	"iter"
	"math/big"
	"net/netip"
)

// Family represents the address family of a Range.
type Family uint8

const (
	// V4Family is IPv4 address-family.
	V4Family Family = iota
	// V6Family is IPv6 address-family.
	V6Family
)

// String returns the string representation of the address family.
func (f Family) String() string {
	switch f {
	case V4Family:
		return "IPv4"
	case V6Family:
		return "IPv6"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// Range is an inclusive interval of addresses of one family.
type Range struct {
	start netip.Addr
	end   netip.Addr
}

// NewRange creates a range from start to end. It reports false when the
// addresses are invalid, of different families, or start > end.
func NewRange(start, end netip.Addr) (Range, bool) {
	start, end = start.Unmap(), end.Unmap()
	if !start.IsValid() || !end.IsValid() || start.BitLen() != end.BitLen() {
		return Range{}, false
	}
	if start.Compare(end) > 0 {
		return Range{}, false
	}
	return Range{start: start, end: end}, true
}

// Single returns the range holding exactly ip.
func Single(ip netip.Addr) Range {
	ip = ip.Unmap()
	return Range{start: ip, end: ip}
}

// FromPrefix returns the range covering every address of p.
func FromPrefix(p netip.Prefix) (Range, bool) {
	if !p.IsValid() {
		return Range{}, false
	}
	p = p.Masked()
	start := p.Addr().Unmap()
	bits := start.BitLen()
	raw := start.AsSlice()
	for i := p.Bits(); i < bits; i++ {
		raw[i/8] |= 1 << (7 - uint(i%8))
	}
	end, ok := netip.AddrFromSlice(raw)
	if !ok {
		return Range{}, false
	}
	return NewRange(start, end)
}

func (r Range) Start() netip.Addr { return r.start }
func (r Range) End() netip.Addr   { return r.end }

func (r Range) IsValid() bool { return r.start.IsValid() }

func (r Range) Family() Family {
	if r.start.Is4() {
		return V4Family
	}
	return V6Family
}

// Contains reports whether ip falls inside the range.
func (r Range) Contains(ip netip.Addr) bool {
	ip = ip.Unmap()
	if !r.IsValid() || !ip.IsValid() || ip.BitLen() != r.start.BitLen() {
		return false
	}
	return ip.Compare(r.start) >= 0 && ip.Compare(r.end) <= 0
}

// Size returns the number of addresses in the range.
func (r Range) Size() *big.Int {
	if !r.IsValid() {
		return big.NewInt(0)
	}
	startBig := new(big.Int).SetBytes(r.start.AsSlice())
	endBig := new(big.Int).SetBytes(r.end.AsSlice())
	size := new(big.Int).Sub(endBig, startBig)
	return size.Add(size, big.NewInt(1))
}

// Iterate yields every address of the range in order.
func (r Range) Iterate() iter.Seq[netip.Addr] {
	return func(yield func(netip.Addr) bool) {
		if !r.IsValid() {
			return
		}
		for ip := r.start; ip.IsValid(); ip = ip.Next() {
			if !yield(ip) || ip == r.end {
				return
			}
		}
	}
}

func (r Range) String() string {
	if !r.IsValid() {
		return ""
	}
	if r.start == r.end {
		return r.start.String()
	}
	return fmt.Sprintf("%s-%s", r.start, r.end)
}

// touches reports whether next starts at or before the address following r.
func (r Range) touches(next Range) bool {
	if r.start.BitLen() != next.start.BitLen() {
		return false
	}
	if next.start.Compare(r.end) <= 0 {
		return true
	}
	after := r.end.Next()
	return after.IsValid() && after == next.start
}
