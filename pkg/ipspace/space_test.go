// SPDX-License-Identifier: GPL-3.0-or-later

package ipspace

import (
	"net/netip"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, start, end string) Range {
	t.Helper()
	r, ok := NewRange(netip.MustParseAddr(start), netip.MustParseAddr(end))
	require.True(t, ok)
	return r
}

func TestNewRange(t *testing.T) {
	tests := map[string]struct {
		start, end string
		wantOK     bool
	}{
		"v4 single":       {start: "10.0.0.1", end: "10.0.0.1", wantOK: true},
		"v4 interval":     {start: "10.0.0.1", end: "10.0.0.9", wantOK: true},
		"v6 interval":     {start: "2001:db8::1", end: "2001:db8::ff", wantOK: true},
		"reversed":        {start: "10.0.0.9", end: "10.0.0.1"},
		"mixed families":  {start: "10.0.0.1", end: "2001:db8::1"},
		"mapped v4 as v4": {start: "::ffff:10.0.0.1", end: "10.0.0.2", wantOK: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := NewRange(netip.MustParseAddr(test.start), netip.MustParseAddr(test.end))
			assert.Equal(t, test.wantOK, ok)
		})
	}
}

func TestFromPrefix(t *testing.T) {
	tests := map[string]struct {
		prefix   string
		wantText string
		wantSize int64
	}{
		"v4 /24":  {prefix: "192.0.2.17/24", wantText: "192.0.2.0-192.0.2.255", wantSize: 256},
		"v4 /31":  {prefix: "10.0.0.0/31", wantText: "10.0.0.0-10.0.0.1", wantSize: 2},
		"v4 /32":  {prefix: "10.0.0.5/32", wantText: "10.0.0.5", wantSize: 1},
		"v6 /126": {prefix: "2001:db8::/126", wantText: "2001:db8::-2001:db8::3", wantSize: 4},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r, ok := FromPrefix(netip.MustParsePrefix(test.prefix))
			require.True(t, ok)
			assert.Equal(t, test.wantText, r.String())
			assert.Equal(t, test.wantSize, r.Size().Int64())
		})
	}
}

func TestNew_Compresses(t *testing.T) {
	tests := map[string]struct {
		ranges   func(t *testing.T) []Range
		wantText string
	}{
		"empty": {
			ranges:   func(t *testing.T) []Range { return nil },
			wantText: "",
		},
		"overlapping": {
			ranges: func(t *testing.T) []Range {
				return []Range{mustRange(t, "10.0.0.5", "10.0.0.20"), mustRange(t, "10.0.0.1", "10.0.0.10")}
			},
			wantText: "10.0.0.1-10.0.0.20",
		},
		"adjacent": {
			ranges: func(t *testing.T) []Range {
				return []Range{mustRange(t, "10.0.0.1", "10.0.0.4"), mustRange(t, "10.0.0.5", "10.0.0.8")}
			},
			wantText: "10.0.0.1-10.0.0.8",
		},
		"disjoint": {
			ranges: func(t *testing.T) []Range {
				return []Range{mustRange(t, "10.0.0.10", "10.0.0.12"), mustRange(t, "10.0.0.1", "10.0.0.2")}
			},
			wantText: "10.0.0.1-10.0.0.2 10.0.0.10-10.0.0.12",
		},
		"contained": {
			ranges: func(t *testing.T) []Range {
				return []Range{mustRange(t, "10.0.0.1", "10.0.0.100"), mustRange(t, "10.0.0.3", "10.0.0.4")}
			},
			wantText: "10.0.0.1-10.0.0.100",
		},
		"families kept apart": {
			ranges: func(t *testing.T) []Range {
				return []Range{
					mustRange(t, "2001:db8::1", "2001:db8::2"),
					mustRange(t, "255.255.255.254", "255.255.255.255"),
				}
			},
			wantText: "255.255.255.254-255.255.255.255 2001:db8::1-2001:db8::2",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.wantText, New(test.ranges(t)...).String())
		})
	}
}

func TestSpace_Contains(t *testing.T) {
	space := Of(
		netip.MustParseAddr("10.0.0.1"),
		netip.MustParseAddr("10.0.0.2"),
		netip.MustParseAddr("10.0.0.9"),
		netip.MustParseAddr("2001:db8::1"),
	)

	assert.Equal(t, 3, space.Len())
	assert.Equal(t, int64(4), space.Size().Int64())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.9", "2001:db8::1", "::ffff:10.0.0.1"} {
		assert.Truef(t, space.Contains(netip.MustParseAddr(ip)), "expected %s in space", ip)
	}
	for _, ip := range []string{"10.0.0.3", "10.0.0.10", "2001:db8::2", "0.0.0.0"} {
		assert.Falsef(t, space.Contains(netip.MustParseAddr(ip)), "unexpected %s in space", ip)
	}
	assert.False(t, space.Contains(netip.Addr{}))
	assert.False(t, Space{}.Contains(netip.MustParseAddr("10.0.0.1")))
}

func TestSpace_UnionAndEqual(t *testing.T) {
	a := Of(netip.MustParseAddr("10.0.0.1"))
	b := Of(netip.MustParseAddr("10.0.0.2"))

	u := a.Union(b)
	assert.Equal(t, "10.0.0.1-10.0.0.2", u.String())
	assert.True(t, u.Equal(New(mustRange(t, "10.0.0.1", "10.0.0.2"))))
	assert.False(t, u.Equal(a))
	assert.True(t, Space{}.Equal(New()))
	assert.Equal(t, "10.0.0.1", a.String(), "union must not mutate its operands")
}

func TestSpace_Iterate(t *testing.T) {
	space := New(mustRange(t, "10.0.0.254", "10.0.1.1"), Single(netip.MustParseAddr("10.0.2.0")))

	var got []string
	for ip := range space.Iterate() {
		got = append(got, ip.String())
	}
	assert.Equal(t, []string{"10.0.0.254", "10.0.0.255", "10.0.1.0", "10.0.1.1", "10.0.2.0"}, got)

	var first []netip.Addr
	for ip := range space.Iterate() {
		first = append(first, ip)
		break
	}
	assert.Len(t, first, 1)
}

func TestBuilder(t *testing.T) {
	var b Builder
	b.Add(netip.MustParseAddr("10.0.0.3"))
	b.Add(netip.Addr{})
	b.AddRange(mustRange(t, "10.0.0.1", "10.0.0.2"))
	b.AddRange(Range{})

	space := b.Build()
	assert.Equal(t, "10.0.0.1-10.0.0.3", space.String())

	b.Add(netip.MustParseAddr("10.0.0.10"))
	assert.Equal(t, 1, space.Len(), "built space must be independent of the builder")
	assert.True(t, slices.Equal([]Range{mustRange(t, "10.0.0.1", "10.0.0.3"), Single(netip.MustParseAddr("10.0.0.10"))}, b.Build().Ranges()))
}
