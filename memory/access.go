package memory

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Perm is a set of access permissions.
type Perm byte

// Known permission bits.
const (
	PermRead  Perm = 1 << iota
	PermWrite
	PermExec

	PermNone Perm = 0
	PermRW        = PermRead | PermWrite
	PermRWX       = PermRead | PermWrite | PermExec
)

func (p Perm) String() string {
	b := []byte("---")
	if p&PermRead != 0 {
		b[0] = 'r'
	}
	if p&PermWrite != 0 {
		b[1] = 'w'
	}
	if p&PermExec != 0 {
		b[2] = 'x'
	}
	return string(b)
}

// DefaultRegionCapacity is the region table size used by the arena.
const DefaultRegionCapacity = 256

// region ends at end (exclusive) and starts where the previous region ends.
type region struct {
	end  int
	perm Perm
}

// Region is an observer view of one access-control interval.
type Region struct {
	Start, End int
	Perm       Perm
}

func (r Region) String() string {
	return fmt.Sprintf("%05x-%05x %s", r.Start, r.End, r.Perm)
}

// AccessControl holds sorted, disjoint permission intervals covering the
// linear address space from 0 upwards. Anything past the last interval
// has no permissions.
//
// The table is filled once when warriors are loaded and is read-only
// afterwards.
type AccessControl struct {
	regions  []region
	capacity int
}

// NewAccessControl creates an empty table holding at most capacity regions.
func NewAccessControl(capacity int) *AccessControl {
	if capacity < 1 {
		capacity = DefaultRegionCapacity
	}
	return &AccessControl{capacity: capacity}
}

// Len returns the number of regions.
func (ac *AccessControl) Len() int {
	return len(ac.regions)
}

// Regions returns a copy of the current intervals.
func (ac *AccessControl) Regions() []Region {
	out := make([]Region, len(ac.regions))
	start := 0
	for i, r := range ac.regions {
		out[i] = Region{Start: start, End: r.end, Perm: r.perm}
		start = r.end
	}
	return out
}

// Grant sets the permissions of [start, start+size) to perm, splitting and
// merging neighbouring regions as needed. Returns ErrTooManyRegions and
// leaves the table untouched if the result would not fit.
func (ac *AccessControl) Grant(start, size int, perm Perm) error {
	end := start + size
	if start < 0 {
		start = 0
	}
	if end > MemorySize {
		end = MemorySize
	}
	if start >= end {
		return nil
	}

	rs := slices.Clone(ac.regions)

	// Make sure the table reaches end.
	if last := lastEnd(rs); last < end {
		rs = append(rs, region{end: end, perm: PermNone})
	}

	rs = split(rs, start)
	rs = split(rs, end)

	i := find(rs, start)
	j := find(rs, end-1)
	rs = slices.Delete(rs, i, j+1)
	rs = slices.Insert(rs, i, region{end: end, perm: perm})

	rs = merge(rs)

	if len(rs) > ac.capacity {
		return ErrTooManyRegions
	}

	ac.regions = rs
	return nil
}

// Check returns true if every byte of [addr, addr+size) carries all
// permissions in want.
func (ac *AccessControl) Check(addr, size int, want Perm) bool {
	end := addr + size
	if addr < 0 {
		addr = 0
	}
	if end > MemorySize {
		end = MemorySize
	}
	if addr >= end {
		return false
	}

	have := want
	i := find(ac.regions, addr)

	for ; i < len(ac.regions); i++ {
		have &= ac.regions[i].perm
		if ac.regions[i].end >= end {
			return have == want
		}
	}

	return false
}

// Perm returns the permissions at the given linear address.
func (ac *AccessControl) Perm(addr int) Perm {
	i := find(ac.regions, addr)
	if i >= len(ac.regions) {
		return PermNone
	}
	return ac.regions[i].perm
}

// CheckRead implements Access.
func (ac *AccessControl) CheckRead(linear int) bool { return ac.Check(linear, 1, PermRead) }

// CheckWrite implements Access.
func (ac *AccessControl) CheckWrite(linear int) bool { return ac.Check(linear, 1, PermWrite) }

// CheckExecute implements Access.
func (ac *AccessControl) CheckExecute(linear int) bool { return ac.Check(linear, 1, PermExec) }

func (ac *AccessControl) String() string {
	var sb strings.Builder
	for _, r := range ac.Regions() {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// find returns the index of the region containing addr.
func find(rs []region, addr int) int {
	i, _ := slices.BinarySearchFunc(rs, addr, func(r region, addr int) int {
		return r.end - (addr + 1)
	})
	return i
}

// split ensures a region boundary exists at addr.
func split(rs []region, addr int) []region {
	i := find(rs, addr)
	if i >= len(rs) {
		return rs
	}

	start := 0
	if i > 0 {
		start = rs[i-1].end
	}
	if start == addr {
		return rs
	}

	return slices.Insert(rs, i, region{end: addr, perm: rs[i].perm})
}

// merge collapses neighbours with identical permissions and drops
// trailing regions without permissions.
func merge(rs []region) []region {
	out := rs[:0]
	for i, r := range rs {
		if i+1 < len(rs) && rs[i+1].perm == r.perm {
			continue
		}
		out = append(out, r)
	}

	for len(out) > 0 && out[len(out)-1].perm == PermNone {
		out = out[:len(out)-1]
	}
	return out
}

func lastEnd(rs []region) int {
	if len(rs) == 0 {
		return 0
	}
	return rs[len(rs)-1].end
}
