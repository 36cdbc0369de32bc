// Package nodeset provides set algebra over collections of grid node IDs.
//
// A [Set] is a sorted slice of distinct non-negative node IDs. Sorted order
// makes union, difference and intersection linear merges and keeps every
// result deterministic, which matters for algorithms that visit nodes in set
// order (lake growth, margin checks).
//
// Functions never modify their arguments and always return fresh slices.
package nodeset

import "slices"

// Set is a sorted collection of distinct node IDs.
// The zero value (nil) is an empty set.
type Set []int

// Of builds a Set from ids in any order. Negative IDs (absent-neighbor
// sentinels) are dropped and duplicates are collapsed.
func Of(ids ...int) Set {
	s := make(Set, 0, len(ids))
	for _, id := range ids {
		if id >= 0 {
			s = append(s, id)
		}
	}
	slices.Sort(s)
	return slices.Compact(s)
}

// FromMask returns the IDs of every true element of mask.
func FromMask(mask []bool) Set {
	var s Set
	for id, ok := range mask {
		if ok {
			s = append(s, id)
		}
	}
	return s
}

// Len returns the number of nodes in the set.
func (s Set) Len() int { return len(s) }

// Contains reports whether id is in the set.
func (s Set) Contains(id int) bool {
	_, ok := slices.BinarySearch(s, id)
	return ok
}

// Clone returns a copy of the set.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// Mask returns a boolean mask of length n with true at every member.
// Members >= n are ignored.
func (s Set) Mask(n int) []bool {
	m := make([]bool, n)
	for _, id := range s {
		if id < n {
			m[id] = true
		}
	}
	return m
}

// Union returns the nodes in a or b.
func Union(a, b Set) Set {
	out := make(Set, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// Difference returns the nodes in a that are not in b.
func Difference(a, b Set) Set {
	out := make(Set, 0, len(a))
	j := 0
	for _, id := range a {
		for j < len(b) && b[j] < id {
			j++
		}
		if j < len(b) && b[j] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Intersect returns the nodes in both a and b.
func Intersect(a, b Set) Set {
	var out Set
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
