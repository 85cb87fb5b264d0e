package ecs

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Aspect selects entities by the component kinds they hold. An entity matches when
// it holds every kind in All and none in Exclude; when One is non-empty, holding at
// least one of its kinds decides the match on its own.
//
// Aspects are values: the builder methods return a new Aspect and never modify the receiver.
type Aspect struct {
	all     *bitset.BitSet
	one     *bitset.BitSet
	exclude *bitset.BitSet
}

// All returns an aspect requiring every given kind.
func All(types ...ComponentType) Aspect {
	return Aspect{all: withTypes(nil, types)}
}

// One returns an aspect requiring at least one of the given kinds.
func One(types ...ComponentType) Aspect {
	return Aspect{one: withTypes(nil, types)}
}

// Exclude returns an aspect rejecting any of the given kinds.
func Exclude(types ...ComponentType) Aspect {
	return Aspect{exclude: withTypes(nil, types)}
}

// All returns a copy of a that also requires every given kind.
func (a Aspect) All(types ...ComponentType) Aspect {
	a.all = withTypes(a.all, types)
	return a
}

// One returns a copy of a that also accepts any of the given kinds.
func (a Aspect) One(types ...ComponentType) Aspect {
	a.one = withTypes(a.one, types)
	return a
}

// Exclude returns a copy of a that also rejects any of the given kinds.
func (a Aspect) Exclude(types ...ComponentType) Aspect {
	a.exclude = withTypes(a.exclude, types)
	return a
}

// IsEmpty reports whether the aspect has no clauses; an empty aspect matches every entity.
func (a Aspect) IsEmpty() bool {
	return isEmpty(a.all) && isEmpty(a.one) && isEmpty(a.exclude)
}

// Matches evaluates the aspect against a set of component indices.
func (a Aspect) Matches(bits *bitset.BitSet) bool {
	interested := true

	if !isEmpty(a.all) {
		interested = bits.IsSuperSet(a.all)
	}

	if !isEmpty(a.exclude) && interested {
		interested = bits.IntersectionCardinality(a.exclude) == 0
	}

	// One replaces the outcome of the all and exclude clauses rather than narrowing it.
	if !isEmpty(a.one) {
		interested = bits.IntersectionCardinality(a.one) > 0
	}

	return interested
}

func (a Aspect) String() string {
	var sb strings.Builder
	sb.WriteString("Aspect{all=")
	sb.WriteString(bitsString(a.all))
	sb.WriteString(" one=")
	sb.WriteString(bitsString(a.one))
	sb.WriteString(" exclude=")
	sb.WriteString(bitsString(a.exclude))
	sb.WriteString("}")
	return sb.String()
}

func withTypes(base *bitset.BitSet, types []ComponentType) *bitset.BitSet {
	var bits *bitset.BitSet
	if base != nil {
		bits = base.Clone()
	} else {
		bits = bitset.New(0)
	}
	for _, ct := range types {
		bits.Set(uint(ct.index))
	}
	return bits
}

func isEmpty(bits *bitset.BitSet) bool {
	return bits == nil || bits.None()
}

func bitsString(bits *bitset.BitSet) string {
	if bits == nil {
		return "{}"
	}
	return bits.String()
}
