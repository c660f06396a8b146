package texthuff

import (
	"bytes"
	"fmt"
	"io"
	"iter"
)

// FrequencyTable maps each Unit to the number of times it occurs in a text.
//
// Entries keep their insertion order: single characters by first occurrence,
// then bigrams by first occurrence, then trigrams by first occurrence.  The
// order feeds the tie-break rule of BuildTree, so it must be deterministic.
type FrequencyTable struct {
	units            []Unit
	counts           map[Unit]uint64
	tier             Tier
	bigramThreshold  uint64
	trigramThreshold uint64
}

// NewFrequencyTable counts the units of text at the granularity selected by
// level.
//
// Every character of text is always present.  At the Balanced tier, each
// bigram whose overlapping count reaches max(2, len(text)/500) is added too;
// at the Max tier, each trigram whose overlapping count reaches
// max(2, len(text)/300) is added as well.
func NewFrequencyTable(text []rune, level Level) *FrequencyTable {
	n := uint64(len(text))
	ft := &FrequencyTable{
		counts:           make(map[Unit]uint64),
		tier:             level.Tier(),
		bigramThreshold:  max(2, n/500),
		trigramThreshold: max(2, n/300),
	}

	for _, ch := range text {
		ft.add(Unit(ch), 1)
	}

	if ft.tier >= Balanced {
		ft.addNGrams(text, 2, ft.bigramThreshold)
	}
	if ft.tier >= Max {
		ft.addNGrams(text, 3, ft.trigramThreshold)
	}
	return ft
}

func (ft *FrequencyTable) add(u Unit, count uint64) {
	if _, found := ft.counts[u]; !found {
		ft.units = append(ft.units, u)
	}
	ft.counts[u] += count
}

func (ft *FrequencyTable) addNGrams(text []rune, size int, threshold uint64) {
	if len(text) < size {
		return
	}

	var order []Unit
	counts := make(map[Unit]uint64)
	for i := 0; i+size <= len(text); i++ {
		u := Unit(text[i : i+size])
		if _, found := counts[u]; !found {
			order = append(order, u)
		}
		counts[u]++
	}

	for _, u := range order {
		if count := counts[u]; count >= threshold {
			ft.add(u, count)
		}
	}
}

// Len returns the number of distinct units in the table.
func (ft *FrequencyTable) Len() int {
	return len(ft.units)
}

// Count returns the count recorded for u, or false if u is absent.
func (ft *FrequencyTable) Count(u Unit) (uint64, bool) {
	count, found := ft.counts[u]
	return count, found
}

// Units returns the units of the table in insertion order.
func (ft *FrequencyTable) Units() []Unit {
	out := make([]Unit, len(ft.units))
	copy(out, ft.units)
	return out
}

// Tier returns the tier the table was built for.
func (ft *FrequencyTable) Tier() Tier {
	return ft.tier
}

// Thresholds returns the minimum counts for bigram and trigram units.
func (ft *FrequencyTable) Thresholds() (bigram uint64, trigram uint64) {
	return ft.bigramThreshold, ft.trigramThreshold
}

// Tokens returns the sequence of units that encodes text, using a greedy
// longest-match scan from left to right.
//
// At each position the longest candidate allowed by the tier is tried first
// (trigram, then bigram).  A candidate is taken only if the table holds it
// with a count at or above its threshold; otherwise the single character is
// emitted.  The sequence may be iterated any number of times.
func (ft *FrequencyTable) Tokens(text []rune) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		i := 0
		for i < len(text) {
			size := ft.matchAt(text, i)
			if !yield(Unit(text[i : i+size])) {
				return
			}
			i += size
		}
	}
}

func (ft *FrequencyTable) matchAt(text []rune, i int) int {
	remaining := len(text) - i
	if ft.tier >= Max && remaining >= 3 && ft.accepts(Unit(text[i:i+3]), ft.trigramThreshold) {
		return 3
	}
	if ft.tier >= Balanced && remaining >= 2 && ft.accepts(Unit(text[i:i+2]), ft.bigramThreshold) {
		return 2
	}
	return 1
}

func (ft *FrequencyTable) accepts(u Unit, threshold uint64) bool {
	count, found := ft.counts[u]
	return found && count >= threshold
}

// Dump writes a programmer-readable debugging dump of the table to the given
// writer.
func (ft *FrequencyTable) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("FrequencyTable{\n")
	fmt.Fprintf(&buf, "\tTier() = %s\n", ft.tier)
	fmt.Fprintf(&buf, "\tThresholds() = {%d, %d}\n", ft.bigramThreshold, ft.trigramThreshold)
	for _, u := range ft.units {
		fmt.Fprintf(&buf, "\tCount(%q) = %d\n", string(u), ft.counts[u])
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}
