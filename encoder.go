package texthuff

import (
	"bytes"
	"container/heap"
	"fmt"
	"iter"

	"github.com/chronos-tachyon/assert"
	"github.com/icza/bitio"
)

// BuildTree builds the Huffman tree for the given table.
//
// One leaf per table entry is pushed onto a min-heap ordered by weight; the
// two lightest nodes are then repeatedly popped and merged under a new
// internal node, the first one popped becoming the left child.  Nodes of equal
// weight leave the heap in arrival order: leaves in table order, followed by
// internal nodes in the order they were created.
//
// A table with exactly one entry yields a tree whose root is a leaf.  An
// empty table yields nil.
func BuildTree(ft *FrequencyTable) *Tree {
	numLeaves := ft.Len()
	if numLeaves == 0 {
		return nil
	}

	t := &Tree{nodes: make([]node, 0, 2*numLeaves-1)}

	// Step 1: build a minheap of leaves.

	h := weightHeap{list: make([]indexAndWeight, 0, numLeaves)}
	for _, u := range ft.units {
		count := ft.counts[u]
		assert.Assertf(count != 0, "unit %q has a zero count", string(u))
		index := t.push(node{unit: u, weight: count, left: noNode, right: noNode})
		h.list = append(h.list, indexAndWeight{index, count})
	}
	h.Init()

	// Step 2: process the minheap by popping two nodes, combining them
	// into a new internal node, and pushing the new node back onto the
	// minheap.  Arena indices grow with arrival order, so they double as
	// the tie-break sequence.

	for h.Len() > 1 {
		a := heap.Pop(&h).(indexAndWeight)
		b := heap.Pop(&h).(indexAndWeight)

		// Counts are bounded by the text length, so the sum cannot wrap.
		weightSum := a.weight + b.weight

		index := t.push(node{weight: weightSum, left: a.index, right: b.index})
		heap.Push(&h, indexAndWeight{index, weightSum})
	}

	t.root = heap.Pop(&h).(indexAndWeight).index
	assert.Assertf(int(t.root) == len(t.nodes)-1, "root %d is not the last node of %d", t.root, len(t.nodes))
	return t
}

func (t *Tree) push(n node) nodeIndex {
	index := nodeIndex(len(t.nodes))
	t.nodes = append(t.nodes, n)
	if !n.isLeaf() {
		l, r := t.nodes[n.left], t.nodes[n.right]
		assert.Assertf(n.weight == l.weight+r.weight,
			"internal node weight %d != %d + %d", n.weight, l.weight, r.weight)
	}
	return index
}

// pack concatenates the code of every unit in units, pads the result with
// zero bits to a whole number of bytes, and returns the bytes together with
// the number of padding bits.
func pack(units iter.Seq[Unit], codes CodeTable) ([]byte, uint8, error) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)

	var numBits uint64
	for u := range units {
		hc, found := codes[u]
		if !found {
			return nil, 0, fmt.Errorf("%w: unit %q has no code", ErrEncodingInvariant, string(u))
		}
		if err := w.WriteBits(hc.Bits, hc.Size); err != nil {
			return nil, 0, err
		}
		numBits += uint64(hc.Size)
	}

	// Close pads the final byte with zero bits.
	if err := w.Close(); err != nil {
		return nil, 0, err
	}

	padding := paddingFor(numBits)
	assert.Assertf(uint64(buf.Len())*8 == numBits+uint64(padding),
		"packed %d bytes for %d bits + %d padding", buf.Len(), numBits, padding)
	return buf.Bytes(), padding, nil
}

// type indexAndWeight + type weightHeap {{{

type indexAndWeight struct {
	index  nodeIndex
	weight uint64
}

type weightHeap struct {
	list []indexAndWeight
}

func (h *weightHeap) Init() {
	heap.Init(h)
}

func (h *weightHeap) Len() int {
	return len(h.list)
}

func (h *weightHeap) Swap(i, j int) {
	h.list[i], h.list[j] = h.list[j], h.list[i]
}

func (h *weightHeap) Less(i, j int) bool {
	a, b := h.list[i], h.list[j]
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	return a.index < b.index
}

func (h *weightHeap) Push(x interface{}) {
	h.list = append(h.list, x.(indexAndWeight))
}

func (h *weightHeap) Pop() interface{} {
	last := uint(len(h.list)) - 1
	x := h.list[last]
	h.list = h.list[:last]
	return x
}

var _ heap.Interface = (*weightHeap)(nil)

// }}}
