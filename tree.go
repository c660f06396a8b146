package texthuff

import (
	"bytes"
	"fmt"
	"io"
)

// nodeIndex identifies a node within a Tree's arena.
type nodeIndex int32

// noNode marks the absent children of a leaf.
const noNode = nodeIndex(-1)

// node is either a leaf (left == right == noNode, unit != "") or an internal
// node with exactly two children.
type node struct {
	unit   Unit
	weight uint64
	left   nodeIndex
	right  nodeIndex
}

func (n node) isLeaf() bool {
	return n.left == noNode
}

// Tree is a binary prefix tree.  Leaves carry the units of the code; a left
// edge stands for a 0 bit and a right edge for a 1 bit.
//
// The nodes live in a single arena owned by the Tree, so a Tree has no shared
// nodes and no cycles.  A Tree is immutable once built.
type Tree struct {
	nodes []node
	root  nodeIndex
}

// NumLeaves returns the number of units in the tree.
func (t *Tree) NumLeaves() int {
	if t == nil {
		return 0
	}
	return (len(t.nodes) + 1) / 2
}

// Units returns the leaf units in depth-first, left-to-right order.
func (t *Tree) Units() []Unit {
	if t == nil {
		return nil
	}
	out := make([]Unit, 0, t.NumLeaves())
	t.walk(func(index nodeIndex, _ Code) {
		out = append(out, t.nodes[index].unit)
	})
	return out
}

// Equal reports whether both trees have the same shape and the same units at
// the same leaves.  Weights are ignored, as they are not serialized.
func (t *Tree) Equal(other *Tree) bool {
	if t == nil || other == nil {
		return t == other
	}
	var equal func(a, b nodeIndex) bool
	equal = func(a, b nodeIndex) bool {
		na, nb := t.nodes[a], other.nodes[b]
		if na.isLeaf() || nb.isLeaf() {
			return na.isLeaf() && nb.isLeaf() && na.unit == nb.unit
		}
		return equal(na.left, nb.left) && equal(na.right, nb.right)
	}
	return equal(t.root, other.root)
}

// walk visits every leaf with the path that leads to it from the root.  The
// root leaf of a one-unit tree is visited with the empty path.
func (t *Tree) walk(fn func(nodeIndex, Code)) {
	// We use stackItem.x to keep track of where we are in the tree walk:
	//   x=0 → We just arrived at stackItem for the first time
	//   x=1 → We have already processed the left child
	//   x=2 → We have already processed both children

	type stackItem struct {
		index nodeIndex
		path  Code
		x     byte
	}

	if t.nodes[t.root].isLeaf() {
		fn(t.root, Code{})
		return
	}

	stack := make([]stackItem, 0, log2uint32(uint32(len(t.nodes))))
	stack = append(stack, stackItem{index: t.root})

	processChild := func(child nodeIndex, path Code) {
		if t.nodes[child].isLeaf() {
			fn(child, path)
			return
		}
		stack = append(stack, stackItem{index: child, path: path})
	}

	for len(stack) != 0 {
		top := &stack[len(stack)-1]
		x := top.x
		top.x++
		switch x {
		case 0:
			processChild(t.nodes[top.index].left, top.path.Append(0))
		case 1:
			processChild(t.nodes[top.index].right, top.path.Append(1))
		case 2:
			stack = stack[:len(stack)-1]
		}
	}
}

// Dump writes a programmer-readable debugging dump of the Tree to the given
// writer.
func (t *Tree) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("Tree{\n")
	if t != nil {
		fmt.Fprintf(&buf, "\tRoot() = %d\n", t.root)
		for index, n := range t.nodes {
			if n.isLeaf() {
				fmt.Fprintf(&buf, "\tNode(%d) = leaf %q weight %d\n", index, string(n.unit), n.weight)
			} else {
				fmt.Fprintf(&buf, "\tNode(%d) = {%d, %d} weight %d\n", index, n.left, n.right, n.weight)
			}
		}
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}
