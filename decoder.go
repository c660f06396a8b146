package texthuff

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// decoderState tracks where the cursor of the tree walk is.
type decoderState byte

const (
	// atRoot means the cursor is at the root: every unit seen so far
	// has been emitted in full.
	atRoot decoderState = iota

	// traversing means the cursor is partway down to a leaf.
	traversing
)

// unpack walks t once per bit of payload, minus the final padding bits, and
// returns the concatenation of the units at every leaf reached.
func (t *Tree) unpack(payload []byte, padding uint8) ([]byte, error) {
	if padding > 7 {
		return nil, fmt.Errorf("%w: padding %d is out of range 0 .. 7", ErrMalformedContainer, padding)
	}

	totalBits := uint64(len(payload)) * 8
	if uint64(padding) > totalBits {
		return nil, fmt.Errorf("%w: padding %d exceeds %d payload bits", ErrMalformedContainer, padding, totalBits)
	}
	numBits := totalBits - uint64(padding)

	r := bitio.NewReader(bytes.NewReader(payload))
	out := make([]byte, 0, len(payload)*2)

	rootIsLeaf := t.nodes[t.root].isLeaf()
	cursor := t.root
	state := atRoot
	for i := uint64(0); i < numBits; i++ {
		bit, err := r.ReadBool()
		if err != nil {
			return nil, fmt.Errorf("%w: bit %d: %v", ErrMalformedContainer, i, err)
		}

		if rootIsLeaf {
			if bit {
				return nil, fmt.Errorf("%w: bit %d is 1 but the only code is \"0\"", ErrMalformedContainer, i)
			}
			out = append(out, t.nodes[t.root].unit...)
			continue
		}

		n := t.nodes[cursor]
		if bit {
			cursor = n.right
		} else {
			cursor = n.left
		}
		state = traversing

		if leaf := t.nodes[cursor]; leaf.isLeaf() {
			out = append(out, leaf.unit...)
			cursor = t.root
			state = atRoot
		}
	}

	if state != atRoot {
		return nil, fmt.Errorf("%w: payload ends in the middle of a code", ErrMalformedContainer)
	}
	return out, nil
}
