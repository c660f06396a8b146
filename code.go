package texthuff

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/chronos-tachyon/assert"
)

// maxBitsPerCode is the longest code a Tree may assign.  Reaching a depth of
// d takes a total weight of at least Fib(d+2), so 64 bits is far beyond any
// text that fits in memory.
const maxBitsPerCode = 64

// Code represents a sequence of bits.
type Code struct {
	// Size holds the number of valid bits.
	Size byte

	// Bits holds the actual values of the bits.  The most significant of
	// the Size low-order bits of Bits is the first bit.
	Bits uint64
}

// MakeCode is a convenience function that constructs a Code.
func MakeCode(size byte, bits uint64) Code {
	return Code{Size: size, Bits: bits}
}

// Append returns this Code with one more bit at the end.
func (hc Code) Append(bit uint64) Code {
	assert.Assertf(hc.Size < maxBitsPerCode, "code %s cannot grow past %d bits", hc, maxBitsPerCode)
	return MakeCode(hc.Size+1, (hc.Bits<<1)|(bit&1))
}

// HasPrefix reports whether prefix is a prefix of this Code.
func (hc Code) HasPrefix(prefix Code) bool {
	if prefix.Size > hc.Size {
		return false
	}
	return hc.Bits>>(hc.Size-prefix.Size) == prefix.Bits
}

// String returns the string representation of this Code.
func (hc Code) String() string {
	if hc.Size == 0 {
		return "\"\""
	}
	format := "%0" + strconv.FormatUint(uint64(hc.Size), 10) + "b"
	return strconv.Quote(fmt.Sprintf(format, hc.Bits))
}

var _ fmt.Stringer = Code{}

// CodeTable maps every unit of a Tree to its prefix code.
type CodeTable map[Unit]Code

// NewCodeTable assigns each leaf of t the path from the root to it, with 0
// for a left edge and 1 for a right edge.  If the root is itself a leaf, its
// unit gets the code "0".
func NewCodeTable(t *Tree) CodeTable {
	if t == nil {
		return CodeTable{}
	}
	codes := make(CodeTable, t.NumLeaves())
	t.walk(func(index nodeIndex, path Code) {
		if path.Size == 0 {
			path = MakeCode(1, 0)
		}
		unit := t.nodes[index].unit
		_, dup := codes[unit]
		assert.Assertf(!dup, "unit %q appears on more than one leaf", string(unit))
		codes[unit] = path
	})
	return codes
}

// PrefixFree reports whether no code in the table is a prefix of another.
func (ct CodeTable) PrefixFree() bool {
	list := make(byCode, 0, len(ct))
	for _, hc := range ct {
		list = append(list, hc)
	}
	list.SortLexically()
	for i := 1; i < len(list); i++ {
		if list[i].HasPrefix(list[i-1]) {
			return false
		}
	}
	return true
}

// Dump writes a programmer-readable debugging dump of the CodeTable to the
// given writer, in code order.
func (ct CodeTable) Dump(w io.Writer) (int64, error) {
	keys := make([]Unit, 0, len(ct))
	for u := range ct {
		keys = append(keys, u)
	}
	sort.Slice(keys, func(i, j int) bool {
		return codeLess(ct[keys[i]], ct[keys[j]])
	})

	var buf bytes.Buffer
	buf.WriteString("CodeTable{\n")
	for _, u := range keys {
		fmt.Fprintf(&buf, "\tEncode(%q) = %s\n", string(u), ct[u])
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

// type byCode {{{

type byCode []Code

// SortLexically orders the codes as bit strings, so that every code is
// immediately followed by the codes it is a prefix of.
func (list byCode) SortLexically() {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		n := min(a.Size, b.Size)
		ap, bp := a.Bits>>(a.Size-n), b.Bits>>(b.Size-n)
		if ap != bp {
			return ap < bp
		}
		return a.Size < b.Size
	})
}

// codeLess orders codes by size, then by value.
func codeLess(a, b Code) bool {
	as, ab := a.Size, a.Bits
	bs, bb := b.Size, b.Bits
	if as != bs {
		return as < bs
	}
	return ab < bb
}

// }}}
