package texthuff

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// headerLengthSize is the size of the big-endian length that precedes the
// serialized Header in a container.
const headerLengthSize = 4

// Tags of the pre-order tree serialization.
const (
	tagInternal byte = 0x00
	tagLeaf     byte = 0x01
)

// maxUnitBytes is the largest UTF-8 encoding of a Unit.
const maxUnitBytes = MaxUnitRunes * 4

// Header is everything the decoder needs besides the payload itself.
//
// The serialized form is:
//
//	padding   1 byte, 0 .. 7
//	level     signed varint
//	tree      pre-order; 0x00 introduces an internal node followed by its
//	          left and right subtrees, 0x01 introduces a leaf followed by
//	          the uvarint length and the UTF-8 bytes of its unit
type Header struct {
	Padding uint8
	Tree    *Tree
	Level   Level
}

// MarshalBinary returns the serialized form of this Header.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(nil)
}

// AppendBinary appends the serialized form of this Header to b.
func (h Header) AppendBinary(b []byte) ([]byte, error) {
	if h.Padding > 7 {
		return b, fmt.Errorf("texthuff: padding %d is out of range 0 .. 7", h.Padding)
	}
	if h.Tree == nil || len(h.Tree.nodes) == 0 {
		return b, fmt.Errorf("texthuff: header has no tree")
	}

	b = append(b, h.Padding)
	b = binary.AppendVarint(b, int64(h.Level))

	var appendNode func(b []byte, index nodeIndex) []byte
	appendNode = func(b []byte, index nodeIndex) []byte {
		n := h.Tree.nodes[index]
		if n.isLeaf() {
			b = append(b, tagLeaf)
			b = binary.AppendUvarint(b, uint64(len(n.unit)))
			return append(b, n.unit...)
		}
		b = append(b, tagInternal)
		b = appendNode(b, n.left)
		return appendNode(b, n.right)
	}
	return appendNode(b, h.Tree.root), nil
}

// UnmarshalBinary replaces this Header with the one serialized in data.  All
// of data must be consumed.
func (h *Header) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	padding, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: header: missing padding", ErrMalformedContainer)
	}
	if padding > 7 {
		return fmt.Errorf("%w: header: padding %d is out of range 0 .. 7", ErrMalformedContainer, padding)
	}

	level, err := binary.ReadVarint(r)
	if err != nil {
		return fmt.Errorf("%w: header: level: %v", ErrMalformedContainer, err)
	}

	p := treeParser{r: r, t: &Tree{}, seen: make(map[Unit]struct{})}
	root, err := p.parse(0)
	if err != nil {
		return err
	}
	p.t.root = root

	if r.Len() != 0 {
		return fmt.Errorf("%w: header: %d trailing bytes", ErrMalformedContainer, r.Len())
	}

	*h = Header{Padding: padding, Tree: p.t, Level: Level(level)}
	return nil
}

var (
	_ encoding.BinaryMarshaler   = Header{}
	_ encoding.BinaryUnmarshaler = (*Header)(nil)
)

type treeParser struct {
	r    *bytes.Reader
	t    *Tree
	seen map[Unit]struct{}
}

func (p *treeParser) parse(depth int) (nodeIndex, error) {
	if depth > maxBitsPerCode {
		return noNode, fmt.Errorf("%w: header: tree is deeper than %d levels", ErrMalformedContainer, maxBitsPerCode)
	}

	tag, err := p.r.ReadByte()
	if err != nil {
		return noNode, fmt.Errorf("%w: header: tree is truncated", ErrMalformedContainer)
	}

	switch tag {
	case tagInternal:
		left, err := p.parse(depth + 1)
		if err != nil {
			return noNode, err
		}
		right, err := p.parse(depth + 1)
		if err != nil {
			return noNode, err
		}
		return p.t.push(node{left: left, right: right}), nil

	case tagLeaf:
		size, err := binary.ReadUvarint(p.r)
		if err != nil {
			return noNode, fmt.Errorf("%w: header: leaf length: %v", ErrMalformedContainer, err)
		}
		if size == 0 || size > maxUnitBytes {
			return noNode, fmt.Errorf("%w: header: leaf length %d is out of range 1 .. %d", ErrMalformedContainer, size, maxUnitBytes)
		}
		raw := make([]byte, size)
		if _, err := io.ReadFull(p.r, raw); err != nil {
			return noNode, fmt.Errorf("%w: header: leaf is truncated", ErrMalformedContainer)
		}
		unit := Unit(raw)
		if !unit.Valid() {
			return noNode, fmt.Errorf("%w: header: invalid leaf unit %q", ErrMalformedContainer, raw)
		}
		if _, dup := p.seen[unit]; dup {
			return noNode, fmt.Errorf("%w: header: unit %q appears on more than one leaf", ErrMalformedContainer, raw)
		}
		p.seen[unit] = struct{}{}
		return p.t.push(node{unit: unit, left: noNode, right: noNode}), nil

	default:
		return noNode, fmt.Errorf("%w: header: unknown tree tag 0x%02x", ErrMalformedContainer, tag)
	}
}

// appendContainer appends header_length ‖ header ‖ payload to dst.
func appendContainer(dst []byte, h Header, payload []byte) ([]byte, error) {
	start := len(dst)
	dst = append(dst, 0, 0, 0, 0)
	dst, err := h.AppendBinary(dst)
	if err != nil {
		return nil, err
	}

	headerLen := len(dst) - start - headerLengthSize
	if uint64(headerLen) > math.MaxUint32 {
		return nil, fmt.Errorf("texthuff: header of %d bytes does not fit the length field", headerLen)
	}
	binary.BigEndian.PutUint32(dst[start:], uint32(headerLen))
	return append(dst, payload...), nil
}

// splitContainer parses the header of data and returns it along with the
// payload that follows it.
func splitContainer(data []byte) (Header, []byte, error) {
	var h Header
	if len(data) < headerLengthSize {
		return h, nil, fmt.Errorf("%w: %d bytes is too short for the header length", ErrMalformedContainer, len(data))
	}

	headerLen := uint64(binary.BigEndian.Uint32(data))
	rest := data[headerLengthSize:]
	if headerLen > uint64(len(rest)) {
		return h, nil, fmt.Errorf("%w: header length %d exceeds the %d remaining bytes", ErrMalformedContainer, headerLen, len(rest))
	}

	if err := h.UnmarshalBinary(rest[:headerLen]); err != nil {
		return h, nil, err
	}
	return h, rest[headerLen:], nil
}
