package texthuff

import (
	"errors"
	mathbits "math/bits"
)

var (
	// ErrMalformedContainer is returned by Decompress when the container is
	// truncated or otherwise does not describe a valid encoding.
	ErrMalformedContainer = errors.New("texthuff: malformed container")

	// ErrEncodingInvariant is returned by Compress when the tokenizer emits
	// a unit that the code table does not know about.
	ErrEncodingInvariant = errors.New("texthuff: encoding invariant violation")

	// ErrInvalidText is returned by Compress when the input is not valid
	// UTF-8.
	ErrInvalidText = errors.New("texthuff: input is not valid UTF-8 text")

	// ErrInvalidLevel is returned by ParseLevel.
	ErrInvalidLevel = errors.New("texthuff: invalid compression level")
)

func log2uint32(x uint32) uint32 {
	if x == 0 {
		x = 1
	}
	return uint32(32 - mathbits.LeadingZeros32(x))
}

func paddingFor(numBits uint64) uint8 {
	return uint8((8 - numBits%8) % 8)
}
