// Package texthuff implements a Huffman codec for UTF-8 text whose symbols
// may be single characters, bigrams or trigrams.
//
// Compress counts the units of the text at the granularity chosen by the
// level (Fast: characters; Balanced: plus frequent bigrams; Max: plus frequent
// trigrams), re-tokenizes the text greedily against those counts, builds a
// Huffman tree over the units, and packs the resulting codes MSB-first into
// bytes.  The output is a self-describing container:
//
//	[0..4)    header length L, unsigned 32-bit big-endian
//	[4..4+L)  header: padding, level, pre-order tree
//	[4+L..)   payload
//
// Decompress needs nothing but the container.
//
// References:
//
//	<https://en.wikipedia.org/wiki/Huffman_coding>
package texthuff
