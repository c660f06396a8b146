package texthuff

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// Compress encodes text into a self-describing container at the given level.
// Empty text yields an empty container with no header.
func Compress(text []byte, level Level) ([]byte, error) {
	if len(text) == 0 {
		return []byte{}, nil
	}
	if !utf8.Valid(text) {
		return nil, ErrInvalidText
	}

	runes := []rune(string(text))
	ft := NewFrequencyTable(runes, level)
	tree := BuildTree(ft)
	codes := NewCodeTable(tree)

	payload, padding, err := pack(ft.Tokens(runes), codes)
	if err != nil {
		return nil, err
	}

	h := Header{Padding: padding, Tree: tree, Level: level}
	return appendContainer(make([]byte, 0, headerLengthSize+len(payload)+8*tree.NumLeaves()), h, payload)
}

// Decompress decodes a container produced by Compress.  An empty container
// decodes to empty text.  A truncated or corrupt container yields an error
// wrapping ErrMalformedContainer.
func Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	h, payload, err := splitContainer(data)
	if err != nil {
		return nil, err
	}
	return h.Tree.unpack(payload, h.Padding)
}

// ReadHeader parses only the header of a container.  It returns false if data
// is empty, as empty containers have no header.
func ReadHeader(data []byte) (Header, bool, error) {
	if len(data) == 0 {
		return Header{}, false, nil
	}
	h, _, err := splitContainer(data)
	if err != nil {
		return Header{}, false, err
	}
	return h, true, nil
}

// CompressFile reads the text at inputPath and writes its container to
// outputPath.
func CompressFile(inputPath, outputPath string, level Level) error {
	text, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	data, err := Compress(text, level)
	if err != nil {
		return fmt.Errorf("compress %s: %w", inputPath, err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// DecompressFile reads the container at inputPath and writes the decoded text
// to outputPath.
func DecompressFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	text, err := Decompress(data)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", inputPath, err)
	}
	return os.WriteFile(outputPath, text, 0o644)
}
