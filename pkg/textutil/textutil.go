// Package textutil provides byte-level text utilities: binary detection,
// line and word counting, and decoding with legacy-encoding fallback.
package textutil

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// Encoding names reported by Decode.
const (
	EncodingUTF8    = "utf-8"
	EncodingLatin1  = "latin-1"
	EncodingCP1252  = "cp1252"
	EncodingLossy   = "utf-8-lossy"
	replacementRune = "�"
)

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// CountLines returns the number of newline-delimited lines in data.
// A non-empty buffer without a trailing newline counts the last partial line.
// Returns 0 for empty data.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	lines := bytes.Count(data, []byte{'\n'})

	if data[len(data)-1] != '\n' {
		lines++
	}

	return lines
}

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// CountChars returns the number of runes in s.
func CountChars(s string) int {
	return utf8.RuneCountInString(s)
}

type fallback struct {
	name string
	enc  encoding.Encoding
}

// decodeOrder lists the single-byte encodings tried after UTF-8.
var decodeOrder = []fallback{
	{EncodingLatin1, charmap.ISO8859_1},
	{EncodingCP1252, charmap.Windows1252},
}

// Decode converts data to a string, trying UTF-8, then latin-1, then cp1252,
// and finally a lossy UTF-8 conversion. It reports the encoding that succeeded.
func Decode(data []byte) (string, string) {
	if utf8.Valid(data) {
		return string(data), EncodingUTF8
	}

	for _, fb := range decodeOrder {
		out, err := fb.enc.NewDecoder().Bytes(data)
		if err == nil && utf8.Valid(out) {
			return string(out), fb.name
		}
	}

	return strings.ToValidUTF8(string(data), replacementRune), EncodingLossy
}
