package simdtape

import "bytes"

// Literal-atom validation, invoked from Stage 2 (spec.md section 4.G)
// whenever the dispatch byte is 't', 'f', or 'n'. Grounded on the
// teacher's is_valid_true_atom/is_valid_false_atom/is_valid_null_atom
// (stage2_build_tape_amd64.go), minus the raw little-endian word
// compare trick (no portable benefit without real SIMD loads) but
// keeping the same "what can legally follow the atom" rule.

var trueBytes = []byte("true")
var falseBytes = []byte("false")
var nullBytes = []byte("null")

// isValidFollowByte reports whether b may legally follow a true/false/
// null/number atom: whitespace, a structural byte, or nothing else.
func isValidFollowByte(b byte) bool {
	return classifyByte(b) != 0
}

func isValidTrueAtom(buf []byte) bool {
	if len(buf) < 5 {
		return false
	}
	return bytes.Equal(buf[:4], trueBytes) && isValidFollowByte(buf[4])
}

func isValidFalseAtom(buf []byte) bool {
	if len(buf) < 6 {
		return false
	}
	return bytes.Equal(buf[:5], falseBytes) && isValidFollowByte(buf[5])
}

func isValidNullAtom(buf []byte) bool {
	if len(buf) < 5 {
		return false
	}
	return bytes.Equal(buf[:4], nullBytes) && isValidFollowByte(buf[4])
}
