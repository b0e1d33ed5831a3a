package simdtape

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"
)

// Component H (spec.md section 4.H): string decoder.
//
// Grounded on the teacher's parse_string/parse_string_simd family
// (parse_string_amd64.go, parse_string_validate_only_amd64.go): scan to
// the closing quote, tracking whether an escape was seen along the way.
// Every decoded string is written as one length-prefixed, zero-
// terminated record in the shared string buffer (spec.md section 3,
// "String buffer"; the tape's `"` tag always points at this record's
// length prefix, per section 3's tape-layout table). The no-escape case
// still takes a cheaper path than the escape one -- a straight byte
// copy instead of the escape dispatch table -- but both write into the
// same buffer; there is no variant that references the source buffer
// directly, since the tape format doesn't distinguish the two.

// decodeString handles the string starting at buf[idx] == '"'. docLen
// is unused beyond being passed through call sites uniformly with
// decodeNumber; the closing quote is found by scanning buf itself, and
// reaching the end of buf first yields StatusUnclosedString.
func decodeString(buf []byte, b *tapeBuilder, idx uint32, docLen int) error {
	start := int(idx) + 1
	i := start
	hasEscape := false

	for {
		if i >= len(buf) {
			return errAt(StatusUnclosedString, int(idx))
		}
		c := buf[i]
		if c == '"' {
			break
		}
		if c == '\\' {
			hasEscape = true
			i += 2
			continue
		}
		if c < 0x20 {
			return errAt(StatusUnescapedControl, i)
		}
		i++
	}
	end := i

	// Record layout (spec.md section 3): 4-byte little-endian length,
	// then the decoded bytes, then a zero terminator.
	recordStart := len(b.strings)
	b.strings = append(b.strings, 0, 0, 0, 0)

	if hasEscape {
		if err := appendDecodedString(buf, start, end, b); err != nil {
			return err
		}
	} else {
		b.strings = append(b.strings, buf[start:end]...)
	}

	length := len(b.strings) - recordStart - 4
	binary.LittleEndian.PutUint32(b.strings[recordStart:], uint32(length))
	b.strings = append(b.strings, 0)

	b.writeTape(TagString, uint64(recordStart))
	return nil
}

// appendDecodedString copies buf[start:end] (the string body, excluding
// quotes) into b.strings, resolving escape sequences as it goes.
func appendDecodedString(buf []byte, start, end int, b *tapeBuilder) error {
	i := start
	for i < end {
		c := buf[i]
		if c != '\\' {
			b.strings = append(b.strings, c)
			i++
			continue
		}
		i++
		if i >= end {
			return errAt(StatusUnclosedString, i)
		}
		switch buf[i] {
		case '"':
			b.strings = append(b.strings, '"')
			i++
		case '\\':
			b.strings = append(b.strings, '\\')
			i++
		case '/':
			b.strings = append(b.strings, '/')
			i++
		case 'b':
			b.strings = append(b.strings, '\b')
			i++
		case 'f':
			b.strings = append(b.strings, '\f')
			i++
		case 'n':
			b.strings = append(b.strings, '\n')
			i++
		case 'r':
			b.strings = append(b.strings, '\r')
			i++
		case 't':
			b.strings = append(b.strings, '\t')
			i++
		case 'u':
			ni, err := appendUnicodeEscape(buf, i+1, end, b)
			if err != nil {
				return err
			}
			i = ni
		default:
			// No dedicated "bad escape" status exists; this collapses
			// into the same malformed-string status as an unterminated
			// string, same as an invalid \u escape below.
			return errAt(StatusUnclosedString, i)
		}
	}
	return nil
}

// appendUnicodeEscape decodes a \uXXXX (and, for surrogate pairs,
// \uXXXX\uXXXX) escape starting at position i (just past "\u"),
// appending the resulting rune(s) to b.strings. Returns the position
// just past the consumed escape.
func appendUnicodeEscape(buf []byte, i, end int, b *tapeBuilder) (int, error) {
	r1, i, err := parseHex4(buf, i, end)
	if err != nil {
		return i, err
	}

	if !utf16.IsSurrogate(rune(r1)) {
		b.strings = utf8.AppendRune(b.strings, rune(r1))
		return i, nil
	}

	if i+6 > end || buf[i] != '\\' || buf[i+1] != 'u' {
		return i, errAt(StatusInvalidUTF8, i)
	}
	r2, i, err := parseHex4(buf, i+2, end)
	if err != nil {
		return i, err
	}
	combined := utf16.DecodeRune(rune(r1), rune(r2))
	if combined == utf8.RuneError {
		return i, errAt(StatusInvalidUTF8, i)
	}
	b.strings = utf8.AppendRune(b.strings, combined)
	return i, nil
}

// parseHex4 parses exactly 4 hex digits starting at buf[i], which must
// lie entirely before end (the closing quote's position).
func parseHex4(buf []byte, i, end int) (uint16, int, error) {
	if i+4 > end {
		return 0, i, errAt(StatusUnclosedString, i)
	}
	var v uint16
	for k := 0; k < 4; k++ {
		c := buf[i+k]
		var d uint16
		switch {
		case c >= '0' && c <= '9':
			d = uint16(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint16(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint16(c-'A') + 10
		default:
			return 0, i + k, errAt(StatusUnclosedString, i+k)
		}
		v = v<<4 | d
	}
	return v, i + 4, nil
}
