package simdtape

// Component C (spec.md section 4.C): UTF-8 validator.
//
// This is an incremental byte-wise state machine rather than the
// bit-parallel version simdjson's AVX2 kernel uses -- it is the
// portable fallback instantiation, and it implements the exact
// acceptance rules spec.md lists: rejects bytes > 0xF4, 0xC0, 0xC1,
// 0xF5-0xFF, overlong encodings, surrogates, and truncated sequences.
// It accumulates a sticky error flag and never aborts mid-document, as
// spec.md section 4.C requires ("never aborts mid-document").
type utf8Validator struct {
	// needed is how many continuation bytes remain for the sequence
	// currently being assembled (0 if between sequences).
	needed int
	// codepoint accumulates the bits decoded so far.
	codepoint rune
	// minCP is the smallest codepoint that would make the in-progress
	// sequence non-overlong, fixed when the lead byte is seen.
	minCP rune

	sticky bool // true once any violation has been observed
}

func (v *utf8Validator) fail() {
	v.sticky = true
	v.needed = 0
}

// processChunk scans a (possibly short, final) chunk of input,
// continuing any sequence left in progress from a previous chunk. The
// "fast path" spec.md describes -- skipping full validation when no
// byte has the high bit set -- is folded into the per-byte loop since
// ASCII bytes never touch continuation-sequence state.
func (v *utf8Validator) processChunk(buf []byte) {
	for _, b := range buf {
		switch {
		case v.needed > 0:
			if b&0xc0 != 0x80 {
				// Expected a continuation byte and didn't get one:
				// the previous sequence was truncated.
				v.fail()
				// Re-examine b as a fresh lead byte rather than
				// swallowing it, so a single bad byte doesn't cascade
				// into spurious follow-on errors.
				v.startSequence(b)
				continue
			}
			v.codepoint = v.codepoint<<6 | rune(b&0x3f)
			v.needed--
			if v.needed == 0 {
				if v.codepoint < v.minCP {
					v.fail()
				} else if v.codepoint >= 0xd800 && v.codepoint <= 0xdfff {
					v.fail()
				} else if v.codepoint > 0x10ffff {
					v.fail()
				}
			}
		default:
			v.startSequence(b)
		}
	}
}

// startSequence begins decoding a new lead byte, possibly a plain
// ASCII byte (needed stays 0).
func (v *utf8Validator) startSequence(b byte) {
	switch {
	case b < 0x80:
		// ASCII, nothing to accumulate.
	case b&0xe0 == 0xc0:
		if b == 0xc0 || b == 0xc1 {
			v.fail()
			return
		}
		v.codepoint = rune(b & 0x1f)
		v.needed = 1
		v.minCP = 0x80
	case b&0xf0 == 0xe0:
		v.codepoint = rune(b & 0x0f)
		v.needed = 2
		v.minCP = 0x800
	case b&0xf8 == 0xf0:
		if b > 0xf4 {
			v.fail()
			return
		}
		v.codepoint = rune(b & 0x07)
		v.needed = 3
		v.minCP = 0x10000
	default:
		// Continuation byte (0x80-0xBF) outside a sequence, or 0xF8-0xFF
		// (0xF5-0xF7 are rejected by the 4-byte case above).
		v.fail()
	}
}

// finalize must be called once at end-of-input; a nonzero continuation
// counter means the document ended mid-sequence (truncated).
func (v *utf8Validator) finalize() {
	if v.needed != 0 {
		v.fail()
	}
}

func (v *utf8Validator) failed() bool { return v.sticky }
