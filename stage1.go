package simdtape

// Stage 1 (spec.md section 2, component row G's input): walks the
// document in 64-byte chunks, running components B-F over each one and
// accumulating the sticky Stage-1 error state (component C's UTF-8
// validator, plus the control-byte-in-string check from component D).
//
// Unlike the teacher (stage1_find_marks_amd64.go), there is no
// goroutine/channel handoff to Stage 2 here: spec.md section 5 is
// explicit that a parse is "strictly single-threaded and synchronous"
// within one document, so Stage 1 simply appends to the shared index
// array Stage 2 will walk once Stage 1 completes.
const paddingSpaces64 = "                                                                "

type stage1State struct {
	quote    quoteCarry
	final    finalizeCarry
	utf8     utf8Validator
	errMask  uint64
	hadQuote bool // whether we are inside a string at end-of-input
}

func newStage1State() *stage1State {
	return &stage1State{final: newFinalizeCarry()}
}

// runStage1 scans buf and appends structural byte offsets to dst,
// returning the extended slice. It reports a sticky error via
// s.errMask/s.utf8, checked by the caller after the whole document has
// been scanned (spec.md section 7: "Stage 1 uses a sticky accumulator
// ... and reports at the end of the pass").
func runStage1(buf []byte, dst []uint32, s *stage1State) []uint32 {
	n := len(buf)
	var idx int
	for ; idx+64 <= n; idx += 64 {
		dst = stage1Chunk(buf[idx:idx+64], uint32(idx), dst, s)
	}
	if idx < n {
		var tmp [64]byte
		remain := n - idx
		copy(tmp[:], buf[idx:])
		copy(tmp[remain:], paddingSpaces64[:64-remain])
		dst = stage1Chunk(tmp[:], uint32(idx), dst, s)
	}
	s.utf8.finalize()
	// Sentinel: a virtual end-of-document structural position (spec.md
	// section 3, "a virtual end-of-document sentinel equal to L").
	dst = append(dst, uint32(n))
	return dst
}

func stage1Chunk(chunk []byte, base uint32, dst []uint32, s *stage1State) []uint32 {
	s.utf8.processChunk(chunk)

	m := scanChunk(chunk)
	quoteBits, quoteRegionMask := resolveQuotes(m, &s.quote, &s.errMask)
	structural := finalizeStructurals(m, quoteBits, quoteRegionMask, &s.final)

	s.hadQuote = s.quote.insideQuote != 0

	return flattenMask(dst, base, structural)
}

func (s *stage1State) failed() bool {
	return s.errMask != 0 || s.utf8.failed()
}
