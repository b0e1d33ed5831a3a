package simdtape

// Component B (spec.md section 4.B): bit-parallel scanners.
//
// For each 64-byte chunk, reduce several byte categories to 64-bit
// masks. structural_byte_mask and whitespace_mask are computed together
// with a two-level nibble lookup (low-nibble table AND high-nibble
// table), the "performance backbone of Stage 1" spec.md calls for.
//
// The bit assignment below was chosen so that, for every byte 0-255,
// (low[low_nibble] & high[high_nibble]) reproduces the true category
// membership exactly -- there are no nibble-collision false positives.
// The six structural bytes split into three axis-aligned rectangles in
// (low nibble, high nibble) space:
//
//	R1 = {low in {0xb,0xd}, high in {0x5,0x7}} -> [ ] { }
//	R2 = {low = 0xc, high = 0x2}                -> ,
//	R3 = {low = 0xa, high = 0x3}                -> :
//
// and the four whitespace bytes split into two:
//
//	W1 = {low in {0x9,0xa,0xd}, high = 0x0} -> tab, LF, CR
//	W2 = {low = 0x0, high = 0x2}             -> space
const (
	bitR1 = 1 << iota
	bitR2
	bitR3
	bitW1
	bitW2

	structuralBits = bitR1 | bitR2 | bitR3
	whitespaceBits = bitW1 | bitW2
)

var classifyLowNibble = [16]byte{
	0x0: bitW2,
	0x9: bitW1,
	0xa: bitR3 | bitW1,
	0xb: bitR1,
	0xc: bitR2,
	0xd: bitR1 | bitW1,
}

var classifyHighNibble = [16]byte{
	0x0: bitW1,
	0x2: bitR2 | bitW2,
	0x3: bitR3,
	0x5: bitR1,
	0x7: bitR1,
}

// classifyByte returns the combined category bits for a single byte;
// used by the scalar paths (the atom and number follow-byte checks in
// Stage 2) that don't go through the chunked scanner.
func classifyByte(b byte) byte {
	return classifyLowNibble[b&0x0f] & classifyHighNibble[b>>4]
}

func isStructuralByte(b byte) bool { return classifyByte(b)&structuralBits != 0 }
func isWhitespaceByte(b byte) bool { return classifyByte(b)&whitespaceBits != 0 }

// chunkMasks holds the five masks a chunk scan produces.
type chunkMasks struct {
	backslash  mask64 // bit i set iff byte i == '\'
	quoteRaw   mask64 // bit i set iff byte i == '"'
	structural mask64 // bit i set iff byte i in { } [ ] : ,
	whitespace mask64 // bit i set iff byte i is space/tab/LF/CR
	control    mask64 // bit i set iff byte i in [0x00, 0x1F]
}

// scanChunk computes the five category masks for one 64-byte chunk.
func scanChunk(buf []byte) chunkMasks {
	c := loadChunk64(buf)

	classified := chunkLookup(c, classifyLowNibble, classifyHighNibble)
	var structural, whitespace mask64
	for i, b := range classified {
		if b&structuralBits != 0 {
			structural |= 1 << uint(i)
		}
		if b&whitespaceBits != 0 {
			whitespace |= 1 << uint(i)
		}
	}

	return chunkMasks{
		backslash:  chunkEqualMask(c, '\\'),
		quoteRaw:   chunkEqualMask(c, '"'),
		structural: structural,
		whitespace: whitespace,
		control:    chunkLessEqMask(c, 0x1f),
	}
}
