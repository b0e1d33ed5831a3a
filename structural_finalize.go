package simdtape

// Component E (spec.md section 4.E): structural-bit finalizer.
//
// pseudoPredCarry is the one-bit carry across chunks: whether the last
// byte of the previous chunk was structural or whitespace (and
// therefore whether byte 0 of this chunk could start a pseudo-structural
// atom). It is seeded to 1, since the very first byte of the document
// is treated as if preceded by whitespace.
type finalizeCarry struct {
	pseudoPred uint64 // 0 or 1
}

func newFinalizeCarry() finalizeCarry {
	return finalizeCarry{pseudoPred: 1}
}

// finalizeStructurals combines the whitespace, structural, and
// inside-string masks into the final mask of byte positions Stage 2
// must visit.
func finalizeStructurals(m chunkMasks, quoteBits, quoteRegionMask uint64, carry *finalizeCarry) uint64 {
	// Step 1-2: strip structural-byte lookalikes that live inside
	// strings, then add back every unescaped quote (string starts are
	// always structural positions).
	structural := (m.structural &^ quoteRegionMask) | quoteBits

	// Step 3: bytes whose predecessor was structural or whitespace.
	pseudoPred := structural | m.whitespace
	shifted := (pseudoPred << 1) | carry.pseudoPred
	carry.pseudoPred = pseudoPred >> 63

	// Step 4: first bytes of scalar atoms not already structural.
	pseudoStructurals := shifted &^ m.whitespace &^ quoteRegionMask

	// Step 5. Closing quotes (quote bits outside the region mask) were
	// only needed for the pseudo-structural computation; they are dropped
	// so that only the opening quote of each string is indexed.
	return (structural | pseudoStructurals) &^ (quoteBits &^ quoteRegionMask)
}
