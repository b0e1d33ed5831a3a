package simdtape

import "testing"

func TestFindEscaped(t *testing.T) {
	// A quote preceded by an even number of backslashes is unescaped;
	// preceded by an odd number, it's escaped. Bit 0 is byte 0.
	cases := []struct {
		name      string
		backslash uint64
		wantEsc   uint64
	}{
		{"none", 0, 0},
		{"single backslash (bit0) escapes bit1", 0b1, 0b10},
		{"double backslash (bits0,1): only bit1 escaped", 0b11, 0b10},
		{"triple backslash (bits0-2): bits1,3 escaped", 0b111, 0b1010},
	}
	for _, c := range cases {
		carry := quoteCarry{}
		got := findEscaped(c.backslash, &carry)
		if got != c.wantEsc {
			t.Errorf("%s: findEscaped(%b) = %b, want %b", c.name, c.backslash, got, c.wantEsc)
		}
	}
}

func TestPrefixXor(t *testing.T) {
	// Two set bits mark a region: everything strictly between toggles on.
	got := prefixXor(0b10001)
	want := uint64(0b01110)
	if got != want {
		t.Errorf("prefixXor(0b10001) = %b, want %b", got, want)
	}
}

func TestResolveQuotesSimple(t *testing.T) {
	// chunk: "ab"cd  -> quotes at byte 0 and 3.
	var chunk [64]byte
	copy(chunk[:], `"ab"cd`)
	for i := 6; i < 64; i++ {
		chunk[i] = ' '
	}
	m := scanChunk(chunk[:])
	var carry quoteCarry
	var errMask uint64
	quoteBits, region := resolveQuotes(m, &carry, &errMask)
	if quoteBits != (1<<0 | 1<<3) {
		t.Errorf("quoteBits = %b, want bits 0 and 3 set", quoteBits)
	}
	if region&(1<<1) == 0 || region&(1<<2) == 0 {
		t.Errorf("region = %b, want bits 1 and 2 (the string content) set", region)
	}
	if errMask != 0 {
		t.Errorf("unexpected errMask %b", errMask)
	}
}

func TestResolveQuotesEscapedQuote(t *testing.T) {
	// chunk: "a\"b" -- the middle quote is escaped and must not close the string.
	var chunk [64]byte
	copy(chunk[:], `"a\"b"`)
	for i := 6; i < 64; i++ {
		chunk[i] = ' '
	}
	m := scanChunk(chunk[:])
	var carry quoteCarry
	var errMask uint64
	quoteBits, _ := resolveQuotes(m, &carry, &errMask)
	// Only byte 0 (open) and byte 5 (close) are unescaped quotes.
	if quoteBits != (1<<0 | 1<<5) {
		t.Errorf("quoteBits = %b, want bits 0 and 5 set (escaped quote at byte 2 excluded)", quoteBits)
	}
}
