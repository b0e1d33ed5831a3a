package simdtape

import "testing"

func runValidator(s string) bool {
	var v utf8Validator
	v.processChunk([]byte(s))
	v.finalize()
	return v.failed()
}

func TestUTF8ValidatorAcceptsValidInput(t *testing.T) {
	cases := []string{
		"hello",
		"héllo",
		"こんにちは",
		"😀 emoji",
		"\x00\x01\x7f",
	}
	for _, c := range cases {
		if runValidator(c) {
			t.Errorf("valid input %q rejected", c)
		}
	}
}

func TestUTF8ValidatorRejectsOverlong(t *testing.T) {
	// 0xC0 0x80 is an overlong encoding of NUL.
	if !runValidator(string([]byte{0xc0, 0x80})) {
		t.Error("expected overlong encoding to be rejected")
	}
}

func TestUTF8ValidatorRejectsSurrogate(t *testing.T) {
	// 0xED 0xA0 0x80 encodes U+D800, a surrogate half.
	if !runValidator(string([]byte{0xed, 0xa0, 0x80})) {
		t.Error("expected encoded surrogate to be rejected")
	}
}

func TestUTF8ValidatorRejectsTruncatedSequence(t *testing.T) {
	// 0xE2 0x82 is the start of a 3-byte sequence (e.g. U+20AC) cut short.
	if !runValidator(string([]byte{0xe2, 0x82})) {
		t.Error("expected truncated sequence to be rejected")
	}
}

func TestUTF8ValidatorRejectsBadLeadBytes(t *testing.T) {
	for _, b := range []byte{0xc0, 0xc1, 0xf5, 0xff, 0x80} {
		if !runValidator(string([]byte{b})) {
			t.Errorf("expected lead byte %#x to be rejected", b)
		}
	}
}

func TestUTF8ValidatorSequenceAcrossChunks(t *testing.T) {
	var v utf8Validator
	// Euro sign U+20AC, split across two processChunk calls.
	v.processChunk([]byte{0xe2})
	v.processChunk([]byte{0x82, 0xac})
	v.finalize()
	if v.failed() {
		t.Error("valid sequence split across chunks was rejected")
	}
}
