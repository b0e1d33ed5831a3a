package simdtape

import "testing"

func TestParseNDBasic(t *testing.T) {
	const in = "{\"a\":1}\n{\"b\":2}\n{\"c\":[1,2,3]}\n"
	doc, err := ParseND([]byte(in), nil)
	if err != nil {
		t.Fatalf("ParseND: %v", err)
	}
	if len(doc.Tape) == 0 {
		t.Fatal("expected non-empty merged tape")
	}

	count := 0
	for _, w := range doc.Tape {
		if tapeTag(w) == TagRoot {
			count++
		}
	}
	// Each line contributes an opening and a closing root word.
	if count != 6 {
		t.Errorf("expected 6 root markers in merged tape, got %d", count)
	}
}

func TestParseNDBlankLinesSkipped(t *testing.T) {
	const in = "{\"a\":1}\n\n{\"b\":2}\n"
	doc, err := ParseND([]byte(in), nil)
	if err != nil {
		t.Fatalf("ParseND: %v", err)
	}
	count := 0
	for _, w := range doc.Tape {
		if tapeTag(w) == TagRoot {
			count++
		}
	}
	if count != 4 {
		t.Errorf("expected 4 root markers (2 per line), got %d", count)
	}
}

func TestParseNDPropagatesLineError(t *testing.T) {
	const in = "{\"a\":1}\n{not json}\n"
	if _, err := ParseND([]byte(in), nil); err == nil {
		t.Error("expected error from malformed second line")
	}
}
