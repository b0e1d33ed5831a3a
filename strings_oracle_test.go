package simdtape

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
)

// Differential testing of string unescaping against an independent
// decoder, the string-side counterpart to TestNumberOracleAgreement.
// Grounded on the teacher's go.mod dependency on json-iterator/go,
// wired here rather than dropped (see DESIGN.md).
func TestStringOracleAgreement(t *testing.T) {
	cases := []string{
		`plain`,
		`with space`,
		`with \"quote\"`,
		`with \\ backslash`,
		`with \/ slash`,
		`tab\tnewline\n`,
		`unicode éè`,
		`surrogate pair 😀`,
		``,
		`a b`,
		`backspace\bformfeed\f`,
	}
	for _, c := range cases {
		doc := `["` + c + `"]`

		var arr []string
		if err := jsoniter.Unmarshal([]byte(doc), &arr); err != nil {
			t.Fatalf("oracle failed to decode %q: %v", doc, err)
		}
		want := arr[0]

		parsed, err := Parse([]byte(doc), nil)
		if err != nil {
			t.Fatalf("Parse(%q): %v", doc, err)
		}
		src := Source{Doc: parsed, Input: []byte(doc)}
		it := src.Iter()
		it.AdvanceInto() // root
		it.AdvanceInto() // array start
		it.AdvanceInto() // string value
		got, err := it.String()
		if err != nil {
			t.Fatalf("String() for %q: %v", c, err)
		}
		if got != want {
			t.Errorf("%q: got %q, oracle says %q", c, got, want)
		}
	}
}
