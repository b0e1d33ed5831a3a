package simdtape

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/bytedance/sonic"
)

// Differential testing against an independent JSON implementation
// (spec.md section 8, "Testable Properties": number round-trips should
// agree with a reference decoder). Grounded on the teacher's own use of
// sonic as a comparison decoder in benchmarks_test.go -- kept here
// purely as a test-time oracle, never imported by library code.
func TestNumberOracleAgreement(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	var cases []string
	for i := 0; i < 200; i++ {
		cases = append(cases, randomNumberLiteral(rng))
	}
	cases = append(cases, "0", "-0", "1", "-1", "3.14159",
		"1e300", "-1e300", "1.7976931348623157e308", "5e-324",
		"9007199254740993", "9223372036854775807", "-9223372036854775808")

	for _, lit := range cases {
		doc := `[` + lit + `]`

		var want float64
		if err := sonic.Unmarshal([]byte(doc), &want); err != nil {
			t.Fatalf("oracle failed to decode %q: %v", doc, err)
		}

		parsed, err := Parse([]byte(doc), nil)
		if err != nil {
			t.Fatalf("Parse(%q): %v", doc, err)
		}
		src := Source{Doc: parsed, Input: []byte(doc)}
		it := src.Iter()
		it.AdvanceInto() // root
		it.AdvanceInto() // array start
		it.AdvanceInto() // number value
		got, err := it.Float()
		if err != nil {
			t.Fatalf("Float() for %q: %v", lit, err)
		}
		if got != want {
			t.Errorf("%s: got %v, oracle says %v", lit, got, want)
		}
	}
}

func randomNumberLiteral(rng *rand.Rand) string {
	neg := rng.Intn(2) == 0
	intDigits := rng.Intn(15) + 1
	s := ""
	if neg {
		s += "-"
	}
	if rng.Intn(5) == 0 {
		s += "0"
	} else {
		s += fmt.Sprintf("%d", rng.Intn(9)+1)
		for i := 1; i < intDigits; i++ {
			s += fmt.Sprintf("%d", rng.Intn(10))
		}
	}
	if rng.Intn(2) == 0 {
		s += "."
		fracDigits := rng.Intn(10) + 1
		for i := 0; i < fracDigits; i++ {
			s += fmt.Sprintf("%d", rng.Intn(10))
		}
	}
	if rng.Intn(2) == 0 {
		s += "e"
		if rng.Intn(2) == 0 {
			s += "-"
		}
		s += fmt.Sprintf("%d", rng.Intn(30))
	}
	return s
}
