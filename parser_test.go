package simdtape

import "testing"

func parseOK(t *testing.T, in string) *Document {
	t.Helper()
	doc, err := Parse([]byte(in), nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", in, err)
	}
	return doc
}

func TestParseObjectRoundTrip(t *testing.T) {
	const in = `{"a":1,"b":[true,false,null],"c":{"d":"hello world"},"e":-12.5e3}`
	doc := parseOK(t, in)
	src := Source{Doc: doc, Input: []byte(in)}
	it := src.Iter()
	out, err := it.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	// Floats are re-emitted in shortest form, so -12.5e3 comes back as -12500.
	const want = `{"a":1,"b":[true,false,null],"c":{"d":"hello world"},"e":-12500}`
	if string(out) != want {
		t.Errorf("round trip mismatch:\n got: %s\nwant: %s", out, want)
	}
}

func TestParseArrayOfArrays(t *testing.T) {
	const in = `[[1,2,3],[],[{"x":1}]]`
	doc := parseOK(t, in)
	src := Source{Doc: doc, Input: []byte(in)}
	it := src.Iter()
	v, err := it.Interface()
	if err != nil {
		t.Fatalf("Interface: %v", err)
	}
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		t.Fatalf("Interface() = %#v, want a 3-element slice", v)
	}
	first, ok := arr[0].([]interface{})
	if !ok || len(first) != 3 {
		t.Fatalf("arr[0] = %#v, want a 3-element slice", arr[0])
	}
	third, ok := arr[2].([]interface{})
	if !ok || len(third) != 1 {
		t.Fatalf("arr[2] = %#v, want a 1-element slice", arr[2])
	}
	obj, ok := third[0].(map[string]interface{})
	if !ok {
		t.Fatalf("third[0] = %#v, want an object", third[0])
	}
	if x, err := asInt64(obj["x"]); err != nil || x != 1 {
		t.Errorf("obj[\"x\"] = %v (%v), want 1", obj["x"], err)
	}
}

func asInt64(v interface{}) (int64, error) {
	x, ok := v.(int64)
	if !ok {
		return 0, errStatus(StatusTapeError)
	}
	return x, nil
}

func TestParseScalarStrings(t *testing.T) {
	const in = `{"s":"with \"quote\" and \\ and é and \n"}`
	doc := parseOK(t, in)
	src := Source{Doc: doc, Input: []byte(in)}
	it := src.Iter()
	it.AdvanceInto() // root
	it.AdvanceInto() // object start
	it.AdvanceInto() // key
	key, err := it.StringBytes()
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if string(key) != "s" {
		t.Fatalf("unexpected key %q", key)
	}
	it.AdvanceInto()
	s, err := it.String()
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	want := "with \"quote\" and \\ and é and \n"
	if s != want {
		t.Errorf("got %q want %q", s, want)
	}
}

func TestParseNumbers(t *testing.T) {
	cases := []struct {
		in       string
		wantTag  Tag
		wantInt  int64
		wantUint uint64
		wantF    float64
	}{
		{"0", TagInteger, 0, 0, 0},
		{"-0", TagInteger, 0, 0, 0},
		{"123", TagInteger, 123, 0, 0},
		{"-123", TagInteger, -123, 0, 0},
		{"9223372036854775807", TagInteger, 9223372036854775807, 0, 0},
		{"-9223372036854775808", TagInteger, -9223372036854775808, 0, 0},
		{"18446744073709551615", TagUint, 0, 18446744073709551615, 0},
		{"1.5", TagFloat, 0, 0, 1.5},
		{"1e10", TagFloat, 0, 0, 1e10},
		{"-2.5e-3", TagFloat, 0, 0, -2.5e-3},
	}
	for _, c := range cases {
		doc := parseOK(t, "["+c.in+"]")
		src := Source{Doc: doc, Input: []byte("[" + c.in + "]")}
		it := src.Iter()
		it.AdvanceInto() // root
		it.AdvanceInto() // array start
		it.AdvanceInto() // value
		if it.t != c.wantTag {
			t.Errorf("%s: tag = %v, want %v", c.in, it.t, c.wantTag)
			continue
		}
		switch c.wantTag {
		case TagInteger:
			v, err := it.Int()
			if err != nil || v != c.wantInt {
				t.Errorf("%s: Int() = %v, %v; want %v", c.in, v, err, c.wantInt)
			}
		case TagUint:
			v, err := it.Uint()
			if err != nil || v != c.wantUint {
				t.Errorf("%s: Uint() = %v, %v; want %v", c.in, v, err, c.wantUint)
			}
		case TagFloat:
			v, err := it.Float()
			if err != nil || v != c.wantF {
				t.Errorf("%s: Float() = %v, %v; want %v", c.in, v, err, c.wantF)
			}
		}
	}
}

func TestParseRejectsBareRootScalar(t *testing.T) {
	for _, in := range []string{`1`, `"x"`, `true`, `null`} {
		if _, err := Parse([]byte(in), nil); err == nil {
			t.Errorf("Parse(%q) = nil error, want error (bare scalars at root are rejected)", in)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		`{`,
		`[1,2`,
		`{"a":}`,
		`{"a" 1}`,
		`[1,]`,
		`{"a":1,}`,
		`["unterminated]`,
		`[01]`,
		`[1.]`,
		`[.1]`,
		`[1e]`,
		`{"a":1} trailing`,
		"[\"\x01\"]",
	}
	for _, in := range cases {
		if _, err := Parse([]byte(in), nil); err == nil {
			t.Errorf("Parse(%q) = nil error, want error", in)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	if _, err := Parse(nil, nil); err == nil {
		t.Error("Parse(nil) = nil error, want StatusEmpty")
	}
}

func TestParseDepthLimit(t *testing.T) {
	var in []byte
	for i := 0; i < 10; i++ {
		in = append(in, '[')
	}
	for i := 0; i < 10; i++ {
		in = append(in, ']')
	}
	if _, err := Parse(in, nil, WithMaxDepth(5)); err == nil {
		t.Error("expected depth error with WithMaxDepth(5)")
	}
	if _, err := Parse(in, nil, WithMaxDepth(20)); err != nil {
		t.Errorf("unexpected error with WithMaxDepth(20): %v", err)
	}
}

func TestParserReuse(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	for _, in := range []string{`{"a":1}`, `{"b":2}`, `[1,2,3]`} {
		if _, err := p.Parse([]byte(in), &doc); err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
	}
}

func TestStringBufferRecordLayout(t *testing.T) {
	const in = `{"a":"plain"}`
	doc, err := Parse([]byte(in), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Strings) == 0 {
		t.Fatal("expected decoded strings to be written into the string buffer")
	}
	src := Source{Doc: doc, Input: []byte(in)}
	it := src.Iter()
	it.AdvanceInto()
	it.AdvanceInto()
	it.AdvanceInto() // key "a"
	it.AdvanceInto() // value
	s, err := it.String()
	if err != nil || s != "plain" {
		t.Errorf("String() = %q, %v; want plain", s, err)
	}
}
