package simdtape

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Navigation/iterator API: not part of the core tape-building pipeline
// (spec.md's Non-goals explicitly exclude it from the CORE), but a
// complete module still needs a way to read back what Stage 2 wrote.
// Grounded on the teacher's Iter (parsed_json.go): an Iter is a cheap,
// copyable cursor over a tape range, advanced one logical value at a
// time without recursion.

// Source pairs a Document with the original input buffer it was parsed
// from (kept alongside the Document the way the teacher keeps Message
// next to its ParsedJson, for callers that want to cross-reference
// structural byte offsets against the source text).
type Source struct {
	Doc   *Document
	Input []byte
}

// Iter returns a cursor over the whole document.
func (s Source) Iter() Iter {
	return Iter{src: s}
}

// stringAt decodes the length-prefixed string record stored at offset
// in the Document's string buffer (spec.md section 3, "String buffer":
// a 4-byte little-endian length, the decoded bytes, then a zero
// terminator -- every `"` tape payload is this offset).
func (s Source) stringAt(offset uint64) ([]byte, error) {
	strs := s.Doc.Strings
	if offset+4 > uint64(len(strs)) {
		return nil, fmt.Errorf("simdtape: string offset %d outside string buffer of length %d", offset, len(strs))
	}
	length := uint64(binary.LittleEndian.Uint32(strs[offset:]))
	start := offset + 4
	if start+length > uint64(len(strs)) {
		return nil, fmt.Errorf("simdtape: string record at offset %d (length %d) outside string buffer of length %d", offset, length, len(strs))
	}
	return strs[start : start+length], nil
}

// Iter is a cursor over a tape range. Copying an Iter produces an
// independent cursor over the same underlying tape.
type Iter struct {
	src Source

	off     int
	addNext int
	cur     uint64
	t       Tag
}

func (i *Iter) tape() []uint64 { return i.src.Doc.Tape }

// Advance reads the next element's type and queues the value so a
// following call to a typed accessor (Int, String, ...) operates on it.
func (i *Iter) Advance() Type {
	return i.advanceCommon(false).Type()
}

// advanceCommon performs the shared work of Advance/AdvanceInto,
// returning the tag just read (or TagEnd at the end of the tape).
func (i *Iter) advanceCommon(into bool) Tag {
	i.off += i.addNext
	if i.off >= len(i.tape()) {
		i.addNext = 0
		i.t = TagEnd
		return TagEnd
	}
	v := i.tape()[i.off]
	i.cur = tapePayload(v)
	i.t = tapeTag(v)
	i.off++
	i.calcNext(into)
	if i.addNext < 0 {
		i.moveToEnd()
		return TagEnd
	}
	return i.t
}

// AdvanceInto behaves like Advance but steps inside objects/arrays/root
// instead of skipping over them.
func (i *Iter) AdvanceInto() Tag {
	return i.advanceCommon(true)
}

func (i *Iter) moveToEnd() {
	i.off = len(i.tape())
	i.addNext = 0
	i.t = TagEnd
}

// calcNext populates addNext: how many tape words to skip to reach the
// next sibling (into=false), or to step inside the current container
// (into=true).
func (i *Iter) calcNext(into bool) {
	i.addNext = 0
	switch i.t {
	case TagInteger, TagUint, TagFloat:
		i.addNext = 1
	case TagRoot, TagObjectStart, TagArrayStart:
		if !into {
			// cur is the index of the matching close word; the next
			// sibling starts one word after it.
			i.addNext = int(i.cur) + 1 - i.off
		}
	}
}

// Type returns the type queued by the previous Advance/AdvanceInto.
func (i *Iter) Type() Type {
	if i.off+i.addNext > len(i.tape()) {
		return TypeNone
	}
	return i.t.Type()
}

// PeekNextTag returns the tag of the next element without consuming it.
func (i *Iter) PeekNextTag() Tag {
	if i.off+i.addNext >= len(i.tape()) {
		return TagEnd
	}
	return tapeTag(i.tape()[i.off+i.addNext])
}

// PeekNext returns the type of the next element without consuming it.
func (i *Iter) PeekNext() Type {
	if i.off+i.addNext >= len(i.tape()) {
		return TypeNone
	}
	return i.PeekNextTag().Type()
}

// Root steps into a root element, returning the type of its first
// child and an iterator scoped to exactly that element.
func (i *Iter) Root(dst *Iter) (Type, *Iter, error) {
	if i.t != TagRoot {
		return TypeNone, dst, errors.New("simdtape: value is not root")
	}
	if i.cur > uint64(len(i.tape())) {
		return TypeNone, dst, errors.New("simdtape: root element extends beyond tape")
	}
	if dst == nil {
		c := *i
		dst = &c
	} else {
		dst.cur = i.cur
		dst.off = i.off
		dst.t = i.t
	}
	dst.src = i.src
	dst.addNext = 0
	scoped := *dst.src.Doc
	scoped.Tape = i.tape()[:i.cur]
	dst.src.Doc = &scoped
	dst.AdvanceInto()
	return dst.Type(), dst, nil
}

// Bool returns the queued bool value.
func (i *Iter) Bool() (bool, error) {
	switch i.t {
	case TagBoolTrue:
		return true, nil
	case TagBoolFalse:
		return false, nil
	}
	return false, fmt.Errorf("simdtape: value is not bool, but %v", i.t)
}

// Int returns the queued value as an int64, converting floats/uints
// that fit.
func (i *Iter) Int() (int64, error) {
	switch i.t {
	case TagInteger:
		if i.off >= len(i.tape()) {
			return 0, errors.New("simdtape: corrupt tape: missing integer value word")
		}
		return int64(i.tape()[i.off]), nil
	case TagUint:
		if i.off >= len(i.tape()) {
			return 0, errors.New("simdtape: corrupt tape: missing integer value word")
		}
		v := i.tape()[i.off]
		if v > math.MaxInt64 {
			return 0, errors.New("simdtape: unsigned value overflows int64")
		}
		return int64(v), nil
	case TagFloat:
		if i.off >= len(i.tape()) {
			return 0, errors.New("simdtape: corrupt tape: missing float value word")
		}
		f := math.Float64frombits(i.tape()[i.off])
		if f > math.MaxInt64 || f < math.MinInt64 {
			return 0, errors.New("simdtape: float value out of int64 range")
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("simdtape: unable to convert type %v to int", i.t)
}

// Uint returns the queued value as a uint64.
func (i *Iter) Uint() (uint64, error) {
	switch i.t {
	case TagUint:
		if i.off >= len(i.tape()) {
			return 0, errors.New("simdtape: corrupt tape: missing integer value word")
		}
		return i.tape()[i.off], nil
	case TagInteger:
		if i.off >= len(i.tape()) {
			return 0, errors.New("simdtape: corrupt tape: missing integer value word")
		}
		v := int64(i.tape()[i.off])
		if v < 0 {
			return 0, errors.New("simdtape: negative value cannot convert to uint")
		}
		return uint64(v), nil
	case TagFloat:
		if i.off >= len(i.tape()) {
			return 0, errors.New("simdtape: corrupt tape: missing float value word")
		}
		f := math.Float64frombits(i.tape()[i.off])
		if f < 0 || f > math.MaxUint64 {
			return 0, errors.New("simdtape: float value out of uint64 range")
		}
		return uint64(f), nil
	}
	return 0, fmt.Errorf("simdtape: unable to convert type %v to uint", i.t)
}

// Float returns the queued value as a float64, converting integers.
func (i *Iter) Float() (float64, error) {
	switch i.t {
	case TagFloat:
		if i.off >= len(i.tape()) {
			return 0, errors.New("simdtape: corrupt tape: missing float value word")
		}
		return math.Float64frombits(i.tape()[i.off]), nil
	case TagInteger:
		if i.off >= len(i.tape()) {
			return 0, errors.New("simdtape: corrupt tape: missing integer value word")
		}
		return float64(int64(i.tape()[i.off])), nil
	case TagUint:
		if i.off >= len(i.tape()) {
			return 0, errors.New("simdtape: corrupt tape: missing integer value word")
		}
		return float64(i.tape()[i.off]), nil
	}
	return 0, fmt.Errorf("simdtape: unable to convert type %v to float", i.t)
}

// StringBytes returns the queued string value without copying when
// avoidable.
func (i *Iter) StringBytes() ([]byte, error) {
	if i.t != TagString {
		return nil, errors.New("simdtape: value is not string")
	}
	return i.src.stringAt(i.cur)
}

// String returns the queued string value.
func (i *Iter) String() (string, error) {
	b, err := i.StringBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StringCvt returns a string representation of any scalar value.
func (i *Iter) StringCvt() (string, error) {
	switch i.t {
	case TagString:
		return i.String()
	case TagInteger:
		v, err := i.Int()
		return strconv.FormatInt(v, 10), err
	case TagUint:
		v, err := i.Uint()
		return strconv.FormatUint(v, 10), err
	case TagFloat:
		v, err := i.Float()
		if err != nil {
			return "", err
		}
		return floatToString(v)
	case TagBoolTrue:
		return "true", nil
	case TagBoolFalse:
		return "false", nil
	case TagNull:
		return "null", nil
	}
	return "", fmt.Errorf("simdtape: cannot convert type %v to string", i.t)
}

// Interface decodes the queued value (and everything nested inside it)
// into native Go values: map[string]interface{}, []interface{}, string,
// int64/uint64/float64, bool, or nil.
func (i *Iter) Interface() (interface{}, error) {
	switch i.t {
	case TagRoot:
		var sub Iter
		_, r, err := i.Root(&sub)
		if err != nil {
			return nil, err
		}
		return r.Interface()
	case TagString:
		return i.String()
	case TagInteger:
		return i.Int()
	case TagUint:
		return i.Uint()
	case TagFloat:
		return i.Float()
	case TagBoolTrue:
		return true, nil
	case TagBoolFalse:
		return false, nil
	case TagNull:
		return nil, nil
	case TagObjectStart:
		m := make(map[string]interface{})
		for i.AdvanceInto() != TagObjectEnd {
			key, err := i.StringCvt()
			if err != nil {
				return nil, err
			}
			i.AdvanceInto()
			v, err := i.Interface()
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		return m, nil
	case TagEnd:
		if i.PeekNextTag() == TagEnd {
			return nil, errors.New("simdtape: no content queued in iterator")
		}
		i.Advance()
		return i.Interface()
	case TagArrayStart:
		var arr []interface{}
		for i.AdvanceInto() != TagArrayEnd {
			v, err := i.Interface()
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	}
	return nil, fmt.Errorf("simdtape: cannot convert type %v to interface", i.t)
}

// marshalStack entries track what kind of scope MarshalJSONBuffer is
// currently inside, to know when to emit a comma/colon.
type marshalScope uint8

const (
	marshalNone marshalScope = iota
	marshalArray
	marshalObject
	marshalRoot
)

// MarshalJSONBuffer re-serializes the remaining scope of the iterator
// (including its current value) as JSON text, appended to dst.
func (i *Iter) MarshalJSONBuffer(dst []byte) ([]byte, error) {
	var stackBuf [64]marshalScope
	stack := append(stackBuf[:0], marshalNone)

writeloop:
	for {
		if stack[len(stack)-1] == marshalObject && i.t != TagObjectEnd {
			key, err := i.StringBytes()
			if err != nil {
				return nil, fmt.Errorf("simdtape: expected object key: %w", err)
			}
			dst = append(dst, '"')
			dst = appendEscaped(dst, key)
			dst = append(dst, '"', ':')
			if i.PeekNextTag() == TagEnd {
				return nil, errors.New("simdtape: unexpected end of tape within object")
			}
			i.AdvanceInto()
		}

	tagswitch:
		switch i.t {
		case TagRoot:
			isOpen := int(i.cur) > i.off
			if len(stack) > 1 {
				if isOpen {
					return dst, errors.New("simdtape: root tag open but not at top of stack")
				}
				switch stack[len(stack)-1] {
				case marshalRoot:
					if i.PeekNextTag() != TagEnd {
						dst = append(dst, '\n')
					}
					stack = stack[:len(stack)-1]
					break tagswitch
				case marshalNone:
					break writeloop
				default:
					return dst, fmt.Errorf("simdtape: root tag nested under scope %d", stack[len(stack)-1])
				}
				break tagswitch
			}
			if isOpen {
				i.addNext = 0
			}
			i.AdvanceInto()
			stack = append(stack, marshalRoot)
			continue
		case TagString:
			sb, err := i.StringBytes()
			if err != nil {
				return nil, err
			}
			dst = append(dst, '"')
			dst = appendEscaped(dst, sb)
			dst = append(dst, '"')
		case TagInteger:
			v, err := i.Int()
			if err != nil {
				return nil, err
			}
			dst = strconv.AppendInt(dst, v, 10)
		case TagUint:
			v, err := i.Uint()
			if err != nil {
				return nil, err
			}
			dst = strconv.AppendUint(dst, v, 10)
		case TagFloat:
			v, err := i.Float()
			if err != nil {
				return nil, err
			}
			var ferr error
			dst, ferr = appendFloat(dst, v)
			if ferr != nil {
				return nil, ferr
			}
		case TagNull:
			dst = append(dst, "null"...)
		case TagBoolTrue:
			dst = append(dst, "true"...)
		case TagBoolFalse:
			dst = append(dst, "false"...)
		case TagObjectStart:
			dst = append(dst, '{')
			stack = append(stack, marshalObject)
			i.AdvanceInto()
			continue
		case TagObjectEnd:
			dst = append(dst, '}')
			if stack[len(stack)-1] != marshalObject {
				return dst, errors.New("simdtape: unmatched object end")
			}
			stack = stack[:len(stack)-1]
		case TagArrayStart:
			dst = append(dst, '[')
			stack = append(stack, marshalArray)
			i.AdvanceInto()
			continue
		case TagArrayEnd:
			dst = append(dst, ']')
			if stack[len(stack)-1] != marshalArray {
				return dst, errors.New("simdtape: unmatched array end")
			}
			stack = stack[:len(stack)-1]
		case TagEnd:
			if i.PeekNextTag() == TagEnd {
				return nil, errors.New("simdtape: no content queued in iterator")
			}
			i.AdvanceInto()
			continue
		}

		if i.PeekNextTag() == TagEnd {
			break
		}
		i.AdvanceInto()

		switch stack[len(stack)-1] {
		case marshalArray:
			if i.t != TagArrayEnd {
				dst = append(dst, ',')
			}
		case marshalObject:
			if i.t != TagObjectEnd {
				dst = append(dst, ',')
			}
		}
	}

	if len(stack) > 1 {
		return nil, fmt.Errorf("simdtape: unclosed scopes remain: %v", stack[1:])
	}
	return dst, nil
}

// MarshalJSON re-serializes the remaining scope of the iterator.
func (i *Iter) MarshalJSON() ([]byte, error) {
	return i.MarshalJSONBuffer(nil)
}

func appendEscaped(dst, s []byte) []byte {
	for _, b := range s {
		switch b {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if b < 0x20 {
				dst = append(dst, '\\', 'u', '0', '0', hexDigit(b>>4), hexDigit(b&0xf))
			} else {
				dst = append(dst, b)
			}
		}
	}
	return dst
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'a' + n - 10
}

func floatToString(v float64) (string, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "", fmt.Errorf("simdtape: cannot represent %v as JSON", v)
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

func appendFloat(dst []byte, v float64) ([]byte, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return dst, fmt.Errorf("simdtape: cannot represent %v as JSON", v)
	}
	return strconv.AppendFloat(dst, v, 'g', -1, 64), nil
}
