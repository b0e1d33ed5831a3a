package simdtape

// Component G (spec.md section 4.G): tape builder.
//
// Per the design notes in spec.md section 9 ("model [state] as explicit
// structs with named fields and update functions; do not inline them as
// mutable locals in a monolithic loop"), this is written as an explicit
// state machine over a small set of named states, with an explicit
// growable container stack -- not the teacher's goto-label rendition of
// the same automaton (stage2_build_tape_amd64.go), and not recursion.

type scopeKind uint8

const (
	scopeRoot scopeKind = iota
	scopeObject
	scopeArray
)

// scopeFrame is one entry of the container stack: the tape index of the
// scope's open tag, and what kind of scope it is.
type scopeFrame struct {
	openIdx uint64
	kind    scopeKind
}

// tapeState is Stage 2's explicit state variable (spec.md section 4.G
// enumerates these as named states: "object: expect key-or-close", etc).
type tapeState uint8

const (
	stRootStart tapeState = iota
	stObjectKeyOrClose
	stObjectKey // like stObjectKeyOrClose but '}' is not accepted (post-comma)
	stObjectColon
	stObjectValue
	stObjectCommaOrClose
	stArrayValueOrClose
	stArrayValue // post-comma: value required, no close accepted
	stArrayCommaOrClose
	stDone
)

// tapeBuilder holds Stage 2's mutable state: the tape, the string
// buffer, and the container stack. buildTape allocates a new one on
// every call; it is not kept across parses.
type tapeBuilder struct {
	tape    []uint64
	strings []byte
	stack   []scopeFrame
}

func (b *tapeBuilder) currentLoc() uint64 { return uint64(len(b.tape)) }

func (b *tapeBuilder) writeTape(tag Tag, payload uint64) {
	b.tape = append(b.tape, makeTapeWord(tag, payload))
}

// writeTapeValue writes a two-word numeric node: a tag word (payload
// unused) followed by the raw 64-bit value, per spec.md section 3's
// numeric tape layout.
func (b *tapeBuilder) writeTapeValue(tag Tag, raw uint64) {
	b.tape = append(b.tape, uint64(tag)<<tapeTagShift, raw)
}

// patchPayload OR's a payload into an already-written word. Used to
// fill in the forward reference left by writeTape(tag, 0) once the
// matching position is known (the open tag doesn't know its close
// index until the close is reached, and vice versa at the very end).
func (b *tapeBuilder) patchPayload(idx uint64, payload uint64) {
	b.tape[idx] |= payload & tapeValueMask
}

func (b *tapeBuilder) reset() {
	b.tape = b.tape[:0]
	b.strings = b.strings[:0]
	b.stack = b.stack[:0]
}

// buildTape is the Stage 2 entry point: a single pass over the
// structural index array (spec.md section 4.G). buf is the input,
// without padding; index is the dense structural-offset array Stage 1 produced,
// terminated by the end-of-document sentinel len(buf)==docLen.
func buildTape(buf []byte, index []uint32, docLen int, maxDepth int) (*tapeBuilder, error) {
	b := &tapeBuilder{}
	i := 0 // position within index

	// next never yields the end-of-document sentinel (an offset past the
	// last byte of buf); it reports !ok there instead.
	next := func() (uint32, bool) {
		if i >= len(index) || int(index[i]) >= len(buf) {
			return 0, false
		}
		v := index[i]
		i++
		return v, true
	}

	push := func(kind scopeKind) {
		b.stack = append(b.stack, scopeFrame{openIdx: b.currentLoc(), kind: kind})
	}

	// Root frame: its open tag's payload will ultimately point at the
	// closing root word (spec.md section 3: "payload points to the
	// matching close word").
	push(scopeRoot)
	b.writeTape(TagRoot, 0)

	state := stRootStart

	for state != stDone {
		if len(b.stack) > maxDepth {
			return nil, errAt(StatusDepthError, -1)
		}

		switch state {
		case stRootStart:
			idx, ok := next()
			if !ok {
				return nil, errAt(StatusTapeError, -1)
			}
			switch c := buf[idx]; c {
			case '{':
				push(scopeObject)
				b.writeTape(TagObjectStart, 0)
				state = stObjectKeyOrClose
			case '[':
				push(scopeArray)
				b.writeTape(TagArrayStart, 0)
				state = stArrayValueOrClose
			default:
				// spec.md section 9 open question: bare top-level
				// scalars are rejected (teacher's unified_machine
				// behavior). Only object/array is accepted at the root.
				return nil, errAt(StatusTapeError, int(idx))
			}

		case stObjectKeyOrClose, stObjectKey:
			idx, ok := next()
			if !ok {
				return nil, errAt(StatusTapeError, -1)
			}
			switch c := buf[idx]; c {
			case '"':
				if err := decodeString(buf, b, idx, docLen); err != nil {
					return nil, err
				}
				state = stObjectColon
			case '}':
				if state == stObjectKey {
					return nil, errAt(StatusTapeError, int(idx))
				}
				var err error
				state, err = closeScope(b, &b.stack, TagObjectEnd, scopeObject)
				if err != nil {
					return nil, err
				}
			default:
				return nil, errAt(StatusTapeError, int(idx))
			}

		case stObjectColon:
			idx, ok := next()
			if !ok || buf[idx] != ':' {
				off := -1
				if ok {
					off = int(idx)
				}
				return nil, errAt(StatusTapeError, off)
			}
			state = stObjectValue

		case stObjectValue:
			idx, ok := next()
			if !ok {
				return nil, errAt(StatusTapeError, -1)
			}
			opened, err := dispatchValue(buf, b, idx, docLen)
			if err != nil {
				return nil, err
			}
			if opened != scopeRootInvalid {
				// dispatchValue already wrote the open tag.
				b.stack = append(b.stack, scopeFrame{openIdx: b.currentLoc() - 1, kind: opened})
				if opened == scopeObject {
					state = stObjectKeyOrClose
				} else {
					state = stArrayValueOrClose
				}
			} else {
				state = stObjectCommaOrClose
			}

		case stObjectCommaOrClose:
			idx, ok := next()
			if !ok {
				return nil, errAt(StatusTapeError, -1)
			}
			switch buf[idx] {
			case '}':
				var err error
				state, err = closeScope(b, &b.stack, TagObjectEnd, scopeObject)
				if err != nil {
					return nil, err
				}
			case ',':
				state = stObjectKey
			default:
				return nil, errAt(StatusTapeError, int(idx))
			}

		case stArrayValueOrClose, stArrayValue:
			idx, ok := next()
			if !ok {
				return nil, errAt(StatusTapeError, -1)
			}
			if buf[idx] == ']' {
				if state == stArrayValue {
					return nil, errAt(StatusTapeError, int(idx))
				}
				var err error
				state, err = closeScope(b, &b.stack, TagArrayEnd, scopeArray)
				if err != nil {
					return nil, err
				}
				continue
			}
			opened, err := dispatchValue(buf, b, idx, docLen)
			if err != nil {
				return nil, err
			}
			if opened != scopeRootInvalid {
				// dispatchValue already wrote the open tag.
				b.stack = append(b.stack, scopeFrame{openIdx: b.currentLoc() - 1, kind: opened})
				if opened == scopeObject {
					state = stObjectKeyOrClose
				} else {
					state = stArrayValueOrClose
				}
			} else {
				state = stArrayCommaOrClose
			}

		case stArrayCommaOrClose:
			idx, ok := next()
			if !ok {
				return nil, errAt(StatusTapeError, -1)
			}
			switch buf[idx] {
			case ']':
				var err error
				state, err = closeScope(b, &b.stack, TagArrayEnd, scopeArray)
				if err != nil {
					return nil, err
				}
			case ',':
				state = stArrayValue
			default:
				return nil, errAt(StatusTapeError, int(idx))
			}
		}
	}

	// Document end: stack must hold only the root frame, and the next
	// index entry must be the end-of-document sentinel.
	if i != len(index)-1 || int(index[i]) != docLen {
		off := -1
		if i < len(index) {
			off = int(index[i])
		}
		return nil, errAt(StatusTrailingBytes, off)
	}
	if len(b.stack) != 1 || b.stack[0].kind != scopeRoot {
		return nil, errAt(StatusTapeError, -1)
	}
	rootIdx := b.stack[0].openIdx
	b.stack = b.stack[:0]
	b.patchPayload(rootIdx, b.currentLoc())
	b.writeTape(TagRoot, rootIdx)

	return b, nil
}

// scopeRootInvalid is a sentinel "not a container" value returned by
// dispatchValue when the value was a scalar, not a push.
const scopeRootInvalid scopeKind = 255

// dispatchValue handles the common "parse one JSON value" logic shared
// by object-value and array-value positions (spec.md section 4.G: the
// "usual scalar/container dispatch"). It returns the kind of scope
// pushed, or scopeRootInvalid if a scalar was written directly.
func dispatchValue(buf []byte, b *tapeBuilder, idx uint32, docLen int) (scopeKind, error) {
	switch c := buf[idx]; c {
	case '"':
		return scopeRootInvalid, decodeString(buf, b, idx, docLen)
	case 't':
		if !isValidTrueAtom(buf[idx:]) {
			return scopeRootInvalid, errAt(StatusTapeError, int(idx))
		}
		b.writeTape(TagBoolTrue, 0)
		return scopeRootInvalid, nil
	case 'f':
		if !isValidFalseAtom(buf[idx:]) {
			return scopeRootInvalid, errAt(StatusTapeError, int(idx))
		}
		b.writeTape(TagBoolFalse, 0)
		return scopeRootInvalid, nil
	case 'n':
		if !isValidNullAtom(buf[idx:]) {
			return scopeRootInvalid, errAt(StatusTapeError, int(idx))
		}
		b.writeTape(TagNull, 0)
		return scopeRootInvalid, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return scopeRootInvalid, decodeNumber(buf[idx:], b, int(idx))
	case '{':
		b.writeTape(TagObjectStart, 0)
		return scopeObject, nil
	case '[':
		b.writeTape(TagArrayStart, 0)
		return scopeArray, nil
	default:
		return scopeRootInvalid, errAt(StatusTapeError, int(idx))
	}
}

// closeScope pops the container stack, links the open/close tape words,
// and returns the state the parent scope should resume in.
func closeScope(b *tapeBuilder, stack *[]scopeFrame, closeTag Tag, want scopeKind) (tapeState, error) {
	s := *stack
	if len(s) == 0 {
		return stDone, errAt(StatusTapeError, -1)
	}
	top := s[len(s)-1]
	if top.kind != want {
		return stDone, errAt(StatusTapeError, -1)
	}
	*stack = s[:len(s)-1]

	closeIdx := b.currentLoc()
	b.writeTape(closeTag, top.openIdx)
	b.patchPayload(top.openIdx, closeIdx)

	if len(*stack) == 0 {
		// Closed the outermost container; next token must be the
		// document sentinel, handled by the caller's loop exit.
		return stDone, nil
	}
	switch (*stack)[len(*stack)-1].kind {
	case scopeObject:
		return stObjectCommaOrClose, nil
	case scopeArray:
		return stArrayCommaOrClose, nil
	default:
		return stDone, nil
	}
}
