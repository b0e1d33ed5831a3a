package simdtape

// Document is the result of a parse: the tape (component G's output)
// plus the auxiliary string buffer strings written into by decodeString
// (spec.md section 3, "Tape" and "String buffer"). internal holds the
// reusable working state so a Document returned from Parse can be
// passed back in as reuse to avoid reallocating it.
type Document struct {
	Tape    []uint64
	Strings []byte

	internal *parserState
}

// Reset clears a Document for reuse as the reuse argument to Parse,
// without releasing its backing arrays.
func (d *Document) Reset() {
	d.Tape = d.Tape[:0]
	d.Strings = d.Strings[:0]
}

// parserConfig holds the options a caller can set via ParserOption.
type parserConfig struct {
	maxDepth int
}

func defaultParserConfig() parserConfig {
	return parserConfig{
		maxDepth: defaultMaxDepth,
	}
}

// ParserOption configures a parser (spec.md section 6, "construction
// options"). Grounded on the teacher's ParserOption (options.go).
type ParserOption func(*parserState) error

// WithMaxDepth overrides the container-nesting depth limit.
func WithMaxDepth(n int) ParserOption {
	return func(p *parserState) error {
		if n <= 0 {
			return errStatus(StatusDepthError)
		}
		p.cfg.maxDepth = n
		return nil
	}
}

// parserState is the reusable working state kept on a Document
// (Document.internal): the Stage 1 structural index and sticky
// validators, reused when that Document is passed back to Parse as
// reuse. The parserState held by a Parser carries only its cfg.
type parserState struct {
	cfg parserConfig

	index  []uint32
	stage1 *stage1State
}

// Parser parses JSON documents into a Document tape. A Parser is not
// safe for concurrent use (spec.md section 5: a parse is single-
// threaded); use one Parser per goroutine, or synchronize externally.
type Parser struct {
	state parserState
}

// NewParser constructs a Parser with the given options applied.
func NewParser(opts ...ParserOption) (*Parser, error) {
	p := &Parser{state: parserState{cfg: defaultParserConfig()}}
	for _, opt := range opts {
		if err := opt(&p.state); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Parse parses b, the core entry point (spec.md section 6, "Parse
// entry point"). An optional previously returned Document can be
// supplied via reuse; its Stage 1 index buffer is reused, while the
// tape and string buffer are newly allocated on every call.
func (p *Parser) Parse(b []byte, reuse *Document) (*Document, error) {
	if len(b) == 0 {
		return nil, errStatus(StatusEmpty)
	}

	doc := reuse
	if doc == nil {
		doc = &Document{}
	}
	if doc.internal == nil {
		doc.internal = &parserState{cfg: p.state.cfg}
	}
	doc.Reset()

	st := doc.internal
	st.cfg = p.state.cfg
	if st.stage1 == nil {
		st.stage1 = newStage1State()
	} else {
		*st.stage1 = *newStage1State()
	}
	st.index = st.index[:0]

	st.index = runStage1(b, st.index, st.stage1)
	if st.stage1.failed() {
		if st.stage1.utf8.failed() {
			return nil, errStatus(StatusInvalidUTF8)
		}
		return nil, errStatus(StatusUnescapedControl)
	}

	builder, err := buildTape(b, st.index, len(b), st.cfg.maxDepth)
	if err != nil {
		return nil, err
	}

	doc.Tape = builder.tape
	doc.Strings = builder.strings
	return doc, nil
}

// Parse is a convenience wrapper that constructs a one-shot Parser with
// the given options. Stage 1 working state is reused only through the
// reuse Document, not through the Parser.
func Parse(b []byte, reuse *Document, opts ...ParserOption) (*Document, error) {
	p, err := NewParser(opts...)
	if err != nil {
		return nil, err
	}
	return p.Parse(b, reuse)
}
