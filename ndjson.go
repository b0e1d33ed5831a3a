package simdtape

import "bytes"

// NDJSON parsing (supplemented feature: the teacher ships ParseND/
// ParseNDStream, parsed_json.go/simdjson.go, parsing newline-delimited
// JSON into one tape where every line gets its own root node). Rather
// than teaching Stage 2 a second "many roots" automaton, each line is
// parsed independently through the ordinary single-document Parser and
// the resulting tapes/string buffers are concatenated, patching every
// tape-relative offset (container links, string-buffer offsets) by how
// far it was shifted.

// ParseND parses b as newline-delimited JSON, one value per line, blank
// lines ignored. Each line's value becomes its own root element on the
// returned Document's tape, in input order.
func ParseND(b []byte, reuse *Document, opts ...ParserOption) (*Document, error) {
	p, err := NewParser(opts...)
	if err != nil {
		return nil, err
	}

	doc := reuse
	if doc == nil {
		doc = &Document{}
	}
	doc.Reset()

	lineStart := 0
	for i := 0; i <= len(b); i++ {
		if i < len(b) && b[i] != '\n' {
			continue
		}
		line := bytes.TrimSpace(b[lineStart:i])
		lineStart = i + 1
		if len(line) == 0 {
			continue
		}
		sub, err := p.Parse(line, nil)
		if err != nil {
			return nil, err
		}
		mergeDocument(doc, sub)
	}
	return doc, nil
}

// mergeDocument appends src's tape and string buffer onto dst, shifting
// every tape-relative offset src's words carry by how far they moved.
func mergeDocument(dst, src *Document) {
	tapeOffset := uint64(len(dst.Tape))
	stringOffset := uint64(len(dst.Strings))

	i := 0
	for i < len(src.Tape) {
		w := src.Tape[i]
		tag := tapeTag(w)
		payload := tapePayload(w)

		switch tag {
		case TagInteger, TagUint, TagFloat:
			dst.Tape = append(dst.Tape, w, src.Tape[i+1])
			i += 2
		case TagString:
			dst.Tape = append(dst.Tape, makeTapeWord(TagString, payload+stringOffset))
			i++
		case TagRoot, TagObjectStart, TagObjectEnd, TagArrayStart, TagArrayEnd:
			dst.Tape = append(dst.Tape, makeTapeWord(tag, payload+tapeOffset))
			i++
		default:
			dst.Tape = append(dst.Tape, w)
			i++
		}
	}
	dst.Strings = append(dst.Strings, src.Strings...)
}
