package simdtape

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Tape serialization (supplemented feature: the teacher ships a
// Serializer/loadTape pair, parsed_serialize.go, so a Document can be
// written to and read back from disk without re-parsing). This is a
// simplified rendition -- one block for the tape, one for the string
// buffer, each independently compressed -- rather than the teacher's
// tag/value-stream split with string deduplication, but keeps its
// choice of codec per CompressMode (s2 for the cheap default, zstd for
// the "squeeze harder" mode).
const serializeMagic = "SMDT"
const serializeVersion = 1

// CompressMode selects the codec Serialize uses for both blocks.
type CompressMode uint8

const (
	CompressNone CompressMode = iota
	CompressFast              // github.com/klauspost/compress/s2
	CompressBest              // github.com/klauspost/compress/zstd
)

// Serializer writes/reads the on-disk Document format. A Serializer
// can be reused across calls but is not safe for concurrent use.
type Serializer struct {
	mode CompressMode

	zw *zstd.Encoder
	zr *zstd.Decoder
}

// NewSerializer creates a Serializer using CompressFast by default.
func NewSerializer() *Serializer {
	return &Serializer{mode: CompressFast}
}

// CompressMode sets the codec used by subsequent Serialize calls.
func (s *Serializer) CompressMode(m CompressMode) { s.mode = m }

func (s *Serializer) compress(dst []byte, b []byte) ([]byte, error) {
	switch s.mode {
	case CompressNone:
		return append(dst, b...), nil
	case CompressFast:
		return s2.Encode(dst[:0], b), nil
	case CompressBest:
		if s.zw == nil {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				return nil, err
			}
			s.zw = enc
		}
		return s.zw.EncodeAll(b, dst[:0]), nil
	default:
		return nil, errors.New("simdtape: unknown compression mode")
	}
}

func (s *Serializer) decompress(b []byte, rawLen int) ([]byte, error) {
	switch s.mode {
	case CompressNone:
		return b, nil
	case CompressFast:
		dst := make([]byte, 0, rawLen)
		return s2.Decode(dst, b)
	case CompressBest:
		if s.zr == nil {
			dec, err := zstd.NewReader(nil)
			if err != nil {
				return nil, err
			}
			s.zr = dec
		}
		return s.zr.DecodeAll(b, make([]byte, 0, rawLen))
	default:
		return nil, errors.New("simdtape: unknown compression mode")
	}
}

// Serialize writes doc's tape and string buffer to w.
func (s *Serializer) Serialize(w io.Writer, doc *Document) error {
	tapeBytes := make([]byte, len(doc.Tape)*8)
	for i, v := range doc.Tape {
		binary.LittleEndian.PutUint64(tapeBytes[i*8:], v)
	}

	compTape, err := s.compress(nil, tapeBytes)
	if err != nil {
		return err
	}
	compStrings, err := s.compress(nil, doc.Strings)
	if err != nil {
		return err
	}

	var hdr [4 + 1 + 1 + 8*4]byte
	copy(hdr[:4], serializeMagic)
	hdr[4] = serializeVersion
	hdr[5] = byte(s.mode)
	binary.LittleEndian.PutUint64(hdr[6:], uint64(len(tapeBytes)))
	binary.LittleEndian.PutUint64(hdr[14:], uint64(len(compTape)))
	binary.LittleEndian.PutUint64(hdr[22:], uint64(len(doc.Strings)))
	binary.LittleEndian.PutUint64(hdr[30:], uint64(len(compStrings)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(compTape); err != nil {
		return err
	}
	if _, err := w.Write(compStrings); err != nil {
		return err
	}
	return nil
}

// Deserialize reads a Document previously written by Serialize.
func (s *Serializer) Deserialize(r io.Reader, reuse *Document) (*Document, error) {
	var hdr [4 + 1 + 1 + 8*4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if string(hdr[:4]) != serializeMagic {
		return nil, errors.New("simdtape: not a simdtape serialized document")
	}
	if hdr[4] != serializeVersion {
		return nil, errors.New("simdtape: unsupported serialized document version")
	}
	s.mode = CompressMode(hdr[5])
	tapeRawLen := int(binary.LittleEndian.Uint64(hdr[6:]))
	tapeCompLen := int(binary.LittleEndian.Uint64(hdr[14:]))
	stringsRawLen := int(binary.LittleEndian.Uint64(hdr[22:]))
	stringsCompLen := int(binary.LittleEndian.Uint64(hdr[30:]))

	compTape := make([]byte, tapeCompLen)
	if _, err := io.ReadFull(r, compTape); err != nil {
		return nil, err
	}
	compStrings := make([]byte, stringsCompLen)
	if _, err := io.ReadFull(r, compStrings); err != nil {
		return nil, err
	}

	tapeBytes, err := s.decompress(compTape, tapeRawLen)
	if err != nil {
		return nil, err
	}
	if len(tapeBytes)%8 != 0 {
		return nil, errors.New("simdtape: corrupt tape block length")
	}
	strings, err := s.decompress(compStrings, stringsRawLen)
	if err != nil {
		return nil, err
	}

	doc := reuse
	if doc == nil {
		doc = &Document{}
	}
	doc.Tape = make([]uint64, len(tapeBytes)/8)
	for i := range doc.Tape {
		doc.Tape[i] = binary.LittleEndian.Uint64(tapeBytes[i*8:])
	}
	doc.Strings = append(doc.Strings[:0], strings...)
	return doc, nil
}
