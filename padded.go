package simdtape

import (
	"bytes"
	"io"
	"os"
)

// Padded-buffer allocation (spec.md Non-goals for the CORE; the
// external collaborator a complete repo still needs to load files
// efficiently). Grounded on the teacher's loadTape/ReadAll-based
// loaders (parsed_json.go) and simdjson's own load_buffer-style
// padding, generalized: the CORE parser (parser.go) never requires
// padding -- every bounds check in Stage 1/2 already clamps to the
// real slice length -- but giving callers a buffer with trailing
// capacity lets a future real-SIMD kernel (registry.go) overread
// safely without this package's API changing.

// padding is how many extra zero bytes a PaddedBuffer carries past its
// logical content, matching the 64-byte chunk width components A-F
// operate on.
const padding = 64

// PaddedBuffer is a byte slice with guaranteed spare capacity past its
// logical length, suitable for passing to Parser.Parse.
type PaddedBuffer struct {
	data []byte
	n    int
}

// NewPaddedBuffer allocates a PaddedBuffer able to hold n content bytes.
func NewPaddedBuffer(n int) *PaddedBuffer {
	size := (n + padding + 63) &^ 63 // round up to a 64-byte cache line
	return &PaddedBuffer{data: make([]byte, size), n: 0}
}

// Bytes returns the logical content (excluding the padding tail).
func (p *PaddedBuffer) Bytes() []byte { return p.data[:p.n] }

// Reset truncates the buffer to empty, keeping its backing array.
func (p *PaddedBuffer) Reset() { p.n = 0 }

// ReadFrom reads r to completion, growing the backing array as needed
// and keeping the spare padding tail intact.
func (p *PaddedBuffer) ReadFrom(r io.Reader) (int64, error) {
	p.n = 0
	var total int64
	for {
		if len(p.data)-p.n <= padding {
			grown := make([]byte, (len(p.data)+padding)*2)
			copy(grown, p.data[:p.n])
			p.data = grown
		}
		n, err := r.Read(p.data[p.n : len(p.data)-padding])
		p.n += n
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
}

// LoadPaddedFile reads path into a freshly allocated PaddedBuffer.
func LoadPaddedFile(path string) (*PaddedBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errStatus(StatusIO)
	}
	defer f.Close()

	info, err := f.Stat()
	size := 0
	if err == nil {
		size = int(info.Size())
	}
	pb := NewPaddedBuffer(size)
	if _, err := pb.ReadFrom(f); err != nil {
		return nil, errStatus(StatusIO)
	}
	return pb, nil
}

// LoadPadded copies b into a freshly allocated PaddedBuffer.
func LoadPadded(b []byte) *PaddedBuffer {
	pb := NewPaddedBuffer(len(b))
	pb.ReadFrom(bytes.NewReader(b))
	return pb
}
