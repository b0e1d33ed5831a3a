package simdtape

import "github.com/klauspost/cpuid/v2"

// Runtime kernel selection (spec.md section 6, "Runtime selection";
// excluded from the CORE's Non-goals but retained here as the
// collaborator the CORE is written to plug into). Grounded on the
// teacher's SupportedCPU/AVX2+CLMUL gate (simdjson_amd64.go) and its
// AVX512 upgrade check (stage1_find_marks_amd64.go), generalized per
// spec.md section 9's design note: rather than a C-style function
// pointer swapped in at init time, kernels register themselves into a
// small ordered table and the best available one is picked once, when
// the package is initialized.

// kernelTier names a family of Stage 1 byte-vector kernels, ordered
// from most to least capable.
type kernelTier int

const (
	tierAVX512 kernelTier = iota
	tierAVX2
	tierPortable
)

func (t kernelTier) String() string {
	switch t {
	case tierAVX512:
		return "avx512"
	case tierAVX2:
		return "avx2"
	default:
		return "portable"
	}
}

// kernelRegistry holds the kernel tiers available to this process, most
// capable first. Only tierPortable has a body in this build (the
// bit-parallel primitives in bytevec.go are pure Go); tierAVX2 and
// tierAVX512 are listed so a future build tagged with real assembly
// kernels has a slot to register into without changing callers.
var kernelRegistry = []kernelTier{tierPortable}

// selectedTier is computed once and reused; SelectedKernel reports it.
var selectedTier = detectTier()

func detectTier() kernelTier {
	switch {
	case cpuid.CPU.Has(cpuid.AVX512F) && hasTier(tierAVX512):
		return tierAVX512
	case cpuid.CPU.Supports(cpuid.AVX2, cpuid.CLMUL) && hasTier(tierAVX2):
		return tierAVX2
	default:
		return tierPortable
	}
}

func hasTier(want kernelTier) bool {
	for _, t := range kernelRegistry {
		if t == want {
			return true
		}
	}
	return false
}

// SelectedKernel reports which Stage 1 kernel tier this process would
// use. It is informational: this build only implements tierPortable,
// so it always returns that value regardless of host CPU support.
func SelectedKernel() string {
	return selectedTier.String()
}
