package allocamerge

import "github.com/llir/llvm/ir/types"

// DefaultABI is a minimal, dependency-free ABIAligner: the real
// `DataLayout::getABITypeAlignment` this stands in for derives alignment
// from a target data-layout string, which is out of this package's scope
// (spec.md §1 "opaque analyses threaded through"). DefaultABI instead
// derives a reasonable alignment from the type's own shape, which is
// sufficient for the alignment-unification rule (§4.2) to have a concrete
// value to zero-substitute.
type DefaultABI struct{}

// ABIAlign returns a conservative default alignment in bytes for t.
func (DefaultABI) ABIAlign(t types.Type) uint64 {
	switch v := t.(type) {
	case *types.IntType:
		return byteAlign(v.BitSize)
	case *types.FloatType:
		switch v.Kind {
		case types.FloatKindDouble:
			return 8
		case types.FloatKindFP128, types.FloatKindX86_FP80, types.FloatKindPPC_FP128:
			return 16
		default:
			return 4
		}
	case *types.PointerType:
		return 8
	case *types.ArrayType:
		return DefaultABI{}.ABIAlign(v.ElemType)
	case *types.StructType:
		max := uint64(1)
		for _, field := range v.Fields {
			if a := (DefaultABI{}).ABIAlign(field); a > max {
				max = a
			}
		}
		return max
	default:
		return 8
	}
}

func byteAlign(bits uint64) uint64 {
	switch {
	case bits <= 8:
		return 1
	case bits <= 16:
		return 2
	case bits <= 32:
		return 4
	default:
		return 8
	}
}
