package allocamerge

import (
	"testing"

	"github.com/llir/llvm/ir/types"
)

func TestDefaultABIAlign(t *testing.T) {
	abi := DefaultABI{}

	cases := []struct {
		name string
		typ  types.Type
		want uint64
	}{
		{"i8", types.I8, 1},
		{"i32", types.I32, 4},
		{"i64", types.I64, 8},
		{"double", types.Double, 8},
		{"pointer", types.NewPointer(types.I32), 8},
		{"array of i32", types.NewArray(4, types.I32), 4},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := abi.ABIAlign(c.typ); got != c.want {
				t.Errorf("ABIAlign(%s) = %d, want %d", c.name, got, c.want)
			}
		})
	}
}
