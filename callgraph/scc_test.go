package callgraph

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// buildMutualRecursionPlusIsolate builds p <-> q (mutually recursive) and an
// unrelated, non-recursive r.
func buildMutualRecursionPlusIsolate() *ir.Module {
	mod := ir.NewModule()

	p := mod.NewFunc("p", types.Void)
	p.Linkage = enum.LinkageInternal
	q := mod.NewFunc("q", types.Void)
	q.Linkage = enum.LinkageInternal
	r := mod.NewFunc("r", types.Void)
	r.Linkage = enum.LinkageInternal

	pb := p.NewBlock("entry")
	pb.NewCall(q)
	pb.NewRet(nil)

	qb := q.NewBlock("entry")
	qb.NewCall(p)
	qb.NewRet(nil)

	r.NewBlock("entry").NewRet(nil)

	return mod
}

func TestComputeSCCsGroupsMutualRecursion(t *testing.T) {
	mod := buildMutualRecursionPlusIsolate()
	g := Build(mod)

	sccs := ComputeSCCs(g)
	if len(sccs) != 2 {
		t.Fatalf("got %d SCCs, want 2 (one for {p,q}, one for {r})", len(sccs))
	}

	var pqSCC, rSCC *SCC
	for _, scc := range sccs {
		if len(scc.Nodes) == 2 {
			pqSCC = scc
		} else if len(scc.Nodes) == 1 {
			rSCC = scc
		}
	}
	if pqSCC == nil || rSCC == nil {
		t.Fatalf("expected one 2-node SCC and one 1-node SCC, got sizes %d and %d", len(sccs[0].Nodes), len(sccs[1].Nodes))
	}

	if pqSCC.Singular() {
		t.Fatalf("a 2-member SCC must never report Singular() == true")
	}
	if !rSCC.Singular() {
		t.Fatalf("a 1-member SCC with no self-edge must report Singular() == true")
	}
}

func TestSCCSingularFalseOnSelfRecursion(t *testing.T) {
	mod := ir.NewModule()
	s := mod.NewFunc("s", types.Void)
	s.Linkage = enum.LinkageInternal
	b := s.NewBlock("entry")
	b.NewCall(s)
	b.NewRet(nil)

	g := Build(mod)
	sccs := ComputeSCCs(g)
	if len(sccs) != 1 {
		t.Fatalf("got %d SCCs, want 1", len(sccs))
	}
	if sccs[0].Singular() {
		t.Fatalf("a single self-recursive function must not report Singular() == true")
	}
}
