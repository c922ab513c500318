package constraint

import (
	"testing"

	"github.com/plexsphere/solvetables/internal/packet"
)

func TestAllDropsNils(t *testing.T) {
	got := All(nil, Eq(Field(packet.Protocol), Lit(1)), nil)
	if _, ok := got.(Cmp); !ok {
		t.Fatalf("All with a single non-nil operand should collapse to it, got %T", got)
	}
}

func TestAllEmptyIsEmptyAnd(t *testing.T) {
	got := All()
	and, ok := got.(And)
	if !ok {
		t.Fatalf("All() = %T, want And", got)
	}
	if len(and.Exprs) != 0 {
		t.Fatalf("All() produced %d exprs, want 0", len(and.Exprs))
	}
}

func TestAnyCollapsesSingleOperand(t *testing.T) {
	inner := Eq(Field(packet.State), Lit(0))
	got := Any(nil, inner)
	if got != Expr(inner) {
		t.Fatalf("Any with one operand should return it unwrapped, got %#v", got)
	}
}

func TestAnyMultipleOperandsBuildsOr(t *testing.T) {
	a := Eq(Field(packet.Protocol), Lit(1))
	b := Eq(Field(packet.Protocol), Lit(2))
	got := Any(a, b)
	or, ok := got.(Or)
	if !ok {
		t.Fatalf("Any(a, b) = %T, want Or", got)
	}
	if len(or.Exprs) != 2 {
		t.Fatalf("Or has %d exprs, want 2", len(or.Exprs))
	}
}

func TestComparisonConstructorsSetOp(t *testing.T) {
	cases := []struct {
		build func(lhs, rhs Expr) Cmp
		want  Op
	}{
		{Eq, OpEq},
		{Ne, OpNe},
		{ULE, OpULE},
		{UGE, OpUGE},
		{ULT, OpULT},
		{UGT, OpUGT},
	}
	lhs, rhs := Field(packet.SrcPort), Lit(80)
	for _, c := range cases {
		cmp := c.build(lhs, rhs)
		if cmp.Op != c.want {
			t.Errorf("got Op %v, want %v", cmp.Op, c.want)
		}
		if cmp.LHS != Expr(lhs) || cmp.RHS != Expr(rhs) {
			t.Errorf("Cmp operands not preserved: %+v", cmp)
		}
	}
}
