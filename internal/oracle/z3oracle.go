package oracle

import (
	"context"
	"fmt"

	"github.com/aclements/go-z3/z3"

	"github.com/plexsphere/solvetables/internal/constraint"
	"github.com/plexsphere/solvetables/internal/packet"
)

// Z3Oracle is the production Oracle, backed by the Z3 SMT solver. This is
// the only file in the module that imports github.com/aclements/go-z3; every
// other package talks to the Oracle interface, the same isolation the
// teacher uses to keep nftables/netlink calls out of the policy engine.
type Z3Oracle struct{}

// NewZ3Oracle returns a Z3Oracle. A fresh z3.Context and z3.Solver are
// created per Solve call and released before it returns, per §5.
func NewZ3Oracle() *Z3Oracle {
	return &Z3Oracle{}
}

// Solve implements Oracle.
func (o *Z3Oracle) Solve(ctx context.Context, formula constraint.Expr) (*Model, bool, error) {
	cfg := z3.NewContextConfig()
	zctx := z3.NewContext(cfg)
	defer zctx.Close()

	b := &z3Builder{ctx: zctx, vars: map[packet.Field]z3.BV{}}
	assertion, err := b.bool(formula)
	if err != nil {
		return nil, false, fmt.Errorf("oracle: build formula: %w", err)
	}

	s := zctx.NewSolver()
	defer s.Close()
	s.Assert(assertion)

	sat, err := s.Check()
	if err != nil {
		return nil, false, fmt.Errorf("oracle: z3 check: %w", err)
	}
	if !sat {
		return nil, false, nil
	}

	m := s.Model()
	defer m.Close()

	values := make(map[packet.Field]uint64, len(b.vars))
	for field, v := range b.vars {
		u, ok := m.Eval(v, true).AsUint64()
		if !ok {
			return nil, false, fmt.Errorf("oracle: model value for %s did not evaluate to a literal", field)
		}
		values[field] = u
	}
	return &Model{Values: values}, true, nil
}

// z3Builder walks a constraint.Expr once, interning one z3.BV per packet
// model field so that every reference to a given field in the formula
// resolves to the same underlying z3 constant.
type z3Builder struct {
	ctx  *z3.Context
	vars map[packet.Field]z3.BV
}

// bv builds e as a bit-vector of the given width. width is only consulted
// for a Lit; a Var always carries its own field width, which is also how
// width is discovered for the Lit on the other side of a Cmp (bvWidth).
func (b *z3Builder) bv(e constraint.Expr, width int) (z3.BV, error) {
	switch n := e.(type) {
	case constraint.Var:
		if v, ok := b.vars[n.Field]; ok {
			return v, nil
		}
		v := b.ctx.BVConst(string(n.Field), int(n.Field.Width()))
		b.vars[n.Field] = v
		return v, nil
	case constraint.Lit:
		return b.ctx.FromBigInt(uint64(n), b.ctx.BVSort(width)).(z3.BV), nil
	default:
		return z3.BV{}, fmt.Errorf("oracle: expected a bit-vector expression, got %T", e)
	}
}

// bvWidth reports the bit-vector width e must be built at, if e pins one
// down (a Var does, via its field's width); a bare Lit does not.
func (b *z3Builder) bvWidth(e constraint.Expr) (int, bool) {
	if v, ok := e.(constraint.Var); ok {
		return int(v.Field.Width()), true
	}
	return 0, false
}

func (b *z3Builder) bool(e constraint.Expr) (z3.Bool, error) {
	switch n := e.(type) {
	case constraint.BoolLit:
		if n {
			return b.ctx.FromBool(true), nil
		}
		return b.ctx.FromBool(false), nil
	case constraint.And:
		parts, err := b.boolSlice(n.Exprs)
		if err != nil {
			return z3.Bool{}, err
		}
		return b.ctx.True().And(parts...), nil
	case constraint.Or:
		parts, err := b.boolSlice(n.Exprs)
		if err != nil {
			return z3.Bool{}, err
		}
		return b.ctx.False().Or(parts...), nil
	case constraint.Not:
		inner, err := b.bool(n.Expr)
		if err != nil {
			return z3.Bool{}, err
		}
		return inner.Not(), nil
	case constraint.Cmp:
		width, ok := b.bvWidth(n.LHS)
		if !ok {
			width, ok = b.bvWidth(n.RHS)
		}
		if !ok {
			return z3.Bool{}, fmt.Errorf("oracle: comparison between two literals has no field to size it from")
		}
		lhs, err := b.bv(n.LHS, width)
		if err != nil {
			return z3.Bool{}, err
		}
		rhs, err := b.bv(n.RHS, width)
		if err != nil {
			return z3.Bool{}, err
		}
		switch n.Op {
		case constraint.OpEq:
			return lhs.Eq(rhs), nil
		case constraint.OpNe:
			return lhs.Eq(rhs).Not(), nil
		case constraint.OpULE:
			return lhs.ULE(rhs), nil
		case constraint.OpUGE:
			return lhs.UGE(rhs), nil
		case constraint.OpULT:
			return lhs.ULT(rhs), nil
		case constraint.OpUGT:
			return lhs.UGT(rhs), nil
		default:
			return z3.Bool{}, fmt.Errorf("oracle: unknown comparison operator %d", n.Op)
		}
	default:
		return z3.Bool{}, fmt.Errorf("oracle: expected a boolean expression, got %T", e)
	}
}

func (b *z3Builder) boolSlice(exprs []constraint.Expr) ([]z3.Bool, error) {
	out := make([]z3.Bool, 0, len(exprs))
	for _, e := range exprs {
		v, err := b.bool(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
