package oracle

import (
	"context"

	"github.com/plexsphere/solvetables/internal/constraint"
	"github.com/plexsphere/solvetables/internal/packet"
)

// BoundedOracle is a pure-Go Oracle used by this module's unit tests so that
// the Packet Model, Rule Compiler, Chain Assembler, and Expression Compiler
// can be exercised without a Z3 installation. It is not a general decision
// procedure: it enumerates the literal values mentioned in the formula (plus
// zero) for every field the formula references, and searches their
// Cartesian product for a satisfying assignment. Every concrete scenario in
// §8 only ever pins fields to literal equalities or literal-bounded ranges,
// which this search covers exactly.
type BoundedOracle struct{}

// NewBoundedOracle returns a BoundedOracle.
func NewBoundedOracle() *BoundedOracle {
	return &BoundedOracle{}
}

// Solve implements Oracle.
func (o *BoundedOracle) Solve(_ context.Context, formula constraint.Expr) (*Model, bool, error) {
	candidates := candidateValues(formula)
	fields := make([]packet.Field, 0, len(candidates))
	for f := range candidates {
		fields = append(fields, f)
	}

	assignment := make(map[packet.Field]uint64, len(fields))
	if search(formula, fields, candidates, 0, assignment) {
		values := make(map[packet.Field]uint64, len(assignment))
		for f, v := range assignment {
			values[f] = v
		}
		return &Model{Values: values}, true, nil
	}
	return nil, false, nil
}

// candidateValues collects, per field, the set of literal values the
// formula compares it against, plus zero.
func candidateValues(e constraint.Expr) map[packet.Field]map[uint64]struct{} {
	out := map[packet.Field]map[uint64]struct{}{}
	var walk func(constraint.Expr)
	record := func(f packet.Field, v uint64) {
		if out[f] == nil {
			out[f] = map[uint64]struct{}{0: {}}
		}
		out[f][v] = struct{}{}
	}
	walk = func(e constraint.Expr) {
		switch n := e.(type) {
		case constraint.Cmp:
			if v, ok := n.LHS.(constraint.Var); ok {
				if lit, ok := n.RHS.(constraint.Lit); ok {
					record(v.Field, uint64(lit))
				}
			}
			if v, ok := n.RHS.(constraint.Var); ok {
				if lit, ok := n.LHS.(constraint.Lit); ok {
					record(v.Field, uint64(lit))
				}
			}
		case constraint.And:
			for _, sub := range n.Exprs {
				walk(sub)
			}
		case constraint.Or:
			for _, sub := range n.Exprs {
				walk(sub)
			}
		case constraint.Not:
			walk(n.Expr)
		}
	}
	walk(e)
	return out
}

// search tries every combination of candidate values for the unassigned
// fields in fields[idx:], evaluating the formula against each complete
// assignment.
func search(formula constraint.Expr, fields []packet.Field, candidates map[packet.Field]map[uint64]struct{}, idx int, assignment map[packet.Field]uint64) bool {
	if idx == len(fields) {
		return eval(formula, assignment)
	}
	f := fields[idx]
	for v := range candidates[f] {
		assignment[f] = v
		if search(formula, fields, candidates, idx+1, assignment) {
			return true
		}
	}
	delete(assignment, f)
	return false
}

// eval interprets e against a complete field assignment. Fields absent from
// assignment default to 0, matching §4.6's model-completion rule.
func eval(e constraint.Expr, assignment map[packet.Field]uint64) bool {
	switch n := e.(type) {
	case constraint.BoolLit:
		return bool(n)
	case constraint.And:
		for _, sub := range n.Exprs {
			if !eval(sub, assignment) {
				return false
			}
		}
		return true
	case constraint.Or:
		for _, sub := range n.Exprs {
			if eval(sub, assignment) {
				return true
			}
		}
		return false
	case constraint.Not:
		return !eval(n.Expr, assignment)
	case constraint.Cmp:
		lhs := evalBV(n.LHS, assignment)
		rhs := evalBV(n.RHS, assignment)
		switch n.Op {
		case constraint.OpEq:
			return lhs == rhs
		case constraint.OpNe:
			return lhs != rhs
		case constraint.OpULE:
			return lhs <= rhs
		case constraint.OpUGE:
			return lhs >= rhs
		case constraint.OpULT:
			return lhs < rhs
		case constraint.OpUGT:
			return lhs > rhs
		}
	}
	return false
}

func evalBV(e constraint.Expr, assignment map[packet.Field]uint64) uint64 {
	switch n := e.(type) {
	case constraint.Var:
		return assignment[n.Field]
	case constraint.Lit:
		return uint64(n)
	default:
		return 0
	}
}
