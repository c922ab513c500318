// Package constraint defines a small tagged-variant expression tree over the
// packet model's bit-vector variables. Rule Compiler, Expression Compiler,
// and Chain Assembler all build values of this type; the oracle package is
// the only place that ever interprets one.
package constraint

import "github.com/plexsphere/solvetables/internal/packet"

// Expr is a boolean or bit-vector valued constraint node. It has no methods
// of its own — callers type-switch on the concrete type, the same dispatch
// style §9 asks for in place of a map of comparator closures.
type Expr interface {
	isExpr()
}

// Var references a packet model field.
type Var struct {
	Field packet.Field
}

// Lit is an unsigned integer literal, implicitly sized to the width of
// whatever Var it is compared against.
type Lit uint64

// Op is the closed set of comparison operators the Expression Compiler and
// Rule Compiler can build. It is a tagged variant with two arms — equality
// and unsigned ordered comparison — dispatched on by a switch in each of the
// oracle package's two evaluators (Z3Oracle and BoundedOracle), per §9's
// "variable-sized union of comparators" redesign.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpULE
	OpUGE
	OpULT
	OpUGT
)

// Cmp compares a Var against a Lit (or another Var) using Op.
type Cmp struct {
	Op   Op
	LHS  Expr
	RHS  Expr
}

// And is the conjunction of zero or more sub-expressions. And() with no
// operands is the literal true.
type And struct {
	Exprs []Expr
}

// Or is the disjunction of zero or more sub-expressions. Or() with no
// operands is the literal false.
type Or struct {
	Exprs []Expr
}

// Not negates a sub-expression.
type Not struct {
	Expr Expr
}

// BoolLit is a constant true/false, used for the default-ACCEPT fallthrough
// clause (§4.3). All and Any keep it as an ordinary operand; no constant
// folding is done.
type BoolLit bool

func (Var) isExpr()     {}
func (Lit) isExpr()     {}
func (Cmp) isExpr()     {}
func (And) isExpr()     {}
func (Or) isExpr()      {}
func (Not) isExpr()     {}
func (BoolLit) isExpr() {}

// Field is a convenience constructor for Var.
func Field(f packet.Field) Var { return Var{Field: f} }

// Eq builds lhs == rhs.
func Eq(lhs, rhs Expr) Cmp { return Cmp{Op: OpEq, LHS: lhs, RHS: rhs} }

// Ne builds lhs != rhs.
func Ne(lhs, rhs Expr) Cmp { return Cmp{Op: OpNe, LHS: lhs, RHS: rhs} }

// ULE builds the unsigned comparison lhs <= rhs.
func ULE(lhs, rhs Expr) Cmp { return Cmp{Op: OpULE, LHS: lhs, RHS: rhs} }

// UGE builds the unsigned comparison lhs >= rhs.
func UGE(lhs, rhs Expr) Cmp { return Cmp{Op: OpUGE, LHS: lhs, RHS: rhs} }

// ULT builds the unsigned comparison lhs < rhs.
func ULT(lhs, rhs Expr) Cmp { return Cmp{Op: OpULT, LHS: lhs, RHS: rhs} }

// UGT builds the unsigned comparison lhs > rhs.
func UGT(lhs, rhs Expr) Cmp { return Cmp{Op: OpUGT, LHS: lhs, RHS: rhs} }

// All conjoins exprs, dropping nil entries so callers can pass the result of
// an optional per-dimension compile step directly.
func All(exprs ...Expr) Expr {
	var kept []Expr
	for _, e := range exprs {
		if e != nil {
			kept = append(kept, e)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return And{Exprs: kept}
}

// Any disjoins exprs, dropping nil entries.
func Any(exprs ...Expr) Expr {
	var kept []Expr
	for _, e := range exprs {
		if e != nil {
			kept = append(kept, e)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return Or{Exprs: kept}
}
