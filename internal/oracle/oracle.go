// Package oracle defines the Solver Driver's contract with an SMT bit-vector
// decision procedure (§4.6) and provides two implementations: Z3Oracle, the
// production backend, and BoundedOracle, a pure-Go evaluator used by tests
// and by any caller that does not need a general solver.
package oracle

import (
	"context"

	"github.com/plexsphere/solvetables/internal/constraint"
	"github.com/plexsphere/solvetables/internal/packet"
)

// Model is a concrete assignment of every queried packet model variable to
// an unsigned integer. Per §4.6, unqueried variables default to 0 under
// model completion; Value reflects that.
type Model struct {
	Values map[packet.Field]uint64
}

// Value returns the model's assignment for f, defaulting to 0 if f was never
// queried (model completion, §4.6).
func (m *Model) Value(f packet.Field) uint64 {
	if m == nil {
		return 0
	}
	return m.Values[f]
}

// Oracle accepts a conjunction of bit-vector constraints over the packet
// model and returns either a satisfying Model or reports unsat. It owns its
// own solver instance for the duration of a single Solve call and must
// release it deterministically before returning (§5).
type Oracle interface {
	Solve(ctx context.Context, formula constraint.Expr) (*Model, bool, error)
}
