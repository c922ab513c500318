// Package solve implements the Solver Driver (§4.6), Witness Translator
// (§4.7), and Rule Attributor (§4.8): turning a chain formula and a user
// expression into a witness packet and the rule responsible for it.
package solve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plexsphere/solvetables/internal/chain"
	"github.com/plexsphere/solvetables/internal/constraint"
	"github.com/plexsphere/solvetables/internal/oracle"
	"github.com/plexsphere/solvetables/internal/packet"
	"github.com/plexsphere/solvetables/internal/rules"
)

// Driver runs a single chain-formula solve against an Oracle.
type Driver struct {
	Oracle oracle.Oracle
	Logger *slog.Logger
}

// NewDriver returns a Driver. If logger is nil, slog.Default() is used.
func NewDriver(o oracle.Oracle, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{Oracle: o, Logger: logger.With("component", "solve")}
}

// Result is the outcome of a single Solve call.
type Result struct {
	Sat   bool
	Model *oracle.Model
}

// Solve constructs chainFormula ∧ userPredicate ∧ domainBounds and issues
// one oracle check (§4.6). domainBounds must be built from sym *after* both
// the chain and the user expression have been compiled, since either can
// extend the Interface Enum (§3's lifecycle invariant).
func (d *Driver) Solve(ctx context.Context, chainFormula, userPredicate constraint.Expr, sym *packet.SymbolContext) (*Result, error) {
	bounds := chain.DomainBounds(sym)
	formula := constraint.All(chainFormula, userPredicate, bounds)

	model, sat, err := d.Oracle.Solve(ctx, formula)
	if err != nil {
		return nil, fmt.Errorf("solve: oracle check: %w", err)
	}
	d.Logger.Info("solve complete", "sat", sat)
	if !sat {
		return &Result{Sat: false}, nil
	}
	return &Result{Sat: true, Model: model}, nil
}

// AttributionKind classifies the outcome of Attribute, redesigning the
// original's "Something went wrong!" treatment of an attribution miss after
// a sat solve (SPEC_FULL.md Open Question 5).
type AttributionKind int

const (
	// ByRule: the witness was attributed to a specific rule in the chain.
	ByRule AttributionKind = iota
	// ByDefaultPolicy: no rule's constraints admit the witness, but the
	// chain's default policy is ACCEPT, which is how the packet got
	// through — a legitimate outcome, not an error.
	ByDefaultPolicy
	// Inconsistent: no rule matches and the default policy was not
	// ACCEPT, which should be unreachable for a sat overall solve (§7).
	Inconsistent
)

// Attribute finds the first rule in c whose constraints, together with the
// witness model and the domain bounds, are jointly satisfiable (§4.8). It
// scans every rule with a terminal target (ACCEPT, REJECT or DROP). A rule
// that jumps to a user-defined chain compiles to nil and is skipped, so it
// is never the attributed rule.
func Attribute(ctx context.Context, o oracle.Oracle, c *chain.Chain, sym *packet.SymbolContext, model *oracle.Model, opts rules.CompileOptions) (*rules.Rule, AttributionKind, error) {
	bounds := chain.DomainBounds(sym)

	for _, r := range c.Rules {
		compiled, err := rules.Compile(r, sym, opts)
		if err != nil {
			return nil, Inconsistent, err
		}
		if compiled == nil {
			continue
		}

		pinned := pinToModel(model)
		formula := constraint.All(compiled, bounds, pinned)

		_, sat, err := o.Solve(ctx, formula)
		if err != nil {
			return nil, Inconsistent, fmt.Errorf("solve: attribute: %w", err)
		}
		if sat {
			return r, ByRule, nil
		}
	}

	if c.DefaultPolicy == chain.PolicyAccept {
		return nil, ByDefaultPolicy, nil
	}
	return nil, Inconsistent, nil
}

// pinToModel builds the conjunction "every packet model variable equals its
// witness value" (§4.8).
func pinToModel(model *oracle.Model) constraint.Expr {
	parts := make([]constraint.Expr, 0, len(packet.Fields))
	for _, f := range packet.Fields {
		parts = append(parts, constraint.Eq(constraint.Field(f), constraint.Lit(model.Value(f))))
	}
	return constraint.All(parts...)
}
