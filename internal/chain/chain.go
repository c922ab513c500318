// Package chain implements the Chain Assembler (§4.3) and the domain-bounds
// constraint (§4.4): combining an ordered sequence of compiled rules into
// one first-match-wins formula.
package chain

import (
	"github.com/plexsphere/solvetables/internal/constraint"
	"github.com/plexsphere/solvetables/internal/packet"
	"github.com/plexsphere/solvetables/internal/rules"
)

// Policy is a chain's default policy, applied when no rule's constraint
// matches.
type Policy string

const (
	PolicyAccept Policy = "ACCEPT"
	PolicyDrop   Policy = "DROP"
	PolicyReject Policy = "REJECT"
)

// Name is one of the three built-in chains a rules file can target.
type Name string

const (
	Input   Name = "INPUT"
	Forward Name = "FORWARD"
	Output  Name = "OUTPUT"
)

// ParseName validates a chain name against the three built-ins (§6).
func ParseName(s string) (Name, bool) {
	switch Name(s) {
	case Input, Forward, Output:
		return Name(s), true
	default:
		return "", false
	}
}

// Chain is an ordered sequence of rules plus a default policy.
type Chain struct {
	Name          Name
	DefaultPolicy Policy
	Rules         []*rules.Rule
}

// Assemble builds the single formula whose models are exactly the packets
// this chain accepts (§4.3's first-match-wins algorithm). Assemble compiles
// each rule against sym itself (rules.Compile memoizes the result), so it
// can extend the Interface Enum; DomainBounds must be built after it.
func Assemble(c *Chain, sym *packet.SymbolContext, opts rules.CompileOptions) (constraint.Expr, error) {
	var prior []constraint.Expr
	var accepted []constraint.Expr

	for _, r := range c.Rules {
		compiled, err := rules.Compile(r, sym, opts)
		if err != nil {
			return nil, err
		}
		if compiled == nil {
			continue
		}
		if r.Target == rules.TargetAccept {
			if len(prior) == 0 {
				accepted = append(accepted, compiled)
			} else {
				accepted = append(accepted, constraint.All(constraint.Not{Expr: constraint.Any(prior...)}, compiled))
			}
		}
		prior = append(prior, compiled)
	}

	if c.DefaultPolicy == PolicyAccept {
		accepted = append(accepted, constraint.BoolLit(true))
	}

	return constraint.Any(accepted...), nil
}

// DomainBounds returns the constraint that keeps every enum-indexed field
// within its defined enum, per §4.4. It must be rebuilt (by calling this
// function again) whenever sym's Interface Enum grows after the chain was
// assembled — in particular after Expression Compilation, per §3's
// lifecycle invariant.
func DomainBounds(sym *packet.SymbolContext) constraint.Expr {
	ifaceCount := uint64(sym.InterfaceCount())
	bounds := []constraint.Expr{
		constraint.ULT(constraint.Field(packet.Protocol), constraint.Lit(uint64(len(packet.ProtocolEnum)))),
		constraint.ULT(constraint.Field(packet.State), constraint.Lit(uint64(len(packet.StateEnum)))),
	}
	// An empty Interface Enum means no rule or expression has named an
	// interface yet; "< 0" would be unsatisfiable for an unsigned field,
	// so leave in_iface/out_iface unconstrained rather than bounding them
	// against an empty set.
	if ifaceCount > 0 {
		bounds = append(bounds,
			constraint.ULT(constraint.Field(packet.InIface), constraint.Lit(ifaceCount)),
			constraint.ULT(constraint.Field(packet.OutIface), constraint.Lit(ifaceCount)),
		)
	}
	return constraint.All(bounds...)
}
