// Package expr implements the Expression Compiler (§4.5): a tiny,
// explicitly non-precedenced infix predicate DSL over packet field names.
package expr

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/plexsphere/solvetables/internal/constraint"
	"github.com/plexsphere/solvetables/internal/packet"
)

// CompileError reports an unparseable expression token: an unknown operand
// name or operator, an unparseable literal, or a token count not congruent
// to 3 mod 4 (§4.5, §7).
type CompileError struct {
	Token  string
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("expr: %q: %s", e.Token, e.Reason)
}

var operandFields = map[string]packet.Field{
	"src_ip":    packet.SrcIP,
	"dst_ip":    packet.DstIP,
	"in_iface":  packet.InIface,
	"out_iface": packet.OutIface,
	"protocol":  packet.Protocol,
	"src_port":  packet.SrcPort,
	"dst_port":  packet.DstPort,
	"state":     packet.State,
}

func cmpBuilder(op string) (func(lhs, rhs constraint.Expr) constraint.Cmp, bool) {
	switch op {
	case "==":
		return constraint.Eq, true
	case "!=":
		return constraint.Ne, true
	case "<=":
		return constraint.ULE, true
	case ">=":
		return constraint.UGE, true
	case "<":
		return constraint.ULT, true
	case ">":
		return constraint.UGT, true
	default:
		return nil, false
	}
}

// Compile parses a flat left-associative sequence of
// "<operand> <op> <literal> (<and|or> <operand> <op> <literal>)*" tokens
// into a single constraint, extending sym's Interface Enum whenever an
// *_iface operand2 names an interface not yet seen (§4.5). Associativity is
// strictly left-to-right: precedence between "and" and "or" is not
// respected, per §4.5's explicit design choice — this is not a bug to fix.
func Compile(tokens []string, sym *packet.SymbolContext) (constraint.Expr, error) {
	if len(tokens)%4 != 3 {
		return nil, &CompileError{
			Token:  strings.Join(tokens, " "),
			Reason: fmt.Sprintf("expected a token count congruent to 3 mod 4, got %d", len(tokens)),
		}
	}

	var result constraint.Expr
	var concat string // "and" or "or", applied to the *next* triple

	for len(tokens) > 0 {
		operand1, operator, operand2 := tokens[0], tokens[1], tokens[2]
		tokens = tokens[3:]

		field, ok := operandFields[operand1]
		if !ok {
			return nil, &CompileError{Token: operand1, Reason: "unknown operand"}
		}
		build, ok := cmpBuilder(operator)
		if !ok {
			return nil, &CompileError{Token: operator, Reason: "unknown operator"}
		}
		lit, err := literalFor(field, operand1, operand2, sym)
		if err != nil {
			return nil, err
		}

		sub := build(constraint.Field(field), constraint.Lit(lit))

		if result == nil {
			result = sub
		} else {
			switch concat {
			case "and":
				result = constraint.All(result, sub)
			case "or":
				result = constraint.Any(result, sub)
			default:
				return nil, &CompileError{Token: concat, Reason: "unknown concatenation operator"}
			}
		}

		if len(tokens) > 0 {
			concat = tokens[0]
			if concat != "and" && concat != "or" {
				return nil, &CompileError{Token: concat, Reason: "expected 'and' or 'or'"}
			}
			tokens = tokens[1:]
		}
	}

	return result, nil
}

// literalFor parses operand2 according to operand1's field kind: an IPv4
// address for *_ip, a decimal integer for *_port, an interface name (which
// extends the Interface Enum on first sight) for *_iface, a protocol name
// for protocol, or a state name for state.
func literalFor(field packet.Field, operand1, operand2 string, sym *packet.SymbolContext) (uint64, error) {
	switch {
	case strings.HasSuffix(operand1, "_ip"):
		ip := net.ParseIP(operand2).To4()
		if ip == nil {
			return 0, &CompileError{Token: operand2, Reason: "not a valid IPv4 address"}
		}
		return uint64(ip[0])<<24 | uint64(ip[1])<<16 | uint64(ip[2])<<8 | uint64(ip[3]), nil

	case strings.HasSuffix(operand1, "_port"):
		n, err := strconv.ParseUint(operand2, 10, 64)
		if err != nil {
			return 0, &CompileError{Token: operand2, Reason: "not a valid port number"}
		}
		return n, nil

	case strings.HasSuffix(operand1, "_iface"):
		return uint64(sym.InterfaceIndex(operand2)), nil

	case field == packet.Protocol:
		idx, ok := packet.ProtocolIndex(operand2)
		if !ok {
			return 0, &CompileError{Token: operand2, Reason: "unknown protocol name"}
		}
		return uint64(idx), nil

	case field == packet.State:
		idx, ok := packet.StateIndex(operand2)
		if !ok {
			return 0, &CompileError{Token: operand2, Reason: "unknown state name"}
		}
		return uint64(idx), nil

	default:
		return 0, &CompileError{Token: operand1, Reason: "operand has no literal parser"}
	}
}
