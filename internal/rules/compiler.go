package rules

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/plexsphere/solvetables/internal/constraint"
	"github.com/plexsphere/solvetables/internal/packet"
)

// CompileError reports a rule whose options could not be translated into a
// constraint: a bad CIDR, unknown protocol/state name, or malformed port
// spec (§4.1, §7).
type CompileError struct {
	Text   string
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("rules: compile %q: %s", e.Text, e.Reason)
}

// CompileOptions selects between preserving and fixing the two source
// quirks named in SPEC_FULL.md's Open Questions 1 and 2. The zero value
// preserves both quirks, matching the original implementation.
type CompileOptions struct {
	// CapPortRange clamps a port bound that does not fit in 16 bits to
	// 65535 instead of letting it truncate, fixing the DefaultPortSpec
	// anomaly.
	CapPortRange bool
	// FixInversionGuard makes the destination inversion guard check
	// NotDestination instead of (bug-for-bug) NotSource.
	FixInversionGuard bool
}

// Compile produces the constraint equivalent to "a packet matches this
// rule" (§4.2). Only rules whose target is ACCEPT, REJECT, or DROP produce a
// constraint; rules that jump to a user-defined chain compile to nil,
// per §9 open question 3. The result is memoized on the Rule.
func Compile(r *Rule, sym *packet.SymbolContext, opts CompileOptions) (constraint.Expr, error) {
	if r.compiledSet {
		return r.compiled, nil
	}
	if !r.Target.IsTerminal() {
		r.compiled = nil
		r.compiledSet = true
		return nil, nil
	}

	var parts []constraint.Expr

	// The per-dimension helpers do not see the rule line; attach it here so
	// every compile error names the offending rule.
	withText := func(err error) error {
		if ce, ok := err.(*CompileError); ok && ce.Text == "" {
			ce.Text = r.Text
		}
		return err
	}

	srcExpr, err := compileSourceDim(r, opts)
	if err != nil {
		return nil, withText(err)
	}
	parts = append(parts, srcExpr)

	dstExpr, err := compileDestinationDim(r, opts)
	if err != nil {
		return nil, withText(err)
	}
	parts = append(parts, dstExpr)

	parts = append(parts, compileInterfaceDim(packet.InIface, r.InIface, r.NotInIface, sym))
	parts = append(parts, compileInterfaceDim(packet.OutIface, r.OutIface, r.NotOutIface, sym))

	protoExpr, err := compileProtocol(r.Protocol)
	if err != nil {
		return nil, withText(err)
	}
	parts = append(parts, protoExpr)

	srcPort, err := compilePort(packet.SrcPort, r.SrcPortSpec, opts)
	if err != nil {
		return nil, &CompileError{Text: r.Text, Reason: fmt.Sprintf("src port: %v", err)}
	}
	parts = append(parts, srcPort)

	dstPort, err := compilePort(packet.DstPort, r.DstPortSpec, opts)
	if err != nil {
		return nil, &CompileError{Text: r.Text, Reason: fmt.Sprintf("dst port: %v", err)}
	}
	parts = append(parts, dstPort)

	if r.State != "" {
		stateExpr, err := compileState(r.State)
		if err != nil {
			return nil, withText(err)
		}
		parts = append(parts, stateExpr)
	}

	compiled := constraint.All(parts...)
	r.compiled = compiled
	r.compiledSet = true
	return compiled, nil
}

func compileSourceDim(r *Rule, opts CompileOptions) (constraint.Expr, error) {
	if r.NotSource != "" {
		return compileIP(packet.SrcIP, r.NotSource, true)
	}
	return compileIP(packet.SrcIP, valueOr(r.Source, DefaultCIDR), false)
}

// compileDestinationDim reproduces, by default, the original's inversion
// guard bug: it checks whether the *source* was negated to decide whether
// to use the negated destination, so an inverted destination only takes
// effect when the source is negated too. opts.FixInversionGuard switches to
// checking the destination's own negation instead.
func compileDestinationDim(r *Rule, opts CompileOptions) (constraint.Expr, error) {
	guard := r.NotSource != ""
	if opts.FixInversionGuard {
		guard = r.NotDestination != ""
	}
	if guard && r.NotDestination != "" {
		return compileIP(packet.DstIP, r.NotDestination, true)
	}
	return compileIP(packet.DstIP, valueOr(r.Destination, DefaultCIDR), false)
}

func compileIP(field packet.Field, cidr string, invert bool) (constraint.Expr, error) {
	lo, hi, err := cidrBounds(cidr)
	if err != nil {
		return nil, &CompileError{Reason: fmt.Sprintf("%s: bad CIDR %q: %v", field, cidr, err)}
	}
	v := constraint.Field(field)
	expr := constraint.All(
		constraint.ULE(constraint.Lit(lo), v),
		constraint.ULE(v, constraint.Lit(hi)),
	)
	if invert {
		return constraint.Not{Expr: expr}, nil
	}
	return expr, nil
}

// cidrBounds returns the inclusive numeric bounds of an IPv4 CIDR as
// unsigned 32-bit integers.
func cidrBounds(cidr string) (lo, hi uint32, err error) {
	if !strings.Contains(cidr, "/") {
		cidr += "/32"
	}
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return 0, 0, err
	}
	ip4 := ipnet.IP.To4()
	if ip4 == nil {
		return 0, 0, fmt.Errorf("not an IPv4 network")
	}
	lo = toUint32(ip4)
	mask := toUint32(net.IP(ipnet.Mask).To4())
	hi = lo | ^mask
	return lo, hi, nil
}

func toUint32(ip net.IP) uint32 {
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

func compileInterfaceDim(field packet.Field, name, notName string, sym *packet.SymbolContext) constraint.Expr {
	if notName != "" {
		idx := sym.InterfaceIndex(notName)
		return constraint.Not{Expr: constraint.Eq(constraint.Field(field), constraint.Lit(idx))}
	}
	if name == "" {
		return nil
	}
	idx := sym.InterfaceIndex(name)
	return constraint.Eq(constraint.Field(field), constraint.Lit(idx))
}

func compileProtocol(name string) (constraint.Expr, error) {
	if name == "" {
		name = "all"
	}
	idx, ok := packet.ProtocolIndex(name)
	if !ok {
		return nil, &CompileError{Reason: fmt.Sprintf("unknown protocol %q", name)}
	}
	if idx == 0 {
		return nil, nil
	}
	return constraint.Eq(constraint.Field(packet.Protocol), constraint.Lit(idx)), nil
}

// compilePort parses one of the three port-spec syntaxes (§4.2): a single
// integer, a "lo:hi" range, or a comma-separated list. An empty spec
// substitutes DefaultPortSpec, reproducing the six-digit upper-bound
// anomaly unless opts.CapPortRange is set.
func compilePort(field packet.Field, spec string, opts CompileOptions) (constraint.Expr, error) {
	if spec == "" {
		spec = DefaultPortSpec
	}
	v := constraint.Field(field)

	switch {
	case strings.Contains(spec, ":"):
		parts := strings.SplitN(spec, ":", 2)
		lo, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad range lower bound %q", parts[0])
		}
		hi, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad range upper bound %q", parts[1])
		}
		hi = clampOrTruncate(hi, opts.CapPortRange)
		lo = clampOrTruncate(lo, opts.CapPortRange)
		return constraint.All(
			constraint.ULE(constraint.Lit(lo), v),
			constraint.ULE(v, constraint.Lit(hi)),
		), nil

	case strings.Contains(spec, ","):
		var eqs []constraint.Expr
		for _, p := range strings.Split(spec, ",") {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad port in list %q", p)
			}
			eqs = append(eqs, constraint.Eq(v, constraint.Lit(n)))
		}
		return constraint.Any(eqs...), nil

	default:
		n, err := strconv.ParseUint(spec, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad port %q", spec)
		}
		return constraint.Eq(v, constraint.Lit(n)), nil
	}
}

// clampOrTruncate reproduces (or fixes) the 16-bit port width overflow: a
// value above 65535 either gets clamped to 65535 (cap=true) or truncated the
// way a uint16 conversion would (cap=false, the default, preserving the
// anomaly from DefaultPortSpec).
func clampOrTruncate(v uint64, capRange bool) uint64 {
	if v <= 65535 {
		return v
	}
	if capRange {
		return 65535
	}
	return uint64(uint16(v))
}

func compileState(spec string) (constraint.Expr, error) {
	var eqs []constraint.Expr
	for _, name := range strings.Split(spec, ",") {
		idx, ok := packet.StateIndex(name)
		if !ok {
			return nil, &CompileError{Reason: fmt.Sprintf("unknown state %q", name)}
		}
		eqs = append(eqs, constraint.Eq(constraint.Field(packet.State), constraint.Lit(idx)))
	}
	return constraint.Any(eqs...), nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
