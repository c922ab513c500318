package chain

import (
	"context"
	"testing"

	"github.com/plexsphere/solvetables/internal/constraint"
	"github.com/plexsphere/solvetables/internal/oracle"
	"github.com/plexsphere/solvetables/internal/packet"
	"github.com/plexsphere/solvetables/internal/rules"
)

func parseRule(t *testing.T, line string) *rules.Rule {
	t.Helper()
	r, err := rules.Parse(line)
	if err != nil {
		t.Fatalf("rules.Parse(%q) error: %v", line, err)
	}
	return r
}

func TestParseNameAcceptsBuiltins(t *testing.T) {
	for _, name := range []string{"INPUT", "FORWARD", "OUTPUT"} {
		if _, ok := ParseName(name); !ok {
			t.Errorf("ParseName(%q) = false, want true", name)
		}
	}
	if _, ok := ParseName("PREROUTING"); ok {
		t.Error("ParseName(PREROUTING) = true, want false (not a built-in chain)")
	}
}

func TestAssembleFirstMatchWins(t *testing.T) {
	sym := packet.NewSymbolContext()
	c := &Chain{
		Name:          Input,
		DefaultPolicy: PolicyDrop,
		Rules: []*rules.Rule{
			parseRule(t, "-A INPUT -p tcp --dport 22 -j DROP"),
			parseRule(t, "-A INPUT -p tcp --dport 22 -j ACCEPT"),
		},
	}
	formula, err := Assemble(c, sym, rules.CompileOptions{})
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}

	pinned := constraint.All(
		constraint.Eq(constraint.Field(packet.Protocol), constraint.Lit(1)),
		constraint.Eq(constraint.Field(packet.DstPort), constraint.Lit(22)),
	)
	o := oracle.NewBoundedOracle()
	_, sat, err := o.Solve(context.Background(), constraint.All(formula, pinned))
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if sat {
		t.Fatal("the first rule (DROP) should win, so the chain must not accept port 22 traffic")
	}
}

func TestAssembleDefaultPolicyAccept(t *testing.T) {
	sym := packet.NewSymbolContext()
	c := &Chain{
		Name:          Input,
		DefaultPolicy: PolicyAccept,
		Rules:         nil,
	}
	formula, err := Assemble(c, sym, rules.CompileOptions{})
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	o := oracle.NewBoundedOracle()
	_, sat, err := o.Solve(context.Background(), formula)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sat {
		t.Fatal("an empty chain with default policy ACCEPT should admit any packet")
	}
}

func TestAssembleDefaultPolicyDropYieldsUnsatWithNoRules(t *testing.T) {
	sym := packet.NewSymbolContext()
	c := &Chain{Name: Input, DefaultPolicy: PolicyDrop}
	formula, err := Assemble(c, sym, rules.CompileOptions{})
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	o := oracle.NewBoundedOracle()
	_, sat, err := o.Solve(context.Background(), formula)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if sat {
		t.Fatal("an empty chain with a non-ACCEPT default policy should admit nothing")
	}
}

func TestAssembleSkipsNonTerminalTargets(t *testing.T) {
	sym := packet.NewSymbolContext()
	c := &Chain{
		Name:          Input,
		DefaultPolicy: PolicyDrop,
		Rules: []*rules.Rule{
			parseRule(t, "-A INPUT -p tcp -j LOGDROP"),
		},
	}
	if _, err := Assemble(c, sym, rules.CompileOptions{}); err != nil {
		t.Fatalf("Assemble should not error on a jump to a user-defined chain: %v", err)
	}
}

func TestDomainBoundsRejectsOutOfEnumProtocol(t *testing.T) {
	sym := packet.NewSymbolContext()
	// Give the Interface Enum a member so its bound is present too; this
	// test is only about the protocol bound, and an empty enum must leave
	// in_iface/out_iface unconstrained rather than forcing unsat on its own.
	sym.InterfaceIndex("eth0")
	bounds := DomainBounds(sym)
	pinned := constraint.All(
		constraint.Eq(constraint.Field(packet.Protocol), constraint.Lit(uint64(len(packet.ProtocolEnum)))),
		constraint.Eq(constraint.Field(packet.InIface), constraint.Lit(0)),
		constraint.Eq(constraint.Field(packet.OutIface), constraint.Lit(0)),
	)
	o := oracle.NewBoundedOracle()
	_, sat, err := o.Solve(context.Background(), constraint.All(bounds, pinned))
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if sat {
		t.Fatal("DomainBounds should reject a protocol index outside ProtocolEnum")
	}
}

func TestDomainBoundsWithEmptyInterfaceEnumIsSatisfiable(t *testing.T) {
	sym := packet.NewSymbolContext()
	bounds := DomainBounds(sym)
	o := oracle.NewBoundedOracle()
	_, sat, err := o.Solve(context.Background(), bounds)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sat {
		t.Fatal("DomainBounds must be satisfiable when the Interface Enum is empty, not force in_iface/out_iface < 0")
	}
}
