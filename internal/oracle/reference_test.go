package oracle

import (
	"context"
	"testing"

	"github.com/plexsphere/solvetables/internal/constraint"
	"github.com/plexsphere/solvetables/internal/packet"
)

func TestBoundedOracleSatisfiable(t *testing.T) {
	o := NewBoundedOracle()
	formula := constraint.Eq(constraint.Field(packet.DstPort), constraint.Lit(443))

	model, sat, err := o.Solve(context.Background(), formula)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sat {
		t.Fatal("expected sat")
	}
	if model.Value(packet.DstPort) != 443 {
		t.Fatalf("model dst_port = %d, want 443", model.Value(packet.DstPort))
	}
}

func TestBoundedOracleUnsatisfiable(t *testing.T) {
	o := NewBoundedOracle()
	formula := constraint.All(
		constraint.Eq(constraint.Field(packet.DstPort), constraint.Lit(443)),
		constraint.Eq(constraint.Field(packet.DstPort), constraint.Lit(80)),
	)

	_, sat, err := o.Solve(context.Background(), formula)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if sat {
		t.Fatal("expected unsat: dst_port cannot be both 443 and 80")
	}
}

func TestBoundedOracleModelCompletionDefaultsToZero(t *testing.T) {
	o := NewBoundedOracle()
	formula := constraint.Eq(constraint.Field(packet.DstPort), constraint.Lit(443))

	model, sat, err := o.Solve(context.Background(), formula)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sat {
		t.Fatal("expected sat")
	}
	if model.Value(packet.SrcIP) != 0 {
		t.Fatalf("unqueried field src_ip = %d, want 0 under model completion", model.Value(packet.SrcIP))
	}
}

func TestModelValueOnNilModel(t *testing.T) {
	var m *Model
	if m.Value(packet.DstPort) != 0 {
		t.Fatal("a nil *Model must report 0 for any field")
	}
}
