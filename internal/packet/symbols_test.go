package packet

import "testing"

func TestInterfaceIndexAssignsAppendOnly(t *testing.T) {
	sym := NewSymbolContext()

	eth0 := sym.InterfaceIndex("eth0")
	eth1 := sym.InterfaceIndex("eth1")
	if eth0 == eth1 {
		t.Fatal("distinct interface names must get distinct indices")
	}

	again := sym.InterfaceIndex("eth0")
	if again != eth0 {
		t.Fatalf("InterfaceIndex(eth0) second call = %d, want %d (stable)", again, eth0)
	}

	if got := sym.InterfaceCount(); got != 2 {
		t.Fatalf("InterfaceCount() = %d, want 2", got)
	}
}

func TestInterfaceNameRoundTrip(t *testing.T) {
	sym := NewSymbolContext()
	idx := sym.InterfaceIndex("wg0")
	if got := sym.InterfaceName(idx); got != "wg0" {
		t.Fatalf("InterfaceName(%d) = %q, want wg0", idx, got)
	}
}

func TestInterfaceNameOutOfRange(t *testing.T) {
	sym := NewSymbolContext()
	if got := sym.InterfaceName(0); got != "" {
		t.Fatalf("InterfaceName(0) on empty context = %q, want \"\"", got)
	}
	if got := sym.InterfaceName(-1); got != "" {
		t.Fatalf("InterfaceName(-1) = %q, want \"\"", got)
	}
}

func TestSymbolContextsAreIndependent(t *testing.T) {
	a := NewSymbolContext()
	b := NewSymbolContext()

	a.InterfaceIndex("eth0")
	a.InterfaceIndex("eth1")
	first := b.InterfaceIndex("eth0")

	if first != 0 {
		t.Fatalf("fresh SymbolContext must start its own enum at 0, got %d", first)
	}
	if a.InterfaceCount() != 2 || b.InterfaceCount() != 1 {
		t.Fatalf("SymbolContext state leaked across instances: a=%d b=%d", a.InterfaceCount(), b.InterfaceCount())
	}
}
