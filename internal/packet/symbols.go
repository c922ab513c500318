package packet

// SymbolContext owns the run's Interface Enum: the append-only mapping from
// interface name to enum index. The original implementation keeps this as a
// process-global classmethod (Rule.INTERFACE_ENUM); here it is threaded
// explicitly through compilation so that two SymbolContext values never
// interfere and tests never need to reset global state.
type SymbolContext struct {
	interfaces []string
}

// NewSymbolContext returns an empty symbol context.
func NewSymbolContext() *SymbolContext {
	return &SymbolContext{}
}

// InterfaceIndex looks up name in the Interface Enum, appending it if this is
// the first time it has been seen. Membership is monotonic: once assigned, an
// index is never reused or reassigned.
func (c *SymbolContext) InterfaceIndex(name string) int {
	for i, v := range c.interfaces {
		if v == name {
			return i
		}
	}
	c.interfaces = append(c.interfaces, name)
	return len(c.interfaces) - 1
}

// InterfaceName returns the name assigned to idx, or "" if idx is out of range.
func (c *SymbolContext) InterfaceName(idx int) string {
	if idx < 0 || idx >= len(c.interfaces) {
		return ""
	}
	return c.interfaces[idx]
}

// InterfaceCount returns the current length of the Interface Enum. The
// domain-bounds constraint (§4.4) must be rebuilt against this value after
// every component that can extend the enum (Rule Compiler, Expression
// Compiler) has run.
func (c *SymbolContext) InterfaceCount() int {
	return len(c.interfaces)
}
