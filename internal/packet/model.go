// Package packet defines the fixed bit-vector packet model shared by every
// rule and expression that gets compiled in a single solvetables run.
package packet

import "fmt"

// Field names one of the fixed bit-vector variables in the packet model.
// All constraint builders reference these names rather than constructing
// their own variables, so that every constraint in a run shares the same
// underlying bit-vector instances.
type Field string

// The fixed set of packet model variables and their widths.
const (
	SrcIP    Field = "src_ip"
	DstIP    Field = "dst_ip"
	InIface  Field = "in_iface"
	OutIface Field = "out_iface"
	Protocol Field = "protocol"
	SrcPort  Field = "src_port"
	DstPort  Field = "dst_port"
	State    Field = "state"
)

// Width returns the bit-vector width of a packet model field. It panics on
// an unrecognized field since the field set is closed and any caller asking
// about a field outside it has a programming error, not a runtime condition.
func (f Field) Width() uint {
	switch f {
	case SrcIP, DstIP:
		return 32
	case InIface, OutIface:
		return 8
	case Protocol, State:
		return 4
	case SrcPort, DstPort:
		return 16
	default:
		panic(fmt.Sprintf("packet: unknown field %q", f))
	}
}

// Fields lists every packet model variable in a fixed, stable order. Used by
// the Rule Attributor to pin every field to its witness value, by the CLI to
// print the raw model, and by tests that iterate the whole model.
var Fields = []Field{SrcIP, DstIP, InIface, OutIface, Protocol, SrcPort, DstPort, State}

// ProtocolEnum is the ordered list of recognized protocol names. Index 0
// ("all") means "protocol is unconstrained" per §3 of the rule compiler.
var ProtocolEnum = []string{
	"all", "tcp", "udp", "udplite", "icmp", "icmpv6", "esp", "ah", "sctp", "mh",
}

// StateEnum is the ordered list of recognized connection-tracking states.
var StateEnum = []string{"NEW", "RELATED", "ESTABLISHED"}

// ProtocolIndex returns the index of a protocol name in ProtocolEnum.
func ProtocolIndex(name string) (int, bool) {
	return indexOf(ProtocolEnum, name)
}

// StateIndex returns the index of a connection-tracking state name in StateEnum.
func StateIndex(name string) (int, bool) {
	return indexOf(StateEnum, name)
}

func indexOf(enum []string, name string) (int, bool) {
	for i, v := range enum {
		if v == name {
			return i, true
		}
	}
	return 0, false
}
