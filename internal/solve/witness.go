package solve

import (
	"fmt"
	"net"

	"github.com/plexsphere/solvetables/internal/oracle"
	"github.com/plexsphere/solvetables/internal/packet"
)

// Witness is a model's fields rendered in human-readable form (§4.7).
type Witness struct {
	SrcIP           net.IP
	DstIP           net.IP
	InputInterface  string
	OutputInterface string
	Protocol        string
	SrcPort         uint16
	DstPort         uint16
	State           string
}

// Translate renders model's assignments into a Witness, indexing the
// Protocol/State/Interface enums and formatting IPs as dotted-quad (§4.7).
func Translate(model *oracle.Model, sym *packet.SymbolContext) Witness {
	return Witness{
		SrcIP:           ipFromUint32(model.Value(packet.SrcIP)),
		DstIP:           ipFromUint32(model.Value(packet.DstIP)),
		InputInterface:  sym.InterfaceName(int(model.Value(packet.InIface))),
		OutputInterface: sym.InterfaceName(int(model.Value(packet.OutIface))),
		Protocol:        enumNameOrIndex(packet.ProtocolEnum, model.Value(packet.Protocol)),
		SrcPort:         uint16(model.Value(packet.SrcPort)),
		DstPort:         uint16(model.Value(packet.DstPort)),
		State:           enumNameOrIndex(packet.StateEnum, model.Value(packet.State)),
	}
}

func ipFromUint32(v uint64) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func enumNameOrIndex(enum []string, idx uint64) string {
	if idx < uint64(len(enum)) {
		return enum[idx]
	}
	return fmt.Sprintf("<unknown:%d>", idx)
}

// Lines renders the witness as the key: value lines §6 specifies for
// stdout, in packet-field order.
func (w Witness) Lines() []string {
	return []string{
		fmt.Sprintf("  src_ip: %s", w.SrcIP),
		fmt.Sprintf("  dst_ip: %s", w.DstIP),
		fmt.Sprintf("  input_interface: %s", w.InputInterface),
		fmt.Sprintf("  output_interface: %s", w.OutputInterface),
		fmt.Sprintf("  protocol: %s", w.Protocol),
		fmt.Sprintf("  src_port: %d", w.SrcPort),
		fmt.Sprintf("  dst_port: %d", w.DstPort),
		fmt.Sprintf("  state: %s", w.State),
	}
}
