// Package rules implements the Rule Parser (§4.1) and Rule Compiler (§4.2):
// turning one textual firewall rule line into a normalized record and then
// into a constraint.Expr over the packet model.
package rules

import "github.com/plexsphere/solvetables/internal/constraint"

// Target is a rule's jump target: one of the three terminal targets or the
// name of a user-defined chain.
type Target string

// The terminal targets a rule can jump to. Any other value names a
// user-defined chain.
const (
	TargetAccept Target = "ACCEPT"
	TargetReject Target = "REJECT"
	TargetDrop   Target = "DROP"
)

// IsTerminal reports whether t immediately decides a packet's fate, as
// opposed to naming a user-defined chain the compiler does not follow
// (§9 open question 3).
func (t Target) IsTerminal() bool {
	return t == TargetAccept || t == TargetReject || t == TargetDrop
}

// Rule is a parsed, normalized firewall rule: its original text, its jump
// target, and for each filter dimension either a value or its zero value
// plus the dimension's inversion flag.
type Rule struct {
	// Text is the original rule line, kept for reporting (§6 output,
	// §4.8 attribution).
	Text string

	Target Target

	Source         string // CIDR; "" means unset (default applies)
	NotSource      string // CIDR; set together with an inverted match
	Destination    string
	NotDestination string

	InIface     string
	NotInIface  string
	OutIface    string
	NotOutIface string

	// Protocol is the protocol name; "" is treated the same as "all".
	Protocol string

	// SrcPortSpec and DstPortSpec hold the raw, unparsed port
	// specification (single port, "lo:hi" range, or comma list).
	// DefaultPortSpec is substituted when the option is absent, per §4.1.
	SrcPortSpec string
	DstPortSpec string

	// State is the raw, comma-separated ctstate list; "" means
	// unconstrained.
	State string

	// Extra absorbs recognized-but-ignored match-extension options
	// (--tcp-flags, --icmp-type, --set, --name, --mask, --rsource,
	// --rcheck, --seconds, -f/--fragment, -c/--set-counters, -m/--match)
	// so that real iptables-save output parses without a rule error, per
	// §4.1's "unknown tokens... are tolerated."
	Extra map[string]string

	compiled    constraint.Expr
	compiledSet bool
}

// DefaultPortSpec is the port specification implicitly applied when a rule
// omits --sport/--dport. It reproduces the original implementation's
// six-digit typo ("0:655335" instead of "0:65535") rather than silently
// correcting it; see CompileOptions.CapPortRange and SPEC_FULL.md's Open
// Question 1.
const DefaultPortSpec = "0:655335"

// DefaultCIDR is the implicit source/destination CIDR when neither the
// positive nor negated option is present: the entire address space.
const DefaultCIDR = "0.0.0.0/0"
