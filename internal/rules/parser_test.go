package rules

import "testing"

func TestParseBasicRule(t *testing.T) {
	r, err := Parse("-A INPUT -s 10.0.0.0/8 -p tcp --dport 22 -j ACCEPT")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if r.Source != "10.0.0.0/8" {
		t.Errorf("Source = %q, want 10.0.0.0/8", r.Source)
	}
	if r.Protocol != "tcp" {
		t.Errorf("Protocol = %q, want tcp", r.Protocol)
	}
	if r.DstPortSpec != "22" {
		t.Errorf("DstPortSpec = %q, want 22", r.DstPortSpec)
	}
	if r.Target != TargetAccept {
		t.Errorf("Target = %q, want ACCEPT", r.Target)
	}
}

func TestParseRejectsMissingAppendPrefix(t *testing.T) {
	_, err := Parse("-s 10.0.0.0/8 -j ACCEPT")
	if err == nil {
		t.Fatal("expected error for a rule missing -A <CHAIN>")
	}
}

func TestParseRejectsUnknownOption(t *testing.T) {
	_, err := Parse("-A INPUT --frobnicate -j ACCEPT")
	if err == nil {
		t.Fatal("expected error for an unrecognized option")
	}
}

func TestParseNegationLongForm(t *testing.T) {
	r, err := Parse("-A INPUT ! --destination 10.0.0.0/8 -j DROP")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if r.NotDestination != "10.0.0.0/8" {
		t.Errorf("NotDestination = %q, want 10.0.0.0/8", r.NotDestination)
	}
	if r.Destination != "" {
		t.Errorf("Destination should be empty when only the negated form is given, got %q", r.Destination)
	}
}

func TestParseNegationShortForm(t *testing.T) {
	r, err := Parse("-A INPUT ! -s 10.0.0.0/8 -j DROP")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if r.NotSource != "10.0.0.0/8" {
		t.Errorf("NotSource = %q, want 10.0.0.0/8 (! -s must normalize to -ns)", r.NotSource)
	}
}

func TestParseRejectsMutuallyExclusiveSourceForms(t *testing.T) {
	_, err := Parse("-A INPUT -s 10.0.0.0/8 -ns 10.0.0.0/8 -j ACCEPT")
	if err == nil {
		t.Fatal("expected error: -s and -ns are mutually exclusive")
	}
}

func TestParseToleratesMatchExtensions(t *testing.T) {
	r, err := Parse("-A INPUT -p tcp -m state --state NEW -j ACCEPT")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if r.State != "NEW" {
		t.Errorf("State = %q, want NEW", r.State)
	}
	if r.Extra["match"] != "state" {
		t.Errorf("Extra[match] = %q, want state", r.Extra["match"])
	}
}

func TestParseToleratesTwoValueMatchExtension(t *testing.T) {
	r, err := Parse("-A INPUT -p tcp --tcp-flags SYN,ACK SYN -j ACCEPT")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if r.Extra["tcp-flags"] != "SYN,ACK SYN" {
		t.Errorf("Extra[tcp-flags] = %q, want %q", r.Extra["tcp-flags"], "SYN,ACK SYN")
	}
}

func TestParseBoolOption(t *testing.T) {
	r, err := Parse("-A INPUT --rcheck --name blacklist -j DROP")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if r.Extra["rcheck"] != "" {
		t.Errorf("Extra[rcheck] = %q, want empty (boolean flag)", r.Extra["rcheck"])
	}
	if r.Extra["name"] != "blacklist" {
		t.Errorf("Extra[name] = %q, want blacklist", r.Extra["name"])
	}
}

func TestParseOptionMissingValue(t *testing.T) {
	_, err := Parse("-A INPUT -s")
	if err == nil {
		t.Fatal("expected error: -s requires a value")
	}
}
