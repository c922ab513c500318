// Package cmd implements the solvetables CLI command. Argument parsing,
// rules-file reading, default-policy detection, and output formatting are
// explicitly OUT OF SCOPE of THE CORE (spec.md §1) and are kept minimal here.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/plexsphere/solvetables/internal/chain"
	"github.com/plexsphere/solvetables/internal/expr"
	"github.com/plexsphere/solvetables/internal/oracle"
	"github.com/plexsphere/solvetables/internal/packet"
	"github.com/plexsphere/solvetables/internal/rules"
	"github.com/plexsphere/solvetables/internal/runconfig"
	"github.com/plexsphere/solvetables/internal/solve"
	"github.com/plexsphere/solvetables/internal/telemetry"
)

var (
	defaultPolicyFlag string
	configFlag        string
	metricsFlag       bool
)

// Build info set from main.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo sets the version info from build-time ldflags.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("solvetables version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "solvetables {INPUT|FORWARD|OUTPUT} <rules-file> <expression-token>...",
	Short: "solvetables checks whether a predicate over packet fields is satisfiable under a firewall chain",
	Long: "solvetables compiles a stateful packet-filter rule chain plus a user-supplied\n" +
		"predicate into a bit-vector satisfiability problem, solves it, and reports\n" +
		"both a witness packet and the rule responsible for it.",
	Args:         cobra.MinimumNArgs(3),
	SilenceUsage: true,
	RunE:         runSolve,
}

func init() {
	rootCmd.Flags().StringVar(&defaultPolicyFlag, "default-policy", "", "default policy (ACCEPT, DROP, REJECT); auto-detected from the rules file if omitted")
	rootCmd.Flags().StringVar(&configFlag, "config", "", "optional YAML config file for solver tuning")
	rootCmd.Flags().BoolVar(&metricsFlag, "metrics", false, "print solve-duration and outcome metrics to stderr after running")

	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("solvetables version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// policyLineRE matches an iptables-save style chain policy line, e.g.
// ":INPUT DROP [0:0]".
var policyLineRE = regexp.MustCompile(`(?m)^:(\S+)\s+(ACCEPT|DROP|REJECT)`)

func runSolve(cmd *cobra.Command, args []string) error {
	chainName, ok := chain.ParseName(args[0])
	if !ok {
		return fmt.Errorf("unknown chain %q: expected INPUT, FORWARD, or OUTPUT", args[0])
	}
	rulesPath := args[1]
	exprTokens := args[2:]
	if len(exprTokens) == 1 {
		exprTokens = strings.Fields(exprTokens[0])
	}

	cfg := &runconfig.Config{}
	if configFlag != "" {
		loaded, err := runconfig.Load(configFlag)
		if err != nil {
			return fmt.Errorf("loading --config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyDefaults()

	data, err := os.ReadFile(rulesPath)
	if err != nil {
		return fmt.Errorf("reading rules file: %w", err)
	}
	contents := string(data)

	policy, err := resolveDefaultPolicy(cmd, chainName, contents)
	if err != nil {
		return err
	}

	var ruleList []*rules.Rule
	prefix := "-A " + string(chainName) + " "
	for _, line := range strings.Split(contents, "\n") {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		r, err := rules.Parse(line)
		if err != nil {
			return err
		}
		ruleList = append(ruleList, r)
	}

	c := &chain.Chain{Name: chainName, DefaultPolicy: policy, Rules: ruleList}
	sym := packet.NewSymbolContext()
	compileOpts := rules.CompileOptions{CapPortRange: cfg.CapPortRange, FixInversionGuard: cfg.FixInversionGuard}

	chainFormula, err := chain.Assemble(c, sym, compileOpts)
	if err != nil {
		return err
	}

	userPredicate, err := expr.Compile(exprTokens, sym)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.SolveTimeout)
	defer cancel()

	o := oracle.NewZ3Oracle()
	driver := solve.NewDriver(o, nil)

	collector := telemetry.NewCollector()
	start := time.Now()
	result, err := driver.Solve(ctx, chainFormula, userPredicate, sym)
	collector.ObserveSolve(time.Since(start), err == nil && result != nil && result.Sat)
	if err != nil {
		return err
	}
	if metricsFlag {
		defer collector.WriteText(os.Stderr)
	}
	if !result.Sat {
		fmt.Fprintln(cmd.OutOrStdout(), "The provided constraints are not satisfiable.")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "The identified model is:")
	printRawModel(out, result.Model)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Use the following parameters to create packet for desired effect:")
	witness := solve.Translate(result.Model, sym)
	for _, line := range witness.Lines() {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	rule, kind, err := solve.Attribute(ctx, o, c, sym, result.Model, compileOpts)
	if err != nil {
		return err
	}
	switch kind {
	case solve.ByRule:
		fmt.Fprintln(out, "The iptables rule hit is:")
		fmt.Fprintln(out, rule.Text)
	case solve.ByDefaultPolicy:
		fmt.Fprintln(out, "No rule matched; the packet was accepted by the chain's default policy.")
	default:
		fmt.Fprintln(out, "Internal inconsistency: no rule or default policy accounts for a satisfiable model.")
	}
	return nil
}

func resolveDefaultPolicy(cmd *cobra.Command, chainName chain.Name, contents string) (chain.Policy, error) {
	if defaultPolicyFlag != "" {
		return chain.Policy(defaultPolicyFlag), nil
	}
	for _, m := range policyLineRE.FindAllStringSubmatch(contents, -1) {
		if m[1] == string(chainName) {
			fmt.Fprintf(cmd.OutOrStdout(), "identified default policy for %s is %s\n", chainName, m[2])
			return chain.Policy(m[2]), nil
		}
	}
	return "", fmt.Errorf("unable to detect default policy for %s, please specify with --default-policy", chainName)
}

func printRawModel(w io.Writer, m *oracle.Model) {
	for _, f := range packet.Fields {
		fmt.Fprintf(w, "  %s -> %d\n", f, m.Value(f))
	}
}
