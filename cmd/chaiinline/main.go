// Command chaiinline is a small demonstration CLI around the inlining core:
// it parses an LLVM IR module, runs one SCC pass per call-graph SCC, and
// prints the observation stream and final counters. Built with
// github.com/ComedicChimera/olive the same way chai/src/cmd/execute.go
// builds its own CLI.
package main

import (
	"fmt"
	"os"

	"github.com/ComedicChimera/olive"
	"github.com/llir/llvm/asm"
	"github.com/pterm/pterm"

	"chaiinline/allocamerge"
	"chaiinline/callgraph"
	"chaiinline/clone"
	"chaiinline/common"
	"chaiinline/config"
	"chaiinline/inline"
	"chaiinline/observe"
	"chaiinline/policy"
	"chaiinline/reaper"
	"chaiinline/stats"
)

func main() {
	cli := olive.NewCLI("chaiinline", "chaiinline runs the SCC-scoped inlining core over an LLVM IR module", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the observation log level", false, []string{"silent", "summary", "verbose"})
	logLvlArg.SetDefaultValue("summary")

	runCmd := cli.AddSubcommand("run", "parse a module and run the inliner over every SCC", true)
	runCmd.AddPrimaryArg("module-path", "path to the .ll module to inline", true)
	runCmd.AddStringArg("config", "c", "path to a chaiinline.toml configuration file", false)

	statsCmd := cli.AddSubcommand("stats", "parse and inline a module, then print only the final counters", true)
	statsCmd.AddPrimaryArg("module-path", "path to the .ll module to inline", true)

	cli.AddSubcommand("version", "print the chaiinline version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		printError("CLI Usage Error", err)
		os.Exit(1)
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "run":
		execRun(subResult, levelFromArg(result), false)
	case "stats":
		execRun(subResult, observe.LevelSilent, true)
	case "version":
		printInfo("chaiinline Version", common.Version)
	}
}

func levelFromArg(result *olive.ArgParseResult) observe.LogLevel {
	switch result.Arguments["loglevel"].(string) {
	case "silent":
		return observe.LevelSilent
	case "verbose":
		return observe.LevelVerbose
	default:
		return observe.LevelSummary
	}
}

func execRun(result *olive.ArgParseResult, level observe.LogLevel, showCounters bool) {
	modulePath, _ := result.PrimaryArg()

	mod, err := asm.ParseFile(modulePath)
	if err != nil {
		printError("Parse Error", err)
		return
	}

	opts := config.Default()
	if cfgPath, ok := result.Arguments["config"]; ok {
		loaded, err := config.Load(cfgPath.(string))
		if err != nil {
			printError("Config Error", err)
			return
		}
		opts = loaded
	}

	graph := callgraph.Build(mod)
	sink := observe.NewLogger(level)
	counters := &stats.Counters{}
	oracle := policy.New(graph, heuristicCost{}, sink, counters)
	merger := allocamerge.New(allocamerge.DefaultABI{})
	rpr := reaper.New(graph, reaper.DefaultComdatFilter(graph), counters)

	session := inline.NewSession(graph, oracle, unavailableCloner{}, merger, rpr, sink, counters, opts)

	for _, scc := range callgraph.ComputeSCCs(graph) {
		if _, err := session.RunSCC(scc); err != nil {
			printError("Inline Error", err)
			return
		}
	}

	session.Finalize()
	sink.Summary()

	if showCounters {
		snap := counters.Snapshot()
		pterm.DefaultSection.Println("Inlining Counters")
		fmt.Printf("  %-28s %d\n  %-28s %d\n  %-28s %d\n  %-28s %d\n  %-28s %d\n",
			"NumInlined", snap.NumInlined, "NumCallsDeleted", snap.NumCallsDeleted,
			"NumDeleted", snap.NumDeleted, "NumMergedAllocas", snap.NumMergedAllocas,
			"NumCallerCallersAnalyzed", snap.NumCallerCallersAnalyzed)
	}
}

// unavailableCloner is the CLI's stand-in clone.BodyCloner: the mechanical
// clone/substitute primitive is an external collaborator this core never
// implements (spec.md §1, §6 "InlineFunction"), so the demo CLI reports
// every site as physically un-inlinable rather than shipping a fabricated
// substitution mechanism. This still exercises the full pipeline — policy
// decisions, the observation stream, and dead-function reaping for
// genuinely unreferenced functions — without overstepping the core's scope.
type unavailableCloner struct{}

func (unavailableCloner) InlineFunction(cs *callgraph.CallSite, info *clone.Info, insertLifetime bool) (bool, error) {
	return false, nil
}

// heuristicCost is a minimal, call-count-based policy.CostFunc used only by this
// CLI demo; the real cost model is an external collaborator out of the
// core's scope (spec.md §1, §9 "Polymorphism over the cost model").
type heuristicCost struct{}

const (
	defaultThreshold = 225
	smallBodyBonus   = 100
)

func (heuristicCost) GetInlineCost(cs *callgraph.CallSite) policy.Decision {
	if cs.Callee == nil {
		return policy.Never()
	}
	if cs.Callee.AlwaysInline {
		return policy.Always()
	}

	cost := len(cs.Callee.Calls()) * 15
	delta := defaultThreshold - cost
	return policy.Cost(cost, delta)
}

func printError(tag string, err error) {
	pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Print(" " + tag + " ")
	pterm.FgRed.Println(" " + err.Error())
}

func printInfo(tag, msg string) {
	pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack).Print(" " + tag + " ")
	pterm.FgLightGreen.Println(" " + msg)
}
