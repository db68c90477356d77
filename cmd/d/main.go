// Command d is the CLI front-end to the D interpreter: it owns file I/O,
// flag parsing and exit-code selection, all deliberately kept outside
// the core (§1). It wires the four pipeline stages together and renders
// whatever the diagnostic sink accumulated.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/d/internal/config"
	"github.com/funvibe/d/internal/diagnostics"
	"github.com/funvibe/d/internal/executor"
	"github.com/funvibe/d/internal/history"
	"github.com/funvibe/d/internal/locator"
	"github.com/funvibe/d/internal/pipeline"
	"github.com/funvibe/d/internal/prettyprinter"
	"github.com/funvibe/d/internal/utils"
)

type options struct {
	files        []string
	help         bool
	checkOnly    bool
	lexOnly      bool
	showLocators bool
	showAST      bool
	showHistory  int
}

func parseArgs(args []string) options {
	var o options
	endOfFlags := false
	for _, a := range args {
		if endOfFlags {
			o.files = append(o.files, a)
			continue
		}
		switch a {
		case "--":
			endOfFlags = true
		case "--help", "-h":
			o.help = true
		case "--check", "-c":
			o.checkOnly = true
		case "--lexer", "-L":
			o.lexOnly = true
		case "--locators", "-l":
			o.showLocators = true
		case "--ast", "-a":
			o.showAST = true
		case "--history":
			o.showHistory = 20
		default:
			o.files = append(o.files, a)
		}
	}
	return o
}

func usage() string {
	return `usage: d [flags] <source-file>...

flags:
  --help, -h       show this message
  --check, -c      analyze only, do not execute
  --lexer, -L      stop after lexing
  --locators, -l   render source excerpts under diagnostics
  --ast, -a        dump the parsed AST instead of running the program
  --history        print the last recorded runs and exit
  --               end of flags
`
}

func main() {
	o := parseArgs(os.Args[1:])
	if o.help {
		fmt.Fprint(os.Stderr, usage())
		os.Exit(0)
	}

	store := openHistoryStore()
	if store != nil {
		defer store.Close()
	}

	if o.showHistory > 0 {
		printHistory(store, o.showHistory)
		os.Exit(0)
	}

	if len(o.files) == 0 {
		fmt.Fprint(os.Stderr, usage())
		os.Exit(1)
	}

	wd, _ := os.Getwd()
	defaults, _, err := config.LoadDefaults(wd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "d: reading d.yaml: %v\n", err)
	}

	useColor := resolveColor(defaults.Color)
	if o.showLocators {
		defaults.Locators = true
	}

	exitCode := 0
	locators := locator.NewSet()

	multi := len(o.files) > 1
	for _, path := range o.files {
		code, errCount, warnCount := runFile(path, o, defaults, useColor, locators, multi)
		if code != 0 {
			exitCode = code
		}
		if store != nil {
			store.Record(history.Entry{
				File:      path,
				Timestamp: time.Now().Unix(),
				ExitCode:  code,
				Errors:    errCount,
				Warnings:  warnCount,
			})
		}
	}

	os.Exit(exitCode)
}

func runFile(path string, o options, defaults config.FileDefaults, useColor bool, locators *locator.Set, multi bool) (exitCode, errCount, warnCount int) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "d: cannot read %s: %v\n", path, err)
		return 1, 0, 0
	}
	if multi {
		fmt.Fprintf(os.Stdout, "== %s ==\n", utils.DisplayName(path))
	}
	locators.Add(path, string(src))

	sink := diagnostics.NewAccumulatingSink()
	ctx := &pipeline.Context{
		File:           path,
		Source:         string(src),
		Sink:           sink,
		StopAfterLex:   o.lexOnly,
		StopAfterCheck: o.checkOnly || o.showAST,
	}

	pl := pipeline.New(
		pipeline.LexStage{},
		pipeline.ParseStage{},
		pipeline.AnalyzeStage{Input: os.Stdin},
		pipeline.ExecuteStage{Out: os.Stdout, Input: os.Stdin},
	)
	ctx = pl.Run(ctx)

	for _, d := range sink.All() {
		printDiagnostic(d, locators, defaults.Locators, useColor)
		if d.Severity == diagnostics.Error {
			errCount++
		} else {
			warnCount++
		}
	}

	if o.showAST {
		if ctx.Prog != nil {
			fmt.Fprint(os.Stdout, prettyprinter.Tree(ctx.Prog))
		}
		if sink.HasErrors() {
			return 1, errCount, warnCount
		}
		return 0, errCount, warnCount
	}

	if sink.HasErrors() {
		return 1, errCount, warnCount
	}

	if ctx.ExecState != nil && ctx.ExecState.Kind == executor.Throwing {
		fmt.Fprintf(os.Stderr, "runtime error: %s\n", ctx.ExecState.Err.Error())
		for _, frame := range ctx.ExecState.Trace {
			fmt.Fprintf(os.Stderr, "  at %s\n", frame.String())
		}
		return 1, errCount, warnCount
	}

	if errCount+warnCount > 0 {
		fmt.Fprintf(os.Stderr, "%s\n", humanize.Comma(int64(errCount+warnCount))+" diagnostic(s)")
	}
	return 0, errCount, warnCount
}

func resolveColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd())
	}
}

func printDiagnostic(d *diagnostics.Diagnostic, locators *locator.Set, showLocators, useColor bool) {
	line := d.Render()
	if useColor && d.Severity == diagnostics.Error {
		line = "\x1b[31m" + line + "\x1b[0m"
	} else if useColor {
		line = "\x1b[33m" + line + "\x1b[0m"
	}
	fmt.Fprintln(os.Stderr, line)
	if showLocators {
		fmt.Fprintln(os.Stderr, locators.Excerpt(d.Primary))
	}
}

func openHistoryStore() *history.Store {
	dir, err := os.UserCacheDir()
	if err != nil {
		return nil
	}
	dbDir := filepath.Join(dir, "d")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil
	}
	store, err := history.Open(filepath.Join(dbDir, "history.sqlite"))
	if err != nil {
		return nil
	}
	return store
}

func printHistory(store *history.Store, n int) {
	if store == nil {
		fmt.Fprintln(os.Stderr, "d: history unavailable")
		return
	}
	entries, err := store.Recent(n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "d: reading history: %v\n", err)
		return
	}
	for _, e := range entries {
		ts := time.Unix(e.Timestamp, 0)
		fmt.Printf("%s  %-30s exit=%d errors=%d warnings=%d\n", ts.Format(time.RFC3339), e.File, e.ExitCode, e.Errors, e.Warnings)
	}
}
