// Command vibefunc is a minimal smoke entrypoint wiring the compiler
// core end-to-end: discover project -> resolve -> typecheck -> print
// diagnostics as plain text. The full CLI driver (flag parsing,
// `--json` mode, color, exit-code policy per spec.md §6) is an
// external collaborator out of this core's scope (spec.md §1); this
// command exists only so the library is runnable from a shell the way
// the teacher's cmd/cli REPL drove internal/dsl.Parser.
package main

import (
	"fmt"
	"os"

	"github.com/mbcrawfo/vibefun"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: vibefunc <entry-file.vf>")
		os.Exit(2)
	}

	proj, err := vibefun.ResolveAndLoad(os.Args[1], vibefun.ResolveOptions{})
	if err != nil {
		fmt.Fprintln(os.Stderr, vibefun.LogError(err))
		os.Exit(1)
	}

	exitCode := 0
	for _, d := range proj.Diagnostics {
		printDiagnostic(d)
		if d.Severity.String() == "error" {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func printDiagnostic(d vibefun.Diagnostic) {
	fmt.Printf("%s: %s %s: %s\n", d.Location, d.Severity, d.Code, d.Message)
	if d.Hint != "" {
		fmt.Printf("  hint: %s\n", d.Hint)
	}
}
