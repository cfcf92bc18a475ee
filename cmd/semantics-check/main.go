// Command semantics-check validates a relationship endpoint rule override
// file before it is rolled out to a running store.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"archgraph/internal/semantics"
	"archgraph/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("semantics-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "print per-type coverage")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: semantics-check [-v] <table.yaml>")
		return 2
	}

	table, err := semantics.LoadTable(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	covered := 0
	for _, rt := range domain.RelationshipTypes() {
		if table.Knows(rt) {
			covered++
			if *verbose {
				fmt.Fprintf(stdout, "%s: constrained\n", rt)
			}
			continue
		}
		if *verbose {
			fmt.Fprintf(stdout, "%s: not constrained\n", rt)
		}
	}
	fmt.Fprintf(stdout, "%s: valid, %d/%d relationship types constrained\n",
		fs.Arg(0), covered, len(domain.RelationshipTypes()))
	return 0
}
