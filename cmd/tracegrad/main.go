// Package main provides the tracegrad CLI.
//
// It traces small demo programs, prints their graphs and evaluates them
// together with their gradients.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/born-ml/tracegrad/autodiff"
	"github.com/born-ml/tracegrad/tensor"
)

const version = "v0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return 0
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "tracegrad %s\n", version)
		return 0
	case "list":
		names := make([]string, 0, len(demos))
		for name := range demos {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(stdout, "  %-14s %s\n", name, demos[name].about)
		}
		return 0
	case "run":
		return runDemo(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "tracegrad - graph-to-graph automatic differentiation")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version               Show version")
	fmt.Fprintln(w, "  list                  List demo programs")
	fmt.Fprintln(w, "  run [flags] <demo>    Trace, evaluate and differentiate a demo")
}

func runDemo(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f64 := fs.Bool("f64", false, "Evaluate in float64 instead of float32")
	asJSON := fs.Bool("json", false, "Print graphs as JSON instead of text")
	verbose := fs.Bool("v", false, "Log evaluation and differentiation records")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "run expects exactly one demo name; see 'tracegrad list'")
		return 2
	}

	d, ok := demos[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown demo %q; see 'tracegrad list'\n", fs.Arg(0))
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	dtype := tensor.Float32
	if *f64 {
		dtype = tensor.Float64
	}

	fn, err := autodiff.TryTrace(d.build, autodiff.WithDType(dtype), autodiff.WithLogger(logger))
	if err != nil {
		logger.Error("trace failed", "demo", fs.Arg(0), "error", err)
		return 1
	}

	inputs := d.args(dtype)
	if err := report(stdout, "f", fn, inputs, *asJSON); err != nil {
		logger.Error("evaluation failed", "demo", fs.Arg(0), "error", err)
		return 1
	}

	for order := 1; order <= d.order; order++ {
		fn, err = fn.TryGrad()
		if err != nil {
			logger.Error("grad failed", "demo", fs.Arg(0), "order", order, "error", err)
			return 1
		}
		name := "grad " + fmt.Sprint(order)
		if err := report(stdout, name, fn, inputs, *asJSON); err != nil {
			logger.Error("evaluation failed", "demo", fs.Arg(0), "order", order, "error", err)
			return 1
		}
	}
	return 0
}

// report prints the graph of fn followed by its outputs on inputs.
func report(w io.Writer, name string, fn *autodiff.Function, inputs []*tensor.RawTensor, asJSON bool) error {
	fmt.Fprintf(w, "== %s ==\n", name)
	if asJSON {
		data, err := fn.Graph().ExportJSON(fn.Inputs())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", data)
	} else {
		fmt.Fprint(w, fn)
	}

	results, err := fn.TryEvalAll(inputs...)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Fprintf(w, "out[%d] = %v\n", i, r)
	}
	fmt.Fprintln(w)
	return nil
}
