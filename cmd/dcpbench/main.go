// dcpbench times the BGRA to NV12 and NV12 to BGRA conversions.
//
// Inputs are binary graymaps wrapping raw frames: a BGRA frame is stored
// 4*width samples wide, an NV12 frame height*3/2 rows tall. The converted
// frames of the last iteration are written in the same convention as
// output.nv12 and output.bgra.
//
// Usage:
//
//	dcpbench [options] <input.bgra> <input.nv12>
//
// Options:
//
//	-n <count>   iterations per conversion - default: 22
//	-o <dir>     directory for output.nv12 and output.bgra - default: .
//	-v           verbose output
//	-version     show version information
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mrjoshuak/go-colorprim/colorprim"
)

const version = "1.0.0"

func main() {
	samples := flag.Int("n", 22, "iterations per conversion")
	outDir := flag.String("o", ".", "directory for output.nv12 and output.bgra")
	verbose := flag.Bool("v", false, "verbose output")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dcpbench [options] <input.bgra> <input.nv12>\n\n")
		fmt.Fprintf(os.Stderr, "Time bgra>nv12 and nv12>bgra on PNM-wrapped raw frames.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("dcpbench version %s\n", version)
		os.Exit(0)
	}
	if flag.NArg() != 2 || *samples <= 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		colorprim.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	benches := []struct {
		input string
		bench benchmark
	}{
		{flag.Arg(0), bgraToNV12},
		{flag.Arg(1), nv12ToBGRA},
	}
	for _, b := range benches {
		res, err := runFile(b.input, *outDir, b.bench, *samples)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dcpbench: error: %s: %v\n", b.bench.name, err)
			os.Exit(1)
		}
		fmt.Println(res)
	}
}
