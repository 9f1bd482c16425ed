// dcpconvert round-trips images through YUV and reports the loss.
//
// Each input is converted to BGRA, then to I420 and I444 in the full range
// BT.601 color space (the space JPEG uses) and back. The reconstructed images
// are written next to the input as PNG files together with the normalized
// source, and the PSNR of every round trip is printed.
//
// Usage:
//
//	dcpconvert [options] <dir-or-file> [<dir-or-file> ...]
//
// A directory argument selects every *.ppm file in it. Files may be PNM,
// PNG, JPEG, GIF, BMP, TIFF, WebP or JPEG 2000.
//
// Options:
//
//	-o <dir>     write outputs to dir instead of next to each input
//	-raw         also store the YUV frames as .dcpf containers
//	-z <type>    container compression (none, zlib, zstd) - default: zstd
//	-j <n>       number of files converted at once - default: GOMAXPROCS
//	-v           verbose output
//	-version     show version information
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mrjoshuak/go-colorprim/colorprim"
	"github.com/mrjoshuak/go-colorprim/yuvfile"
)

const version = "1.0.0"

func main() {
	outDir := flag.String("o", "", "output directory (default: next to each input)")
	raw := flag.Bool("raw", false, "also store the YUV frames as .dcpf containers")
	compressionStr := flag.String("z", "zstd", "container compression (none, zlib, zstd)")
	jobs := flag.Int("j", 0, "number of files converted at once (default: GOMAXPROCS)")
	verbose := flag.Bool("v", false, "verbose output")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dcpconvert [options] <dir-or-file> [<dir-or-file> ...]\n\n")
		fmt.Fprintf(os.Stderr, "Round-trip images through I420 and I444 and report the PSNR.\n")
		fmt.Fprintf(os.Stderr, "A directory selects every *.ppm file in it.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("dcpconvert version %s\n", version)
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	compression, err := yuvfile.ParseCompression(*compressionStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dcpconvert: error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Valid options are: none, zlib, zstd\n")
		os.Exit(2)
	}

	if *verbose {
		colorprim.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	files, err := collectInputs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "dcpconvert: error: %v\n", err)
		os.Exit(2)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "dcpconvert: error: no input images found")
		os.Exit(2)
	}

	opts := options{
		outDir: *outDir,
		raw:    *raw,
		write:  &yuvfile.WriteOptions{Compression: compression},
		pool:   colorprim.NewImagePool(),
	}

	var (
		mu      sync.Mutex
		results = make([]*result, len(files))
		failed  bool
	)
	workers := colorprim.NewWorkerPool(*jobs)
	for i, name := range files {
		workers.Submit(func() {
			res, err := convertFile(name, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: error: %v\n", name, err)
				failed = true
				return
			}
			results[i] = res
		})
	}
	workers.Wait()
	workers.Close()

	for _, res := range results {
		if res == nil {
			continue
		}
		for _, rt := range res.trips {
			fmt.Printf("%s: psnr=%.4f dB\n", rt.path, rt.psnr)
		}
	}

	if failed {
		os.Exit(1)
	}
}

// collectInputs expands directory arguments to the *.ppm files they hold.
func collectInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.ppm"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}
