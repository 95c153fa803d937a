// Command engraver generates PoC2 plot files for a given account id and
// nonce range.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pborman/options"

	"github.com/tzdybal/engraver"
)

func main() {

	opts := &struct {
		NumericID  uint64       `getopt:"-i --id               Numeric account id to plot for"`
		StartNonce uint64       `getopt:"-s --start-nonce      First nonce in the plotted range"`
		Nonces     uint64       `getopt:"-n --nonces           Number of nonces to plot, 0 = fill the disk"`
		OutputDir  string       `getopt:"-o --output-dir       Directory to write the plot file into"`
		MemBudget  string       `getopt:"-m --mem-budget       RAM budget, e.g. 10GiB; 0 = unlimited"`
		CPUThreads int          `getopt:"-t --cpu-threads      Worker threads, 0 = number of logical CPUs"`
		DirectIO   bool         `getopt:"-d --direct-io        Use direct I/O, requiring sector-aligned writes"`
		AsyncIO    bool         `getopt:"-a --async-io         Double-buffer hashing and writing"`
		Benchmark  bool         `getopt:"-b --benchmark        Hash without writing to disk"`
		GPU        bool         `getopt:"-g --gpu              Reserve host memory for a GPU-side hasher"`
		GPUMem     string       `getopt:"--gpu-mem             GPU working-set size to reserve, e.g. 2GiB"`
		ZeroCopy   bool         `getopt:"-z --zero-copy-buffers Reserve full GPU memory instead of sharing a staging buffer"`
		Quiet      bool         `getopt:"-q --quiet            Suppress startup banner and progress bar"`
		Help       options.Help `getopt:"-h --help             Display help"`
	}{}

	options.RegisterAndParse(opts)

	if opts.OutputDir == "" {
		log.Fatal("Error: ConfigInvalid, reason=\"--output-dir is required\"\nShutting down...")
	}

	memBudget, err := parseMemBudget(opts.MemBudget)
	if err != nil {
		log.Fatalf("Error: ConfigInvalid, reason=%q\nShutting down...", err)
	}
	gpuMemBytes, err := parseMemBudget(opts.GPUMem)
	if err != nil {
		log.Fatalf("Error: ConfigInvalid, reason=%q\nShutting down...", err)
	}

	plotName := fmt.Sprintf("%d_%d_%d", opts.NumericID, opts.StartNonce, opts.Nonces)
	outputPath := opts.OutputDir + string(os.PathSeparator) + plotName

	task := &engraver.Task{
		NumericID:       opts.NumericID,
		StartNonce:      opts.StartNonce,
		Nonces:          opts.Nonces,
		OutputPath:      outputPath,
		MemBudgetBytes:  memBudget,
		CPUThreads:      opts.CPUThreads,
		DirectIO:        opts.DirectIO,
		AsyncIO:         opts.AsyncIO,
		Benchmark:       opts.Benchmark,
		GPUEnabled:      opts.GPU,
		GPUMemBytes:     gpuMemBytes,
		ZeroCopyBuffers: opts.ZeroCopy,
		Quiet:           opts.Quiet,
	}

	orch := engraver.NewOrchestrator()

	if !opts.Quiet && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) {
		// task.Nonces may still be the 0 "fill the disk" sentinel here;
		// Run resolves the real count internally, but the bar needs a
		// total up front, so estimate it from the same free-disk-space
		// query Run itself will use.
		plannedNonces := task.Nonces
		if plannedNonces == 0 {
			if free, err := orch.Platform.FreeDiskSpace(outputPath); err == nil {
				plannedNonces = free / engraver.NonceSize
			}
		}
		label := fmt.Sprintf("plotting %s", plotName)
		orch.Progress = engraver.NewBarProgressSink(int64(plannedNonces*engraver.NonceSize), label)
	}

	if err := orch.Run(task); err != nil {
		if te, ok := engraver.AsTaskError(err); ok {
			fmt.Fprintf(os.Stderr, "Error: %s", te.Kind())
			fields := te.Fields()
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(os.Stderr, ", %s=%v", k, fields[k])
			}
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "Shutting down...")
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

// parseMemBudget accepts the mem-budget string grammar from spec §6
// ("10GiB", "0", etc.) via humanize's unit parser.
func parseMemBudget(s string) (uint64, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	bytes, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("unparseable mem-budget %q: %w", s, err)
	}
	return bytes, nil
}
