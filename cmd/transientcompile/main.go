// Command transientcompile assembles a Transient source file into the flat
// bytecode image the VM executes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/transient-lang/transient/assembler"
	"github.com/transient-lang/transient/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("transientcompile", flag.ContinueOnError)
	dumpAsm := fs.Bool("asm", false, "dump the instruction list and memory map to stdout after assembly")
	showProgress := fs.Bool("progress", false, "show a progress indicator while assembling")
	configPath := fs.String("config", "", "path to a transient.toml config file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: transientcompile <source-path> [--asm] [--progress]")
		return 2
	}
	sourcePath := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *dumpAsm {
		cfg.Assembler.DumpAST = true
	}

	lines, err := assembler.ReadSourceLines(sourcePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var report func(pass string)
	if *showProgress {
		report = newProgressBar(assembler.PassCount)
	}

	instructions, memMap, err := assembler.AssembleWithProgress(lines, report)
	if err != nil {
		if *showProgress {
			fmt.Println("]") // close the bar left open by the pass that failed
		}
		fmt.Fprintln(os.Stderr, err)
		return 255
	}

	image := assembler.Codegen(instructions, memMap)
	if uint32(len(image)) > cfg.Assembler.MaxImageSize {
		fmt.Fprintf(os.Stderr, "image of %d bytes exceeds max_image_size %d\n", len(image), cfg.Assembler.MaxImageSize)
		return 1
	}

	outputPath := cfg.Assembler.OutputPath
	if outputPath == "" {
		outputPath = "out.bin"
	}
	if err := os.WriteFile(outputPath, image, 0644); err != nil { //nolint:gosec // assembler output is not sensitive
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if cfg.Assembler.DumpAST {
		fmt.Print(assembler.FormatInstructions(instructions))
		fmt.Print(assembler.FormatMemoryMap(memMap))
	}

	return 0
}

// newProgressBar returns a report callback that fills one cell of a
// fixed-width bar per pass actually completed by AssembleWithProgress,
// instead of animating on a timer. A pass that fails with a Diagnostic
// simply leaves the bar short of full, which is a truthful reflection of
// how far assembly got.
func newProgressBar(totalPasses int) func(pass string) {
	fmt.Print("Compiling... [")
	done := 0
	return func(pass string) {
		done++
		fmt.Print("=")
		if done == totalPasses {
			fmt.Println("]")
		}
	}
}
