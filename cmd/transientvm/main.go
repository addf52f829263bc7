// Command transientvm executes a Transient bytecode image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/transient-lang/transient/config"
	"github.com/transient-lang/transient/debugger"
	"github.com/transient-lang/transient/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("transientvm", flag.ContinueOnError)
	tui := fs.Bool("debug", false, "launch the interactive TUI debugger instead of running to completion")
	configPath := fs.String("config", "", "path to a transient.toml config file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: transientvm <image-path> [--debug]")
		return 2
	}
	imagePath := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	image, err := os.ReadFile(imagePath) // #nosec G304 -- user-supplied image path
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	state := vm.NewState(stdoutWriter{})
	if err := state.LoadImage(0, image); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *tui {
		session := debugger.NewSession(state, cfg.Debugger.BytesPerLine)
		state.ProgramCounter = cfg.VM.EntryPoint
		if err := session.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if err := state.Run(cfg.VM.EntryPoint); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

type stdoutWriter struct{}

func (stdoutWriter) WriteString(s string) (int, error) {
	return fmt.Print(s)
}
