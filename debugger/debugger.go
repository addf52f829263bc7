// Package debugger provides an interactive terminal UI for single-stepping
// a Transient program, inspecting its memory and watching its output, built
// on tcell/tview over a vm.State the same way the teacher's ARM debugger
// sat over its register file.
package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/transient-lang/transient/isa"
	"github.com/transient-lang/transient/vm"
)

// defaultBytesPerLine is the hex dump's line width when NewSession is given
// no positive width; callers typically pass config.Config.Debugger.BytesPerLine.
const defaultBytesPerLine = 16

// Session drives one interactive debugging run of a loaded vm.State.
type Session struct {
	state        *vm.State
	bytesPerLine int
	breakpoints  map[uint32]bool
	output       strings.Builder

	app     *tview.Application
	status  *tview.TextView
	memory  *tview.TextView
	console *tview.TextView
}

// NewSession builds a debugger session over an already-loaded state.
// bytesPerLine of 0 falls back to defaultBytesPerLine.
func NewSession(state *vm.State, bytesPerLine int) *Session {
	if bytesPerLine <= 0 {
		bytesPerLine = defaultBytesPerLine
	}
	s := &Session{
		state:        state,
		bytesPerLine: bytesPerLine,
		breakpoints:  make(map[uint32]bool),
	}
	state.Stdout = &s.output
	return s
}

// ToggleBreakpoint flips whether execution should stop just before
// fetching the instruction at pc.
func (s *Session) ToggleBreakpoint(pc uint32) {
	if s.breakpoints[pc] {
		delete(s.breakpoints, pc)
	} else {
		s.breakpoints[pc] = true
	}
}

// Step executes exactly one instruction, returning false once the VM has
// halted or trapped. The returned error is a *vm.Trap on a fatal fault.
func (s *Session) Step() (bool, error) {
	if s.state.Mode != vm.Running {
		s.state.Mode = vm.Running
	}
	next, err := s.state.StepOnce()
	if err != nil {
		return false, err
	}
	s.state.ProgramCounter = next
	return s.state.Mode == vm.Running, nil
}

// RunToBreakpoint steps repeatedly until a breakpoint is hit, the VM
// halts, or a trap occurs.
func (s *Session) RunToBreakpoint() error {
	for {
		running, err := s.Step()
		if err != nil {
			return err
		}
		if !running {
			return nil
		}
		if s.breakpoints[s.state.ProgramCounter] {
			return nil
		}
	}
}

// MemoryDump renders length bytes of memory starting at offset as a
// classic hex-and-ASCII view, s.bytesPerLine bytes per row.
func (s *Session) MemoryDump(offset, length uint32) string {
	var sb strings.Builder
	end := offset + length
	if end > uint32(len(s.state.Memory)) {
		end = uint32(len(s.state.Memory))
	}
	for row := offset; row < end; row += uint32(s.bytesPerLine) {
		rowEnd := row + uint32(s.bytesPerLine)
		if rowEnd > end {
			rowEnd = end
		}
		fmt.Fprintf(&sb, "%04X  ", row)
		var ascii strings.Builder
		for addr := row; addr < rowEnd; addr++ {
			b := s.state.Memory[addr]
			fmt.Fprintf(&sb, "%02X ", b)
			if b >= 0x20 && b < 0x7F {
				ascii.WriteByte(b)
			} else {
				ascii.WriteByte('.')
			}
		}
		sb.WriteString(" " + ascii.String() + "\n")
	}
	return sb.String()
}

// StatusLine summarizes the VM's run state for the status pane.
func (s *Session) StatusLine() string {
	return fmt.Sprintf("pc=%d mode=%s image=%d bytes", s.state.ProgramCounter, s.state.Mode, s.state.ImageLength)
}

// Output returns everything the program has written via puti/putc so far.
func (s *Session) Output() string {
	return s.output.String()
}

// Run builds and drives the tview application, blocking until the user
// quits (q/Ctrl-C) or the program halts and the user dismisses the view.
func (s *Session) Run() error {
	s.app = tview.NewApplication()

	s.status = tview.NewTextView().SetDynamicColors(true)
	s.status.SetBorder(true).SetTitle(" status ")

	s.memory = tview.NewTextView().SetDynamicColors(true)
	s.memory.SetBorder(true).SetTitle(" memory ")

	s.console = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	s.console.SetBorder(true).SetTitle(" output ")

	s.refresh()

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.status, 3, 0, false).
		AddItem(tview.NewFlex().
			AddItem(s.memory, 0, 2, false).
			AddItem(s.console, 0, 1, false), 0, 1, false)

	s.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			s.app.Stop()
			return nil
		case 's':
			if _, err := s.Step(); err != nil {
				s.status.SetText(err.Error())
			}
			s.refresh()
			return nil
		case 'r':
			if err := s.RunToBreakpoint(); err != nil {
				s.status.SetText(err.Error())
			}
			s.refresh()
			return nil
		}
		return event
	})

	return s.app.SetRoot(flex, true).Run()
}

func (s *Session) refresh() {
	s.status.SetText(s.StatusLine())
	s.memory.SetText(s.MemoryDump(0, uint32(isa.InstructionSize*8)))
	s.console.SetText(s.Output())
}
