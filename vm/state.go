package vm

import "fmt"

// Mode is the VM's run state.
type Mode int

const (
	Halted Mode = iota
	Running
)

func (m Mode) String() string {
	if m == Running {
		return "RUNNING"
	}
	return "HALTED"
}

// State holds everything a running (or halted) Transient program needs: a
// fixed-capacity memory, the length of the image loaded into it, the
// program counter, and the run mode (spec.md §3.4). Memory is mutated only
// by the executor; external code should only read it, for testing and for
// the debugger.
type State struct {
	Memory         [TransientMemMax]byte
	ImageLength    uint32
	ProgramCounter uint32
	Mode           Mode

	// Stdout receives puti/putc output. Defaults to nil, meaning
	// discard — callers that care set it explicitly (see NewState).
	Stdout stdoutWriter
}

type stdoutWriter interface {
	WriteString(s string) (int, error)
}

// NewState constructs a zero-filled, HALTED state with PC and image length
// both zero.
func NewState(out stdoutWriter) *State {
	return &State{Mode: Halted, Stdout: out}
}

// LoadImage copies image into memory starting at offset and records its
// length. It does not reset the program counter; Run does that.
func (s *State) LoadImage(offset uint32, image []byte) error {
	if uint64(offset)+uint64(len(image)) > uint64(len(s.Memory)) {
		return fmt.Errorf("image of %d bytes does not fit in %d bytes of memory at offset %d",
			len(image), len(s.Memory), offset)
	}
	copy(s.Memory[offset:], image)
	s.ImageLength = uint32(len(image))
	return nil
}

// StepOnce fetches and executes exactly one instruction at the current
// program counter, returning the program counter's new value. It does not
// set Mode to RUNNING on its own — callers driving single-step execution
// (the debugger) manage Mode around repeated calls to StepOnce.
func (s *State) StepOnce() (uint32, error) {
	record, err := s.fetch(s.ProgramCounter)
	if err != nil {
		return s.ProgramCounter, err
	}
	return s.execute(record)
}

// Run sets the program counter to start, switches to RUNNING, and loops
// fetch/decode/execute until an instruction sets the mode to HALTED or a
// fatal Trap occurs. On trap, Run returns the *Trap and leaves State as it
// was at the moment of the fault.
func (s *State) Run(start uint32) error {
	s.ProgramCounter = start
	s.Mode = Running

	for s.Mode == Running {
		record, err := s.fetch(s.ProgramCounter)
		if err != nil {
			return err
		}
		next, err := s.execute(record)
		if err != nil {
			return err
		}
		s.ProgramCounter = next
	}
	return nil
}
