package agent

import "github.com/hupe1980/notomate/core"

// Instruction is the system prompt of an agent. It is either fixed text or
// computed per run from the run context. The result may contain template
// placeholders that are filled from the run state afterwards.
type Instruction struct {
	text string
	fn   func(*core.RunContext) (string, error)
}

// NewInstructionFromText returns a fixed instruction.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromFunc returns an instruction computed by fn on every run.
func NewInstructionFromFunc(fn func(*core.RunContext) (string, error)) Instruction {
	return Instruction{fn: fn}
}

// Resolve returns the instruction text for runCtx.
func (i Instruction) Resolve(runCtx *core.RunContext) (string, error) {
	if i.fn != nil {
		return i.fn(runCtx)
	}
	return i.text, nil
}
