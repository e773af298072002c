package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunContext() *core.RunContext {
	return core.NewRunContext(context.Background(), "test-session", "run-id", 0, nil, logging.NoOpLogger{})
}

func TestInstruction_Text(t *testing.T) {
	got, err := NewInstructionFromText(NotesSpecialistInstruction).Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, NotesSpecialistInstruction, got)
}

func TestInstruction_Func(t *testing.T) {
	inst := NewInstructionFromFunc(func(rc *core.RunContext) (string, error) {
		return "session " + rc.SessionID, nil
	})

	got, err := inst.Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "session test-session", got)
}

func TestInstruction_FuncError(t *testing.T) {
	boom := errors.New("boom")
	inst := NewInstructionFromFunc(func(*core.RunContext) (string, error) { return "", boom })

	_, err := inst.Resolve(newTestRunContext())
	assert.ErrorIs(t, err, boom)
}

func TestInstruction_ZeroValueIsEmpty(t *testing.T) {
	got, err := Instruction{}.Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Empty(t, got)
}
