package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPassCounts(t *testing.T) {
	assert.Empty(t, Plan(0, false), "screen path with no stages blits the source directly")
	assert.Len(t, Plan(3, false), 3)
	assert.Len(t, Plan(3, true), 4, "file output appends the terminal stage")
	assert.Len(t, Plan(0, true), 1)
}

func TestPlanChainsPingPong(t *testing.T) {
	plan := Plan(4, true)
	require.Len(t, plan, 5)

	assert.Equal(t, SlotSource, plan[0].In, "first pass reads the primary target")
	for i := 1; i < len(plan); i++ {
		assert.Equal(t, plan[i-1].Out, plan[i].In, "each pass reads the previous output")
	}
	for i := 0; i < len(plan)-1; i++ {
		assert.NotEqual(t, plan[i].In, plan[i].Out, "no pass samples its own target")
	}
	assert.Equal(t, SlotFinal, plan[len(plan)-1].Out)
}

func TestPlanTerminalStageIsAlwaysLast(t *testing.T) {
	plan := Plan(2, true)
	require.Len(t, plan, 3)
	assert.Equal(t, 0, plan[0].Stage)
	assert.Equal(t, 1, plan[1].Stage)
	assert.Equal(t, -1, plan[2].Stage)

	for _, p := range Plan(2, false) {
		assert.NotEqual(t, -1, p.Stage, "terminal stage never runs on the screen path")
	}
}

func TestPlanSingleStage(t *testing.T) {
	plan := Plan(1, false)
	require.Len(t, plan, 1)
	assert.Equal(t, SlotSource, plan[0].In)
	assert.Equal(t, SlotFinal, plan[0].Out)
}
