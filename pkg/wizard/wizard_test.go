package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceBlockedWithoutAcceptance(t *testing.T) {
	assert.Equal(t, 0, Advance(0, false), "first step is gated on acceptance")
	assert.Equal(t, 1, Advance(0, true))
}

func TestAdvanceStopsAtLastStep(t *testing.T) {
	assert.Equal(t, LastStep(), Advance(LastStep(), true))
}

func TestBackStopsAtFirstStep(t *testing.T) {
	assert.Equal(t, 0, Back(0))
	assert.Equal(t, 0, Back(1))
	assert.Equal(t, LastStep()-1, Back(LastStep()))
}

func TestIndexNeverLeavesRange(t *testing.T) {
	idx := 0
	for i := 0; i < len(Steps)*3; i++ {
		idx = Advance(idx, true)
		assert.GreaterOrEqual(t, idx, 0)
		assert.LessOrEqual(t, idx, LastStep())
	}
	for i := 0; i < len(Steps)*3; i++ {
		idx = Back(idx)
		assert.GreaterOrEqual(t, idx, 0)
		assert.LessOrEqual(t, idx, LastStep())
	}
}

func TestClampRepairsStoredIndex(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5))
	assert.Equal(t, LastStep(), Clamp(99))
	assert.Equal(t, 3, Clamp(3))
}

func TestName(t *testing.T) {
	assert.Equal(t, "Welcome", Name(0))
	assert.Equal(t, "Review & Sign", Name(LastStep()))
}
