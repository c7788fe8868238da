package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tolga/wardroster/internal/duty"
)

func TestNurseWindows_BridgesPastIntoMonth(t *testing.T) {
	windows := nurseWindows(5)
	assert.Equal(t, [3]int{-3, -2, -1}, windows[0].days)
	assert.Equal(t, 1, windows[0].next)
	assert.Equal(t, [3]int{-2, -1, 1}, windows[1].days)
	assert.Equal(t, [3]int{-1, 1, 2}, windows[2].days)
	// Sliding windows (t, t+1, t+2) for t in [1, num_days-2].
	assert.Equal(t, [3]int{1, 2, 3}, windows[3].days)
	assert.Equal(t, [3]int{3, 4, 5}, windows[len(windows)-1].days)
}

func TestWindowOutsideActiveWindow_TrailingWindowNeverSkippedOnNextOverflow(t *testing.T) {
	w := window{days: [3]int{3, 4, 5}, next: 6}
	// Existing nurse: active window is the whole month, 1..5. next=6 is
	// past the calendar, not past the nurse's own active window, so the
	// forbidden-pattern half of C8 must still run.
	assert.False(t, windowOutsideActiveWindow(w, 1, 5, 5))
}

func TestWindowOutsideActiveWindow_JoinerPreStartSkipped(t *testing.T) {
	w := window{days: [3]int{1, 2, 3}, next: 4}
	// Joiner starting day 3: day 1 and 2 are forced-X, outside [3, 10].
	assert.True(t, windowOutsideActiveWindow(w, 3, 10, 10))
}

func TestNoXInPast(t *testing.T) {
	assert.True(t, noXInPast([3]duty.Duty{duty.D, duty.E, duty.N}))
	assert.False(t, noXInPast([3]duty.Duty{duty.D, duty.X, duty.N}))
}
