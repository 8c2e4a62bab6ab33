package engine

import (
	"fmt"
	"time"

	"github.com/rsinha/backfolio/internal/core"
)

// Schedule produces the ordered rebalance boundaries for [start, end).
// The first boundary is start; subsequent boundaries step by the frequency's
// calendar unit while strictly before end, and end is always appended as the
// final boundary. Frequencies with no calendar step yield a single period.
//
// When the last generated step lands exactly on end, the appended end
// duplicates it; the orchestrator skips the resulting zero-length period.
func Schedule(start, end time.Time, freq core.Frequency) ([]time.Time, error) {
	start, end = core.Day(start), core.Day(end)
	if !end.After(start) {
		return nil, core.WrapError(core.ErrInvalidRange,
			fmt.Errorf("start %s, end %s", core.DayString(start), core.DayString(end)))
	}

	boundaries := []time.Time{}
	step := freq.StepMonths()
	for cur := start; cur.Before(end); cur = addMonths(cur, step) {
		boundaries = append(boundaries, cur)
		if step == 0 {
			break
		}
	}
	boundaries = append(boundaries, end)

	return boundaries, nil
}

// addMonths steps by whole calendar months, clamping the day to the target
// month's length so a month-end start does not overflow into the next month
// (Jan 31 + 1 month is Feb 28, not Mar 3).
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}
