package simclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHourFloat(t *testing.T) {
	assert.Equal(t, 8.0, HourFloat(8, 0))
	assert.Equal(t, 13.5, HourFloat(13, 30))
	assert.InDelta(t, 9.25, HourFloat(9, 15), 1e-9)
}

func TestClockString(t *testing.T) {
	assert.Equal(t, "08:00", ClockString(8.0))
	assert.Equal(t, "13:30", ClockString(13.5))
	assert.Equal(t, "09:20", ClockString(9.3333333333))
	assert.Equal(t, "00:00", ClockString(0))
}

func TestClockStringCarriesRoundedMinutes(t *testing.T) {
	// 9.9999h rounds to 600 minutes, which must carry into 10:00
	assert.Equal(t, "10:00", ClockString(9.9999))
}

func TestClockStringDayOffset(t *testing.T) {
	assert.Equal(t, "01:30 (+1d)", ClockString(25.5))
	assert.Equal(t, "00:00 (+2d)", ClockString(48.0))
}

func TestOverlap(t *testing.T) {
	breaks := [3]BreakWindow{
		{Start: 10.0, End: 10.25},
		{Start: 13.0, End: 13.5},
		{Skip: true},
	}

	assert.InDelta(t, 0.25, Overlap(9.0, 11.0, breaks), 1e-9)
	assert.InDelta(t, 0.75, Overlap(8.0, 16.0, breaks), 1e-9)
	assert.InDelta(t, 0.0, Overlap(14.0, 16.0, breaks), 1e-9)

	// partial overlap clips to the interval
	assert.InDelta(t, 0.25, Overlap(13.25, 16.0, breaks), 1e-9)
}

func TestOverlapIgnoresAbsentWindows(t *testing.T) {
	breaks := [3]BreakWindow{
		{Start: 10.0, End: 10.5, Skip: true},
		{}, // both bounds at zero
		{Start: 12.0, End: 12.5},
	}
	assert.InDelta(t, 0.5, Overlap(8.0, 16.0, breaks), 1e-9)
}

func TestOverlapWrapsMidnight(t *testing.T) {
	breaks := [3]BreakWindow{{Start: 23.5, End: 0.5}}

	assert.InDelta(t, 0.5, Overlap(23.0, 24.0, breaks), 1e-9)
	assert.InDelta(t, 0.5, Overlap(0.0, 1.0, breaks), 1e-9)
}

func TestOverlapSplitIsConsistent(t *testing.T) {
	breaks := [3]BreakWindow{
		{Start: 10.0, End: 10.25},
		{Start: 13.0, End: 13.5},
	}
	// splitting an interval at any point never changes the total
	whole := Overlap(8.0, 16.0, breaks)
	split := Overlap(8.0, 13.2, breaks) + Overlap(13.2, 16.0, breaks)
	assert.InDelta(t, whole, split, 1e-9)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "800", FormatNumber(800))
	assert.Equal(t, "4.500", FormatNumber(4500))
	assert.Equal(t, "1.234.567", FormatNumber(1234567))
	assert.Equal(t, "1.234,50", FormatNumber(1234.5))
	assert.Equal(t, "0,25", FormatNumber(0.25))
	assert.Equal(t, "-4.500", FormatNumber(-4500))
}
