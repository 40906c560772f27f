package simclock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BreakWindow is a recurring daily interval during which no net production
// time accrues. Start and End are hour-of-day values in [0,24); End < Start
// means the break wraps past midnight. A window with Skip set, or with both
// bounds at zero, is ignored.
type BreakWindow struct {
	Start float64
	End   float64
	Skip  bool
}

func (b BreakWindow) absent() bool {
	return b.Skip || (b.Start == 0 && b.End == 0)
}

// HourFloat converts a clock time to a continuous hour count.
func HourFloat(hh, mm int) float64 {
	return float64(hh) + float64(mm)/60.0
}

// ClockString renders an hour count as "HH:MM", with a "(+Nd)" suffix once
// the count rolls past 24 hours. Minutes are rounded; 60 carries into the
// next hour.
func ClockString(hours float64) string {
	h := int(hours)
	m := int(math.Round((hours - float64(h)) * 60))
	if m == 60 {
		h++
		m = 0
	}
	days := h / 24
	h = h % 24
	if days > 0 {
		return fmt.Sprintf("%02d:%02d (+%dd)", h, m, days)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Overlap returns the break hours contained in the day-local interval
// [tramoStart, tramoEnd]. tramoEnd may be 24 to mean end of day inclusive.
// Windows are assumed non-overlapping, so overlaps are simply summed.
func Overlap(tramoStart, tramoEnd float64, breaks [3]BreakWindow) float64 {
	total := 0.0
	for _, b := range breaks {
		if b.absent() {
			continue
		}
		if b.End >= b.Start {
			total += segmentOverlap(tramoStart, tramoEnd, b.Start, b.End)
		} else {
			// wraps midnight: evening and morning segments
			total += segmentOverlap(tramoStart, tramoEnd, b.Start, 24)
			total += segmentOverlap(tramoStart, tramoEnd, 0, b.End)
		}
	}
	return total
}

func segmentOverlap(aStart, aEnd, bStart, bEnd float64) float64 {
	return math.Max(0, math.Min(aEnd, bEnd)-math.Max(aStart, bStart))
}

// FormatNumber renders a quantity the way the plant's spreadsheets do:
// "." for thousands, "," for decimals, decimals dropped when whole.
func FormatNumber(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := v == math.Trunc(v)
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := grouped.String()
	if !whole {
		out += "," + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
