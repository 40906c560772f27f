package models

import (
	"github.com/dmsanchez/traysim/internal/simclock"
)

// LineShiftConfig is the immutable per-line, per-shift schedule: when the
// shift starts, which breaks apply and the line-wide OEE derate. One line
// may appear once per shift.
type LineShiftConfig struct {
	LineID        string
	Shift         int
	StartTime     float64 // continuous hours; may exceed 24 for a day offset
	Breaks        [3]simclock.BreakWindow
	EfficiencyPct int
	Excluded      bool // line left out of the run by external configuration
}

// BreakDescription lists the active break windows as clock ranges, for
// report headers.
func (c *LineShiftConfig) BreakDescription() []string {
	var desc []string
	for _, b := range c.Breaks {
		if b.Skip || (b.Start == 0 && b.End == 0) {
			continue
		}
		desc = append(desc, simclock.ClockString(b.Start)+"-"+simclock.ClockString(b.End))
	}
	return desc
}

// ApplyEfficiencyCascade propagates a change of the line-wide OEE to every
// plan item that still carries the old line value. Items with an explicit
// override keep it. Called by the editing layer before a run, never during
// one.
func (c *LineShiftConfig) ApplyEfficiencyCascade(plan *ProductionPlan, oldPct, newPct int) {
	c.EfficiencyPct = newPct
	for _, client := range plan.ClientsFor(c.LineID, c.Shift) {
		for i := range client.Items {
			if client.Items[i].EfficiencyPct == oldPct {
				client.Items[i].EfficiencyPct = newPct
			}
		}
	}
}
