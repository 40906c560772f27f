package simulator

import (
	"fmt"
	"math"

	"github.com/dmsanchez/traysim/internal/models"
	"github.com/dmsanchez/traysim/internal/simclock"
)

// TickResult is what one virtual-time advance yielded for one instance.
type TickResult struct {
	Produced   float64
	NetWorked  float64
	BreakHours float64
}

// Advance moves one instance from simClockStart to simClockEnd of virtual
// time. The gross interval is clamped to the instance's start time and, when
// the line is waiting on a gated client within the first day, to the gate
// hour. Break overlap is subtracted, then the item queue is drained at each
// item's effective rate for the remaining net time.
//
// Returns a zero result when the instance is inactive or nothing of the
// interval applies yet. The only error is a defensive guard against a
// non-positive rate slipping past construction; the caller must exclude the
// line.
func Advance(si *models.SimulationInstance, simClockStart, simClockEnd float64) (TickResult, error) {
	var res TickResult
	if !si.Active {
		return res, nil
	}

	tStart := math.Max(si.StartTime, simClockStart)

	// Waiting on a gated client: push the interval start to the gate hour.
	// Gates are day-local and only bind during the first simulated day.
	if si.Current == nil && len(si.Queue) > 0 {
		gate := si.Queue[0].ArrivalGateHour
		if tStart < models.GateHorizonHours && gate > tStart {
			tStart = gate
		}
	}
	if tStart >= simClockEnd {
		return res, nil
	}

	dayStart := math.Mod(tStart, 24)
	dayEnd := math.Mod(simClockEnd, 24)
	if dayEnd == 0 {
		dayEnd = 24 // midnight as end of day
	}
	if dayEnd < dayStart {
		dayEnd += 24
	}
	res.BreakHours = simclock.Overlap(dayStart, dayEnd, si.Breaks)

	netAvailable := math.Max(0, (simClockEnd-tStart)-res.BreakHours)

	worked := 0.0
	for worked < netAvailable {
		if si.Current == nil {
			if len(si.Queue) == 0 {
				si.Deactivate(tStart+worked+res.BreakHours, false)
				break
			}
			next := si.Queue[0]
			currentAbs := tStart + worked + res.BreakHours
			if currentAbs < models.GateHorizonHours && next.ArrivalGateHour > math.Mod(currentAbs, 24) {
				break // next client not arrived yet, idle out the tick
			}
			si.Current = next
			si.Queue = si.Queue[1:]
		}

		job := si.Current
		rate := job.EffectiveRate()
		if rate <= 0 {
			return res, fmt.Errorf("line %s shift %d, article %q: %w",
				si.LineID, si.Shift, job.ArticleName, models.ErrZeroRate)
		}

		timeNeeded := job.QuantityRemaining / rate
		timeStep := math.Min(timeNeeded, netAvailable-worked)
		quantity := timeStep * rate

		job.QuantityRemaining -= quantity
		res.Produced += quantity
		si.Produced += quantity
		worked += timeStep

		if job.QuantityRemaining < models.CompletionTolerance {
			si.Current = nil
			if len(si.Queue) == 0 {
				si.Deactivate(tStart+worked+res.BreakHours, false)
				break
			}
		}
	}

	res.NetWorked = worked
	si.NetHours += worked
	si.BreakHours += res.BreakHours

	// Keep the hourly series unbroken: the record lands even on a
	// zero-production tick, including the one that deactivates the line.
	si.History = append(si.History, models.HistoryRecord{
		Hour:       int(math.Floor(simClockEnd)),
		Produced:   res.Produced,
		Cumulative: si.Produced,
	})
	si.MarkTicked(simClockEnd)

	return res, nil
}
