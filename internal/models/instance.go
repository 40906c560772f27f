package models

import (
	"errors"
	"fmt"

	"github.com/dmsanchez/traysim/internal/simclock"
)

// ErrZeroRate marks a line whose plan contains an item that cannot be
// produced at a positive rate. The line is excluded from the run; other
// lines are unaffected.
var ErrZeroRate = errors.New("non-positive effective production rate")

// HistoryRecord is one point of the hourly production series.
type HistoryRecord struct {
	Hour       int
	Produced   float64
	Cumulative float64
}

// PlanRow is the per-item summary shown when an instance is built.
type PlanRow struct {
	Client         string
	Article        string
	Ordered        float64
	NominalRate    float64
	EfficiencyPct  int
	EffectiveRate  float64
	EstimatedHours float64
}

// InstanceSnapshot is the per-line state published to the presentation
// layer after every tick.
type InstanceSnapshot struct {
	LineID         string
	Shift          int
	Active         bool
	Interrupted    bool
	Produced       float64
	TotalTarget    float64
	NetHours       float64
	BreakHours     float64
	CurrentArticle string
	QueueLength    int
}

// SimulationInstance is the mutable run-time state of one line/shift. It is
// owned exclusively by the driver; items move Client -> Queue -> Current,
// one owner at a time.
type SimulationInstance struct {
	LineID      string
	Shift       int
	Active      bool
	Interrupted bool
	ConfigError error

	StartTime float64
	Breaks    [3]simclock.BreakWindow

	Queue   []*Item
	Current *Item

	Produced    float64
	NetHours    float64
	BreakHours  float64
	TotalTarget float64
	History     []HistoryRecord
	Summary     []PlanRow

	endTime float64
	endSet  bool
}

// NewSimulationInstance flattens the plan of one line/shift into a FIFO
// item queue. A zero total target is not an error; the instance just starts
// inactive. A non-positive rate on any item is a configuration error and
// the whole line is refused.
func NewSimulationInstance(cfg LineShiftConfig, clients []*Client) (*SimulationInstance, error) {
	si := &SimulationInstance{
		LineID:    cfg.LineID,
		Shift:     cfg.Shift,
		StartTime: cfg.StartTime,
		Breaks:    cfg.Breaks,
	}

	for _, client := range clients {
		gate := 0.0
		if client.Gated {
			gate = client.ArrivalGateHour
		}
		for _, item := range client.Items {
			if item.QuantityOrdered <= 0 {
				continue
			}
			if item.NominalRate <= 0 || item.EffectiveRate() <= 0 {
				return nil, fmt.Errorf("line %s shift %d, article %q: %w",
					cfg.LineID, cfg.Shift, item.ArticleName, ErrZeroRate)
			}
			queued := item
			queued.ArrivalGateHour = gate
			queued.QuantityRemaining = item.QuantityOrdered
			si.Queue = append(si.Queue, &queued)
			si.TotalTarget += item.QuantityOrdered
			si.Summary = append(si.Summary, PlanRow{
				Client:         client.Name,
				Article:        item.ArticleName,
				Ordered:        item.QuantityOrdered,
				NominalRate:    item.NominalRate,
				EfficiencyPct:  item.EfficiencyPct,
				EffectiveRate:  queued.EffectiveRate(),
				EstimatedHours: queued.EstimatedHours(),
			})
		}
	}

	si.Active = si.TotalTarget > 0 && !cfg.Excluded
	return si, nil
}

// Deactivate permanently stops the instance and pins its end time.
func (si *SimulationInstance) Deactivate(at float64, interrupted bool) {
	si.Active = false
	si.Interrupted = si.Interrupted || interrupted
	si.endTime = at
	si.endSet = true
}

// MarkTicked records the provisional end time of a still-active instance.
func (si *SimulationInstance) MarkTicked(clockEnd float64) {
	if si.Active {
		si.endTime = clockEnd
		si.endSet = true
	}
}

// ComputedEndTime is the recorded end time, or start plus accumulated net
// and break hours when the instance never ticked.
func (si *SimulationInstance) ComputedEndTime() float64 {
	if si.endSet {
		return si.endTime
	}
	return si.StartTime + si.NetHours + si.BreakHours
}

func (si *SimulationInstance) Snapshot() InstanceSnapshot {
	snap := InstanceSnapshot{
		LineID:      si.LineID,
		Shift:       si.Shift,
		Active:      si.Active,
		Interrupted: si.Interrupted,
		Produced:    si.Produced,
		TotalTarget: si.TotalTarget,
		NetHours:    si.NetHours,
		BreakHours:  si.BreakHours,
		QueueLength: len(si.Queue),
	}
	if si.Current != nil {
		snap.CurrentArticle = si.Current.ArticleName
	}
	return snap
}
