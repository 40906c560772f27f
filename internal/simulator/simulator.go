package simulator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/dmsanchez/traysim/internal/models"
	"github.com/dmsanchez/traysim/internal/simclock"
	"github.com/lucsky/cuid"
	"github.com/schollz/progressbar/v3"
)

// ErrSafetyBound is returned when a run exceeds its net-hour or elapsed-time
// ceiling, usually a sign of malformed configuration such as an arrival gate
// that can never be satisfied.
var ErrSafetyBound = errors.New("simulation safety bound exceeded")

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusAborted   RunStatus = "aborted"
)

// SummaryRow is one line of the final report.
type SummaryRow struct {
	Label       string
	Produced    float64
	NetHours    float64
	BreakHours  float64
	EndTime     string
	Interrupted bool
}

// Simulator advances all line/shift instances in lockstep, one virtual hour
// per tick. Instances are independent within a tick; they are processed in
// configuration order so runs are reproducible.
type Simulator struct {
	Config    *models.Config
	RunID     string
	Instances []*models.SimulationInstance

	Clock  float64
	Status RunStatus

	// Aggregates per shift, fed to the presentation layer.
	ShiftProduced map[int]float64
	GlobalHistory map[int][]models.HistoryRecord

	shift2Starts  map[string]float64
	earliestStart float64
}

// NewSimulator builds one instance per included line/shift. Shift-2 lines
// only join when the second shift is enabled; their start times form the
// cutover map that interrupts shift-1 lines. A line whose plan cannot be
// simulated is excluded with its error recorded, and the run goes on
// without it.
func NewSimulator(config *models.Config, lines []models.LineShiftConfig, plan *models.ProductionPlan) *Simulator {
	s := &Simulator{
		Config:        config,
		RunID:         cuid.New(),
		Status:        StatusRunning,
		ShiftProduced: map[int]float64{models.Shift1: 0, models.Shift2: 0},
		GlobalHistory: make(map[int][]models.HistoryRecord),
		shift2Starts:  make(map[string]float64),
	}

	if config.SecondShift {
		for _, cfg := range lines {
			if cfg.Shift == models.Shift2 && !cfg.Excluded {
				if t2, ok := s.shift2Starts[cfg.LineID]; !ok || cfg.StartTime < t2 {
					s.shift2Starts[cfg.LineID] = cfg.StartTime
				}
			}
		}
	}

	for _, cfg := range lines {
		if cfg.Shift == models.Shift2 && !config.SecondShift {
			continue
		}
		inst, err := models.NewSimulationInstance(cfg, plan.ClientsFor(cfg.LineID, cfg.Shift))
		if err != nil {
			log.Printf("Excluding line %s shift %d: %v", cfg.LineID, cfg.Shift, err)
			inst = &models.SimulationInstance{
				LineID:      cfg.LineID,
				Shift:       cfg.Shift,
				StartTime:   cfg.StartTime,
				ConfigError: err,
			}
		}
		s.Instances = append(s.Instances, inst)
	}

	return s
}

// Run drives the simulation to completion, publishing a snapshot after
// every tick. The context cancels the run between ticks; a tick is never
// interrupted halfway.
func (s *Simulator) Run(ctx context.Context) error {
	output := s.determineOutputDestination()
	defer func() {
		if err := output.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
		}
	}()

	if !s.anyActive() {
		s.Status = StatusCompleted
		log.Printf("Run %s: nothing to simulate", s.RunID)
		s.publishSummary(output)
		return nil
	}

	s.Clock = s.minActiveStart()
	s.earliestStart = s.Clock
	log.Printf("Run %s starts at %s with %d line instances",
		s.RunID, simclock.ClockString(s.Clock), len(s.Instances))

	bar := progressbar.NewOptions(int(s.Config.MaxRunHours),
		progressbar.OptionSetDescription("simulating"),
		progressbar.OptionSetWriter(progressBarWriter()),
		progressbar.OptionClearOnFinish(),
	)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Run %s cancelled at %s", s.RunID, simclock.ClockString(s.Clock))
			return ctx.Err()
		default:
		}

		// Tick targets align to whole-hour boundaries, so a fractional
		// start yields a short first tick.
		target := math.Floor(s.Clock) + 1

		s.applyCutover(target)

		tickProduced := map[int]float64{models.Shift1: 0, models.Shift2: 0}
		anyActive := false
		for _, inst := range s.Instances {
			res, err := Advance(inst, s.Clock, target)
			if err != nil {
				log.Printf("Excluding line %s shift %d mid-run: %v", inst.LineID, inst.Shift, err)
				inst.ConfigError = err
				inst.Deactivate(s.Clock, false)
				continue
			}
			tickProduced[inst.Shift] += res.Produced
			if inst.Active {
				anyActive = true
			}
		}

		s.Clock = target
		for _, shift := range []int{models.Shift1, models.Shift2} {
			s.ShiftProduced[shift] += tickProduced[shift]
			s.GlobalHistory[shift] = append(s.GlobalHistory[shift], models.HistoryRecord{
				Hour:       int(target),
				Produced:   tickProduced[shift],
				Cumulative: s.ShiftProduced[shift],
			})
		}

		s.publishTick(output, tickProduced)
		_ = bar.Set(int(s.Clock - s.earliestStart))

		if err := s.checkSafetyBounds(); err != nil {
			s.Status = StatusAborted
			s.publishSummary(output)
			log.Printf("Run %s aborted at %s: %v", s.RunID, simclock.ClockString(s.Clock), err)
			return err
		}

		if !anyActive {
			break
		}

		if s.Config.TickInterval > 0 {
			select {
			case <-ctx.Done():
				log.Printf("Run %s cancelled at %s", s.RunID, simclock.ClockString(s.Clock))
				return ctx.Err()
			case <-time.After(s.Config.TickInterval):
			}
		}
	}

	s.Status = StatusCompleted
	_ = bar.Finish()
	s.publishSummary(output)
	log.Printf("Run %s completed at %s", s.RunID, simclock.ClockString(s.Clock))
	return nil
}

// applyCutover hands lines over to shift 2: once the tick target passes a
// line's shift-2 start, its shift-1 instance is interrupted at exactly that
// hour, backlog or not.
func (s *Simulator) applyCutover(target float64) {
	for _, inst := range s.Instances {
		if inst.Shift != models.Shift1 || !inst.Active {
			continue
		}
		if t2, ok := s.shift2Starts[inst.LineID]; ok && target > t2 {
			inst.Deactivate(t2, true)
			log.Printf("Line %s shift 1 interrupted at %s for shift 2 changeover",
				inst.LineID, simclock.ClockString(t2))
		}
	}
}

func (s *Simulator) checkSafetyBounds() error {
	totalNet := 0.0
	for _, inst := range s.Instances {
		totalNet += inst.NetHours
	}
	if totalNet > s.Config.MaxNetHours {
		return fmt.Errorf("accumulated net hours %.1f over ceiling %.1f: %w",
			totalNet, s.Config.MaxNetHours, ErrSafetyBound)
	}
	if s.Clock > s.earliestStart+s.Config.MaxRunHours {
		return fmt.Errorf("virtual clock %.1f over horizon of %.1f hours past start: %w",
			s.Clock, s.Config.MaxRunHours, ErrSafetyBound)
	}
	return nil
}

// ShiftEndTime is the latest computed end time among a shift's instances,
// zero when the shift never ran.
func (s *Simulator) ShiftEndTime(shift int) float64 {
	end := 0.0
	for _, inst := range s.Instances {
		if inst.Shift != shift || inst.TotalTarget == 0 {
			continue
		}
		if e := inst.ComputedEndTime(); e > end {
			end = e
		}
	}
	return end
}

// FinalReport renders the per-line summary rows plus a trailing GLOBAL row.
func (s *Simulator) FinalReport() []SummaryRow {
	rows := make([]SummaryRow, 0, len(s.Instances)+1)
	totalNet := 0.0
	for _, inst := range s.Instances {
		rows = append(rows, SummaryRow{
			Label:       fmt.Sprintf("L%s (T%d)", inst.LineID, inst.Shift),
			Produced:    inst.Produced,
			NetHours:    inst.NetHours,
			BreakHours:  inst.BreakHours,
			EndTime:     simclock.ClockString(inst.ComputedEndTime()),
			Interrupted: inst.Interrupted,
		})
		totalNet += inst.NetHours
	}
	rows = append(rows, SummaryRow{
		Label:    "GLOBAL",
		Produced: s.ShiftProduced[models.Shift1] + s.ShiftProduced[models.Shift2],
		NetHours: totalNet,
		EndTime:  simclock.ClockString(s.Clock),
	})
	return rows
}

func (s *Simulator) anyActive() bool {
	for _, inst := range s.Instances {
		if inst.Active {
			return true
		}
	}
	return false
}

func (s *Simulator) minActiveStart() float64 {
	start := math.Inf(1)
	for _, inst := range s.Instances {
		if inst.Active && inst.StartTime < start {
			start = inst.StartTime
		}
	}
	return start
}

func (s *Simulator) activeCount() int {
	n := 0
	for _, inst := range s.Instances {
		if inst.Active {
			n++
		}
	}
	return n
}
