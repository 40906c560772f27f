package factories

import (
	"fmt"

	"github.com/dmsanchez/traysim/internal/models"
	"github.com/dmsanchez/traysim/internal/simclock"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

var fake = faker.New()

// PlantFactory generates a plausible plant when no spreadsheet input is
// given, mainly for demos and smoke runs.
type PlantFactory struct{}

// CreateLines produces n shift-1 line configurations, each with a morning
// start, a mid-shift break and a lunch break, plus a matching shift-2
// configuration when secondShift is set.
func (pf *PlantFactory) CreateLines(n int, secondShift bool) []models.LineShiftConfig {
	var lines []models.LineShiftConfig
	for i := 0; i < n; i++ {
		lineID := fmt.Sprintf("%d", i+1)
		cfg := models.LineShiftConfig{
			LineID:        lineID,
			Shift:         models.Shift1,
			StartTime:     simclock.HourFloat(fake.IntBetween(6, 8), 0),
			EfficiencyPct: fake.IntBetween(70, 95),
		}
		cfg.Breaks[0] = simclock.BreakWindow{Start: simclock.HourFloat(10, 0), End: simclock.HourFloat(10, 15)}
		cfg.Breaks[1] = simclock.BreakWindow{Start: simclock.HourFloat(12, 0), End: simclock.HourFloat(12, 30)}
		cfg.Breaks[2] = simclock.BreakWindow{Skip: true}
		lines = append(lines, cfg)

		if secondShift {
			night := cfg
			night.Shift = models.Shift2
			night.StartTime = simclock.HourFloat(14, 0)
			night.Breaks[0] = simclock.BreakWindow{Start: simclock.HourFloat(18, 0), End: simclock.HourFloat(18, 15)}
			night.Breaks[1] = simclock.BreakWindow{Skip: true}
			lines = append(lines, night)
		}
	}
	return lines
}

// CreatePlan fills each line/shift with generated clients and items. A
// minority of clients carry an arrival gate a few hours into the shift.
func (pf *PlantFactory) CreatePlan(lines []models.LineShiftConfig, clientsPerLine, itemsPerClient int) *models.ProductionPlan {
	plan := models.NewProductionPlan()
	for _, cfg := range lines {
		used := make(map[string]bool)
		for c := 0; c < clientsPerLine; c++ {
			name := fake.Company().Name()
			for used[name] {
				name = fake.Company().Name() + " " + cuid.Slug()
			}
			used[name] = true
			client := plan.Client(cfg.LineID, cfg.Shift, name)
			if fake.IntBetween(0, 3) == 0 {
				client.Gated = true
				client.ArrivalGateHour = cfg.StartTime + float64(fake.IntBetween(1, 3))
			}
			for i := 0; i < itemsPerClient; i++ {
				client.Items = append(client.Items, models.Item{
					ClientName:      name,
					ArticleName:     fmt.Sprintf("%s-%s", fake.Lorem().Word(), cuid.Slug()),
					QuantityOrdered: float64(fake.IntBetween(400, 4000)),
					NominalRate:     float64(fake.IntBetween(600, 1200)),
					EfficiencyPct:   cfg.EfficiencyPct,
				})
			}
		}
	}
	return plan
}
