package models

import (
	"testing"

	"github.com/dmsanchez/traysim/internal/simclock"
	"github.com/stretchr/testify/assert"
)

func TestBreakDescription(t *testing.T) {
	cfg := LineShiftConfig{
		Breaks: [3]simclock.BreakWindow{
			{Start: 10.0, End: 10.25},
			{Skip: true},
			{Start: 13.0, End: 13.5},
		},
	}
	assert.Equal(t, []string{"10:00-10:15", "13:00-13:30"}, cfg.BreakDescription())

	empty := LineShiftConfig{}
	assert.Empty(t, empty.BreakDescription())
}

func TestApplyEfficiencyCascade(t *testing.T) {
	plan := NewProductionPlan()
	client := plan.Client("1", Shift1, "A")
	client.Items = append(client.Items,
		Item{ArticleName: "inherits", EfficiencyPct: 85},
		Item{ArticleName: "overridden", EfficiencyPct: 70},
	)

	cfg := LineShiftConfig{LineID: "1", Shift: Shift1, EfficiencyPct: 85}
	cfg.ApplyEfficiencyCascade(plan, 85, 90)

	assert.Equal(t, 90, cfg.EfficiencyPct)
	items := plan.ClientsFor("1", Shift1)[0].Items
	assert.Equal(t, 90, items[0].EfficiencyPct, "items on the old line value follow")
	assert.Equal(t, 70, items[1].EfficiencyPct, "explicit overrides stay put")
}

func TestProductionPlanClientOrdering(t *testing.T) {
	plan := NewProductionPlan()
	plan.Client("1", Shift1, "B")
	plan.Client("1", Shift1, "A")
	same := plan.Client("1", Shift1, "B")
	plan.Client("2", Shift1, "C")

	clients := plan.ClientsFor("1", Shift1)
	assert.Equal(t, "B", clients[0].Name)
	assert.Equal(t, "A", clients[1].Name)
	assert.Len(t, clients, 2, "repeat mention returns the existing client")
	assert.Same(t, clients[0], same)

	assert.Equal(t, []PlanKey{
		{LineID: "1", Shift: Shift1},
		{LineID: "2", Shift: Shift1},
	}, plan.Keys())
}
