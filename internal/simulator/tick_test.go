package simulator

import (
	"testing"

	"github.com/dmsanchez/traysim/internal/models"
	"github.com/dmsanchez/traysim/internal/simclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstance(t *testing.T, cfg models.LineShiftConfig, clients []*models.Client) *models.SimulationInstance {
	t.Helper()
	si, err := models.NewSimulationInstance(cfg, clients)
	require.NoError(t, err)
	return si
}

func singleItemClients(article string, quantity, rate float64, oee int) []*models.Client {
	return []*models.Client{
		{Name: "Cliente", Items: []models.Item{
			{ClientName: "Cliente", ArticleName: article, QuantityOrdered: quantity, NominalRate: rate, EfficiencyPct: oee},
		}},
	}
}

func TestAdvanceProducesAtEffectiveRate(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift1, StartTime: 8.0, EfficiencyPct: 100}
	si := newInstance(t, cfg, singleItemClients("fresa", 800, 800, 100))

	res, err := Advance(si, 8.0, 9.0)
	require.NoError(t, err)

	assert.Equal(t, 800.0, res.Produced)
	assert.Equal(t, 1.0, res.NetWorked)
	assert.Equal(t, 0.0, res.BreakHours)

	// the order completes inside the tick, so the line ends right there
	assert.False(t, si.Active)
	assert.False(t, si.Interrupted)
	assert.Equal(t, 9.0, si.ComputedEndTime())
	assert.Equal(t, 800.0, si.Produced)
	assert.Equal(t, 1.0, si.NetHours)
}

func TestAdvanceSubtractsBreakOverlap(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift1, StartTime: 8.0}
	cfg.Breaks[0] = simclock.BreakWindow{Start: 12.0, End: 12.5}
	si := newInstance(t, cfg, singleItemClients("tomate", 100000, 800, 100))

	res, err := Advance(si, 12.0, 13.0)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.BreakHours, 1e-9)
	assert.InDelta(t, 0.5, res.NetWorked, 1e-9)
	assert.InDelta(t, 400.0, res.Produced, 1e-9)
	assert.True(t, si.Active)
}

func TestAdvanceFullBreakTickKeepsSeriesUnbroken(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift1, StartTime: 8.0}
	cfg.Breaks[0] = simclock.BreakWindow{Start: 12.0, End: 13.0}
	si := newInstance(t, cfg, singleItemClients("pera", 100000, 800, 100))

	res, err := Advance(si, 12.0, 13.0)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Produced)
	assert.InDelta(t, 1.0, res.BreakHours, 1e-9)

	require.Len(t, si.History, 1)
	assert.Equal(t, 13, si.History[0].Hour)
	assert.Equal(t, 0.0, si.History[0].Produced)
}

func TestAdvanceBeforeStartDoesNothing(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift1, StartTime: 10.0}
	si := newInstance(t, cfg, singleItemClients("uva", 1000, 800, 100))

	res, err := Advance(si, 8.0, 9.0)
	require.NoError(t, err)
	assert.Equal(t, TickResult{}, res)
	assert.Empty(t, si.History)

	// a tick straddling the start only counts the part after it
	res, err = Advance(si, 9.0, 10.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.NetWorked, 1e-9)
	assert.InDelta(t, 400.0, res.Produced, 1e-9)
}

func TestAdvanceInactiveInstanceIsANoop(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift1, StartTime: 8.0}
	si := newInstance(t, cfg, singleItemClients("mango", 1000, 800, 100))
	si.Deactivate(9.0, false)

	res, err := Advance(si, 9.0, 10.0)
	require.NoError(t, err)
	assert.Equal(t, TickResult{}, res)
	assert.Empty(t, si.History)
}

func TestAdvanceWaitsForArrivalGate(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift1, StartTime: 8.0}
	clients := []*models.Client{
		{Name: "Gated", Gated: true, ArrivalGateHour: 10.0, Items: []models.Item{
			{ArticleName: "tarrina", QuantityOrdered: 100, NominalRate: 100, EfficiencyPct: 100},
		}},
	}
	si := newInstance(t, cfg, clients)

	res, err := Advance(si, 8.0, 9.0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Produced)

	res, err = Advance(si, 9.0, 10.0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Produced)

	res, err = Advance(si, 10.0, 11.0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Produced)
	assert.False(t, si.Active)
	assert.Equal(t, 11.0, si.ComputedEndTime())
}

func TestAdvanceIdlesOutTickWhenNextClientNotArrived(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift1, StartTime: 8.0}
	clients := []*models.Client{
		{Name: "First", Items: []models.Item{
			{ArticleName: "a", QuantityOrdered: 400, NominalRate: 800, EfficiencyPct: 100},
		}},
		{Name: "Late", Gated: true, ArrivalGateHour: 12.0, Items: []models.Item{
			{ArticleName: "b", QuantityOrdered: 400, NominalRate: 800, EfficiencyPct: 100},
		}},
	}
	si := newInstance(t, cfg, clients)

	// first item takes half the tick; the gated successor keeps the rest idle
	res, err := Advance(si, 8.0, 9.0)
	require.NoError(t, err)
	assert.InDelta(t, 400.0, res.Produced, 1e-9)
	assert.InDelta(t, 0.5, res.NetWorked, 1e-9)
	assert.True(t, si.Active)
	require.Len(t, si.Queue, 1)
}

func TestAdvanceGateIgnoredPastFirstDay(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift1, StartTime: 25.0}
	clients := []*models.Client{
		{Name: "Gated", Gated: true, ArrivalGateHour: 10.0, Items: []models.Item{
			{ArticleName: "c", QuantityOrdered: 800, NominalRate: 800, EfficiencyPct: 100},
		}},
	}
	si := newInstance(t, cfg, clients)

	res, err := Advance(si, 25.0, 26.0)
	require.NoError(t, err)
	assert.Equal(t, 800.0, res.Produced)
}

func TestAdvanceCompletionTolerance(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift1, StartTime: 8.0}
	si := newInstance(t, cfg, singleItemClients("casi", 800.05, 800, 100))

	res, err := Advance(si, 8.0, 9.0)
	require.NoError(t, err)

	// the 0.05 units left are within tolerance; the order counts as done
	assert.InDelta(t, 800.0, res.Produced, 1e-9)
	assert.False(t, si.Active)
	assert.Nil(t, si.Current)
	assert.Equal(t, 9.0, si.ComputedEndTime())
}

func TestAdvanceZeroRateGuard(t *testing.T) {
	si := &models.SimulationInstance{
		LineID:    "1",
		Shift:     models.Shift1,
		Active:    true,
		StartTime: 8.0,
		Queue: []*models.Item{
			{ArticleName: "dead", QuantityOrdered: 100, QuantityRemaining: 100, NominalRate: 800, EfficiencyPct: 0},
		},
	}

	_, err := Advance(si, 8.0, 9.0)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrZeroRate)
}

func TestAdvanceBreaksCrossingMidnight(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift2, StartTime: 22.0}
	cfg.Breaks[0] = simclock.BreakWindow{Start: 23.5, End: 0.25}
	si := newInstance(t, cfg, singleItemClients("noche", 100000, 800, 100))

	res, err := Advance(si, 23.0, 24.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.BreakHours, 1e-9)

	res, err = Advance(si, 24.0, 25.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, res.BreakHours, 1e-9)
	assert.InDelta(t, 0.75, res.NetWorked, 1e-9)
}

func TestAdvanceConservesQuantities(t *testing.T) {
	cfg := models.LineShiftConfig{LineID: "1", Shift: models.Shift1, StartTime: 8.0}
	cfg.Breaks[0] = simclock.BreakWindow{Start: 10.0, End: 10.25}
	clients := []*models.Client{
		{Name: "A", Items: []models.Item{
			{ArticleName: "a1", QuantityOrdered: 1200, NominalRate: 800, EfficiencyPct: 85},
			{ArticleName: "a2", QuantityOrdered: 900, NominalRate: 650, EfficiencyPct: 85},
		}},
		{Name: "B", Items: []models.Item{
			{ArticleName: "b1", QuantityOrdered: 700, NominalRate: 900, EfficiencyPct: 70},
		}},
	}
	si := newInstance(t, cfg, clients)

	clock := 8.0
	prev := 0.0
	for i := 0; i < 48 && si.Active; i++ {
		res, err := Advance(si, clock, clock+1)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.Produced, 0.0)
		assert.LessOrEqual(t, res.NetWorked+res.BreakHours, 1.0+1e-9,
			"net and break time cannot exceed the tick")
		assert.GreaterOrEqual(t, si.Produced, prev, "cumulative production never decreases")

		prev = si.Produced
		clock++
	}

	assert.False(t, si.Active, "plan must finish inside the horizon")
	assert.InDelta(t, si.TotalTarget, si.Produced, models.CompletionTolerance*3)
	assert.Empty(t, si.Queue)
	assert.Nil(t, si.Current)

	// the history is one record per elapsed tick, hours strictly increasing
	for i := 1; i < len(si.History); i++ {
		assert.Equal(t, si.History[i-1].Hour+1, si.History[i].Hour)
		assert.GreaterOrEqual(t, si.History[i].Cumulative, si.History[i-1].Cumulative)
	}
}
