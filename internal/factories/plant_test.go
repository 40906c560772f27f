package factories

import (
	"testing"

	"github.com/dmsanchez/traysim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLines(t *testing.T) {
	pf := &PlantFactory{}

	lines := pf.CreateLines(3, false)
	require.Len(t, lines, 3)
	for _, cfg := range lines {
		assert.Equal(t, models.Shift1, cfg.Shift)
		assert.GreaterOrEqual(t, cfg.StartTime, 6.0)
		assert.LessOrEqual(t, cfg.StartTime, 8.0)
		assert.GreaterOrEqual(t, cfg.EfficiencyPct, 70)
		assert.LessOrEqual(t, cfg.EfficiencyPct, 95)
		assert.True(t, cfg.Breaks[2].Skip)
	}

	withNight := pf.CreateLines(2, true)
	require.Len(t, withNight, 4)
	assert.Equal(t, models.Shift1, withNight[0].Shift)
	assert.Equal(t, models.Shift2, withNight[1].Shift)
	assert.Equal(t, withNight[0].LineID, withNight[1].LineID)
	assert.Equal(t, 14.0, withNight[1].StartTime)
}

func TestCreatePlanIsSimulatable(t *testing.T) {
	pf := &PlantFactory{}
	lines := pf.CreateLines(2, true)
	plan := pf.CreatePlan(lines, 3, 2)

	for _, cfg := range lines {
		clients := plan.ClientsFor(cfg.LineID, cfg.Shift)
		require.Len(t, clients, 3)

		for _, client := range clients {
			require.Len(t, client.Items, 2)
			for _, item := range client.Items {
				assert.Greater(t, item.QuantityOrdered, 0.0)
				assert.Greater(t, item.NominalRate, 0.0)
				assert.Greater(t, item.EfficiencyPct, 0)
			}
			if client.Gated {
				assert.Greater(t, client.ArrivalGateHour, cfg.StartTime)
			}
		}

		// every generated line must build into a runnable instance
		si, err := models.NewSimulationInstance(cfg, clients)
		require.NoError(t, err)
		assert.True(t, si.Active)
		assert.Len(t, si.Queue, 6)
	}
}
