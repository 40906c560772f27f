package models

const (
	Shift1 = 1
	Shift2 = 2

	// An item counts as finished once its remaining quantity drops below
	// this many units; keeps float rounding from leaving ghost work behind.
	CompletionTolerance = 0.1

	// Arrival gates are hour-of-day values and only bind during the first
	// simulated day; past hour 24 the gate check short-circuits.
	GateHorizonHours = 24.0

	DefaultOEEPct      = 85
	DefaultNominalRate = 800.0
)
