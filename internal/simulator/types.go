package simulator

import (
	"fmt"

	"github.com/xitongsys/parquet-go/schema"
)

const (
	TopicLineTicks    = "line_tick_events"
	TopicPlantTicks   = "plant_tick_events"
	TopicRunSummaries = "run_summary_events"
)

// LineTickEvent is the per-instance snapshot published after every tick.
type LineTickEvent struct {
	RunID          string  `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Hour           int64   `json:"hour" parquet:"name=hour,type=INT64"`
	LineID         string  `json:"lineId" parquet:"name=lineId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Shift          int32   `json:"shift" parquet:"name=shift,type=INT32"`
	Produced       float64 `json:"produced" parquet:"name=produced,type=DOUBLE"`
	Cumulative     float64 `json:"cumulative" parquet:"name=cumulative,type=DOUBLE"`
	TotalTarget    float64 `json:"totalTarget" parquet:"name=totalTarget,type=DOUBLE"`
	NetHours       float64 `json:"netHours" parquet:"name=netHours,type=DOUBLE"`
	BreakHours     float64 `json:"breakHours" parquet:"name=breakHours,type=DOUBLE"`
	CurrentArticle string  `json:"currentArticle,omitempty" parquet:"name=currentArticle,type=BYTE_ARRAY,convertedtype=UTF8"`
	QueueLength    int32   `json:"queueLength" parquet:"name=queueLength,type=INT32"`
	Active         bool    `json:"active" parquet:"name=active,type=BOOLEAN"`
}

// PlantTickEvent is the plant-wide snapshot for one tick.
type PlantTickEvent struct {
	RunID            string  `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Hour             int64   `json:"hour" parquet:"name=hour,type=INT64"`
	Clock            string  `json:"clock" parquet:"name=clock,type=BYTE_ARRAY,convertedtype=UTF8"`
	ProducedShift1   float64 `json:"producedShift1" parquet:"name=producedShift1,type=DOUBLE"`
	ProducedShift2   float64 `json:"producedShift2" parquet:"name=producedShift2,type=DOUBLE"`
	CumulativeShift1 float64 `json:"cumulativeShift1" parquet:"name=cumulativeShift1,type=DOUBLE"`
	CumulativeShift2 float64 `json:"cumulativeShift2" parquet:"name=cumulativeShift2,type=DOUBLE"`
	ActiveLines      int32   `json:"activeLines" parquet:"name=activeLines,type=INT32"`
}

// RunSummaryEvent is the final per-instance report row; one extra event with
// an empty LineID carries the global totals.
type RunSummaryEvent struct {
	RunID       string  `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
	LineID      string  `json:"lineId,omitempty" parquet:"name=lineId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Shift       int32   `json:"shift" parquet:"name=shift,type=INT32"`
	Produced    float64 `json:"produced" parquet:"name=produced,type=DOUBLE"`
	NetHours    float64 `json:"netHours" parquet:"name=netHours,type=DOUBLE"`
	BreakHours  float64 `json:"breakHours" parquet:"name=breakHours,type=DOUBLE"`
	EndTime     string  `json:"endTime" parquet:"name=endTime,type=BYTE_ARRAY,convertedtype=UTF8"`
	Interrupted bool    `json:"interrupted" parquet:"name=interrupted,type=BOOLEAN"`
	Status      string  `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
}

func GetSchema(topic string) (*schema.SchemaHandler, error) {
	var sh *schema.SchemaHandler
	var err error

	switch topic {
	case TopicLineTicks:
		sh, err = schema.NewSchemaHandlerFromStruct(new(LineTickEvent))
	case TopicPlantTicks:
		sh, err = schema.NewSchemaHandlerFromStruct(new(PlantTickEvent))
	case TopicRunSummaries:
		sh, err = schema.NewSchemaHandlerFromStruct(new(RunSummaryEvent))
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}

	if err != nil {
		return nil, fmt.Errorf("error creating schema for %s: %w", topic, err)
	}
	return sh, nil
}
