package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmsanchez/traysim/internal/models"
	"github.com/dmsanchez/traysim/internal/simclock"
)

// LoadLineConfigs reads the per-line shift configuration CSV. Missing or
// malformed cells degrade to defaults (08:00 start, 85% OEE, no breaks);
// rows without a line id are skipped.
func LoadLineConfigs(path string) ([]models.LineShiftConfig, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	var configs []models.LineShiftConfig
	for _, row := range rows {
		get := fieldGetter(header, row)

		lineID := strings.TrimSpace(get("line_id"))
		if lineID == "" {
			continue
		}
		shift := ParseInt(get("shift"), models.Shift1)
		if shift != models.Shift1 && shift != models.Shift2 {
			shift = models.Shift1
		}

		cfg := models.LineShiftConfig{
			LineID:        lineID,
			Shift:         shift,
			EfficiencyPct: clampPct(ParseInt(get("oee_global"), models.DefaultOEEPct)),
			Excluded:      ParseBool(get("excluded")),
		}

		start, ok := ParseClock(get("start_time"))
		if !ok {
			start = simclock.HourFloat(8, 0)
		}
		cfg.StartTime = start

		for i := 0; i < 3; i++ {
			prefix := fmt.Sprintf("break_%d_", i+1)
			bStart, okS := ParseClock(get(prefix + "start"))
			bEnd, okE := ParseClock(get(prefix + "end"))
			cfg.Breaks[i] = simclock.BreakWindow{
				Start: bStart,
				End:   bEnd,
				Skip:  ParseBool(get(prefix+"skip")) || !okS || !okE,
			}
		}

		configs = append(configs, cfg)
	}

	return configs, nil
}

// LoadPlan reads the production plan CSV into ordered client queues. Item
// efficiency defaults to the owning line's OEE unless the row enables an
// override. A client's arrival gate is the last time given for it, and only
// binds when its enable flag is set.
func LoadPlan(path string, lines []models.LineShiftConfig) (*models.ProductionPlan, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	lineOEE := make(map[models.PlanKey]int)
	for _, cfg := range lines {
		lineOEE[models.PlanKey{LineID: cfg.LineID, Shift: cfg.Shift}] = cfg.EfficiencyPct
	}

	plan := models.NewProductionPlan()
	for _, row := range rows {
		get := fieldGetter(header, row)

		lineID := strings.TrimSpace(get("line_id"))
		clientName := strings.TrimSpace(get("client_name"))
		if lineID == "" || clientName == "" {
			continue
		}
		shift := ParseInt(get("shift"), models.Shift1)
		if shift != models.Shift1 && shift != models.Shift2 {
			shift = models.Shift1
		}

		client := plan.Client(lineID, shift, clientName)

		// the last row mentioning the client wins the gate
		if gate, ok := ParseClock(get("client_arrival_time")); ok {
			client.ArrivalGateHour = gate
			client.Gated = ParseBool(get("client_arrival_enabled"))
		}

		article := strings.TrimSpace(get("article_name"))
		if article == "" {
			continue
		}

		oee, hasLine := lineOEE[models.PlanKey{LineID: lineID, Shift: shift}]
		if !hasLine {
			oee = models.DefaultOEEPct
		}
		if ParseBool(get("oee_override_enabled")) {
			oee = clampPct(ParseInt(get("oee_override"), oee))
		}

		client.Items = append(client.Items, models.Item{
			ClientName:      clientName,
			ArticleName:     article,
			QuantityOrdered: ParseFloat(get("quantity_ordered"), 0),
			NominalRate:     ParseFloat(get("nominal_rate"), models.DefaultNominalRate),
			EfficiencyPct:   oee,
		})
	}

	return plan, nil
}

func readCSV(path string) ([][]string, map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headerRow, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[strings.Trim(strings.TrimSpace(name), `"`)] = i
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// tolerate ragged rows rather than failing the whole load
			continue
		}
		rows = append(rows, row)
	}

	return rows, header, nil
}

func fieldGetter(header map[string]int, row []string) func(string) string {
	return func(name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}
}

func clampPct(v int) int {
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}
