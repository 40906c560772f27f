package output

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmsanchez/traysim/internal/models"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresOutput persists the snapshot stream: one row per line per tick,
// one row per plant tick and one row per summary event.
type PostgresOutput struct {
	db *sql.DB
}

func NewPostgresOutput(config *models.DatabaseConfig) (*PostgresOutput, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	p := &PostgresOutput{db: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PostgresOutput) ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS line_tick_history (
			run_id TEXT NOT NULL,
			hour BIGINT NOT NULL,
			line_id TEXT NOT NULL,
			shift INT NOT NULL,
			produced DOUBLE PRECISION NOT NULL,
			cumulative DOUBLE PRECISION NOT NULL,
			total_target DOUBLE PRECISION NOT NULL,
			net_hours DOUBLE PRECISION NOT NULL,
			break_hours DOUBLE PRECISION NOT NULL,
			current_article TEXT,
			queue_length INT NOT NULL,
			active BOOLEAN NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS plant_tick_history (
			run_id TEXT NOT NULL,
			hour BIGINT NOT NULL,
			clock TEXT NOT NULL,
			produced_shift1 DOUBLE PRECISION NOT NULL,
			produced_shift2 DOUBLE PRECISION NOT NULL,
			cumulative_shift1 DOUBLE PRECISION NOT NULL,
			cumulative_shift2 DOUBLE PRECISION NOT NULL,
			active_lines INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_summaries (
			run_id TEXT NOT NULL,
			line_id TEXT,
			shift INT NOT NULL,
			produced DOUBLE PRECISION NOT NULL,
			net_hours DOUBLE PRECISION NOT NULL,
			break_hours DOUBLE PRECISION NOT NULL,
			end_time TEXT NOT NULL,
			interrupted BOOLEAN NOT NULL,
			status TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := p.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	var err error
	switch topic {
	case "line_tick_events":
		_, err = p.db.Exec(`INSERT INTO line_tick_history (
				run_id, hour, line_id, shift, produced, cumulative, total_target,
				net_hours, break_hours, current_article, queue_length, active
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			str(event, "runId"), num(event, "hour"), str(event, "lineId"),
			num(event, "shift"), num(event, "produced"), num(event, "cumulative"),
			num(event, "totalTarget"), num(event, "netHours"), num(event, "breakHours"),
			nullableString(str(event, "currentArticle")), num(event, "queueLength"),
			boolean(event, "active"),
		)
	case "plant_tick_events":
		_, err = p.db.Exec(`INSERT INTO plant_tick_history (
				run_id, hour, clock, produced_shift1, produced_shift2,
				cumulative_shift1, cumulative_shift2, active_lines
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			str(event, "runId"), num(event, "hour"), str(event, "clock"),
			num(event, "producedShift1"), num(event, "producedShift2"),
			num(event, "cumulativeShift1"), num(event, "cumulativeShift2"),
			num(event, "activeLines"),
		)
	case "run_summary_events":
		_, err = p.db.Exec(`INSERT INTO run_summaries (
				run_id, line_id, shift, produced, net_hours, break_hours,
				end_time, interrupted, status
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			str(event, "runId"), nullableString(str(event, "lineId")),
			num(event, "shift"), num(event, "produced"), num(event, "netHours"),
			num(event, "breakHours"), str(event, "endTime"),
			boolean(event, "interrupted"), str(event, "status"),
		)
	default:
		return fmt.Errorf("unknown topic: %s", topic)
	}

	if err != nil {
		return fmt.Errorf("failed to insert %s row: %w", topic, err)
	}
	return nil
}

func (p *PostgresOutput) Close() error {
	return p.db.Close()
}

func str(event map[string]interface{}, key string) string {
	if v, ok := event[key].(string); ok {
		return v
	}
	return ""
}

func num(event map[string]interface{}, key string) float64 {
	if v, ok := event[key].(float64); ok {
		return v
	}
	return 0
}

func boolean(event map[string]interface{}, key string) bool {
	if v, ok := event[key].(bool); ok {
		return v
	}
	return false
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
