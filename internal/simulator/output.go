package simulator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dmsanchez/traysim/internal/cloudwriter"
	"github.com/dmsanchez/traysim/internal/models"
	"github.com/dmsanchez/traysim/internal/output"
	"github.com/dmsanchez/traysim/internal/simclock"
	producers "github.com/dmsanchez/traysim/internal/simulator/producers"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// OutputDestination receives the serialized snapshot stream, one topic per
// event kind.
type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleOutput struct{}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	out := fmt.Sprintf("[%s] %s\n", topic, string(msg))
	if _, err := os.Stdout.Write([]byte(out)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	_ = os.Stdout.Sync()
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// JSONOutput appends one JSON document per line, one file per topic under
// <basePath>/<folder>/<runID>/.
type JSONOutput struct {
	basePath string
	folder   string
	runID    string
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder, runID string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		runID:    runID,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	file, ok := j.files[topic]
	if !ok {
		dir := filepath.Join(j.basePath, j.folder, j.runID)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
		var err error
		file, err = os.Create(filepath.Join(dir, topic+".json"))
		if err != nil {
			return fmt.Errorf("failed to create file for topic %s: %w", topic, err)
		}
		j.files[topic] = file
	}

	if _, err := file.Write(msg); err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", topic, err)
	}
	_, err := file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	for _, file := range j.files {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

// CSVOutput writes one CSV file per topic, headers from the first event.
type CSVOutput struct {
	basePath string
	folder   string
	runID    string
	files    map[string]*csv.Writer
	headers  map[string][]string
}

func NewCSVOutput(basePath, folder, runID string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		runID:    runID,
		files:    make(map[string]*csv.Writer),
		headers:  make(map[string][]string),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	w, ok := c.files[topic]
	if !ok {
		dir := filepath.Join(c.basePath, c.folder, c.runID)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
		file, err := os.Create(filepath.Join(dir, topic+".csv"))
		if err != nil {
			return err
		}
		w = csv.NewWriter(file)
		c.files[topic] = w

		headers := sortedKeys(event)
		if err := w.Write(headers); err != nil {
			return err
		}
		c.headers[topic] = headers
	}

	row := make([]string, len(c.headers[topic]))
	for i, header := range c.headers[topic] {
		if value, ok := event[header]; ok {
			row[i] = fmt.Sprintf("%v", value)
		}
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (c *CSVOutput) Close() error {
	for _, w := range c.files {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(event map[string]interface{}) []string {
	keys := make([]string, 0, len(event))
	for k := range event {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParquetOutput writes one parquet file per topic, locally or through a
// cloud writer factory.
type ParquetOutput struct {
	basePath string
	folder   string
	runID    string

	mu      sync.Mutex
	writers map[string]*writer.ParquetWriter
	files   map[string]source.ParquetFile

	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

func NewParquetOutput(config *models.Config, runID string) (*ParquetOutput, error) {
	p := &ParquetOutput{
		basePath: config.OutputPath,
		folder:   config.OutputFolder,
		runID:    runID,
		writers:  make(map[string]*writer.ParquetWriter),
		files:    make(map[string]source.ParquetFile),
	}

	if config.OutputDestination != "local" {
		var factory cloudwriter.CloudWriterFactory
		var err error

		switch config.CloudStorage.Provider {
		case "s3":
			factory, err = cloudwriter.NewS3WriterFactory(config.CloudStorage.Region)
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", config.CloudStorage.Provider)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}

		p.cloudWriterFactory = factory
		p.cloudBucketName = config.CloudStorage.BucketName
	}

	return p, nil
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	record, err := decodeTopicEvent(topic, msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pw, ok := p.writers[topic]
	if !ok {
		pw, err = p.createNewWriter(topic)
		if err != nil {
			return fmt.Errorf("failed to create new writer: %w", err)
		}
	}

	if err := pw.Write(record); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *ParquetOutput) createNewWriter(topic string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	var err error
	if p.cloudWriterFactory != nil {
		objectPath := filepath.Join(p.folder, p.runID, topic+".parquet")
		cw, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = cloudwriter.NewCloudParquetFile(cw)
	} else {
		dir := filepath.Join(p.basePath, p.folder, p.runID)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
		fw, err = local.NewLocalFileWriter(filepath.Join(dir, topic+".parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	sc, err := GetSchema(topic)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, nil, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.SchemaHandler = sc

	p.writers[topic] = pw
	p.files[topic] = fw
	return pw, nil
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for topic, pw := range p.writers {
		if err := pw.WriteStop(); err != nil {
			lastErr = err
			log.Printf("Error closing writer for topic %s: %v", topic, err)
		}
		if f, ok := p.files[topic]; ok {
			if err := f.Close(); err != nil {
				lastErr = err
				log.Printf("Error closing file for topic %s: %v", topic, err)
			}
		}
	}
	return lastErr
}

func decodeTopicEvent(topic string, msg []byte) (interface{}, error) {
	var record interface{}
	switch topic {
	case TopicLineTicks:
		record = new(LineTickEvent)
	case TopicPlantTicks:
		record = new(PlantTickEvent)
	case TopicRunSummaries:
		record = new(RunSummaryEvent)
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
	if err := json.Unmarshal(msg, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Simulator) determineOutputDestination() OutputDestination {
	if s.Config.KafkaEnabled {
		producer, err := producers.NewSaramaProducer(s.Config)
		if err != nil {
			log.Fatalf("Failed to create Kafka producer: %v", err)
		}
		return producer
	}
	if s.Config.Database.Enabled {
		pg, err := output.NewPostgresOutput(&s.Config.Database)
		if err != nil {
			log.Fatalf("Failed to create Postgres output: %v", err)
		}
		return pg
	}
	if s.Config.OutputPath != "" {
		switch s.Config.OutputFormat {
		case "parquet":
			out, err := NewParquetOutput(s.Config, s.RunID)
			if err != nil {
				log.Fatalf("Failed to create Parquet output: %v", err)
			}
			return out
		case "csv":
			return NewCSVOutput(s.Config.OutputPath, s.Config.OutputFolder, s.RunID)
		case "json", "":
			return NewJSONOutput(s.Config.OutputPath, s.Config.OutputFolder, s.RunID)
		default:
			log.Fatalf("Unsupported output format: %s", s.Config.OutputFormat)
		}
	}
	return &ConsoleOutput{}
}

func (s *Simulator) publishTick(out OutputDestination, tickProduced map[int]float64) {
	hour := int64(s.Clock)
	for _, inst := range s.Instances {
		snap := inst.Snapshot()
		var produced float64
		if n := len(inst.History); n > 0 && inst.History[n-1].Hour == int(hour) {
			produced = inst.History[n-1].Produced
		}
		s.write(out, TopicLineTicks, LineTickEvent{
			RunID:          s.RunID,
			Hour:           hour,
			LineID:         snap.LineID,
			Shift:          int32(snap.Shift),
			Produced:       produced,
			Cumulative:     snap.Produced,
			TotalTarget:    snap.TotalTarget,
			NetHours:       snap.NetHours,
			BreakHours:     snap.BreakHours,
			CurrentArticle: snap.CurrentArticle,
			QueueLength:    int32(snap.QueueLength),
			Active:         snap.Active,
		})
	}

	s.write(out, TopicPlantTicks, PlantTickEvent{
		RunID:            s.RunID,
		Hour:             hour,
		Clock:            simclock.ClockString(s.Clock),
		ProducedShift1:   tickProduced[models.Shift1],
		ProducedShift2:   tickProduced[models.Shift2],
		CumulativeShift1: s.ShiftProduced[models.Shift1],
		CumulativeShift2: s.ShiftProduced[models.Shift2],
		ActiveLines:      int32(s.activeCount()),
	})
}

func (s *Simulator) publishSummary(out OutputDestination) {
	totalNet := 0.0
	for _, inst := range s.Instances {
		s.write(out, TopicRunSummaries, RunSummaryEvent{
			RunID:       s.RunID,
			LineID:      inst.LineID,
			Shift:       int32(inst.Shift),
			Produced:    inst.Produced,
			NetHours:    inst.NetHours,
			BreakHours:  inst.BreakHours,
			EndTime:     simclock.ClockString(inst.ComputedEndTime()),
			Interrupted: inst.Interrupted,
			Status:      string(s.Status),
		})
		totalNet += inst.NetHours
	}
	s.write(out, TopicRunSummaries, RunSummaryEvent{
		RunID:    s.RunID,
		Produced: s.ShiftProduced[models.Shift1] + s.ShiftProduced[models.Shift2],
		NetHours: totalNet,
		EndTime:  simclock.ClockString(s.Clock),
		Status:   string(s.Status),
	})
}

func (s *Simulator) write(out OutputDestination, topic string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error serializing event for %s: %v", topic, err)
		return
	}
	if err := out.WriteMessage(topic, data); err != nil {
		log.Printf("Failed to write message to %s: %v", topic, err)
	}
}

// progressBarWriter keeps the bar off stdout so it never interleaves with
// console snapshot output.
func progressBarWriter() io.Writer {
	return os.Stderr
}
