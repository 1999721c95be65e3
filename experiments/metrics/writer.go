package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AgentConfig describes one agent of an experiment.
type AgentConfig struct {
	ID                 int           `json:"id" yaml:"id"`
	Searcher           string        `json:"searcher" yaml:"searcher"` // lsi, mcts or random
	Members            int           `json:"members" yaml:"members"`
	Workers            int           `json:"workers" yaml:"workers"`
	Iterations         int           `json:"iterations" yaml:"iterations"`
	Duration           time.Duration `json:"duration" yaml:"duration"`
	Cutoff             int           `json:"cutoff" yaml:"cutoff"`
	GenerationFraction float64       `json:"generation_fraction" yaml:"generation_fraction"`
	Correction         float64       `json:"evaluation_correction" yaml:"evaluation_correction"`
	Exploration        float64       `json:"exploration" yaml:"exploration"` // UCB1 C squared, mcts only
	MaxRetries         int           `json:"max_retries" yaml:"max_retries"`
	MaxTurnLength      int           `json:"max_turn_length" yaml:"max_turn_length"`
	Flat               bool          `json:"flat" yaml:"flat"` // Enumerate turns instead of sampling decisions
	Ordering           string        `json:"ordering" yaml:"ordering"`
	Aggregation        string        `json:"aggregation" yaml:"aggregation"`
	PerfectInformation bool          `json:"perfect_information" yaml:"perfect_information"`
	Retain             bool          `json:"retain" yaml:"retain"`
	Evaluator          string        `json:"evaluator" yaml:"evaluator"`
	Seed               uint64        `json:"seed" yaml:"seed"`
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type ThroughputRecord struct {
	Agent     int // AgentConfig.ID
	Decisions int
	Playouts  int
	Duration  time.Duration
}

// PerSecond is the playout throughput.
func (r ThroughputRecord) PerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Playouts) / r.Duration.Seconds()
}

type Writer struct {
	RunID   uuid.UUID
	baseDir string
}

// NewWriter creates the directory root/name/<run id> for one experiment run.
func NewWriter(root, name string) (*Writer, error) {
	runID := uuid.New()
	baseDir := filepath.Join(root, name, runID.String())
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		RunID:   runID,
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "searcher", "members", "workers", "iterations", "duration", "cutoff", "generation_fraction", "evaluation_correction", "exploration", "max_retries", "max_turn_length", "flat", "ordering", "aggregation", "perfect_information", "retain", "evaluator", "seed"}
	rows := make([][]string, len(configs))
	for i, config := range configs {
		rows[i] = []string{
			strconv.Itoa(config.ID),
			config.Searcher,
			strconv.Itoa(config.Members),
			strconv.Itoa(config.Workers),
			strconv.Itoa(config.Iterations),
			config.Duration.String(),
			strconv.Itoa(config.Cutoff),
			strconv.FormatFloat(config.GenerationFraction, 'f', -1, 64),
			strconv.FormatFloat(config.Correction, 'f', -1, 64),
			strconv.FormatFloat(config.Exploration, 'f', -1, 64),
			strconv.Itoa(config.MaxRetries),
			strconv.Itoa(config.MaxTurnLength),
			strconv.FormatBool(config.Flat),
			config.Ordering,
			config.Aggregation,
			strconv.FormatBool(config.PerfectInformation),
			strconv.FormatBool(config.Retain),
			config.Evaluator,
			strconv.FormatUint(config.Seed, 10),
		}
	}
	if err := w.write("agent_configs.csv", header, rows); err != nil {
		return fmt.Errorf("failed to write agent configs: %w", err)
	}
	return nil
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"run", "id", "agent1", "agent2", "starting_player", "winner", "start_time", "end_time", "duration", "total_turns"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			w.RunID.String(),
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalTurns),
		}
	}
	if err := w.write("game_records.csv", header, rows); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	return nil
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "turn", "player", "decisions", "illegal", "searcher", "members", "duration", "generations", "evaluations", "episodes", "full_playouts", "candidates", "rounds", "failures"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Turn),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Decisions),
			strconv.Itoa(record.Illegal),
			record.Searcher,
			strconv.Itoa(record.Members),
			record.Duration.String(),
			strconv.Itoa(record.Generations),
			strconv.Itoa(record.Evaluations),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.Candidates),
			strconv.Itoa(record.Rounds),
			strconv.Itoa(record.Failures),
		}
	}
	if err := w.write("move_records.csv", header, rows); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	return nil
}

func (w *Writer) WriteThroughputRecords(records []ThroughputRecord) error {
	header := []string{"agent", "decisions", "playouts", "duration", "playouts_per_second"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.Agent),
			strconv.Itoa(record.Decisions),
			strconv.Itoa(record.Playouts),
			record.Duration.String(),
			strconv.FormatFloat(record.PerSecond(), 'f', 2, 64),
		}
	}
	if err := w.write("throughput_records.csv", header, rows); err != nil {
		return fmt.Errorf("failed to write throughput records: %w", err)
	}
	return nil
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return f.Close()
}
