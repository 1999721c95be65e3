package experiments

import (
	"context"
	"fmt"
	"time"

	"cardsearch/experiments/metrics"
	"cardsearch/game"
	"cardsearch/searcher/agent"

	"github.com/rs/zerolog/log"
)

// Throughput measures the playouts per second of every config over the same
// positions and writes agent configs and throughput records to a new run
// directory, which it returns. Positions are reached by random play of up to
// depth turns.
func Throughput(ctx context.Context, configs []metrics.AgentConfig, positions, depth int, options ...Option) (string, error) {
	r := newRunner(options)

	writer, err := metrics.NewWriter(r.root, "throughput")
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}

	states := make([]game.State, positions)
	for i := range states {
		states[i] = r.position(ctx, i, depth)
	}

	log.Info().Msg("starting throughput experiment...")

	records := []metrics.ThroughputRecord{}
	for _, config := range configs {
		collector := r.collector()
		a, err := NewAgent(config, r.store, collector)
		if err != nil {
			return "", err
		}

		record := metrics.ThroughputRecord{Agent: config.ID}
		for _, state := range states {
			if ctx.Err() != nil {
				break
			}
			start := time.Now()
			_, searchMetric := a.Decide(ctx, state)
			record.Duration += time.Since(start)
			record.Decisions++
			record.Playouts += searchMetric.Generations + searchMetric.Evaluations + searchMetric.Episodes
		}
		records = append(records, record)

		log.Info().Msgf("agent%d: %d playouts in %s (%.0f/s)", config.ID, record.Playouts, record.Duration, record.PerSecond())
	}

	if err := writer.WriteThroughputRecords(records); err != nil {
		return "", err
	}
	log.Info().Msg("stored throughput records")

	return writer.Dir(), nil
}

// position plays random turns from deal i.
func (r *runner) position(ctx context.Context, i, depth int) game.State {
	state := r.deal(i)
	random := agent.NewRandomAgent(r.seed + uint64(i))
	for turn := 0; turn < depth && !state.IsTerminal(); turn++ {
		action, _ := random.Decide(ctx, state)
		for _, decision := range action {
			if state.IsTerminal() {
				break
			}
			state.Apply(decision)
		}
	}
	if state.IsTerminal() {
		// Searching a finished game measures nothing
		return r.deal(i)
	}
	return state
}
