package analyzer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
	"github.com/lcalzada-xor/steermap/internal/core/ports"
)

// Task is one capture to analyze.
type Task struct {
	CapturePath string
	Hints       domain.UserHints
}

// Outcome pairs a task with its result. Exactly one of Analysis or Err is
// meaningful; ArtifactPath is set when a store persisted the artifact.
type Outcome struct {
	Task         Task
	Analysis     *domain.BandSteeringAnalysis
	ArtifactPath string
	Err          error
}

// Pool runs capture analyses concurrently. Each worker owns its dissector
// subprocess for the duration of a task; there is no cross-task shared state.
type Pool struct {
	analyzer *Analyzer
	store    ports.AnalysisStore
	workers  int
	log      *slog.Logger
}

// NewPool builds a pool with at least two workers.
func NewPool(a *Analyzer, store ports.AnalysisStore, workers int, log *slog.Logger) *Pool {
	if workers < 2 {
		workers = 2
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pool{analyzer: a, store: store, workers: workers, log: log}
}

// Run analyzes every task and returns outcomes in task order. Cancelling ctx
// stops dispatch; in-flight dissector subprocesses are killed through their
// own context.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))

	type job struct {
		idx  int
		task Task
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes[j.idx] = p.runOne(ctx, j.task)
			}
		}()
	}

dispatch:
	for i, t := range tasks {
		if err := ctx.Err(); err != nil {
			for k := i; k < len(tasks); k++ {
				outcomes[k] = Outcome{Task: tasks[k], Err: err}
			}
			break dispatch
		}
		select {
		case jobs <- job{idx: i, task: t}:
		case <-ctx.Done():
			for k := i; k < len(tasks); k++ {
				outcomes[k] = Outcome{Task: tasks[k], Err: ctx.Err()}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	return outcomes
}

func (p *Pool) runOne(ctx context.Context, t Task) Outcome {
	out := Outcome{Task: t}

	analysis, err := p.analyzer.Analyze(ctx, t.CapturePath, t.Hints)
	if err != nil {
		p.log.Error("analysis failed", "capture", t.CapturePath, "error", err)
		out.Err = err
		return out
	}
	out.Analysis = analysis

	if p.store != nil {
		path, err := p.store.Save(analysis, t.CapturePath)
		if err != nil {
			p.log.Error("persisting analysis failed", "analysis_id", analysis.AnalysisID, "error", err)
			out.Err = err
			return out
		}
		out.ArtifactPath = path
	}
	return out
}
