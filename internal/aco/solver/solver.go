// Package solver drives the ACO iteration loop: evaporate, run one Colony
// iteration, stage the iteration-best's (and the super-ant's) deposit,
// track the best-ever ant, and reset on stagnation.
package solver

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"acotimetable/internal/aco/ant"
	"acotimetable/internal/aco/colony"
	"acotimetable/internal/aco/evaluator"
	"acotimetable/internal/aco/graph"
	"acotimetable/internal/atomicfloat"
	"acotimetable/internal/config"
	"acotimetable/internal/models"
)

// Solver is the top-level control loop of spec.md §4.5. It owns a Colony, a
// clone of the Input it was adapted from, and the two distinguished ants.
type Solver struct {
	params config.Parameters
	input  *models.Input
	graph  *graph.Graph
	colony *colony.Colony
	rng    *rand.Rand

	bestAnt  *ant.Ant
	bestScore evaluator.Result

	superAnt   *ant.Ant
	superScore evaluator.Result
	hasSuper   bool

	cntSuperNotChange int
	iterationsRun     int

	// liveBestTotal mirrors bestScore.LTotal for lock-free reads from a
	// progress-polling goroutine (e.g. an HTTP handler) while RunACOTimes
	// keeps running on its own goroutine.
	liveBestTotal *atomicfloat.Float64
}

// New adapts an Input into a fresh Solver under the given Parameters. The
// Input is cloned so later mutation of the session's Input slot cannot
// disturb an in-flight run.
func New(params config.Parameters, input *models.Input) (*Solver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	clone := input.Clone()
	return &Solver{
		params:        params,
		input:         clone,
		graph:         graph.New(params, clone),
		colony:        colony.New(params),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		liveBestTotal: atomicfloat.New(math.Inf(1)),
	}, nil
}

// NewWithRand is New but with an explicit rand source, for deterministic
// tests (spec.md §8: fixed seed + K=1 + p_rand=1.0 reproducibility).
func NewWithRand(params config.Parameters, input *models.Input, rng *rand.Rand) (*Solver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	clone := input.Clone()
	return &Solver{
		params:        params,
		input:         clone,
		graph:         graph.New(params, clone),
		colony:        colony.New(params),
		rng:           rng,
		liveBestTotal: atomicfloat.New(math.Inf(1)),
	}, nil
}

// Graph returns the Solver's Graph, e.g. so a host can apply OneHotPheromone.
func (s *Solver) Graph() *graph.Graph { return s.graph }

// Input returns the cloned Input this Solver is solving.
func (s *Solver) Input() *models.Input { return s.input }

// Params returns this Solver's Parameters.
func (s *Solver) Params() config.Parameters { return s.params }

// BestAnt returns the best ant from the most recently completed iteration.
func (s *Solver) BestAnt() (*ant.Ant, evaluator.Result, bool) {
	if s.bestAnt == nil {
		return nil, evaluator.Result{}, false
	}
	return s.bestAnt, s.bestScore, true
}

// SuperAnt returns the best ant ever seen across all iterations.
func (s *Solver) SuperAnt() (*ant.Ant, evaluator.Result, bool) {
	if !s.hasSuper {
		return nil, evaluator.Result{}, false
	}
	return s.superAnt, s.superScore, true
}

// StagnationCount returns the number of consecutive iterations without
// improvement in the super-ant's score.
func (s *Solver) StagnationCount() int { return s.cntSuperNotChange }

// RunACOTimes runs n ACO iterations, per spec.md §4.5's state machine:
// evaporate (skipped on the very first iteration ever run), run one Colony
// iteration, stage the iteration-best's and the super-ant's deposit,
// update the super-ant and stagnation counter, and reset all pheromones to
// TauMax on stagnation. It is a blocking call with no suspension points
// mid-iteration; ctx is only checked at iteration boundaries (see
// SPEC_FULL.md §5).
func (s *Solver) RunACOTimes(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if s.iterationsRun > 0 {
			s.graph.CommitEvaporation()
		}

		iterBest, iterResult, err := s.colony.RunIteration(s.rng, s.graph, s.input)
		if err != nil {
			return fmt.Errorf("solver: iteration %d: %w", s.iterationsRun, err)
		}

		iterBest.UpdateNextPheromone(s.graph, s.input)
		if s.hasSuper {
			s.superAnt.UpdateNextPheromone(s.graph, s.input)
		}

		if !s.hasSuper || iterResult.LTotal < s.superScore.LTotal {
			s.superAnt = iterBest.Clone()
			s.superScore = iterResult
			s.hasSuper = true
			s.cntSuperNotChange = 0
		} else {
			s.cntSuperNotChange++
		}

		if s.cntSuperNotChange >= s.params.StagnationLimit {
			s.graph.ResetAll()
			s.cntSuperNotChange = 0
		}

		s.bestAnt = iterBest.Clone()
		s.bestScore = iterResult
		s.liveBestTotal.Store(iterResult.LTotal)
		s.iterationsRun++
	}
	return nil
}

// LiveBestTotal reads the current iteration-best L_total without taking any
// lock, so a progress-reporting goroutine can poll it while a long
// RunACOTimes call is in flight on another goroutine. Returns +Inf before
// the first iteration completes.
func (s *Solver) LiveBestTotal() float64 { return s.liveBestTotal.Load() }

// OneHotPheromone applies a user lock bias: the cell is driven to TauMax,
// every other cell for that class to TauMin, and the class is locked so
// the Locked pass of future constructions honors it.
func (s *Solver) OneHotPheromone(c, r, p int) {
	s.graph.ResetPheromoneOneHot(c, r, p)
	s.graph.SetLock(c, r, p)
}

// Result summarizes a bounded run, grounded on r3b0rn-acc-flowShop's
// opt.Result and on the original host's handle_aco_run_once timing/logging.
type Result struct {
	Iterations int
	Duration   time.Duration
	BestTotal  float64
	Reason     string // "threshold" | "exhausted" | "context"
}

// RunUntilThreshold runs up to maxIterations iterations, stopping early once
// the best ant's L_total falls at or below threshold. This is the driver
// behavior described in spec.md §4.5 ("Termination: caller-driven... up to
// 10,000 iterations or until L_total(best) <= 1.5").
func (s *Solver) RunUntilThreshold(ctx context.Context, maxIterations int, threshold float64) (Result, error) {
	start := time.Now()
	for i := 0; i < maxIterations; i++ {
		if err := s.RunACOTimes(ctx, 1); err != nil {
			reason := "exhausted"
			if ctx.Err() != nil {
				reason = "context"
			}
			return Result{
				Iterations: i,
				Duration:   time.Since(start),
				Reason:     reason,
			}, err
		}
		if _, score, ok := s.BestAnt(); ok && score.LTotal <= threshold {
			return Result{
				Iterations: i + 1,
				Duration:   time.Since(start),
				BestTotal:  score.LTotal,
				Reason:     "threshold",
			}, nil
		}
	}
	_, score, _ := s.BestAnt()
	return Result{
		Iterations: maxIterations,
		Duration:   time.Since(start),
		BestTotal:  score.LTotal,
		Reason:     "exhausted",
	}, nil
}
