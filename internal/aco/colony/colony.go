// Package colony owns a fleet of ants and runs one ACO iteration: every ant
// constructs a path, each is scored, and the iteration-best is returned for
// the Solver to reinforce.
package colony

import (
	"math/rand"

	"acotimetable/internal/aco/ant"
	"acotimetable/internal/aco/evaluator"
	"acotimetable/internal/aco/graph"
	"acotimetable/internal/config"
	"acotimetable/internal/models"
)

// Colony holds K ants, reused across iterations.
type Colony struct {
	ants []*ant.Ant
}

// New allocates a Colony of params.NumAnts ants.
func New(params config.Parameters) *Colony {
	c := &Colony{ants: make([]*ant.Ant, params.NumAnts)}
	for i := range c.ants {
		c.ants[i] = ant.New(params)
	}
	return c
}

// Ants exposes the fleet, e.g. for the UI to inspect violation reports
// across all ants, not just the iteration-best.
func (c *Colony) Ants() []*ant.Ant { return c.ants }

// RunIteration has every ant construct a path, scores the ones that
// succeed, and returns the ant with the minimum L_total. Ants that fail to
// construct (ErrNoAllocatableCell) are dropped from consideration for this
// iteration; if every ant fails, that error is returned.
func (c *Colony) RunIteration(rng *rand.Rand, g *graph.Graph, input *models.Input) (*ant.Ant, evaluator.Result, error) {
	var best *ant.Ant
	var bestResult evaluator.Result
	var lastErr error

	for _, a := range c.ants {
		if err := a.ConstructPath(rng, g, input); err != nil {
			lastErr = err
			continue
		}
		result := a.Score(g, input)
		if best == nil || result.LTotal < bestResult.LTotal {
			best = a
			bestResult = result
		}
	}

	if best == nil {
		return nil, evaluator.Result{}, lastErr
	}
	return best, bestResult, nil
}
