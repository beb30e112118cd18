// Package graph implements the static source of truth for a solver run: the
// pheromone tensor and the lock table, plus the problem's static data
// (classes, rooms, teachers, student groups). Ants borrow a Graph read-only
// for the duration of one construct_path; only the Solver commits deposits
// and evaporation.
package graph

import (
	"fmt"

	"acotimetable/internal/config"
	"acotimetable/internal/models"
)

// Graph owns the pheromone tensor tau[C][R][P] and the lock table. Out of
// range indices into tau are a programming error (spec.md §7 InvalidIndex)
// and panic rather than returning an error, since no caller should ever be
// able to construct one from problem data.
type Graph struct {
	params config.Parameters
	input  *models.Input

	tau     [][][]float64
	tauNext [][][]float64

	locks map[int]models.RoomPeriod
}

// New builds a Graph for the given Parameters and Input, with every
// pheromone initialized to TauMax and no locks set.
func New(params config.Parameters, input *models.Input) *Graph {
	g := &Graph{
		params: params,
		input:  input,
		locks:  make(map[int]models.RoomPeriod),
	}
	g.tau = newTensor(params.NumClasses, params.NumRooms, params.NumPeriods, params.TauMax)
	g.tauNext = newTensor(params.NumClasses, params.NumRooms, params.NumPeriods, 0)
	return g
}

func newTensor(c, r, p int, fill float64) [][][]float64 {
	t := make([][][]float64, c)
	for i := range t {
		t[i] = make([][]float64, r)
		for j := range t[i] {
			t[i][j] = make([]float64, p)
			for k := range t[i][j] {
				t[i][j][k] = fill
			}
		}
	}
	return t
}

func (g *Graph) checkIndex(c, r, p int) {
	if c < 0 || c >= g.params.NumClasses || r < 0 || r >= g.params.NumRooms || p < 0 || p >= g.params.NumPeriods {
		panic(fmt.Sprintf("graph: index out of range c=%d r=%d p=%d (C=%d R=%d P=%d)",
			c, r, p, g.params.NumClasses, g.params.NumRooms, g.params.NumPeriods))
	}
}

// Params returns the Parameters this Graph was built from.
func (g *Graph) Params() config.Parameters { return g.params }

// Input returns the static problem data this Graph was built from.
func (g *Graph) Input() *models.Input { return g.input }

// Pheromone reads tau[c][r][p].
func (g *Graph) Pheromone(c, r, p int) float64 {
	g.checkIndex(c, r, p)
	return g.tau[c][r][p]
}

// AddDeposit accumulates delta into the shadow tensor tauNext, to be folded
// in by the next CommitEvaporation.
func (g *Graph) AddDeposit(c, r, p int, delta float64) {
	g.checkIndex(c, r, p)
	g.tauNext[c][r][p] += delta
}

// CommitEvaporation applies tau <- (1-rho)*tau + tauNext, clamps every entry
// to [TauMin, TauMax], and zeroes tauNext for the next iteration.
func (g *Graph) CommitEvaporation() {
	keep := 1 - g.params.Rho
	for c := range g.tau {
		for r := range g.tau[c] {
			for p := range g.tau[c][r] {
				v := keep*g.tau[c][r][p] + g.tauNext[c][r][p]
				if v < g.params.TauMin {
					v = g.params.TauMin
				} else if v > g.params.TauMax {
					v = g.params.TauMax
				}
				g.tau[c][r][p] = v
				g.tauNext[c][r][p] = 0
			}
		}
	}
}

// ResetAll reinitializes every pheromone to TauMax, used by the Solver's
// stagnation reset.
func (g *Graph) ResetAll() {
	for c := range g.tau {
		for r := range g.tau[c] {
			for p := range g.tau[c][r] {
				g.tau[c][r][p] = g.params.TauMax
				g.tauNext[c][r][p] = 0
			}
		}
	}
}

// Lock returns the forced (room, period) for class c, if the user has
// locked it.
func (g *Graph) Lock(c int) (models.RoomPeriod, bool) {
	rp, ok := g.locks[c]
	return rp, ok
}

// SetLock forces class c to (r, p) in future constructions.
func (g *Graph) SetLock(c, r, p int) {
	g.checkIndex(c, r, p)
	g.locks[c] = models.RoomPeriod{Room: r, Period: p}
}

// ClearLock removes any lock on class c.
func (g *Graph) ClearLock(c int) {
	delete(g.locks, c)
}

// ResetPheromoneOneHot biases the search toward (r,p) for class c: that
// cell is driven to TauMax, every other (r',p') for c is driven to TauMin.
// This does not itself lock the class; callers that want a binding lock
// must also call SetLock.
func (g *Graph) ResetPheromoneOneHot(c, r, p int) {
	g.checkIndex(c, r, p)
	for rr := range g.tau[c] {
		for pp := range g.tau[c][rr] {
			if rr == r && pp == p {
				g.tau[c][rr][pp] = g.params.TauMax
			} else {
				g.tau[c][rr][pp] = g.params.TauMin
			}
		}
	}
}
