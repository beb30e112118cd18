// Package ant implements one candidate assignment under construction: the
// probabilistic constructive walk over a Graph's pheromones, the running
// conflict-accounting tables used to evaluate marginal placement cost, and
// the violation reports consumed by a host UI.
package ant

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"acotimetable/internal/aco/evaluator"
	"acotimetable/internal/aco/graph"
	"acotimetable/internal/config"
	"acotimetable/internal/models"
)

// ErrNoAllocatableCell is returned when some class has no free (room,
// period) cell left to claim during construction. The Colony discards the
// offending ant for that iteration; if every ant fails, it is surfaced to
// the caller.
var ErrNoAllocatableCell = errors.New("ant: no allocatable cell for class")

// Ant holds one in-progress or completed assignment plus the occupancy
// tables needed to price the next placement.
type Ant struct {
	numClasses, numRooms, numPeriods, dayLength int
	numTeachers, numStudentGroups                int

	visitedClasses     []bool
	visitedRoomPeriods [][]bool // [room][period]
	crp                []models.RoomPeriod

	// teacherOcc[teacher][period] and studentOcc[group][period] are the
	// multiset of rooms that teacher/group is present in at that period,
	// laid out as the design note's "dense[T][P] -> multiset<room>".
	teacherOcc [][][]int
	studentOcc [][][]int
}

// New allocates an Ant's state for the given Parameters. The state is
// reused across iterations via Reset rather than reallocated.
func New(params config.Parameters) *Ant {
	a := &Ant{
		numClasses:       params.NumClasses,
		numRooms:         params.NumRooms,
		numPeriods:       params.NumPeriods,
		dayLength:        params.DayLength,
		numTeachers:      params.NumTeachers,
		numStudentGroups: params.NumStudentGroups,
	}
	a.visitedRoomPeriods = make([][]bool, a.numRooms)
	for r := range a.visitedRoomPeriods {
		a.visitedRoomPeriods[r] = make([]bool, a.numPeriods)
	}
	a.crp = make([]models.RoomPeriod, a.numClasses)
	a.visitedClasses = make([]bool, a.numClasses)
	a.teacherOcc = newOccupancy(a.numTeachers, a.numPeriods)
	a.studentOcc = newOccupancy(a.numStudentGroups, a.numPeriods)
	return a
}

func newOccupancy(n, periods int) [][][]int {
	occ := make([][][]int, n)
	for i := range occ {
		occ[i] = make([][]int, periods)
	}
	return occ
}

// Reset clears the visited bitmaps and the crp table, per spec.md's
// reset_ant. Occupancy tables are rebuilt from scratch by ConstructPath.
func (a *Ant) Reset() {
	for i := range a.visitedClasses {
		a.visitedClasses[i] = false
	}
	for r := range a.visitedRoomPeriods {
		row := a.visitedRoomPeriods[r]
		for p := range row {
			row[p] = false
		}
	}
	for i := range a.crp {
		a.crp[i] = models.RoomPeriod{}
	}
}

func (a *Ant) clearOccupancy() {
	for t := range a.teacherOcc {
		row := a.teacherOcc[t]
		for p := range row {
			row[p] = nil
		}
	}
	for s := range a.studentOcc {
		row := a.studentOcc[s]
		for p := range row {
			row[p] = nil
		}
	}
}

// CRP returns the completed assignment: crp[c] is the (room, period) class c
// was placed at.
func (a *Ant) CRP() []models.RoomPeriod { return a.crp }

// Clone deep-copies this Ant's full state. The Solver uses this to hold a
// stable best_ant/super_ant snapshot across iterations, since Colony reuses
// its fleet's underlying Ant objects in place on every RunIteration call.
func (a *Ant) Clone() *Ant {
	out := &Ant{
		numClasses:       a.numClasses,
		numRooms:         a.numRooms,
		numPeriods:       a.numPeriods,
		dayLength:        a.dayLength,
		numTeachers:      a.numTeachers,
		numStudentGroups: a.numStudentGroups,
	}
	out.visitedClasses = append([]bool(nil), a.visitedClasses...)
	out.crp = append([]models.RoomPeriod(nil), a.crp...)

	out.visitedRoomPeriods = make([][]bool, len(a.visitedRoomPeriods))
	for i, row := range a.visitedRoomPeriods {
		out.visitedRoomPeriods[i] = append([]bool(nil), row...)
	}

	out.teacherOcc = cloneOccupancy(a.teacherOcc)
	out.studentOcc = cloneOccupancy(a.studentOcc)
	return out
}

func cloneOccupancy(occ [][][]int) [][][]int {
	out := make([][][]int, len(occ))
	for i, byPeriod := range occ {
		out[i] = make([][]int, len(byPeriod))
		for p, rooms := range byPeriod {
			out[i][p] = append([]int(nil), rooms...)
		}
	}
	return out
}

// TeacherRooms returns the rooms teacher t is present in at period p so far,
// satisfying evaluator.OccupancyView.
func (a *Ant) TeacherRooms(t, p int) []int { return a.teacherOcc[t][p] }

// StudentRooms returns the rooms student group g is present in at period p
// so far, satisfying evaluator.OccupancyView.
func (a *Ant) StudentRooms(g, p int) []int { return a.studentOcc[g][p] }

func (a *Ant) allocate(c, r, p int, input *models.Input) {
	class := input.Classes[c]
	a.crp[c] = models.RoomPeriod{Room: r, Period: p}
	a.visitedClasses[c] = true

	for i := 0; i < class.SerialSize; i++ {
		a.visitedRoomPeriods[r][p+i] = true
	}
	for _, t := range class.TeacherIndexes {
		for i := 0; i < class.SerialSize; i++ {
			period := p + i
			a.teacherOcc[t][period] = append(a.teacherOcc[t][period], r)
		}
	}
	for _, sg := range class.StudentGroupIndexes {
		for i := 0; i < class.SerialSize; i++ {
			period := p + i
			a.studentOcc[sg][period] = append(a.studentOcc[sg][period], r)
		}
	}
}

// allocatableCells returns every (room, period) cell a class of the given
// serial size could still be placed into, given what this Ant has claimed
// so far.
func (a *Ant) allocatableCells(serialSize int) []models.RoomPeriod {
	var cells []models.RoomPeriod
	lastStart := a.numPeriods - serialSize
	for r := 0; r < a.numRooms; r++ {
		for p := 0; p <= lastStart; p++ {
			ok := true
			for i := 0; i < serialSize; i++ {
				if a.visitedRoomPeriods[r][p+i] {
					ok = false
					break
				}
			}
			if ok {
				cells = append(cells, models.RoomPeriod{Room: r, Period: p})
			}
		}
	}
	return cells
}

// ConstructPath builds one complete candidate assignment: it clears
// occupancy, places locked classes first (bypassing probabilistic choice),
// then places every remaining class by sampling over its allocatable cells
// weighted by tau^alpha * (Q/edgeLength)^beta.
func (a *Ant) ConstructPath(rng *rand.Rand, g *graph.Graph, input *models.Input) error {
	a.Reset()
	a.clearOccupancy()

	params := g.Params()
	order := rng.Perm(a.numClasses)

	for _, c := range order {
		if rp, locked := g.Lock(c); locked {
			a.allocate(c, rp.Room, rp.Period, input)
		}
	}

	for _, c := range order {
		if a.visitedClasses[c] {
			continue
		}
		class := input.Classes[c]
		cells := a.allocatableCells(class.SerialSize)
		if len(cells) == 0 {
			return fmt.Errorf("%w: class %d", ErrNoAllocatableCell, c)
		}

		var chosen models.RoomPeriod
		if rng.Float64() < params.ProbRandom {
			chosen = cells[rng.Intn(len(cells))]
		} else {
			weights := make([]float64, len(cells))
			sum := 0.0
			for i, cell := range cells {
				tau := g.Pheromone(c, cell.Room, cell.Period)
				length := evaluator.EdgeLength(class, input.Rooms[cell.Room], cell.Period, a.dayLength, a)
				heuristic := params.Q / length
				w := math.Pow(tau, params.Alpha) * math.Pow(heuristic, params.Beta)
				weights[i] = w
				sum += w
			}
			if sum <= 0 {
				// Degenerate case (all weights zero): fall back to uniform,
				// per the design notes.
				chosen = cells[rng.Intn(len(cells))]
			} else {
				u := rng.Float64() * sum
				acc := 0.0
				chosen = cells[len(cells)-1]
				for i, w := range weights {
					acc += w
					if acc > u {
						chosen = cells[i]
						break
					}
				}
			}
		}

		a.allocate(c, chosen.Room, chosen.Period, input)
	}

	return nil
}

// Score computes this Ant's L_period/L_room/L_total decomposition against
// the given Graph's dimensions and Input.
func (a *Ant) Score(g *graph.Graph, input *models.Input) evaluator.Result {
	params := g.Params()
	return evaluator.Score(input, params.NumPeriods, params.NumRooms, params.DayLength, a.crp)
}

// UpdateNextPheromone stages this Ant's deposit into the Graph's shadow
// tensor: every class deposits Q / (L_period[p] + L_room[r] - 1) at the cell
// it occupies.
func (a *Ant) UpdateNextPheromone(g *graph.Graph, input *models.Input) evaluator.Result {
	result := a.Score(g, input)
	q := g.Params().Q
	for c, rp := range a.crp {
		denom := result.LPeriod[rp.Period] + result.LRoom[rp.Room] - 1
		g.AddDeposit(c, rp.Room, rp.Period, q/denom)
	}
	return result
}

// CellProbability renormalizes the sampling weight of class at (room,
// period) over every cell in the grid, ignoring visited status — this is
// the quantity the host UI renders as a pheromone-landscape color gradient.
// Grounded on the original implementation's calc_prob_from_v_igunore_visited.
func (a *Ant) CellProbability(g *graph.Graph, input *models.Input, classIdx, room, period int) float64 {
	class := input.Classes[classIdx]
	params := g.Params()

	sum := 0.0
	var target float64
	for r := 0; r < params.NumRooms; r++ {
		for p := 0; p < params.NumPeriods; p++ {
			tau := g.Pheromone(classIdx, r, p)
			length := evaluator.EdgeLength(class, input.Rooms[r], p, a.dayLength, a)
			heuristic := params.Q / length
			w := math.Pow(tau, params.Alpha) * math.Pow(heuristic, params.Beta)
			sum += w
			if r == room && p == period {
				target = w
			}
		}
	}
	if sum <= 0 {
		return 0
	}
	return target / sum
}

// CapacityViolation reports a class whose headcount exceeds its assigned
// room's capacity.
type CapacityViolation struct {
	ClassID int
	Period  int
}

// ConflictViolation reports a period at which the same teacher or student
// group appears in more than one room.
type ConflictViolation struct {
	Period int
	Rooms  []int
}

// StraddleViolation reports a class whose occupied interval crosses a day
// boundary. This is the redesigned loose form (spec Open Question b): the
// original reused the "period" parameter as a loop variable and produced
// incorrect indices; this emits the (start_period, room) pair directly from
// the assignment instead.
type StraddleViolation struct {
	Room   int
	Period int
}

// LooseCapacityViolations lists (class, period) pairs where the assigned
// room is too small, derived directly from the crp table.
func (a *Ant) LooseCapacityViolations(input *models.Input) []CapacityViolation {
	var out []CapacityViolation
	for classID, rp := range a.crp {
		if input.Classes[classID].NumStudents > input.Rooms[rp.Room].Capacity {
			out = append(out, CapacityViolation{ClassID: classID, Period: rp.Period})
		}
	}
	return out
}

// LooseTeacherViolations lists periods where a teacher occupies more than
// one room, as recorded in the construction-time occupancy table. allocate
// records every period of a class's span there, so this sees conflicts over
// the full span; unlike the strict form, Rooms is left in allocation order.
func (a *Ant) LooseTeacherViolations() []ConflictViolation {
	return looseConflicts(a.teacherOcc)
}

// LooseStudentViolations is the LooseTeacherViolations analogue for student
// groups.
func (a *Ant) LooseStudentViolations() []ConflictViolation {
	return looseConflicts(a.studentOcc)
}

func looseConflicts(occ [][][]int) []ConflictViolation {
	var out []ConflictViolation
	for _, byPeriod := range occ {
		for period, rooms := range byPeriod {
			if len(rooms) > 1 {
				out = append(out, ConflictViolation{Period: period, Rooms: append([]int(nil), rooms...)})
			}
		}
	}
	return out
}

// StraddleViolations lists every class whose span crosses a day boundary.
func (a *Ant) StraddleViolations(input *models.Input) []StraddleViolation {
	var out []StraddleViolation
	for classID, rp := range a.crp {
		size := input.Classes[classID].SerialSize
		if (rp.Period%a.dayLength)+size > a.dayLength {
			out = append(out, StraddleViolation{Room: rp.Room, Period: rp.Period})
		}
	}
	return out
}

// StrictTeacherViolations materializes a period x room grid of present
// teachers by expanding each class over its full serial_size span, and
// reports any period where a teacher appears in more than one room. This is
// the authoritative form for the UI (spec.md §4.3).
func (a *Ant) StrictTeacherViolations(input *models.Input) []ConflictViolation {
	return strictConflicts(a, input, func(c models.Class) []int { return c.TeacherIndexes }, a.numTeachers)
}

// StrictStudentViolations is the StrictTeacherViolations analogue for
// student groups.
func (a *Ant) StrictStudentViolations(input *models.Input) []ConflictViolation {
	return strictConflicts(a, input, func(c models.Class) []int { return c.StudentGroupIndexes }, a.numStudentGroups)
}

func strictConflicts(a *Ant, input *models.Input, indexesOf func(models.Class) []int, numEntities int) []ConflictViolation {
	// present[period][entity] = rooms that entity is present in at that period.
	present := make([][][]int, a.numPeriods)
	for p := range present {
		present[p] = make([][]int, numEntities)
	}

	for classID, rp := range a.crp {
		class := input.Classes[classID]
		for i := 0; i < class.SerialSize; i++ {
			period := rp.Period + i
			if period >= a.numPeriods {
				continue
			}
			for _, entity := range indexesOf(class) {
				present[period][entity] = append(present[period][entity], rp.Room)
			}
		}
	}

	var out []ConflictViolation
	for period, byEntity := range present {
		for _, rooms := range byEntity {
			if len(rooms) > 1 {
				sorted := append([]int(nil), rooms...)
				sortInts(sorted)
				out = append(out, ConflictViolation{Period: period, Rooms: sorted})
			}
		}
	}
	return out
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
