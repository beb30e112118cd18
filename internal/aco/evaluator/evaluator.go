// Package evaluator scores a timetable assignment: the marginal edge length
// an Ant uses while constructing a path, and the full L_period/L_room/L_total
// decomposition used for pheromone deposit once a path is complete.
package evaluator

import (
	"acotimetable/internal/models"
)

// Coefficients from spec.md §4.2. These are fixed constants of the scoring
// function, not tunable Parameters.
const (
	CapCoef      = 2.0
	TeacherCoef  = 3.0
	StudentCoef  = 3.0
	StraddleCoef = 1.0
)

// OccupancyView exposes the rooms a teacher or student group is already
// present in at a given period, mid-construction. Ant implements this so
// EdgeLength can be called without evaluator importing ant.
type OccupancyView interface {
	TeacherRooms(teacher, period int) []int
	StudentRooms(group, period int) []int
}

func pairCount(n int) float64 {
	f := float64(n)
	return f * (f - 1) / 2
}

// EdgeLength is the marginal cost of placing class at (room, period) given
// the partial occupancy recorded so far. It is intentionally evaluated only
// at the class's starting period, not summed across its full span — see
// spec Open Question (a), preserved as-is.
func EdgeLength(class models.Class, room models.Room, period, dayLength int, occ OccupancyView) float64 {
	length := 1.0

	if class.NumStudents > room.Capacity {
		length += CapCoef
	}

	for _, g := range class.StudentGroupIndexes {
		n := len(occ.StudentRooms(g, period))
		if n > 0 {
			length += pairCount(n) * StudentCoef
		}
	}
	for _, t := range class.TeacherIndexes {
		n := len(occ.TeacherRooms(t, period))
		if n > 0 {
			length += pairCount(n) * TeacherCoef
		}
	}

	if (period%dayLength)+class.SerialSize > dayLength {
		length += StraddleCoef
	}

	return length
}

// Result is the decomposed and total fitness of one complete assignment.
type Result struct {
	LPeriod []float64 // indexed by period
	LRoom   []float64 // indexed by room
	LTotal  float64
}

// Score recomputes L_period, L_room and L_total from scratch for a full CRP
// assignment, independent of any Ant's incremental construction-time
// bookkeeping (spec.md §4.2's "Total fitness" is defined over a full
// assignment, not the running edge-length heuristic).
func Score(input *models.Input, numPeriods, numRooms, dayLength int, crp []models.RoomPeriod) Result {
	lPeriod := make([]float64, numPeriods)
	lRoom := make([]float64, numRooms)
	for i := range lPeriod {
		lPeriod[i] = 1
	}
	for i := range lRoom {
		lRoom[i] = 1
	}

	teacherCount := make(map[int]map[int]int) // teacher -> period -> count
	studentCount := make(map[int]map[int]int) // group -> period -> count
	capacityExceededAtPeriod := make(map[int]bool)

	for classID, rp := range crp {
		class := input.Classes[classID]
		room := input.Rooms[rp.Room]

		if class.NumStudents > room.Capacity {
			capacityExceededAtPeriod[rp.Period] = true
		}
		if (rp.Period%dayLength)+class.SerialSize > dayLength {
			lRoom[rp.Room] += StraddleCoef
		}

		for _, t := range class.TeacherIndexes {
			if teacherCount[t] == nil {
				teacherCount[t] = make(map[int]int)
			}
			for i := 0; i < class.SerialSize; i++ {
				teacherCount[t][rp.Period+i]++
			}
		}
		for _, sg := range class.StudentGroupIndexes {
			if studentCount[sg] == nil {
				studentCount[sg] = make(map[int]int)
			}
			for i := 0; i < class.SerialSize; i++ {
				studentCount[sg][rp.Period+i]++
			}
		}
	}

	for period, exceeded := range capacityExceededAtPeriod {
		if exceeded {
			lPeriod[period] += CapCoef
		}
	}
	for _, byPeriod := range teacherCount {
		for period, n := range byPeriod {
			lPeriod[period] += pairCount(n) * TeacherCoef
		}
	}
	for _, byPeriod := range studentCount {
		for period, n := range byPeriod {
			lPeriod[period] += pairCount(n) * StudentCoef
		}
	}

	total := 1.0
	for _, v := range lPeriod {
		total += v - 1
	}
	for _, v := range lRoom {
		total += v - 1
	}

	return Result{LPeriod: lPeriod, LRoom: lRoom, LTotal: total}
}
