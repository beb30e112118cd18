package ant

import (
	"errors"
	"math/rand"
	"testing"

	"acotimetable/internal/aco/graph"
	"acotimetable/internal/config"
	"acotimetable/internal/models"

	. "github.com/smartystreets/goconvey/convey"
)

func smallParams() config.Parameters {
	return config.Parameters{
		NumClasses: 2, NumRooms: 2, NumPeriods: 4, DayLength: 2,
		NumTeachers: 1, NumStudentGroups: 1, NumAnts: 1,
		Alpha: 1, Beta: 1, Rho: 0.5, Q: 10,
		TauMin: 0.001, TauMax: 100,
		ProbRandom: 0, MaxIterations: 10, StagnationLimit: 5,
	}
}

func smallInput() *models.Input {
	return &models.Input{
		Classes: []models.Class{
			{ID: 0, Name: "a", SerialSize: 1, NumStudents: 10, TeacherIndexes: []int{0}, StudentGroupIndexes: []int{0}},
			{ID: 1, Name: "b", SerialSize: 1, NumStudents: 10, TeacherIndexes: []int{0}, StudentGroupIndexes: []int{0}},
		},
		Rooms:         []models.Room{{ID: 0, Name: "r0", Capacity: 20}, {ID: 1, Name: "r1", Capacity: 20}},
		Teachers:      []models.Teacher{{ID: 0, Name: "t0"}},
		StudentGroups: []models.StudentGroup{{ID: 0, Name: "g0"}},
	}
}

func TestConstructPath(t *testing.T) {
	Convey("Given an Ant over a small problem with no locks", t, func() {
		params := smallParams()
		input := smallInput()
		g := graph.New(params, input)
		a := New(params)
		rng := rand.New(rand.NewSource(1))

		err := a.ConstructPath(rng, g, input)
		So(err, ShouldBeNil)

		Convey("every class receives exactly one assignment with a valid span", func() {
			crp := a.CRP()
			So(len(crp), ShouldEqual, params.NumClasses)
			for c, rp := range crp {
				size := input.Classes[c].SerialSize
				So(rp.Period+size, ShouldBeLessThanOrEqualTo, params.NumPeriods)
			}
		})

		Convey("no two classes claim the same (room, period) cell", func() {
			claimed := map[[2]int]bool{}
			for _, rp := range a.CRP() {
				key := [2]int{rp.Room, rp.Period}
				So(claimed[key], ShouldBeFalse)
				claimed[key] = true
			}
		})
	})

	Convey("Given a locked class", t, func() {
		params := smallParams()
		input := smallInput()
		g := graph.New(params, input)
		g.SetLock(0, 1, 2)
		a := New(params)
		rng := rand.New(rand.NewSource(7))

		err := a.ConstructPath(rng, g, input)
		So(err, ShouldBeNil)

		Convey("the locked class is placed exactly at its lock regardless of pheromone state", func() {
			So(a.CRP()[0], ShouldResemble, models.RoomPeriod{Room: 1, Period: 2})
		})
	})

	Convey("Given K=1, p_rand=1.0 and a fixed seed with no locks", t, func() {
		params := smallParams()
		params.ProbRandom = 1.0
		input := smallInput()

		runOnce := func(seed int64) []models.RoomPeriod {
			g := graph.New(params, input)
			a := New(params)
			rng := rand.New(rand.NewSource(seed))
			_ = a.ConstructPath(rng, g, input)
			return append([]models.RoomPeriod(nil), a.CRP()...)
		}

		Convey("two runs from the same seed produce identical assignments", func() {
			first := runOnce(42)
			second := runOnce(42)
			So(second, ShouldResemble, first)
		})
	})

	Convey("Given an over-constrained problem with too few cells", t, func() {
		params := smallParams()
		params.NumRooms = 1
		params.NumPeriods = 1
		input := &models.Input{
			Classes: []models.Class{
				{ID: 0, SerialSize: 1, NumStudents: 1},
				{ID: 1, SerialSize: 1, NumStudents: 1},
			},
			Rooms: []models.Room{{ID: 0, Capacity: 10}},
		}
		g := graph.New(params, input)
		a := New(params)
		rng := rand.New(rand.NewSource(3))

		Convey("construction fails with ErrNoAllocatableCell", func() {
			err := a.ConstructPath(rng, g, input)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrNoAllocatableCell), ShouldBeTrue)
		})
	})
}

func TestViolationReports(t *testing.T) {
	Convey("Given a class that exceeds its room's capacity", t, func() {
		params := smallParams()
		input := smallInput()
		input.Classes[0].NumStudents = 9999
		g := graph.New(params, input)
		a := New(params)
		rng := rand.New(rand.NewSource(1))
		_ = a.ConstructPath(rng, g, input)

		Convey("LooseCapacityViolations reports it", func() {
			violations := a.LooseCapacityViolations(input)
			So(len(violations), ShouldBeGreaterThan, 0)
			So(violations[0].ClassID, ShouldEqual, 0)
		})
	})

	Convey("Given two classes sharing a teacher forced into the same period in different rooms", t, func() {
		params := smallParams()
		params.NumRooms = 2
		params.NumPeriods = 1
		input := &models.Input{
			Classes: []models.Class{
				{ID: 0, SerialSize: 1, NumStudents: 1, TeacherIndexes: []int{0}},
				{ID: 1, SerialSize: 1, NumStudents: 1, TeacherIndexes: []int{0}},
			},
			Rooms:    []models.Room{{ID: 0, Capacity: 10}, {ID: 1, Capacity: 10}},
			Teachers: []models.Teacher{{ID: 0}},
		}
		g := graph.New(params, input)
		a := New(params)
		rng := rand.New(rand.NewSource(1))
		err := a.ConstructPath(rng, g, input)
		So(err, ShouldBeNil)

		Convey("the strict teacher-violation report lists period 0 with both rooms", func() {
			violations := a.StrictTeacherViolations(input)
			So(len(violations), ShouldEqual, 1)
			So(violations[0].Period, ShouldEqual, 0)
			So(violations[0].Rooms, ShouldResemble, []int{0, 1})
		})
	})
}

func TestCellProbability(t *testing.T) {
	Convey("Given a completed construction", t, func() {
		params := smallParams()
		input := smallInput()
		g := graph.New(params, input)
		a := New(params)
		rng := rand.New(rand.NewSource(1))
		_ = a.ConstructPath(rng, g, input)

		Convey("probabilities across every cell for a class sum to 1", func() {
			sum := 0.0
			for r := 0; r < params.NumRooms; r++ {
				for p := 0; p < params.NumPeriods; p++ {
					sum += a.CellProbability(g, input, 0, r, p)
				}
			}
			So(sum, ShouldAlmostEqual, 1.0, 1e-9)
		})
	})
}

func TestClone(t *testing.T) {
	Convey("Given an Ant that has completed construction", t, func() {
		params := smallParams()
		input := smallInput()
		g := graph.New(params, input)
		a := New(params)
		rng := rand.New(rand.NewSource(1))
		_ = a.ConstructPath(rng, g, input)

		Convey("Clone produces an independent snapshot unaffected by a later Reset", func() {
			clone := a.Clone()
			a.Reset()
			So(a.CRP()[0], ShouldResemble, models.RoomPeriod{})
			So(clone.CRP()[0], ShouldNotResemble, models.RoomPeriod{})
		})
	})
}
