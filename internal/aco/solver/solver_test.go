package solver

import (
	"context"
	"math/rand"
	"testing"

	"acotimetable/internal/config"
	"acotimetable/internal/models"

	. "github.com/smartystreets/goconvey/convey"
)

func testParams() config.Parameters {
	return config.Parameters{
		NumClasses: 3, NumRooms: 2, NumPeriods: 4, DayLength: 2,
		NumTeachers: 1, NumStudentGroups: 1, NumAnts: 3,
		Alpha: 1, Beta: 1, Rho: 0.5, Q: 10,
		TauMin: 0.001, TauMax: 100,
		ProbRandom: 0.1, MaxIterations: 10, StagnationLimit: 3,
	}
}

func testInput() *models.Input {
	return &models.Input{
		Classes: []models.Class{
			{ID: 0, SerialSize: 1, NumStudents: 10, TeacherIndexes: []int{0}, StudentGroupIndexes: []int{0}},
			{ID: 1, SerialSize: 1, NumStudents: 10, TeacherIndexes: []int{0}, StudentGroupIndexes: []int{0}},
			{ID: 2, SerialSize: 1, NumStudents: 10},
		},
		Rooms:         []models.Room{{ID: 0, Capacity: 20}, {ID: 1, Capacity: 20}},
		Teachers:      []models.Teacher{{ID: 0}},
		StudentGroups: []models.StudentGroup{{ID: 0}},
	}
}

func TestRunACOTimes(t *testing.T) {
	Convey("Given a fresh Solver", t, func() {
		sv, err := NewWithRand(testParams(), testInput(), rand.New(rand.NewSource(1)))
		So(err, ShouldBeNil)

		Convey("before any iteration, BestAnt and SuperAnt are unset", func() {
			_, _, ok := sv.BestAnt()
			So(ok, ShouldBeFalse)
			_, _, ok = sv.SuperAnt()
			So(ok, ShouldBeFalse)
		})

		Convey("after one iteration, BestAnt and SuperAnt agree", func() {
			err := sv.RunACOTimes(context.Background(), 1)
			So(err, ShouldBeNil)

			_, bestScore, ok := sv.BestAnt()
			So(ok, ShouldBeTrue)
			_, superScore, ok := sv.SuperAnt()
			So(ok, ShouldBeTrue)
			So(bestScore.LTotal, ShouldEqual, superScore.LTotal)
		})

		Convey("L_total(super_ant) is monotonically non-increasing across iterations", func() {
			var prev float64
			for i := 0; i < 8; i++ {
				err := sv.RunACOTimes(context.Background(), 1)
				So(err, ShouldBeNil)
				_, score, _ := sv.SuperAnt()
				if i > 0 {
					So(score.LTotal, ShouldBeLessThanOrEqualTo, prev)
				}
				prev = score.LTotal
			}
		})

		Convey("every pheromone stays within [TauMin, TauMax] after many iterations", func() {
			err := sv.RunACOTimes(context.Background(), 10)
			So(err, ShouldBeNil)
			params := testParams()
			for c := 0; c < params.NumClasses; c++ {
				for r := 0; r < params.NumRooms; r++ {
					for p := 0; p < params.NumPeriods; p++ {
						v := sv.Graph().Pheromone(c, r, p)
						So(v, ShouldBeGreaterThanOrEqualTo, params.TauMin)
						So(v, ShouldBeLessThanOrEqualTo, params.TauMax)
					}
				}
			}
		})
	})

	Convey("Given a stagnation limit of 3 and a problem with only one viable assignment", t, func() {
		params := testParams()
		params.NumClasses = 1
		params.NumRooms = 1
		params.NumPeriods = 1
		params.DayLength = 1
		params.StagnationLimit = 3
		input := &models.Input{
			Classes: []models.Class{{ID: 0, SerialSize: 1, NumStudents: 1}},
			Rooms:   []models.Room{{ID: 0, Capacity: 10}},
		}
		sv, err := NewWithRand(params, input, rand.New(rand.NewSource(1)))
		So(err, ShouldBeNil)

		Convey("on iteration 4, every pheromone has been reset to TauMax", func() {
			err := sv.RunACOTimes(context.Background(), 4)
			So(err, ShouldBeNil)
			So(sv.Graph().Pheromone(0, 0, 0), ShouldEqual, params.TauMax)
		})
	})
}

func TestOneHotPheromone(t *testing.T) {
	Convey("Given a Solver and a user lock request", t, func() {
		sv, err := NewWithRand(testParams(), testInput(), rand.New(rand.NewSource(1)))
		So(err, ShouldBeNil)

		sv.OneHotPheromone(0, 1, 2)

		Convey("the graph biases toward that cell and locks the class", func() {
			So(sv.Graph().Pheromone(0, 1, 2), ShouldEqual, testParams().TauMax)
			rp, ok := sv.Graph().Lock(0)
			So(ok, ShouldBeTrue)
			So(rp, ShouldResemble, models.RoomPeriod{Room: 1, Period: 2})
		})
	})
}
