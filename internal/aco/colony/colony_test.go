package colony

import (
	"math/rand"
	"testing"

	"acotimetable/internal/aco/graph"
	"acotimetable/internal/config"
	"acotimetable/internal/models"

	. "github.com/smartystreets/goconvey/convey"
)

func testParams() config.Parameters {
	return config.Parameters{
		NumClasses: 2, NumRooms: 2, NumPeriods: 4, DayLength: 2,
		NumTeachers: 1, NumStudentGroups: 1, NumAnts: 4,
		Alpha: 1, Beta: 1, Rho: 0.5, Q: 10,
		TauMin: 0.001, TauMax: 100,
		ProbRandom: 0.1, MaxIterations: 10, StagnationLimit: 5,
	}
}

func testInput() *models.Input {
	return &models.Input{
		Classes: []models.Class{
			{ID: 0, SerialSize: 1, NumStudents: 10, TeacherIndexes: []int{0}, StudentGroupIndexes: []int{0}},
			{ID: 1, SerialSize: 1, NumStudents: 10, TeacherIndexes: []int{0}, StudentGroupIndexes: []int{0}},
		},
		Rooms:         []models.Room{{ID: 0, Capacity: 20}, {ID: 1, Capacity: 20}},
		Teachers:      []models.Teacher{{ID: 0}},
		StudentGroups: []models.StudentGroup{{ID: 0}},
	}
}

func TestRunIteration(t *testing.T) {
	Convey("Given a Colony of several ants", t, func() {
		params := testParams()
		input := testInput()
		g := graph.New(params, input)
		c := New(params)
		rng := rand.New(rand.NewSource(1))

		Convey("RunIteration returns the ant with the minimum L_total", func() {
			best, result, err := c.RunIteration(rng, g, input)
			So(err, ShouldBeNil)
			So(best, ShouldNotBeNil)

			for _, a := range c.Ants() {
				otherResult := a.Score(g, input)
				So(result.LTotal, ShouldBeLessThanOrEqualTo, otherResult.LTotal)
			}
		})
	})

	Convey("Given a Colony where every ant must fail construction", t, func() {
		params := testParams()
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
		c := New(params)
		rng := rand.New(rand.NewSource(1))

		Convey("RunIteration surfaces the construction error", func() {
			best, _, err := c.RunIteration(rng, g, input)
			So(best, ShouldBeNil)
			So(err, ShouldNotBeNil)
		})
	})
}
