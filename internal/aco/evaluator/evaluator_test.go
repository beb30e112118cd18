package evaluator

import (
	"testing"

	"acotimetable/internal/models"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeOccupancy struct {
	teacher map[int]map[int][]int
	student map[int]map[int][]int
}

func newFakeOccupancy() *fakeOccupancy {
	return &fakeOccupancy{teacher: map[int]map[int][]int{}, student: map[int]map[int][]int{}}
}

func (f *fakeOccupancy) TeacherRooms(t, p int) []int { return f.teacher[t][p] }
func (f *fakeOccupancy) StudentRooms(g, p int) []int { return f.student[g][p] }

func TestEdgeLength(t *testing.T) {
	Convey("Given a class and room with no prior occupancy", t, func() {
		class := models.Class{SerialSize: 1, NumStudents: 10, TeacherIndexes: []int{0}, StudentGroupIndexes: []int{0}}
		room := models.Room{Capacity: 20}
		occ := newFakeOccupancy()

		Convey("edge length is the base cost of 1 when nothing conflicts", func() {
			So(EdgeLength(class, room, 0, 4, occ), ShouldEqual, 1.0)
		})

		Convey("edge length is always at least 1", func() {
			So(EdgeLength(class, room, 0, 4, occ), ShouldBeGreaterThanOrEqualTo, 1.0)
		})

		Convey("capacity overflow adds CapCoef", func() {
			overCap := models.Class{SerialSize: 1, NumStudents: 30}
			So(EdgeLength(overCap, room, 0, 4, occ), ShouldEqual, 1.0+CapCoef)
		})

		Convey("a day-straddling placement adds StraddleCoef", func() {
			straddler := models.Class{SerialSize: 3}
			So(EdgeLength(straddler, room, 1, 2, occ), ShouldEqual, 1.0+StraddleCoef)
		})

		Convey("a teacher already present in two rooms at that period adds one pair-count penalty", func() {
			occ.teacher[0] = map[int][]int{0: {5, 6}}
			So(EdgeLength(class, room, 0, 4, occ), ShouldEqual, 1.0+1*TeacherCoef)
		})
	})
}

func TestScore(t *testing.T) {
	Convey("Given a single class placed with no conflicts", t, func() {
		input := &models.Input{
			Classes: []models.Class{{NumStudents: 10, SerialSize: 1, TeacherIndexes: []int{0}, StudentGroupIndexes: []int{0}}},
			Rooms:   []models.Room{{Capacity: 20}},
		}
		crp := []models.RoomPeriod{{Room: 0, Period: 0}}

		Convey("L_total is exactly 1", func() {
			result := Score(input, 1, 1, 1, crp)
			So(result.LTotal, ShouldEqual, 1.0)
		})
	})

	Convey("Given two classes sharing a teacher at the same period in different rooms", t, func() {
		input := &models.Input{
			Classes: []models.Class{
				{NumStudents: 10, SerialSize: 1, TeacherIndexes: []int{0}},
				{NumStudents: 10, SerialSize: 1, TeacherIndexes: []int{0}},
			},
			Rooms: []models.Room{{Capacity: 20}, {Capacity: 20}},
		}
		crp := []models.RoomPeriod{{Room: 0, Period: 0}, {Room: 1, Period: 0}}

		Convey("L_period[0] includes one TeacherCoef pair-count penalty", func() {
			result := Score(input, 1, 2, 1, crp)
			So(result.LPeriod[0], ShouldEqual, 1+1*TeacherCoef)
			So(result.LTotal, ShouldEqual, 1+(result.LPeriod[0]-1))
		})
	})

	Convey("Given a multi-period class overlapping a single-period class only at the shared tail period", t, func() {
		input := &models.Input{
			Classes: []models.Class{
				{NumStudents: 10, SerialSize: 2, TeacherIndexes: []int{0}},
				{NumStudents: 10, SerialSize: 1, TeacherIndexes: []int{0}},
			},
			Rooms: []models.Room{{Capacity: 20}, {Capacity: 20}},
		}
		crp := []models.RoomPeriod{{Room: 0, Period: 0}, {Room: 1, Period: 1}}

		Convey("the pair-count penalty lands on period 1, not period 0", func() {
			result := Score(input, 2, 2, 2, crp)
			So(result.LPeriod[0], ShouldEqual, 1.0)
			So(result.LPeriod[1], ShouldEqual, 1+1*TeacherCoef)
		})
	})

	Convey("Given a class that exceeds its room's capacity", t, func() {
		input := &models.Input{
			Classes: []models.Class{{NumStudents: 30, SerialSize: 1}},
			Rooms:   []models.Room{{Capacity: 20}},
		}
		crp := []models.RoomPeriod{{Room: 0, Period: 0}}

		Convey("L_total is 1 + CapCoef", func() {
			result := Score(input, 1, 1, 1, crp)
			So(result.LTotal, ShouldEqual, 1+CapCoef)
		})
	})
}
