package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	Convey("Given Parameters sized from Default", t, func() {
		params := Default(10, 4, 5, 3)

		Convey("they validate cleanly", func() {
			So(params.Validate(), ShouldBeNil)
		})

		Convey("a period count not divisible by day length is rejected", func() {
			params.NumPeriods = params.DayLength + 1
			So(params.Validate(), ShouldNotBeNil)
		})

		Convey("a non-positive ant count is rejected", func() {
			params.NumAnts = 0
			So(params.Validate(), ShouldNotBeNil)
		})

		Convey("rho outside (0,1) is rejected", func() {
			params.Rho = 1.0
			So(params.Validate(), ShouldNotBeNil)
			params.Rho = 0.0
			So(params.Validate(), ShouldNotBeNil)
		})

		Convey("tauMax <= tauMin is rejected", func() {
			params.TauMax = params.TauMin
			So(params.Validate(), ShouldNotBeNil)
		})

		Convey("p_rand outside [0,1] is rejected", func() {
			params.ProbRandom = 1.5
			So(params.Validate(), ShouldNotBeNil)
		})
	})
}
