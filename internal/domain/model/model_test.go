package model_test

import (
	"testing"

	model "github.com/okian/rosterrank/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestLadderRecord(t *testing.T) {
	convey.Convey("Given ladder records", t, func() {
		convey.Convey("When the record has members", func() {
			rec := model.LadderRecord{
				Members: []model.LadderMember{
					{PrimaryTag: "Foo#123", Races: []string{"Zerg", "Terran"}},
					{PrimaryTag: "Bar#456"},
				},
				Rating: 3000,
			}

			convey.Convey("Then the first member leads", func() {
				leader, ok := rec.Leader()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(leader.PrimaryTag, convey.ShouldEqual, "Foo#123")
				convey.So(leader.Race(), convey.ShouldEqual, "Zerg")
			})
		})

		convey.Convey("When the record is empty", func() {
			_, ok := model.LadderRecord{}.Leader()

			convey.Convey("Then there is no leader", func() {
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a member has no race data", func() {
			convey.So(model.LadderMember{}.Race(), convey.ShouldEqual, model.Unknown)
			convey.So(model.LadderMember{Races: []string{""}}.Race(), convey.ShouldEqual, model.Unknown)
		})
	})
}
