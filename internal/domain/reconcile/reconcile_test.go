package reconcile_test

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/rosterrank/internal/domain/identity"
	"github.com/okian/rosterrank/internal/domain/model"
	"github.com/okian/rosterrank/internal/domain/reconcile"
)

func rec(tag string, rating int) model.LadderRecord {
	return model.LadderRecord{
		Members: []model.LadderMember{{PrimaryTag: tag, Races: []string{"Zerg"}}},
		Rating:  rating,
	}
}

func aliased(tag, alias string, rating int) model.LadderRecord {
	r := rec(tag, rating)
	r.Members[0].LegacyAlias = alias
	return r
}

func TestReconcile(t *testing.T) {
	Convey("Given ladder records for a handful of players", t, func() {
		Convey("When the same identity appears with several ratings", func() {
			idx := reconcile.Reconcile([]model.LadderRecord{
				rec("A#1", 10), rec("a#1", 25), rec("A#1", 5),
			}, nil)

			Convey("Then only the highest rating is kept", func() {
				So(idx.Len(), ShouldEqual, 1)
				got, ok := idx.Get("a#1")
				So(ok, ShouldBeTrue)
				So(got.Rating, ShouldEqual, 25)
			})
		})

		Convey("When the predicate rejects a record", func() {
			match := func(r model.LadderRecord) bool { return r.Members[0].PrimaryTag != "Skip#1" }
			idx := reconcile.Reconcile([]model.LadderRecord{rec("Keep#1", 1), rec("Skip#1", 99)}, match)

			Convey("Then it is never indexed", func() {
				So(idx.Len(), ShouldEqual, 1)
				_, ok := idx.Get("skip#1")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a record has no primary tag or no members", func() {
			idx := reconcile.Reconcile([]model.LadderRecord{
				{Members: []model.LadderMember{{LegacyAlias: "old"}}, Rating: 50},
				{Rating: 70},
			}, nil)

			Convey("Then it is discarded instead of sharing an empty key", func() {
				So(idx.Len(), ShouldEqual, 0)
				_, ok := idx.Get("")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When two records tie under one identity", func() {
			first := aliased("Tie#1", "first", 40)
			second := aliased("Tie#1", "second", 40)
			idx := reconcile.Reconcile([]model.LadderRecord{first, second}, nil)

			Convey("Then the first admitted wins", func() {
				got, _ := idx.Get("tie#1")
				So(got.Members[0].LegacyAlias, ShouldEqual, "first")
			})
		})
	})
}

func TestReconcile_OrderIndependent(t *testing.T) {
	Convey("Given records with distinct ratings per identity", t, func() {
		f := gofakeit.New(7)
		var records []model.LadderRecord
		rating := 1000
		for i := 0; i < 20; i++ {
			tag := fmt.Sprintf("%s#%d", f.Username(), i)
			for j := 0; j < 3; j++ {
				rating += f.Number(1, 50)
				records = append(records, rec(tag, rating))
			}
		}
		want := reconcile.Reconcile(records, nil).Records()

		Convey("Then any permutation yields the same index", func() {
			for round := 0; round < 25; round++ {
				shuffled := append([]model.LadderRecord(nil), records...)
				f.ShuffleAnySlice(shuffled)

				got := reconcile.Reconcile(shuffled, nil).Records()
				So(cmp.Diff(want, got), ShouldBeEmpty)
			}
		})
	})
}

func TestAdmit(t *testing.T) {
	Convey("Given an index built with Admit", t, func() {
		empty := reconcile.Index{}
		one := reconcile.Admit(empty, rec("Foo#1", 10))
		two := reconcile.Admit(one, rec("Foo#1", 20))

		Convey("Then earlier indexes are left untouched", func() {
			So(empty.Len(), ShouldEqual, 0)
			r1, _ := one.Get("foo#1")
			r2, _ := two.Get("foo#1")
			So(r1.Rating, ShouldEqual, 10)
			So(r2.Rating, ShouldEqual, 20)
		})

		Convey("Then folding with Admit matches Reconcile", func() {
			records := []model.LadderRecord{rec("Bar#2", 3), rec("Foo#1", 15), rec("Bar#2", 9)}
			folded := reconcile.Index{}
			for _, r := range records {
				folded = reconcile.Admit(folded, r)
			}
			So(cmp.Diff(reconcile.Reconcile(records, nil).Records(), folded.Records()), ShouldBeEmpty)
		})
	})
}

func TestIndex_Records(t *testing.T) {
	Convey("Given an index", t, func() {
		idx := reconcile.Reconcile([]model.LadderRecord{rec("b#1", 10), rec("a#1", 10), rec("c#1", 30)}, nil)

		Convey("Then Records is ordered by rating then identity", func() {
			got := idx.Records()
			tags := []string{got[0].Members[0].PrimaryTag, got[1].Members[0].PrimaryTag, got[2].Members[0].PrimaryTag}
			So(tags, ShouldResemble, []string{"c#1", "a#1", "b#1"})
		})

		Convey("Then Records returns a copy", func() {
			got := idx.Records()
			got[0].Rating = -1
			r, _ := idx.Get("c#1")
			So(r.Rating, ShouldEqual, 30)
		})
	})
}

func TestIndex_FindByLegacyAlias(t *testing.T) {
	Convey("Given records sharing a legacy alias", t, func() {
		idx := reconcile.Reconcile([]model.LadderRecord{
			aliased("Zed#1", "OldName", 30),
			aliased("Amy#1", "oldname", 30),
			aliased("Low#1", "OldName", 10),
			aliased("Other#1", "someone", 99),
		}, nil)

		Convey("Then the highest rating wins and ties go to the smallest identity", func() {
			got, ok := idx.FindByLegacyAlias(identity.Key("OLDNAME"))
			So(ok, ShouldBeTrue)
			So(got.Members[0].PrimaryTag, ShouldEqual, "Amy#1")
		})

		Convey("Then unknown or empty aliases do not match", func() {
			_, ok := idx.FindByLegacyAlias("nobody")
			So(ok, ShouldBeFalse)
			_, ok = idx.FindByLegacyAlias("")
			So(ok, ShouldBeFalse)
		})
	})
}
