package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/rosterrank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTeamSummary(t *testing.T) {
	Convey("Given a team summary", t, func() {
		team := types.TeamSummary{
			Name: "Alpha",
			Players: []types.PlayerSummary{
				{BattlefyName: "foo#123", MatchedTag: "foo#123", Race: "Zerg", MMR: 3000},
				{BattlefyName: "bar", MatchedTag: "Unknown", Race: "Unknown", MMR: 0},
			},
			AverageRankedMMR: 3000,
		}

		Convey("Then only matched players count as ranked", func() {
			So(team.RankedPlayers(), ShouldEqual, 1)
			So(team.Players[0].Matched(), ShouldBeTrue)
			So(team.Players[1].Matched(), ShouldBeFalse)
		})

		Convey("When encoded as JSON", func() {
			data, err := json.Marshal(team)

			Convey("Then it uses the published field names", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual,
					`{"name":"Alpha","players":[{"battlefy_player":"foo#123","battle_tag":"foo#123","race":"Zerg","mmr":3000},`+
						`{"battlefy_player":"bar","battle_tag":"Unknown","race":"Unknown","mmr":0}],"average_ranked_mmr":3000}`)
			})
		})
	})
}
