package report_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/rosterrank/internal/adapters/report"
	"github.com/okian/rosterrank/internal/domain/types"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func sample() []types.TeamSummary {
	return []types.TeamSummary{
		{
			Name: "Alpha",
			Players: []types.PlayerSummary{
				{BattlefyName: "foo#123", MatchedTag: "foo#123", Race: "Zerg", MMR: 3000},
				{BattlefyName: "bar", MatchedTag: "Unknown", Race: "Unknown", MMR: 0},
			},
			AverageRankedMMR: 3000,
		},
		{Name: "Beta", Players: []types.PlayerSummary{}, AverageRankedMMR: 0},
	}
}

func TestWriteJSON(t *testing.T) {
	Convey("Given team summaries", t, func() {
		Convey("When written as JSON", func() {
			var buf bytes.Buffer
			err := report.WriteJSON(&buf, sample()[:1])

			Convey("Then the output is indented with the expected field names", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldStartWith, "[\n  {\n    \"name\": \"Alpha\",\n    \"players\": [\n      {\n        \"battlefy_player\": \"foo#123\",")
				So(buf.String(), ShouldContainSubstring, `"average_ranked_mmr": 3000`)
				So(buf.String(), ShouldEndWith, "]\n")
			})
		})

		Convey("When there are no teams", func() {
			var buf bytes.Buffer
			So(report.WriteJSON(&buf, nil), ShouldBeNil)
			So(buf.String(), ShouldEqual, "[]\n")
		})

		Convey("When the writer fails", func() {
			So(report.WriteJSON(failingWriter{}, sample()), ShouldWrap, report.ErrWriteJSON)
		})
	})
}

func TestWriteXLSX(t *testing.T) {
	Convey("Given team summaries", t, func() {
		path := filepath.Join(t.TempDir(), "report.xlsx")

		Convey("When written as a workbook", func() {
			So(report.WriteXLSX(path, sample()), ShouldBeNil)

			f, err := excelize.OpenFile(path)
			So(err, ShouldBeNil)
			defer f.Close()

			Convey("Then it holds a Teams and a Players sheet", func() {
				So(f.GetSheetList(), ShouldResemble, []string{report.SheetTeams, report.SheetPlayers})

				teams, err := f.GetRows(report.SheetTeams)
				So(err, ShouldBeNil)
				So(teams, ShouldResemble, [][]string{
					{"Rank", "Team", "Average Ranked MMR", "Ranked Players"},
					{"1", "Alpha", "3000", "1"},
					{"2", "Beta", "0", "0"},
				})

				players, err := f.GetRows(report.SheetPlayers)
				So(err, ShouldBeNil)
				So(players, ShouldHaveLength, 3)
				So(players[1], ShouldResemble, []string{"Alpha", "foo#123", "foo#123", "Zerg", "3000"})
				So(players[2], ShouldResemble, []string{"Alpha", "bar", "Unknown", "Unknown", "0"})
			})
		})

		Convey("When no path is given", func() {
			So(report.WriteXLSX("", sample()), ShouldEqual, report.ErrNoPath)
		})

		Convey("When the path cannot be written", func() {
			err := report.WriteXLSX(filepath.Join(t.TempDir(), "missing", "dir", "r.xlsx"), sample())
			So(err, ShouldWrap, report.ErrWriteXLSX)
		})
	})
}
