package service_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/rosterrank/internal/app"
	"github.com/okian/rosterrank/internal/config"
	"github.com/okian/rosterrank/internal/domain/types"
)

// newProviders serves a one-team roster and a single-ladder "eu" region.
func newProviders() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/roster/tournaments/t-9/teams", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[{"name":"Alpha","players":[{"inGameName":"Foo#123 extra text"}]}]`)
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"abc","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/eu/data/sc2/season/current", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":60}`)
	})
	mux.HandleFunc("/eu/data/sc2/league/60/201/0/0", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"tier":[{"division":[{"ladder_id":7}]}]}`)
	})
	mux.HandleFunc("/eu/data/sc2/ladder/7", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"team":[
			{"rating":3000,"member":[{"character_link":{"battle_tag":"foo#123"},"played_race_count":[{"race":{"en_US":"Zerg"}}]}]},
			{"rating":5000,"member":[{"character_link":{"battle_tag":"other#1"}}]}
		]}`)
	})
	return httptest.NewServer(mux)
}

func TestNewFromConfig(t *testing.T) {
	Convey("Given a configuration pointing at live providers", t, func() {
		srv := newProviders()
		defer srv.Close()

		cfg := config.New()
		cfg.TournamentID = "t-9"
		cfg.ClientID = "id"
		cfg.ClientSecret = "secret"
		cfg.Regions = []string{"eu"}
		cfg.Tiers = []int{0}
		cfg.RosterURL = srv.URL + "/roster"
		cfg.LadderURL = srv.URL + "/{region}"
		cfg.TokenURL = srv.URL + "/token"

		Convey("When the wired service runs", func() {
			svc, err := service.NewFromConfig(context.Background(), cfg, nil)
			So(err, ShouldBeNil)

			got, err := svc.Run(context.Background())

			Convey("Then the Alpha team is matched end to end", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []types.TeamSummary{{
					Name: "Alpha",
					Players: []types.PlayerSummary{
						{BattlefyName: "foo#123", MatchedTag: "foo#123", Race: "Zerg", MMR: 3000},
					},
					AverageRankedMMR: 3000,
				}})
			})
		})

		Convey("When the configuration is invalid", func() {
			cfg.LadderPolicy = "sometimes"
			_, err := service.NewFromConfig(context.Background(), cfg, nil)

			Convey("Then wiring fails", func() {
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})

		Convey("When no configuration is given", func() {
			_, err := service.NewFromConfig(context.Background(), nil, nil)
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})
	})
}
