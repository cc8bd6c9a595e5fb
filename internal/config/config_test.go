package config_test

import (
	"testing"

	"github.com/okian/rosterrank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Regions, convey.ShouldResemble, []string{"us", "eu", "kr"})
			convey.So(cfg.Tiers, convey.ShouldHaveLength, 7)
			convey.So(cfg.PageSize, convey.ShouldEqual, config.DefaultPageSize)
			convey.So(cfg.LadderURL, convey.ShouldContainSubstring, "{region}")
		})

		convey.Convey("Then its lists do not alias the package defaults", func() {
			cfg.Regions[0] = "cn"
			convey.So(config.DefaultRegions[0], convey.ShouldEqual, "us")
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a complete config", t, func() {
		cfg := config.New()
		cfg.TournamentID = "t"
		cfg.ClientID = "id"
		cfg.ClientSecret = "secret"

		convey.Convey("Then it validates", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a field is broken", func() {
			cases := []struct {
				name    string
				breakIt func()
			}{
				{"credentials", func() { cfg.ClientSecret = "" }},
				{"regions", func() { cfg.Regions = nil }},
				{"tiers", func() { cfg.Tiers = nil }},
				{"season_count", func() { cfg.SeasonCount = 0 }},
				{"page_size", func() { cfg.PageSize = -1 }},
				{"urls", func() { cfg.TokenURL = "" }},
				{"policy", func() { cfg.RegionPolicy = "sometimes" }},
			}
			for _, tc := range cases {
				convey.Convey("Then validation rejects "+tc.name, func() {
					tc.breakIt()
					convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
				})
			}
		})
	})
}
