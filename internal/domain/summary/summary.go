// Package summary joins the tournament roster against the reconciled ladder
// index and produces ranked per-team summaries.
package summary

import (
	"sort"
	"strings"

	"github.com/okian/rosterrank/internal/domain/identity"
	"github.com/okian/rosterrank/internal/domain/model"
	"github.com/okian/rosterrank/internal/domain/reconcile"
	"github.com/okian/rosterrank/internal/domain/types"
	"github.com/okian/rosterrank/pkg/metrics"
)

// Match kinds reported to metrics.
const (
	MatchPrimary     = "primary"
	MatchLegacyAlias = "legacy_alias"
	MatchNone        = "none"
)

// Summarize builds one TeamSummary per roster team. Teams are ordered by
// average ranked MMR, players within a team by MMR; both descending and stable.
func Summarize(teams []model.RosterTeam, idx reconcile.Index) []types.TeamSummary {
	out := make([]types.TeamSummary, 0, len(teams))
	for _, team := range teams {
		out = append(out, summarizeTeam(team, idx))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageRankedMMR > out[j].AverageRankedMMR
	})
	metrics.UpdateTeamsSummarized(len(out))
	return out
}

func summarizeTeam(team model.RosterTeam, idx reconcile.Index) types.TeamSummary {
	name := strings.TrimSpace(team.Name)
	if name == "" {
		name = model.Unknown
	}

	players := make([]types.PlayerSummary, 0, len(team.Players))
	for _, p := range team.Players {
		players = append(players, summarizePlayer(p, idx))
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].MMR > players[j].MMR
	})

	return types.TeamSummary{
		Name:             name,
		Players:          players,
		AverageRankedMMR: averageRanked(players),
	}
}

func summarizePlayer(p model.RosterPlayer, idx reconcile.Index) types.PlayerSummary {
	key := identity.Key(p.DisplayName)

	rec, ok := idx.Get(key)
	kind := MatchPrimary
	if !ok {
		rec, ok = idx.FindByLegacyAlias(key)
		kind = MatchLegacyAlias
	}
	if !ok {
		kind = MatchNone
	}
	metrics.RecordPlayerMatch(kind)

	ps := types.PlayerSummary{
		BattlefyName: displayKey(p.DisplayName),
		MatchedTag:   model.Unknown,
		Race:         model.Unknown,
	}
	if !ok {
		return ps
	}

	leader, _ := rec.Leader()
	if tag := strings.TrimSpace(leader.PrimaryTag); tag != "" {
		ps.MatchedTag = tag
	}
	ps.Race = leader.Race()
	ps.MMR = rec.Rating
	return ps
}

// displayKey is the canonical identity when one exists, otherwise the raw
// display name as entered.
func displayKey(raw string) string {
	if id := identity.Canonicalize(raw); id.IsResolvable() {
		return id.String()
	}
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return model.Unknown
}

// averageRanked is the floor of the mean over matched players, 0 when none.
func averageRanked(players []types.PlayerSummary) int {
	sum, n := 0, 0
	for _, p := range players {
		if p.Matched() {
			sum += p.MMR
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
