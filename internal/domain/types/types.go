// Package types contains the output shapes emitted by the pipeline.
package types

// PlayerSummary is one roster player's best-known ladder standing.
type PlayerSummary struct {
	BattlefyName string `json:"battlefy_player"`
	MatchedTag   string `json:"battle_tag"`
	Race         string `json:"race"`
	MMR          int    `json:"mmr"`
}

// Matched reports whether the player was found on a ladder.
func (p PlayerSummary) Matched() bool {
	return p.MMR > 0
}

// TeamSummary aggregates a roster team's players, best MMR first.
type TeamSummary struct {
	Name             string          `json:"name"`
	Players          []PlayerSummary `json:"players"`
	AverageRankedMMR int             `json:"average_ranked_mmr"`
}

// RankedPlayers counts players with a ladder match.
func (t TeamSummary) RankedPlayers() int {
	n := 0
	for _, p := range t.Players {
		if p.Matched() {
			n++
		}
	}
	return n
}
