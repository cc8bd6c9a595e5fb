// Package model contains domain models passed between layers.
package model

// Unknown is substituted for any missing name, tag or race.
const Unknown = "Unknown"

// RosterPlayer is a tournament player as entered by the team captain.
type RosterPlayer struct {
	DisplayName string // free text, may be empty or contain noise
}

// RosterTeam is a tournament team with its players in roster order.
type RosterTeam struct {
	Name    string
	Players []RosterPlayer
}

// LadderMember is one player inside a ladder record.
type LadderMember struct {
	PrimaryTag  string   // structured name#1234 tag, may be empty
	LegacyAlias string   // pre-tag display name, may be empty
	Races       []string // races in ladder order, may be empty
}

// Race returns the member's first listed race, or Unknown.
func (m LadderMember) Race() string {
	if len(m.Races) == 0 || m.Races[0] == "" {
		return Unknown
	}
	return m.Races[0]
}

// LadderRecord is one ranked team/party entry on a ladder.
type LadderRecord struct {
	Members []LadderMember // first member is authoritative
	Rating  int
}

// Leader returns the authoritative first member.
func (r LadderRecord) Leader() (LadderMember, bool) {
	if len(r.Members) == 0 {
		return LadderMember{}, false
	}
	return r.Members[0], true
}
