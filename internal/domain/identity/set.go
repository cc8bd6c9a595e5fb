package identity

import (
	"sort"
	"strings"

	"github.com/okian/rosterrank/internal/domain/model"
)

// Set is the collection of roster identity keys used to filter ladder data.
type Set struct {
	members map[Identity]struct{}
}

// NewSet builds the identity set of every player on the given teams.
// Blank names are skipped.
func NewSet(teams []model.RosterTeam) Set {
	s := Set{members: make(map[Identity]struct{})}
	for _, team := range teams {
		for _, p := range team.Players {
			if key := Key(p.DisplayName); key.IsResolvable() {
				s.members[key] = struct{}{}
			}
		}
	}
	return s
}

// Contains reports whether id is in the set. The unresolvable identity never is.
func (s Set) Contains(id Identity) bool {
	if !id.IsResolvable() {
		return false
	}
	_, ok := s.members[id]
	return ok
}

// Len returns the number of distinct identities.
func (s Set) Len() int {
	return len(s.members)
}

// Keys returns the identities in ascending order.
func (s Set) Keys() []Identity {
	keys := make([]Identity, 0, len(s.members))
	for k := range s.members {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// MatchesRecord reports whether any member of rec names a roster player by
// primary tag or legacy alias, compared case-folded.
func (s Set) MatchesRecord(rec model.LadderRecord) bool {
	for _, m := range rec.Members {
		if s.Contains(Identity(Fold(strings.TrimSpace(m.PrimaryTag)))) {
			return true
		}
		if s.Contains(Identity(Fold(strings.TrimSpace(m.LegacyAlias)))) {
			return true
		}
	}
	return false
}
