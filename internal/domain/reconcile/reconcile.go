// Package reconcile folds raw ladder records into an index holding the best
// rated record per identity.
package reconcile

import (
	"sort"
	"strings"

	"github.com/okian/rosterrank/internal/domain/identity"
	"github.com/okian/rosterrank/internal/domain/model"
	"github.com/okian/rosterrank/pkg/metrics"
)

// Discard reasons reported to metrics.
const (
	ReasonFiltered     = "filtered"
	ReasonNoPrimaryTag = "no_primary_tag"
)

// Index maps identities to their highest rated ladder record.
// The zero value is an empty index. An Index is never mutated after it is
// returned; Admit produces a new one.
type Index struct {
	records map[identity.Identity]model.LadderRecord
}

// Reconcile keeps the records accepted by match and folds them into an Index.
// A nil match accepts everything.
func Reconcile(records []model.LadderRecord, match func(model.LadderRecord) bool) Index {
	acc := make(map[identity.Identity]model.LadderRecord)
	for _, rec := range records {
		if match != nil && !match(rec) {
			metrics.RecordLadderRecordDiscarded(ReasonFiltered)
			continue
		}
		if !admit(acc, rec) {
			metrics.RecordLadderRecordDiscarded(ReasonNoPrimaryTag)
			continue
		}
		metrics.RecordLadderRecordAdmitted()
	}
	metrics.UpdateIndexSize(len(acc))
	return Index{records: acc}
}

// Admit returns a new Index with rec folded in. The record replaces an
// existing entry only when its rating is strictly greater.
func Admit(idx Index, rec model.LadderRecord) Index {
	next := make(map[identity.Identity]model.LadderRecord, len(idx.records)+1)
	for k, v := range idx.records {
		next[k] = v
	}
	admit(next, rec)
	return Index{records: next}
}

// admit folds rec into acc in place and reports whether it had a key.
func admit(acc map[identity.Identity]model.LadderRecord, rec model.LadderRecord) bool {
	key, ok := primaryKey(rec)
	if !ok {
		return false
	}
	if cur, exists := acc[key]; !exists || rec.Rating > cur.Rating {
		acc[key] = rec
	}
	return true
}

func primaryKey(rec model.LadderRecord) (identity.Identity, bool) {
	leader, ok := rec.Leader()
	if !ok {
		return "", false
	}
	tag := strings.TrimSpace(leader.PrimaryTag)
	if tag == "" {
		return "", false
	}
	return identity.Identity(identity.Fold(tag)), true
}

// Len returns the number of identities in the index.
func (idx Index) Len() int {
	return len(idx.records)
}

// Get returns the record stored under id.
func (idx Index) Get(id identity.Identity) (model.LadderRecord, bool) {
	if id == "" {
		return model.LadderRecord{}, false
	}
	rec, ok := idx.records[id]
	return rec, ok
}

// Records returns a copy of the indexed records, highest rating first and
// then by identity.
func (idx Index) Records() []model.LadderRecord {
	keys := make([]identity.Identity, 0, len(idx.records))
	for k := range idx.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := idx.records[keys[i]], idx.records[keys[j]]
		if ri.Rating != rj.Rating {
			return ri.Rating > rj.Rating
		}
		return keys[i] < keys[j]
	})

	out := make([]model.LadderRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, idx.records[k])
	}
	return out
}

// FindByLegacyAlias returns the record whose leader carries the given legacy
// alias. Ties go to the highest rating, then to the smallest identity.
func (idx Index) FindByLegacyAlias(alias identity.Identity) (model.LadderRecord, bool) {
	if alias == "" {
		return model.LadderRecord{}, false
	}

	var (
		best    model.LadderRecord
		bestKey identity.Identity
		found   bool
	)
	for key, rec := range idx.records {
		leader, _ := rec.Leader()
		if identity.Fold(strings.TrimSpace(leader.LegacyAlias)) != string(alias) {
			continue
		}
		if !found || rec.Rating > best.Rating || (rec.Rating == best.Rating && key < bestKey) {
			best, bestKey, found = rec, key, true
		}
	}
	return best, found
}
