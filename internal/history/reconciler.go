// Package history computes the minimal set of row operations needed to bring
// a document's persisted version history in line with the in-memory history,
// so a save never re-sends unchanged entries.
package history

import (
	"quill/internal/domain/models"
)

// Plan is the output of a reconciliation: entry ids to delete and full rows
// to upsert. Anything in neither set is already in sync and is left
// untouched. Deletes must be applied before upserts so an entry id that
// transiently reappears at a just-freed position cannot trip the
// (document_id, position) unique constraint.
type Plan struct {
	ToDelete []string
	ToUpsert []models.PersistedVersionEntry
}

// Empty reports whether the plan carries no work.
func (p Plan) Empty() bool {
	return len(p.ToDelete) == 0 && len(p.ToUpsert) == 0
}

// Reconcile diffs the persisted history (ordered by position) against the
// desired in-memory entry list. An entry lands in ToUpsert when it has no
// persisted counterpart or when any of code, label, prompt, or position
// differs - position is the entry's current slice index, so entries shifted
// by an insertion or removal elsewhere in the list are rewritten even when
// their content is unchanged.
//
// Reconcile is idempotent: running it against the state its own plan
// produces yields an empty plan.
func Reconcile(documentID string, existing []models.PersistedVersionEntry, desired []models.VersionEntry) Plan {
	desiredIDs := make(map[string]bool, len(desired))
	for _, e := range desired {
		desiredIDs[e.EntryID] = true
	}

	byEntryID := make(map[string]models.PersistedVersionEntry, len(existing))
	var plan Plan
	for _, row := range existing {
		if !desiredIDs[row.EntryID] {
			plan.ToDelete = append(plan.ToDelete, row.EntryID)
			continue
		}
		byEntryID[row.EntryID] = row
	}

	for i, e := range desired {
		row, ok := byEntryID[e.EntryID]
		if ok && row.Position == i && row.Code == e.Code && row.Label == e.Label && equalPrompt(row.Prompt, e.Prompt) {
			continue
		}
		plan.ToUpsert = append(plan.ToUpsert, models.PersistedVersionEntry{
			DocumentID: documentID,
			EntryID:    e.EntryID,
			Position:   i,
			Code:       e.Code,
			Timestamp:  e.Timestamp,
			Label:      e.Label,
			Kind:       e.Kind,
			Prompt:     e.Prompt,
		})
	}

	return plan
}

func equalPrompt(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
