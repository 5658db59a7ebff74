// Package position holds the ordering rules shared by every positioned
// context (folder lists, collection lists, collection memberships). The
// planning functions here are pure; repositories execute their output.
package position

// Next returns the append position for a context holding the given
// positions: one past the current max, or 0 for an empty context. Gaps left
// by deletions are never backfilled, so a context holding {0, 2} appends at
// 3, not 2.
func Next(existing []int) int {
	next := 0
	for _, p := range existing {
		if p >= next {
			next = p + 1
		}
	}
	return next
}

// Move assigns one item a new position.
type Move struct {
	ID       string
	Position int
}

// ReorderPlan rewrites every listed id to its index in orderedIDs, yielding
// dense positions 0..n-1. Items in the context but omitted from orderedIDs
// keep their old positions; callers wanting a fully deterministic order must
// pass the complete id set.
func ReorderPlan(orderedIDs []string) []Move {
	moves := make([]Move, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		moves = append(moves, Move{ID: id, Position: i})
	}
	return moves
}

// DiffMembership computes the membership changes needed to take current to
// desired: toRemove = current - desired, toAdd = desired - current. Output
// order follows input order. Callers apply removals before additions.
func DiffMembership(current, desired []string) (toAdd, toRemove []string) {
	currentSet := make(map[string]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	desiredSet := make(map[string]bool, len(desired))
	for _, id := range desired {
		desiredSet[id] = true
	}

	toAdd = []string{}
	for _, id := range desired {
		if !currentSet[id] {
			toAdd = append(toAdd, id)
		}
	}

	toRemove = []string{}
	for _, id := range current {
		if !desiredSet[id] {
			toRemove = append(toRemove, id)
		}
	}

	return toAdd, toRemove
}
