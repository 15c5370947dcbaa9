package domain

import "slices"

// StateDiff represents the changes between two snapshots of a session.
// Transports send it after each step instead of the whole history.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Goal *int `json:"goal,omitempty"`

	// Appended holds moves added since the old snapshot.
	Appended []Move `json:"appended,omitempty"`

	// Reached holds goals collected since the old snapshot.
	Reached []int `json:"reached,omitempty"`

	// Rewritten is set when the new history does not extend the old one.
	Rewritten bool `json:"rewritten,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, the diff carries the entire newState.
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.Goal != newState.Goal {
		diff.Goal = &newState.Goal
	}

	if oldState == nil {
		diff.Appended = slices.Clone(newState.Moves)
		diff.Reached = slices.Clone(newState.GoalsReached)
	} else {
		diff.Appended, diff.Rewritten = diffMoves(oldState.Moves, newState.Moves)
		if len(newState.GoalsReached) > len(oldState.GoalsReached) {
			diff.Reached = slices.Clone(newState.GoalsReached[len(oldState.GoalsReached):])
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffMoves(old, new []Move) ([]Move, bool) {
	if len(new) < len(old) || !slices.Equal(old, new[:len(old)]) {
		return slices.Clone(new), true
	}
	if len(new) == len(old) {
		return nil, false
	}
	return slices.Clone(new[len(old):]), false
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Goal == nil &&
		len(d.Appended) == 0 &&
		len(d.Reached) == 0 &&
		!d.Rewritten
}
