// Package selector implements the interactive review step that lets the user
// accept or reject discovered files before any content is read. The state
// machine is pure and processes one event at a time; terminal handling lives
// in session.go.
package selector

import "github.com/ctxpack/ctxpack/internal/types"

// State identifies the phase of a review session.
type State string

const (
	StateBrowsing  State = "browsing"
	StateConfirmed State = "confirmed"
	StateCancelled State = "cancelled"
)

// EventKind identifies one user intent delivered to the state machine.
type EventKind string

const (
	EventCursorUp      EventKind = "cursor_up"
	EventCursorDown    EventKind = "cursor_down"
	EventToggleCurrent EventKind = "toggle_current"
	EventAcceptAll     EventKind = "accept_all"
	EventAcceptNone    EventKind = "accept_none"
	EventConfirm       EventKind = "confirm"
	EventCancel        EventKind = "cancel"
)

// Model holds the review state for one candidate list. Every candidate starts
// accepted; rejection is always an explicit act.
type Model struct {
	candidates  []types.FileRecord
	accepted    []bool
	cursorIndex int
	state       State
}

// NewModel starts a session over candidates with all of them accepted, the
// cursor on the first entry, and the state set to StateBrowsing.
func NewModel(candidates []types.FileRecord) *Model {
	accepted := make([]bool, len(candidates))
	for candidateIndex := range accepted {
		accepted[candidateIndex] = true
	}
	return &Model{candidates: candidates, accepted: accepted, state: StateBrowsing}
}

// Apply processes a single event. The cursor clamps at both ends of the list,
// and events arriving after the session left StateBrowsing are ignored.
func (model *Model) Apply(event EventKind) {
	if model.state != StateBrowsing {
		return
	}
	switch event {
	case EventCursorUp:
		if model.cursorIndex > 0 {
			model.cursorIndex--
		}
	case EventCursorDown:
		if model.cursorIndex < len(model.candidates)-1 {
			model.cursorIndex++
		}
	case EventToggleCurrent:
		if len(model.candidates) > 0 {
			model.accepted[model.cursorIndex] = !model.accepted[model.cursorIndex]
		}
	case EventAcceptAll:
		for candidateIndex := range model.accepted {
			model.accepted[candidateIndex] = true
		}
	case EventAcceptNone:
		for candidateIndex := range model.accepted {
			model.accepted[candidateIndex] = false
		}
	case EventConfirm:
		model.state = StateConfirmed
	case EventCancel:
		model.state = StateCancelled
	}
}

// State reports the current session phase.
func (model *Model) State() State {
	return model.state
}

// CursorIndex reports the highlighted candidate position.
func (model *Model) CursorIndex() int {
	return model.cursorIndex
}

// CandidateCount reports how many candidates the session reviews.
func (model *Model) CandidateCount() int {
	return len(model.candidates)
}

// Candidate returns the record at candidateIndex for rendering.
func (model *Model) Candidate(candidateIndex int) types.FileRecord {
	return model.candidates[candidateIndex]
}

// IsAccepted reports whether the candidate at candidateIndex is accepted.
func (model *Model) IsAccepted(candidateIndex int) bool {
	return candidateIndex >= 0 && candidateIndex < len(model.accepted) && model.accepted[candidateIndex]
}

// AcceptedCount reports how many candidates are currently accepted.
func (model *Model) AcceptedCount() int {
	acceptedTotal := 0
	for _, accepted := range model.accepted {
		if accepted {
			acceptedTotal++
		}
	}
	return acceptedTotal
}

// Accepted returns the accepted candidates in their original discovery order.
// A cancelled session accepts nothing.
func (model *Model) Accepted() []types.FileRecord {
	if model.state == StateCancelled {
		return nil
	}
	var acceptedRecords []types.FileRecord
	for candidateIndex, candidate := range model.candidates {
		if model.accepted[candidateIndex] {
			acceptedRecords = append(acceptedRecords, candidate)
		}
	}
	return acceptedRecords
}
