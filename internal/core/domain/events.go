package domain

import (
	"sort"
	"time"
)

// ChangeAction names the state transition that produced a ChangeEvent.
type ChangeAction string

const (
	ActionCreated     ChangeAction = "CREATED"
	ActionUpdated     ChangeAction = "UPDATED"
	ActionApproved    ChangeAction = "APPROVED"
	ActionRejected    ChangeAction = "REJECTED"
	ActionDeactivated ChangeAction = "DEACTIVATED"
	ActionActivated   ChangeAction = "ACTIVATED"
	ActionDeleted     ChangeAction = "DELETED"
)

// FieldChange is a single before/after value pair within a ChangeEvent.
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// ChangeEvent is the structured audit record emitted synchronously after every
// account or entry state transition. The ledger core does not persist these;
// an external audit sink consumes them.
type ChangeEvent struct {
	EntityType string        `json:"entityType"` // "account" or "journal_entry"
	EntityID   string        `json:"entityID"`
	Action     ChangeAction  `json:"action"`
	ActorID    string        `json:"actorID"`
	OccurredAt time.Time     `json:"occurredAt"`
	Changes    []FieldChange `json:"changes,omitempty"`
}

// DiffFields computes the field-level difference between two snapshots,
// ordered by field name for deterministic output. Fields present in only one
// snapshot appear with an empty counterpart.
func DiffFields(before, after map[string]string) []FieldChange {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	changes := make([]FieldChange, 0, len(keys))
	for k := range keys {
		b, a := before[k], after[k]
		if b != a {
			changes = append(changes, FieldChange{Field: k, Before: b, After: a})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}
