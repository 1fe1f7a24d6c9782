// internal/domain/maintenance/shared_types.go
package maintenance

// Scope says whether a schedule applies to everything or to one asset group.
type Scope string

const (
	ScopeGlobal     Scope = "GLOBAL"
	ScopeAssetGroup Scope = "ASSET_GROUP"
)

func (s Scope) Valid() bool {
	return s == ScopeGlobal || s == ScopeAssetGroup
}

// State is the derived lifecycle position of a schedule on a given day.
type State string

const (
	StateDormant State = "DORMANT" // no next due date
	StatePending State = "PENDING" // before the notice window
	StateDue     State = "DUE"     // inside the notice window, due date not yet passed
	StateOverdue State = "OVERDUE" // due date passed, not completed
)

// Notifiable reports whether schedules in this state belong in the due-notification result
// (before skips are applied).
func (s State) Notifiable() bool {
	return s == StateDue || s == StateOverdue
}
