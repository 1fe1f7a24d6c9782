package asset

import "time"

// Group is a set of assets (a floor, a building wing, the laundry room) that maintenance
// schedules can be scoped to.
type Group struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
