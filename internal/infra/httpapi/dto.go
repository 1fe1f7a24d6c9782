package httpapi

import (
	"fmt"
	"time"

	"dorm_maintenance/internal/app"
	"dorm_maintenance/internal/domain/asset"
	"dorm_maintenance/internal/domain/errs"
	"dorm_maintenance/internal/domain/maintenance"
)

type assetGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type assetGroupResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func newAssetGroupResponse(g *asset.Group) assetGroupResponse {
	return assetGroupResponse{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt}
}

// scheduleRequest is the body of create and full update.
// Timestamps accept RFC3339 or YYYY-MM-DD (midnight in the service time zone).
type scheduleRequest struct {
	Scope            string  `json:"scope" binding:"required,oneof=GLOBAL ASSET_GROUP"`
	AssetGroupID     *int64  `json:"asset_group_id"`
	CycleMonths      *int    `json:"cycle_months" binding:"omitempty,gte=0"`
	NotifyBeforeDays *int    `json:"notify_before_days" binding:"omitempty,gte=0"`
	Title            string  `json:"title" binding:"required"`
	Description      string  `json:"description"`
	LastDoneAt       *string `json:"last_done_at"`
	NextDueAt        *string `json:"next_due_at"`
}

func (r scheduleRequest) toInput(loc *time.Location) (app.ScheduleInput, error) {
	in := app.ScheduleInput{
		Scope:        maintenance.Scope(r.Scope),
		AssetGroupID: r.AssetGroupID,
		CycleMonths:  r.CycleMonths,
		Title:        r.Title,
		Description:  r.Description,
	}
	if r.NotifyBeforeDays != nil {
		in.NotifyBeforeDays = *r.NotifyBeforeDays
	}
	var err error
	if in.LastDoneAt, err = parseTimestamp("last_done_at", r.LastDoneAt, loc); err != nil {
		return in, err
	}
	if in.NextDueAt, err = parseTimestamp("next_due_at", r.NextDueAt, loc); err != nil {
		return in, err
	}
	return in, nil
}

func parseTimestamp(field string, raw *string, loc *time.Location) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *raw); err == nil {
		return &t, nil
	}
	d, err := maintenance.ParseDate(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339 or YYYY-MM-DD", errs.ErrInvalidArgument, field)
	}
	t := d.Start(loc)
	return &t, nil
}

type skipRequest struct {
	DueDate string `json:"due_date" binding:"required"`
}

type scheduleResponse struct {
	ID               int64      `json:"id"`
	Scope            string     `json:"scope"`
	AssetGroupID     *int64     `json:"asset_group_id"`
	AssetGroupName   *string    `json:"asset_group_name,omitempty"`
	CycleMonths      *int       `json:"cycle_months"`
	LastDoneAt       *time.Time `json:"last_done_at"`
	NextDueAt        *time.Time `json:"next_due_at"`
	NotifyBeforeDays int        `json:"notify_before_days"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	State            string     `json:"state"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func newScheduleResponse(s *maintenance.Schedule, today maintenance.Date, loc *time.Location) scheduleResponse {
	resp := scheduleResponse{
		ID:               s.ID,
		Scope:            string(s.Scope),
		NotifyBeforeDays: s.NotifyBeforeDays,
		Title:            s.Title,
		Description:      s.Description,
		State:            string(s.State(today, loc)),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.AssetGroupID.Valid {
		id := s.AssetGroupID.Int64
		resp.AssetGroupID = &id
	}
	if s.AssetGroupName.Valid {
		name := s.AssetGroupName.String
		resp.AssetGroupName = &name
	}
	if s.CycleMonths.Valid {
		c := int(s.CycleMonths.Int32)
		resp.CycleMonths = &c
	}
	if s.LastDoneAt.Valid {
		t := s.LastDoneAt.Time
		resp.LastDoneAt = &t
	}
	if s.NextDueAt.Valid {
		t := s.NextDueAt.Time
		resp.NextDueAt = &t
	}
	return resp
}

type skipResponse struct {
	ID         int64            `json:"id"`
	ScheduleID int64            `json:"schedule_id"`
	DueDate    maintenance.Date `json:"due_date"`
	SkippedAt  time.Time        `json:"skipped_at"`
}

func newSkipResponse(s *maintenance.Skip) skipResponse {
	return skipResponse{ID: s.ID, ScheduleID: s.ScheduleID, DueDate: s.DueDate, SkippedAt: s.SkippedAt}
}

type errorResponse struct {
	Error string `json:"error"`
}
