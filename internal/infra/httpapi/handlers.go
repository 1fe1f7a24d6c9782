package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dorm_maintenance/internal/app"
	"dorm_maintenance/internal/domain/errs"
	"dorm_maintenance/internal/domain/maintenance"
	"dorm_maintenance/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers serves the maintenance REST API.
type Handlers struct {
	maintenance         *app.MaintenanceService
	admin               *app.AdminService
	notifications       app.NotificationService
	clock               app.Clock
	loc                 *time.Location
	upcomingDefaultDays int
	logger              *logrus.Entry
}

func NewHandlers(
	ms *app.MaintenanceService,
	as *app.AdminService,
	ns app.NotificationService,
	clock app.Clock,
	loc *time.Location,
	upcomingDefaultDays int,
	logger *logrus.Entry,
) *Handlers {
	return &Handlers{
		maintenance:         ms,
		admin:               as,
		notifications:       ns,
		clock:               clock,
		loc:                 loc,
		upcomingDefaultDays: upcomingDefaultDays,
		logger:              logger,
	}
}

// RegisterRoutes mounts the API under rg.
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	groups := rg.Group("/asset-groups")
	groups.POST("", h.CreateAssetGroup)
	groups.GET("", h.ListAssetGroups)
	groups.GET("/:id", h.GetAssetGroup)

	m := rg.Group("/maintenance")
	m.GET("/due", h.ListDue)
	m.GET("/upcoming", h.ListUpcoming)

	s := m.Group("/schedules")
	s.POST("", h.CreateSchedule)
	s.GET("", h.ListSchedules)
	s.GET("/:id", h.GetSchedule)
	s.PUT("/:id", h.UpdateSchedule)
	s.DELETE("/:id", h.DeleteSchedule)
	s.POST("/:id/complete", h.CompleteSchedule)
	s.GET("/:id/skips", h.ListSkips)
	s.POST("/:id/skips", h.SkipDueDate)
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) CreateAssetGroup(c *gin.Context) {
	var req assetGroupRequest
	if !h.bind(c, &req) {
		return
	}
	g, err := h.admin.CreateAssetGroup(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAssetGroupResponse(g))
}

func (h *Handlers) ListAssetGroups(c *gin.Context) {
	groups, err := h.admin.ListAssetGroups(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]assetGroupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, newAssetGroupResponse(g))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) GetAssetGroup(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	g, err := h.admin.GetAssetGroup(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAssetGroupResponse(g))
}

func (h *Handlers) CreateSchedule(c *gin.Context) {
	var req scheduleRequest
	if !h.bind(c, &req) {
		return
	}
	in, err := req.toInput(h.loc)
	if err != nil {
		h.writeError(c, err)
		return
	}
	s, err := h.maintenance.CreateSchedule(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newScheduleResponse(s, h.today(), h.loc))
}

func (h *Handlers) ListSchedules(c *gin.Context) {
	schedules, err := h.maintenance.ListSchedules(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.scheduleList(schedules))
}

func (h *Handlers) GetSchedule(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	s, err := h.maintenance.GetSchedule(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newScheduleResponse(s, h.today(), h.loc))
}

func (h *Handlers) UpdateSchedule(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req scheduleRequest
	if !h.bind(c, &req) {
		return
	}
	in, err := req.toInput(h.loc)
	if err != nil {
		h.writeError(c, err)
		return
	}
	s, err := h.maintenance.UpdateSchedule(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newScheduleResponse(s, h.today(), h.loc))
}

func (h *Handlers) DeleteSchedule(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.maintenance.DeleteSchedule(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) CompleteSchedule(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	s, err := h.maintenance.MarkDone(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	metrics.Completions.WithLabelValues("api").Inc()
	c.JSON(http.StatusOK, newScheduleResponse(s, h.today(), h.loc))
}

func (h *Handlers) ListSkips(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	skips, err := h.maintenance.ListSkips(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]skipResponse, 0, len(skips))
	for _, k := range skips {
		resp = append(resp, newSkipResponse(k))
	}
	c.JSON(http.StatusOK, resp)
}

// SkipDueDate answers 201 for a new skip and 200 when the occurrence was already skipped.
func (h *Handlers) SkipDueDate(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req skipRequest
	if !h.bind(c, &req) {
		return
	}
	due, err := maintenance.ParseDate(req.DueDate)
	if err != nil {
		h.writeError(c, fmt.Errorf("%w: due_date must be YYYY-MM-DD", errs.ErrInvalidArgument))
		return
	}
	skip, created, err := h.maintenance.SkipDueDate(c.Request.Context(), id, due)
	if err != nil {
		h.writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		metrics.Skips.WithLabelValues("api").Inc()
	}
	c.JSON(status, newSkipResponse(skip))
}

func (h *Handlers) ListUpcoming(c *gin.Context) {
	days := h.upcomingDefaultDays
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(c, fmt.Errorf("%w: days must be an integer", errs.ErrInvalidArgument))
			return
		}
		days = v
	}
	schedules, err := h.maintenance.ListUpcoming(c.Request.Context(), days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.scheduleList(schedules))
}

func (h *Handlers) ListDue(c *gin.Context) {
	items, err := h.notifications.DueNotifications(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handlers) today() maintenance.Date {
	return maintenance.DateOf(h.clock.Now(), h.loc)
}

func (h *Handlers) scheduleList(schedules []*maintenance.Schedule) []scheduleResponse {
	today := h.today()
	resp := make([]scheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		resp = append(resp, newScheduleResponse(s, today, h.loc))
	}
	return resp
}

func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handlers) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString(requestIDKey),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
