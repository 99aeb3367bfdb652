package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/climatrix/climatrix/internal/cache"
	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/store"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/climatrix/climatrix/internal/utils"
	"github.com/climatrix/climatrix/internal/validation"
	"github.com/gin-gonic/gin"
)

const (
	EventAlertRaised  = "alert.raised"
	EventAlertUpdated = "alert.updated"
	EventAlertCleared = "alert.cleared"

	notifyTimeout = 15 * time.Second
)

type ActiveAlertsQuery struct {
	City     string `form:"city"`
	Severity string `form:"severity" binding:"omitempty,oneof=LOW MODERATE HIGH VERY_HIGH EXTREME"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=20" binding:"min=1,max=100"`
}

type CreateAlertRequest struct {
	Type         string           `json:"type" binding:"required,oneof=AIR_QUALITY HEAT_WAVE COLD_WAVE UV_WARNING STORM FLOOD DROUGHT WILDFIRE POLLUTION_SPIKE"`
	Severity     string           `json:"severity" binding:"omitempty,oneof=LOW MODERATE HIGH VERY_HIGH EXTREME"`
	Title        string           `json:"title" binding:"required,min=1,max=200"`
	Description  string           `json:"description" binding:"max=2000"`
	Location     string           `json:"location" binding:"required,min=1"`
	City         string           `json:"city"`
	Latitude     *float64         `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude    *float64         `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Radius       *float64         `json:"radius" binding:"omitempty,gte=0"`
	Threshold    *float64         `json:"threshold"`
	CurrentValue *float64         `json:"currentValue"`
	EndTime      *validation.Date `json:"endTime"`
}

type UpdateAlertRequest struct {
	IsActive  *bool    `json:"isActive"`
	Threshold *float64 `json:"threshold"`
}

func (h *Handler) ActiveAlerts(ctx *gin.Context) error {
	var q ActiveAlertsQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	key := cache.ActiveAlertsKey(q.City, q.Severity, q.Page, q.Limit)
	data, hit, err := cache.ReadThrough(ctx.Request.Context(), h.cache, key, cache.Short,
		func(c context.Context) (gin.H, error) {
			alerts, total, err := h.store.ListActiveAlerts(c, store.AlertFilter{
				City:     q.City,
				Severity: q.Severity,
				Page:     store.Page{Page: q.Page, Limit: q.Limit},
			})
			if err != nil {
				return nil, err
			}
			return listPayload("alerts", alerts, types.NewMeta(total, q.Page, q.Limit)), nil
		})
	if err != nil {
		return err
	}

	return respondCached(ctx, data, hit)
}

func (h *Handler) CreateAlert(ctx *gin.Context) error {
	var req CreateAlertRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	now := h.now()
	if req.EndTime != nil && !req.EndTime.After(now) {
		return fieldError("endTime", "endTime must be in the future")
	}

	severity := req.Severity
	if severity == "" {
		severity = "MODERATE"
	}

	alert := &models.EnvironmentalAlert{
		Type:         req.Type,
		Severity:     severity,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		City:         req.City,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Radius:       req.Radius,
		Threshold:    req.Threshold,
		CurrentValue: req.CurrentValue,
		IsActive:     true,
		StartTime:    now,
		EndTime:      req.EndTime.Ptr(),
	}

	if err := h.store.CreateAlert(ctx.Request.Context(), alert); err != nil {
		return err
	}

	h.cache.Invalidate(ctx.Request.Context(), cache.ResourceAlerts)
	h.hub.Broadcast(EventAlertRaised, alert)
	h.notifyAsync(ctx, *alert, true)

	return respond(ctx, http.StatusCreated, alert, "Alert created successfully")
}

func (h *Handler) UpdateAlert(ctx *gin.Context) error {
	id, err := utils.GetIDParam(ctx, "id", "Alert")
	if err != nil {
		return err
	}

	var req UpdateAlertRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	alert, err := h.store.FindAlert(ctx.Request.Context(), id)
	if err != nil {
		return notFound(err, "Alert not found")
	}

	wasActive := alert.IsActive
	fields := map[string]interface{}{}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
		if wasActive && !*req.IsActive && alert.EndTime == nil {
			fields["end_time"] = h.now()
		}
	}
	if req.Threshold != nil {
		fields["threshold"] = *req.Threshold
	}

	if err := h.store.UpdateAlert(ctx.Request.Context(), alert, fields); err != nil {
		return err
	}

	alert, err = h.store.FindAlert(ctx.Request.Context(), id)
	if err != nil {
		return err
	}

	h.cache.Invalidate(ctx.Request.Context(), cache.ResourceAlerts, id)

	switch {
	case wasActive && !alert.IsActive:
		h.hub.Broadcast(EventAlertCleared, alert)
		h.notifyAsync(ctx, *alert, false)
	case !wasActive && alert.IsActive:
		h.hub.Broadcast(EventAlertRaised, alert)
		h.notifyAsync(ctx, *alert, true)
	default:
		h.hub.Broadcast(EventAlertUpdated, alert)
	}

	return respond(ctx, http.StatusOK, alert, "Alert updated successfully")
}

// notifyAsync posts the alert to the webhooks without holding up the
// response. Failures are only logged.
func (h *Handler) notifyAsync(ctx *gin.Context, alert models.EnvironmentalAlert, raised bool) {
	if !h.notifier.Enabled() {
		return
	}

	base := context.WithoutCancel(ctx.Request.Context())
	go func() {
		c, cancel := context.WithTimeout(base, notifyTimeout)
		defer cancel()

		send := h.notifier.AlertCleared
		if raised {
			send = h.notifier.AlertRaised
		}
		if err := send(c, alert); err != nil {
			logging.Ctx(c).Warn().Err(err).Str("alert_id", alert.ID).Msg("Failed to send alert notification")
		}
	}()
}
