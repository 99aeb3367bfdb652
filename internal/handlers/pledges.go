package handlers

import (
	"fmt"
	"net/http"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/store"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/climatrix/climatrix/internal/utils"
	"github.com/climatrix/climatrix/internal/validation"
	"github.com/gin-gonic/gin"
)

type ListPledgesQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE COMPLETED VERIFIED CANCELLED"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=50"`
}

type CreatePledgeRequest struct {
	PledgeType  string           `json:"pledgeType" binding:"required,oneof=PLANT_TREES REDUCE_DRIVING SAVE_ENERGY REDUCE_WASTE RENEWABLE_ENERGY WATER_CONSERVATION"`
	Quantity    int              `json:"quantity" binding:"required,gt=0"`
	Unit        string           `json:"unit" binding:"required,min=1,max=50"`
	Description string           `json:"description" binding:"max=500"`
	StartDate   *validation.Date `json:"startDate" binding:"required"`
	EndDate     *validation.Date `json:"endDate"`
}

type PledgeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED VERIFIED CANCELLED"`
}

func (h *Handler) ListPledges(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	var q ListPledgesQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	pledges, total, err := h.store.ListPledges(ctx.Request.Context(), store.PledgeFilter{
		UserID: userID,
		Status: q.Status,
		Page:   store.Page{Page: q.Page, Limit: q.Limit},
	})
	if err != nil {
		return err
	}

	return respond(ctx, http.StatusOK, listPayload("pledges", pledges, types.NewMeta(total, q.Page, q.Limit)), "")
}

func (h *Handler) CreatePledge(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req CreatePledgeRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	if req.EndDate != nil && req.EndDate.Before(req.StartDate.Time) {
		return fieldError("endDate", "endDate must not be before startDate")
	}

	pledge := &models.EnvironmentalPledge{
		UserID:      userID,
		PledgeType:  req.PledgeType,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Description: req.Description,
		StartDate:   req.StartDate.Time,
		EndDate:     req.EndDate.Ptr(),
		Status:      models.PledgeActive,
	}

	if err := h.store.CreatePledge(ctx.Request.Context(), pledge); err != nil {
		return err
	}

	return respond(ctx, http.StatusCreated, pledge, "Pledge created successfully")
}

// UpdatePledgeStatus moves a pledge along ACTIVE -> COMPLETED -> VERIFIED or
// ACTIVE -> CANCELLED. Owners complete and cancel; staff verify.
func (h *Handler) UpdatePledgeStatus(ctx *gin.Context) error {
	identity, err := utils.GetCurrentUser(ctx)
	if err != nil {
		return err
	}

	id, err := utils.GetIDParam(ctx, "id", "Pledge")
	if err != nil {
		return err
	}

	var req PledgeStatusRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	pledge, err := h.store.FindPledge(ctx.Request.Context(), id)
	if err != nil {
		return notFound(err, "Pledge not found")
	}

	if req.Status == models.PledgeVerified {
		if !identity.HasRole(types.StaffRoles...) {
			return apperr.Forbidden("Only administrators and analysts can verify pledges")
		}
	} else if pledge.UserID != identity.UserID {
		return apperr.Forbidden("You can only update your own pledges")
	}

	if !models.CanTransitionPledge(pledge.Status, req.Status) {
		return apperr.Conflict(fmt.Sprintf("Cannot change pledge status from %s to %s", pledge.Status, req.Status))
	}

	from := pledge.Status
	updated, err := h.store.SetPledgeStatus(ctx.Request.Context(), pledge, req.Status, identity.UserID, h.now())
	if err != nil {
		return err
	}
	if !updated {
		return apperr.Conflict(fmt.Sprintf("Pledge is no longer %s", from))
	}

	return respond(ctx, http.StatusOK, pledge, "Pledge status updated successfully")
}
