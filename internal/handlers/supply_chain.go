package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/utils"
	"github.com/climatrix/climatrix/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const msgItemNotFound = "Supply chain item not found"

type CreateShipmentRequest struct {
	ProductName      string           `json:"productName" binding:"required,min=1,max=200"`
	ProductCode      string           `json:"productCode" binding:"max=64"`
	Category         string           `json:"category" binding:"required,min=1"`
	Origin           string           `json:"origin" binding:"required,min=1"`
	CurrentLocation  string           `json:"currentLocation" binding:"required,min=1"`
	Destination      string           `json:"destination" binding:"required,min=1"`
	CarbonFootprint  *float64         `json:"carbonFootprint" binding:"omitempty,gte=0"`
	EnergyUsed       *float64         `json:"energyUsed" binding:"omitempty,gte=0"`
	WaterUsed        *float64         `json:"waterUsed" binding:"omitempty,gte=0"`
	WasteGenerated   *float64         `json:"wasteGenerated" binding:"omitempty,gte=0"`
	Temperature      *float64         `json:"temperature"`
	Humidity         *float64         `json:"humidity" binding:"omitempty,gte=0,lte=100"`
	EstimatedArrival *validation.Date `json:"estimatedArrival"`
}

type UpdateShipmentRequest struct {
	CurrentLocation *string          `json:"currentLocation" binding:"omitempty,min=1"`
	Status          *string          `json:"status" binding:"omitempty,oneof=PENDING IN_TRANSIT ARRIVED DELAYED CANCELLED DELIVERED"`
	Temperature     *float64         `json:"temperature"`
	Humidity        *float64         `json:"humidity" binding:"omitempty,gte=0,lte=100"`
	ActualArrival   *validation.Date `json:"actualArrival"`
}

type CreateShipmentEventRequest struct {
	EventType   string           `json:"eventType" binding:"required,min=1,max=50"`
	Location    string           `json:"location" binding:"required,min=1"`
	Latitude    *float64         `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude   *float64         `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Description string           `json:"description" binding:"max=500"`
	Timestamp   *validation.Date `json:"timestamp"`
}

func (h *Handler) ListShipments(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	items, err := h.store.ListShipments(ctx.Request.Context(), userID)
	if err != nil {
		return err
	}

	return respond(ctx, http.StatusOK, gin.H{"items": items}, "")
}

func (h *Handler) CreateShipment(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req CreateShipmentRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	now := h.now()
	code := req.ProductCode
	if code == "" {
		code = utils.NewProductCode(now)
	}

	item := &models.SupplyChainItem{
		UserID:           userID,
		ProductName:      req.ProductName,
		ProductCode:      code,
		Category:         req.Category,
		Origin:           req.Origin,
		CurrentLocation:  req.CurrentLocation,
		Destination:      req.Destination,
		Status:           models.ShipmentPending,
		CarbonFootprint:  req.CarbonFootprint,
		EnergyUsed:       req.EnergyUsed,
		WaterUsed:        req.WaterUsed,
		WasteGenerated:   req.WasteGenerated,
		Temperature:      req.Temperature,
		Humidity:         req.Humidity,
		EstimatedArrival: req.EstimatedArrival.Ptr(),
	}

	if err := h.store.CreateShipment(ctx.Request.Context(), item, now); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("A product with this code already exists")
		}
		return err
	}

	return respond(ctx, http.StatusCreated, item, "Supply chain item created successfully")
}

// UpdateShipment changes status, location or conditions of an item. A
// status or location change is recorded on the timeline.
func (h *Handler) UpdateShipment(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	id, err := utils.GetIDParam(ctx, "id", "Supply chain item")
	if err != nil {
		return err
	}

	var req UpdateShipmentRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	item, err := h.store.FindShipment(ctx.Request.Context(), id, userID)
	if err != nil {
		return notFound(err, msgItemNotFound)
	}

	now := h.now()
	fields := map[string]interface{}{}
	var event *models.SupplyChainEvent

	location := item.CurrentLocation
	if req.CurrentLocation != nil && *req.CurrentLocation != item.CurrentLocation {
		location = *req.CurrentLocation
		fields["current_location"] = location
		event = &models.SupplyChainEvent{
			EventType:   "location_update",
			Location:    location,
			Description: fmt.Sprintf("Moved from %s to %s", item.CurrentLocation, location),
			Timestamp:   now,
		}
	}

	if req.Status != nil && *req.Status != item.Status {
		fields["status"] = *req.Status
		event = &models.SupplyChainEvent{
			EventType:   "status_change",
			Location:    location,
			Description: fmt.Sprintf("Status changed from %s to %s", item.Status, *req.Status),
			Timestamp:   now,
		}
		arrived := *req.Status == models.ShipmentArrived || *req.Status == models.ShipmentDelivered
		if arrived && item.ActualArrival == nil && req.ActualArrival == nil {
			fields["actual_arrival"] = now
		}
	}

	if req.Temperature != nil {
		fields["temperature"] = *req.Temperature
	}
	if req.Humidity != nil {
		fields["humidity"] = *req.Humidity
	}
	if req.ActualArrival != nil {
		fields["actual_arrival"] = req.ActualArrival.Time
	}

	if err := h.store.UpdateShipment(ctx.Request.Context(), item, fields, event); err != nil {
		return err
	}

	return respond(ctx, http.StatusOK, item, "Supply chain item updated successfully")
}

func (h *Handler) CreateShipmentEvent(ctx *gin.Context) error {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return err
	}

	id, err := utils.GetIDParam(ctx, "id", "Supply chain item")
	if err != nil {
		return err
	}

	var req CreateShipmentEventRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	item, err := h.store.FindShipment(ctx.Request.Context(), id, userID)
	if err != nil {
		return notFound(err, msgItemNotFound)
	}

	timestamp := h.now()
	if req.Timestamp != nil {
		timestamp = req.Timestamp.Time
	}

	event := &models.SupplyChainEvent{
		ItemID:      item.ID,
		EventType:   req.EventType,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Description: req.Description,
		Timestamp:   timestamp,
	}

	if err := h.store.AppendShipmentEvent(ctx.Request.Context(), event); err != nil {
		return err
	}

	return respond(ctx, http.StatusCreated, event, "Event recorded successfully")
}
