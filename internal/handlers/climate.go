package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/cache"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LatestReadingQuery struct {
	City string `form:"city" binding:"required,min=1"`
}

type ReadingHistoryQuery struct {
	City  string `form:"city" binding:"required,min=1"`
	Hours int    `form:"hours,default=24" binding:"min=1,max=168"`
}

type ReadingHistory struct {
	City     string                `json:"city"`
	Hours    int                   `json:"hours"`
	Count    int                   `json:"count"`
	Readings []models.ReadingPoint `json:"readings"`
}

type CreateReadingRequest struct {
	Location       string           `json:"location" binding:"required,min=1"`
	City           string           `json:"city" binding:"required,min=1"`
	State          string           `json:"state"`
	Country        string           `json:"country" binding:"required,min=1"`
	Latitude       *float64         `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude      *float64         `json:"longitude" binding:"required,gte=-180,lte=180"`
	Temperature    *float64         `json:"temperature" binding:"required"`
	FeelsLike      *float64         `json:"feelsLike"`
	TempMin        *float64         `json:"tempMin"`
	TempMax        *float64         `json:"tempMax"`
	AQI            int              `json:"aqi" binding:"gte=0,lte=500"`
	PM25           *float64         `json:"pm25" binding:"omitempty,gte=0"`
	PM10           *float64         `json:"pm10" binding:"omitempty,gte=0"`
	CO             *float64         `json:"co" binding:"omitempty,gte=0"`
	NO2            *float64         `json:"no2" binding:"omitempty,gte=0"`
	SO2            *float64         `json:"so2" binding:"omitempty,gte=0"`
	O3             *float64         `json:"o3" binding:"omitempty,gte=0"`
	Humidity       *float64         `json:"humidity" binding:"omitempty,gte=0,lte=100"`
	Pressure       *float64         `json:"pressure"`
	Visibility     *float64         `json:"visibility" binding:"omitempty,gte=0"`
	WindSpeed      *float64         `json:"windSpeed" binding:"omitempty,gte=0"`
	WindDirection  *float64         `json:"windDirection" binding:"omitempty,gte=0,lte=360"`
	Rainfall       *float64         `json:"rainfall" binding:"omitempty,gte=0"`
	Snowfall       *float64         `json:"snowfall" binding:"omitempty,gte=0"`
	CloudCover     *int             `json:"cloudCover" binding:"omitempty,gte=0,lte=100"`
	UVIndex        *float64         `json:"uvIndex" binding:"omitempty,gte=0"`
	SolarRadiation *float64         `json:"solarRadiation" binding:"omitempty,gte=0"`
	Source         string           `json:"source" binding:"required,min=1"`
	ReadingTime    *validation.Date `json:"readingTime"`
}

// LatestReading returns the newest reading of a city.
func (h *Handler) LatestReading(ctx *gin.Context) error {
	var q LatestReadingQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	data, hit, err := cache.ReadThrough(ctx.Request.Context(), h.cache, cache.LatestReadingKey(q.City), cache.Short,
		func(c context.Context) (*models.ClimateReading, error) {
			reading, err := h.store.LatestReading(c, q.City)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound(fmt.Sprintf("No climate data found for %s", q.City))
			}
			return reading, err
		})
	if err != nil {
		return err
	}

	return respondCached(ctx, data, hit)
}

// ReadingHistory returns the readings of the last N hours, oldest first.
func (h *Handler) ReadingHistory(ctx *gin.Context) error {
	var q ReadingHistoryQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	key := cache.ReadingHistoryKey(q.City, q.Hours)
	data, hit, err := cache.ReadThrough(ctx.Request.Context(), h.cache, key, cache.Medium,
		func(c context.Context) (ReadingHistory, error) {
			since := h.now().Add(-time.Duration(q.Hours) * time.Hour)
			points, err := h.store.ReadingsSince(c, q.City, since)
			if err != nil {
				return ReadingHistory{}, err
			}
			if len(points) == 0 {
				return ReadingHistory{}, apperr.NotFound(fmt.Sprintf("No historical data found for %s", q.City))
			}
			return ReadingHistory{City: q.City, Hours: q.Hours, Count: len(points), Readings: points}, nil
		})
	if err != nil {
		return err
	}

	return respondCached(ctx, data, hit)
}

// CreateReading stores a reading pushed by a station or an analyst.
func (h *Handler) CreateReading(ctx *gin.Context) error {
	var req CreateReadingRequest
	if err := validation.BindJSON(ctx, &req); err != nil {
		return err
	}

	readingTime := h.now()
	if req.ReadingTime != nil {
		readingTime = req.ReadingTime.Time
	}

	reading := &models.ClimateReading{
		Location:       req.Location,
		City:           req.City,
		State:          req.State,
		Country:        req.Country,
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		Temperature:    *req.Temperature,
		FeelsLike:      req.FeelsLike,
		TempMin:        req.TempMin,
		TempMax:        req.TempMax,
		AQI:            req.AQI,
		PM25:           req.PM25,
		PM10:           req.PM10,
		CO:             req.CO,
		NO2:            req.NO2,
		SO2:            req.SO2,
		O3:             req.O3,
		Humidity:       req.Humidity,
		Pressure:       req.Pressure,
		Visibility:     req.Visibility,
		WindSpeed:      req.WindSpeed,
		WindDirection:  req.WindDirection,
		Rainfall:       req.Rainfall,
		Snowfall:       req.Snowfall,
		CloudCover:     req.CloudCover,
		UVIndex:        req.UVIndex,
		SolarRadiation: req.SolarRadiation,
		Source:         req.Source,
		ReadingTime:    readingTime,
	}

	if err := h.store.CreateReading(ctx.Request.Context(), reading); err != nil {
		return err
	}

	h.cache.InvalidateCity(ctx.Request.Context(), reading.City)

	return respond(ctx, http.StatusCreated, reading, "Reading recorded successfully")
}
