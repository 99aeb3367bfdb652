package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/cache"
	"github.com/climatrix/climatrix/internal/validation"
	"github.com/climatrix/climatrix/internal/weather"
	"github.com/gin-gonic/gin"
	gobreaker "github.com/sony/gobreaker/v2"
)

type CityQuery struct {
	City string `form:"city" binding:"required,min=1"`
}

type CoordsQuery struct {
	Lat *float64 `form:"lat" binding:"required,gte=-90,lte=90"`
	Lon *float64 `form:"lon" binding:"required,gte=-180,lte=180"`
}

type WeatherTrend struct {
	City    string               `json:"city"`
	Country string               `json:"country,omitempty"`
	Trend   []weather.TrendPoint `json:"trend"`
}

// weatherError maps provider failures onto API errors.
func weatherError(err error) error {
	switch {
	case errors.Is(err, weather.ErrCityNotFound):
		return apperr.NotFound("City not found")
	case errors.Is(err, weather.ErrNotConfigured):
		return &apperr.Error{
			Status: http.StatusServiceUnavailable,
			Title:  "Weather service is not configured",
			Err:    err,
		}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperr.Upstream("Weather service temporarily unavailable", err)
	}
	return apperr.Upstream("Failed to fetch weather data", err)
}

func (h *Handler) WeatherByCity(ctx *gin.Context) error {
	var q CityQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	body, err := h.weather.CurrentByCity(ctx.Request.Context(), q.City)
	if err != nil {
		return weatherError(err)
	}

	return respond(ctx, http.StatusOK, body, "")
}

func (h *Handler) WeatherByCoords(ctx *gin.Context) error {
	var q CoordsQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	body, err := h.weather.CurrentByCoords(ctx.Request.Context(), *q.Lat, *q.Lon)
	if err != nil {
		return weatherError(err)
	}

	return respond(ctx, http.StatusOK, body, "")
}

// WeatherTrend summarises the five day forecast per UTC day.
func (h *Handler) WeatherTrend(ctx *gin.Context) error {
	var q CityQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	data, hit, err := cache.ReadThrough(ctx.Request.Context(), h.cache, cache.WeatherTrendKey(q.City), cache.Long,
		func(c context.Context) (WeatherTrend, error) {
			forecast, err := h.weather.Forecast(c, q.City)
			if err != nil {
				return WeatherTrend{}, weatherError(err)
			}

			city := forecast.City.Name
			if city == "" {
				city = q.City
			}
			return WeatherTrend{
				City:    city,
				Country: forecast.City.Country,
				Trend:   weather.DailyTrend(forecast.List),
			}, nil
		})
	if err != nil {
		return err
	}

	return respondCached(ctx, data, hit)
}

func (h *Handler) AirQuality(ctx *gin.Context) error {
	var q CoordsQuery
	if err := validation.BindQuery(ctx, &q); err != nil {
		return err
	}

	body, err := h.weather.AirQuality(ctx.Request.Context(), *q.Lat, *q.Lon)
	if err != nil {
		return weatherError(err)
	}

	return respond(ctx, http.StatusOK, body, "")
}
