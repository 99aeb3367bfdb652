package models

import "time"

// ClimateReading is one snapshot for a city. Rows are insert-only.
type ClimateReading struct {
	BaseModel

	Location       string    `gorm:"not null" json:"location"`
	City           string    `gorm:"index:idx_reading_city_time" json:"city"`
	State          string    `json:"state,omitempty"`
	Country        string    `gorm:"not null" json:"country"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Temperature    float64   `json:"temperature"`
	FeelsLike      *float64  `json:"feelsLike"`
	TempMin        *float64  `json:"tempMin"`
	TempMax        *float64  `json:"tempMax"`
	AQI            int       `gorm:"column:aqi" json:"aqi"`
	PM25           *float64  `gorm:"column:pm25" json:"pm25"`
	PM10           *float64  `gorm:"column:pm10" json:"pm10"`
	CO             *float64  `gorm:"column:co" json:"co"`
	NO2            *float64  `gorm:"column:no2" json:"no2"`
	SO2            *float64  `gorm:"column:so2" json:"so2"`
	O3             *float64  `gorm:"column:o3" json:"o3"`
	Humidity       *float64  `json:"humidity"`
	Pressure       *float64  `json:"pressure"`
	Visibility     *float64  `json:"visibility"`
	WindSpeed      *float64  `json:"windSpeed"`
	WindDirection  *float64  `json:"windDirection"`
	Rainfall       *float64  `json:"rainfall"`
	Snowfall       *float64  `json:"snowfall"`
	CloudCover     *int      `json:"cloudCover"`
	UVIndex        *float64  `gorm:"column:uv_index" json:"uvIndex"`
	SolarRadiation *float64  `json:"solarRadiation"`
	Source         string    `gorm:"not null" json:"source"`
	ReadingTime    time.Time `gorm:"not null;index:idx_reading_city_time" json:"readingTime"`
}

// ReadingPoint is the slimmed row returned by the history endpoint.
type ReadingPoint struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	Temperature float64   `json:"temperature"`
	FeelsLike   *float64  `json:"feelsLike"`
	AQI         int       `gorm:"column:aqi" json:"aqi"`
	PM25        *float64  `gorm:"column:pm25" json:"pm25"`
	Humidity    *float64  `json:"humidity"`
	UVIndex     *float64  `gorm:"column:uv_index" json:"uvIndex"`
	Rainfall    *float64  `json:"rainfall"`
	WindSpeed   *float64  `json:"windSpeed"`
	ReadingTime time.Time `json:"readingTime"`
}
