package weather

type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type MainReadings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type Clouds struct {
	All int `json:"all"`
}

type Precipitation struct {
	OneHour float64 `json:"1h"`
}

// Current is the subset of the current weather document we store.
type Current struct {
	Name       string         `json:"name"`
	Coord      Coord          `json:"coord"`
	Main       MainReadings   `json:"main"`
	Visibility float64        `json:"visibility"`
	Wind       Wind           `json:"wind"`
	Clouds     Clouds         `json:"clouds"`
	Rain       *Precipitation `json:"rain"`
	Snow       *Precipitation `json:"snow"`
	Dt         int64          `json:"dt"`
	Sys        struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type ForecastEntry struct {
	Dt   int64        `json:"dt"`
	Main MainReadings `json:"main"`
}

type Forecast struct {
	List []ForecastEntry `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

type PollutionComponents struct {
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NH3  float64 `json:"nh3"`
}

type AirPollution struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components PollutionComponents `json:"components"`
	} `json:"list"`
}
