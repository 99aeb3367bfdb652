package weather

import (
	"math"
	"sort"
	"time"
)

const MaxTrendDays = 7

type TrendPoint struct {
	Date    string  `json:"date"`
	AvgTemp float64 `json:"avgTemp"`
	MaxTemp float64 `json:"maxTemp"`
	MinTemp float64 `json:"minTemp"`
}

// DailyTrend groups forecast entries by UTC calendar day and returns the
// first MaxTrendDays days in date order with temperatures rounded to one
// decimal.
func DailyTrend(entries []ForecastEntry) []TrendPoint {
	days := map[string][]float64{}
	for _, entry := range entries {
		day := time.Unix(entry.Dt, 0).UTC().Format("2006-01-02")
		days[day] = append(days[day], entry.Main.Temp)
	}

	trend := make([]TrendPoint, 0, len(days))
	for day, temps := range days {
		sum, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
		for _, t := range temps {
			sum += t
			lo = math.Min(lo, t)
			hi = math.Max(hi, t)
		}

		trend = append(trend, TrendPoint{
			Date:    day,
			AvgTemp: round1(sum / float64(len(temps))),
			MaxTemp: round1(hi),
			MinTemp: round1(lo),
		})
	}

	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })

	if len(trend) > MaxTrendDays {
		trend = trend[:MaxTrendDays]
	}
	return trend
}

func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// pm25Breakpoints are the US EPA concentration bands for PM2.5 (µg/m³).
var pm25Breakpoints = []struct {
	cLow, cHigh float64
	iLow, iHigh int
}{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// AQIFromPM25 converts a PM2.5 concentration into a 0..500 AQI value.
func AQIFromPM25(pm25 float64) int {
	if pm25 <= 0 {
		return 0
	}

	c := math.Floor(pm25*10+1e-9) / 10
	for _, bp := range pm25Breakpoints {
		if c <= bp.cHigh {
			if c < bp.cLow {
				c = bp.cLow
			}
			aqi := float64(bp.iHigh-bp.iLow)/(bp.cHigh-bp.cLow)*(c-bp.cLow) + float64(bp.iLow)
			return int(math.Round(aqi))
		}
	}
	return 500
}
