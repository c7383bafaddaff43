package widgets

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/teslashibe/go-mirror/internal/httpc"
)

// OpenMeteoURL is the forecast endpoint. It needs no API key.
const OpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// WeatherData is the weather panel.
type WeatherData struct {
	Temperature float64    `json:"temperature"`
	Condition   string     `json:"condition"`
	Humidity    float64    `json:"humidity"`
	WindSpeed   float64    `json:"wind_speed"`
	Units       string     `json:"units"`
	Forecast    []Forecast `json:"forecast"`
}

// Forecast is one day of the outlook.
type Forecast struct {
	Day       string  `json:"day"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Condition string  `json:"condition"`
}

// OfflineWeather is shown until the first successful fetch.
func OfflineWeather() WeatherData {
	return WeatherData{
		Temperature: 22,
		Condition:   "partly-cloudy",
		Humidity:    65,
		WindSpeed:   8,
		Units:       "metric",
		Forecast: []Forecast{
			{Day: "Today", High: 24, Low: 18, Condition: "sunny"},
			{Day: "Tomorrow", High: 26, Low: 19, Condition: "cloudy"},
			{Day: "Wed", High: 22, Low: 16, Condition: "rainy"},
		},
	}
}

// Weather fetches current conditions and a three day forecast from
// Open-Meteo every ten minutes.
type Weather struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
	Units     string // metric or imperial
	Client    *http.Client

	last *WeatherData
}

// NewWeather creates a weather widget for the given coordinates.
func NewWeather(lat, lon float64, units string) *Weather {
	return &Weather{BaseURL: OpenMeteoURL, Latitude: lat, Longitude: lon, Units: units}
}

func (w *Weather) ID() string              { return "weather" }
func (w *Weather) Interval() time.Duration { return 10 * time.Minute }

type openMeteoResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time        []string  `json:"time"`
		Max         []float64 `json:"temperature_2m_max"`
		Min         []float64 `json:"temperature_2m_min"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"daily"`
}

// Refresh runs on one board task at a time, so last needs no lock.
func (w *Weather) Refresh(ctx context.Context) (any, error) {
	var resp openMeteoResponse
	if err := httpc.GetJSON(ctx, w.Client, w.requestURL(), &resp); err != nil {
		if w.last != nil {
			return nil, fmt.Errorf("weather: %w", err)
		}
		return OfflineWeather(), fmt.Errorf("weather: %w", err)
	}

	d := WeatherData{
		Temperature: resp.Current.Temperature,
		Condition:   condition(resp.Current.WeatherCode),
		Humidity:    resp.Current.Humidity,
		WindSpeed:   resp.Current.WindSpeed,
		Units:       w.units(),
		Forecast:    []Forecast{},
	}
	n := min(len(resp.Daily.Time), len(resp.Daily.Max), len(resp.Daily.Min), len(resp.Daily.WeatherCode))
	for i := range n {
		d.Forecast = append(d.Forecast, Forecast{
			Day:       dayLabel(i, resp.Daily.Time[i]),
			High:      resp.Daily.Max[i],
			Low:       resp.Daily.Min[i],
			Condition: condition(resp.Daily.WeatherCode[i]),
		})
	}
	w.last = &d
	return d, nil
}

func (w *Weather) units() string {
	if w.Units == "imperial" {
		return "imperial"
	}
	return "metric"
}

func (w *Weather) requestURL() string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(w.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(w.Longitude, 'f', 4, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	q.Set("daily", "temperature_2m_max,temperature_2m_min,weather_code")
	q.Set("forecast_days", "3")
	q.Set("timezone", "auto")
	if w.units() == "imperial" {
		q.Set("temperature_unit", "fahrenheit")
		q.Set("wind_speed_unit", "mph")
	}
	base := w.BaseURL
	if base == "" {
		base = OpenMeteoURL
	}
	return base + "?" + q.Encode()
}

// condition maps a WMO weather code to the panel's icon names.
func condition(code int) string {
	switch {
	case code == 0:
		return "sunny"
	case code <= 2:
		return "partly-cloudy"
	case code == 3:
		return "cloudy"
	case code == 45 || code == 48:
		return "foggy"
	case code >= 51 && code <= 67, code >= 80 && code <= 82:
		return "rainy"
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return "snowy"
	case code >= 95:
		return "stormy"
	default:
		return "cloudy"
	}
}

func dayLabel(i int, date string) string {
	switch i {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format("Mon")
}
