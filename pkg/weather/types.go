package weather

import "time"

// GridPoint describes the NWS forecast grid a coordinate resolves to.
type GridPoint struct {
	// ForecastURL is the gridpoint forecast endpoint.
	ForecastURL string

	// ForecastHourlyURL is the gridpoint hourly forecast endpoint.
	ForecastHourlyURL string

	// GridID is the issuing forecast office identifier (e.g. "SEW").
	GridID string

	// City and State describe the nearest populated place.
	City  string
	State string
}

// Period is a single forecast period (e.g. "Tonight", or one hour in the
// hourly forecast).
type Period struct {
	Number           int       `json:"number"`
	Name             string    `json:"name"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	IsDaytime        bool      `json:"isDaytime"`
	Temperature      int       `json:"temperature"`
	TemperatureUnit  string    `json:"temperatureUnit"`
	WindSpeed        string    `json:"windSpeed"`
	WindDirection    string    `json:"windDirection"`
	ShortForecast    string    `json:"shortForecast"`
	DetailedForecast string    `json:"detailedForecast"`

	// ProbabilityOfPrecipitation may be null upstream.
	ProbabilityOfPrecipitation struct {
		Value *int `json:"value"`
	} `json:"probabilityOfPrecipitation"`
}

// Alert is an active weather alert for a point.
type Alert struct {
	ID          string    `json:"id"`
	Event       string    `json:"event"`
	Severity    string    `json:"severity"`
	Urgency     string    `json:"urgency"`
	Headline    string    `json:"headline"`
	Description string    `json:"description"`
	Instruction string    `json:"instruction"`
	AreaDesc    string    `json:"areaDesc"`
	Effective   time.Time `json:"effective"`
	Expires     time.Time `json:"expires"`
}

// pointsResponse is the wire shape of /points/{lat},{lon}.
type pointsResponse struct {
	Properties struct {
		GridID           string `json:"gridId"`
		Forecast         string `json:"forecast"`
		ForecastHourly   string `json:"forecastHourly"`
		RelativeLocation struct {
			Properties struct {
				City  string `json:"city"`
				State string `json:"state"`
			} `json:"properties"`
		} `json:"relativeLocation"`
	} `json:"properties"`
}

// forecastResponse is the wire shape of a gridpoint forecast endpoint.
type forecastResponse struct {
	Properties struct {
		Updated time.Time `json:"updated"`
		Periods []Period  `json:"periods"`
	} `json:"properties"`
}

// alertsResponse is the wire shape of /alerts/active.
type alertsResponse struct {
	Features []struct {
		Properties Alert `json:"properties"`
	} `json:"features"`
}
