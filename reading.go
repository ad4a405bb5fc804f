package weathernet

import "time"

// Canonical sensor field names. Device firmware generations report these
// under varying keys; the query side normalizes onto this set.
const (
	SensorTemperature = "temperature_c"
	SensorHumidity    = "humidity_percent"
	SensorRain        = "rain_detected"
	SensorAirQuality  = "air_quality_mq135"
)

// Reading is one sensor sample reported by a field device.
// Sensors is an opaque structured payload: the store persists it verbatim
// and only the query side interprets the keys.
type Reading struct {
	DeviceID  string         `json:"device_id"`
	Timestamp string         `json:"timestamp,omitempty"` // RFC3339; filled at append time when absent
	Sensors   map[string]any `json:"sensors"`
	Location  *Location      `json:"location,omitempty"`
}

// Location is an optional lat/lon pair in float degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Stats is a derived summary over a batch of readings. Never stored;
// recomputed from whatever batch is at hand.
type Stats struct {
	TotalDevices       int     `json:"totalDevices"`
	TotalDataPoints    int     `json:"totalDataPoints"`
	AverageTemperature float64 `json:"averageTemperature"`
	AverageHumidity    float64 `json:"averageHumidity"`
	AverageAQI         float64 `json:"averageAQI"`
}

// Snapshot is the dashboard state store's current materialized view.
type Snapshot struct {
	Readings    []Reading  `json:"readings"`
	Stats       Stats      `json:"stats"`
	Loading     bool       `json:"loading"`
	Error       string     `json:"error,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// NodeApplication is a request to join the sensor network as a node operator.
type NodeApplication struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Email               string `json:"email"`
	OrganizationName    string `json:"organizationName"`
	City                string `json:"city"`
	State               string `json:"state"`
	Country             string `json:"country"`
	TechnicalExperience string `json:"technicalExperience"`
	AvaxWalletAddress   string `json:"avaxWalletAddress"`
	Motivation          string `json:"motivation"`
	TermsAccepted       bool   `json:"termsAccepted"`
	DataPrivacyAccepted bool   `json:"dataPrivacyAccepted"`
}
