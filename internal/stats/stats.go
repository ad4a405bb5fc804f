// Package stats derives summary statistics from a batch of readings.
package stats

import (
	"math"

	"weathernet"
)

// Compute returns counts and per-sensor means over the batch. The input is
// never mutated; an empty batch yields all-zero stats. Missing or
// non-numeric sensor values count as 0 so a partial payload can never fail
// aggregation.
func Compute(readings []weathernet.Reading) weathernet.Stats {
	if len(readings) == 0 {
		return weathernet.Stats{}
	}

	devices := make(map[string]struct{}, len(readings))
	var sumTemp, sumHumidity, sumAQI float64
	for _, r := range readings {
		devices[r.DeviceID] = struct{}{}
		sumTemp += numeric(r.Sensors[weathernet.SensorTemperature])
		sumHumidity += numeric(r.Sensors[weathernet.SensorHumidity])
		sumAQI += numeric(r.Sensors[weathernet.SensorAirQuality])
	}

	n := float64(len(readings))
	return weathernet.Stats{
		TotalDevices:       len(devices),
		TotalDataPoints:    len(readings),
		AverageTemperature: round2(sumTemp / n),
		AverageHumidity:    round2(sumHumidity / n),
		AverageAQI:         round2(sumAQI / n),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// numeric coerces a decoded JSON value to float64, defaulting to 0.
func numeric(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}
