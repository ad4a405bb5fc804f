package service

import (
	"strings"

	"weathernet"
)

// sensorAliases maps lowercased firmware field names onto the canonical
// sensor keys. Different device generations report the same measurement
// under different names; anything not listed here passes through untouched.
var sensorAliases = map[string]string{
	"temperature_c": weathernet.SensorTemperature,
	"temperaturec":  weathernet.SensorTemperature,
	"temp_c":        weathernet.SensorTemperature,
	"temperature":   weathernet.SensorTemperature,

	"humidity_percent": weathernet.SensorHumidity,
	"humiditypercent":  weathernet.SensorHumidity,
	"humidity":         weathernet.SensorHumidity,

	"rain_detected": weathernet.SensorRain,
	"raindetected":  weathernet.SensorRain,
	"rain":          weathernet.SensorRain,

	"air_quality_mq135": weathernet.SensorAirQuality,
	"air_quality_index": weathernet.SensorAirQuality,
	"air_quality":       weathernet.SensorAirQuality,
	"airquality":        weathernet.SensorAirQuality,
	"aqi":               weathernet.SensorAirQuality,
}

// NormalizeReading returns a copy of the reading with its sensor keys mapped
// onto the canonical shape. The input's map is never modified.
func NormalizeReading(r weathernet.Reading) weathernet.Reading {
	r.Sensors = NormalizeSensors(r.Sensors)
	return r
}

// NormalizeSensors rewrites known alias keys to their canonical names.
// The mapping is total and idempotent: canonical keys map to themselves,
// unknown keys are copied as-is, and missing fields simply stay absent.
// When both a canonical key and one of its aliases are present, the
// canonical value wins.
func NormalizeSensors(sensors map[string]any) map[string]any {
	if sensors == nil {
		return nil
	}

	out := make(map[string]any, len(sensors))

	// Canonical keys first so aliases can never shadow them.
	for k, v := range sensors {
		if sensorAliases[strings.ToLower(k)] == k {
			out[k] = v
		}
	}
	for k, v := range sensors {
		canon, known := sensorAliases[strings.ToLower(k)]
		switch {
		case known && canon == k:
			// already copied
		case known:
			if _, taken := out[canon]; !taken {
				out[canon] = v
			}
		default:
			out[k] = v
		}
	}
	return out
}
