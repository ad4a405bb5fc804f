package service

import (
	"context"
	"math"
	"math/rand"
	"time"

	"weathernet"
)

// Simulated value ranges, matching what the field firmware reports.
const (
	simTempBaseC    = 20.0
	simTempSpanC    = 15.0 // 20-35 °C
	simHumidityLo   = 45.0
	simHumiditySpan = 35.0 // 45-80 %RH
	simAQIBase      = 150.0
	simAQISpan      = 100.0 // 150-250
	simRainChance   = 0.2
)

// simDevice is one seeded virtual field node.
type simDevice struct {
	id  string
	lat float64
	lon float64
}

var defaultSimDevices = []simDevice{
	{"esp32_node_001", 22.5726, 88.3639},
	{"esp32_node_002", 22.5856, 88.3428},
	{"esp32_node_003", 22.5634, 88.3712},
	{"esp32_node_004", 22.5789, 88.3521},
	{"esp32_node_005", 22.5645, 88.3598},
	{"esp32_node_006", 22.5712, 88.3456},
}

// SimulatorService feeds randomized readings through the ingestion path,
// one per seeded device per tick. Used in development when no physical
// devices are reporting.
type SimulatorService struct {
	ingest  Ingest
	devices []simDevice
}

func NewSimulatorService(ingest Ingest) *SimulatorService {
	return &SimulatorService{ingest: ingest, devices: defaultSimDevices}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.emit(ctx, now)
		}
	}
}

// emit appends one randomized reading per device. Store failures are
// ignored; the next tick simply tries again.
func (s *SimulatorService) emit(ctx context.Context, now time.Time) {
	for _, d := range s.devices {
		_, _ = s.ingest.Store(ctx, s.randomReading(d, now))
	}
}

func (s *SimulatorService) randomReading(d simDevice, now time.Time) weathernet.Reading {
	return weathernet.Reading{
		DeviceID:  d.id,
		Timestamp: now.UTC().Format(time.RFC3339),
		Sensors: map[string]any{
			weathernet.SensorTemperature: round1(simTempBaseC + rand.Float64()*simTempSpanC),
			weathernet.SensorHumidity:    round1(simHumidityLo + rand.Float64()*simHumiditySpan),
			weathernet.SensorRain:        rand.Float64() < simRainChance,
			weathernet.SensorAirQuality:  math.Round(simAQIBase + rand.Float64()*simAQISpan),
		},
		Location: &weathernet.Location{Lat: d.lat, Lon: d.lon},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
