package app

import (
	"sync"
	"sync/atomic"

	"hotel_weather/internal/adapters/observability"
)

// Pipeline stages, in execution order.
const (
	StageIdle      = "idle"
	StageRefine    = "refine"
	StageSelect    = "select"
	StageWeather   = "weather"
	StageAnalytics = "analytics"
	StageAddresses = "addresses"
	StageOutput    = "output"
	StageDone      = "done"
)

// Progress tracks a running batch. Safe for concurrent use; a nil *Progress
// is a no-op so fetchers can run without one.
type Progress struct {
	mu    sync.RWMutex
	stage string

	weatherTotal, weatherDone, weatherFailed atomic.Int64
	addrTotal, addrDone, addrFailed          atomic.Int64
}

func NewProgress() *Progress { return &Progress{stage: StageIdle} }

// ProgressSnapshot is the JSON view served by the status endpoint.
type ProgressSnapshot struct {
	Stage         string `json:"stage"`
	WeatherTotal  int64  `json:"weather_total"`
	WeatherDone   int64  `json:"weather_done"`
	WeatherFailed int64  `json:"weather_failed"`
	AddressTotal  int64  `json:"address_total"`
	AddressDone   int64  `json:"address_done"`
	AddressFailed int64  `json:"address_failed"`
}

func (p *Progress) SetStage(s string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.stage = s
	p.mu.Unlock()
	observability.SetStage(s)
}

func (p *Progress) Snapshot() ProgressSnapshot {
	if p == nil {
		return ProgressSnapshot{Stage: StageIdle}
	}
	p.mu.RLock()
	stage := p.stage
	p.mu.RUnlock()
	return ProgressSnapshot{
		Stage:         stage,
		WeatherTotal:  p.weatherTotal.Load(),
		WeatherDone:   p.weatherDone.Load(),
		WeatherFailed: p.weatherFailed.Load(),
		AddressTotal:  p.addrTotal.Load(),
		AddressDone:   p.addrDone.Load(),
		AddressFailed: p.addrFailed.Load(),
	}
}

func (p *Progress) weatherStart(n int) {
	if p == nil {
		return
	}
	p.weatherTotal.Add(int64(n))
	observability.ObserveFetchProgress("weather", "total", float64(p.weatherTotal.Load()))
}

func (p *Progress) weatherFinished(err error) {
	if p == nil {
		return
	}
	p.weatherDone.Add(1)
	observability.ObserveFetchProgress("weather", "done", float64(p.weatherDone.Load()))
	if err != nil {
		p.weatherFailed.Add(1)
		observability.ObserveFetchProgress("weather", "failed", float64(p.weatherFailed.Load()))
	}
}

func (p *Progress) addressStart(n int) {
	if p == nil {
		return
	}
	p.addrTotal.Add(int64(n))
	observability.ObserveFetchProgress("address", "total", float64(p.addrTotal.Load()))
}

func (p *Progress) addressFinished(failed bool) {
	if p == nil {
		return
	}
	p.addrDone.Add(1)
	observability.ObserveFetchProgress("address", "done", float64(p.addrDone.Load()))
	if failed {
		p.addrFailed.Add(1)
		observability.ObserveFetchProgress("address", "failed", float64(p.addrFailed.Load()))
	}
}
