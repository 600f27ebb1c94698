package service

import (
	"golang.org/x/time/rate"
	"workout-gate-service/conf"
)

// Throttling is a process-wide token bucket in front of the generation
// service. Absent config disables it.
type Throttling struct {
	limiter *rate.Limiter
}

func NewThrottling(config *conf.Throttling) Throttling {
	if config == nil {
		return Throttling{}
	}
	return Throttling{
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}
}

func (s Throttling) Allow() bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow()
}
