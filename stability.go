package stillcapture

import (
	"time"

	"github.com/e7canasta/orion-care-sensor/modules/still-capture/internal/stabilize"
)

// MeasureStability computes delivery-timing statistics from dequeue
// timestamps. The canonical implementation lives in internal/stabilize;
// this wrapper exposes it to callers of the package.
func MeasureStability(frameTimes []time.Time, total time.Duration) *StabilityStats {
	return fromStabilize(stabilize.Measure(frameTimes, total))
}

func fromStabilize(s *stabilize.Stats) *StabilityStats {
	if s == nil {
		return nil
	}
	return &StabilityStats{
		FramesSeen: s.FramesSeen,
		Duration:   s.Duration,
		RateMean:   s.RateMean,
		RateStdDev: s.RateStdDev,
		RateMin:    s.RateMin,
		RateMax:    s.RateMax,
		JitterMean: s.JitterMean,
		JitterMax:  s.JitterMax,
		IsSteady:   s.IsSteady,
	}
}
