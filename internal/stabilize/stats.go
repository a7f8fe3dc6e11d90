// Package stabilize measures the delivery timing of the frames discarded
// while a sensor settles after stream-on, so the selected frame can be
// reported together with evidence of how steady the pipeline was.
package stabilize

import (
	"math"
	"time"
)

const (
	// rateSteadyThreshold is the maximum frame-rate standard deviation as a
	// fraction of the mean rate for the pipeline to be called steady.
	rateSteadyThreshold = 0.15

	// jitterSteadyThreshold is the maximum mean jitter as a fraction of the
	// expected inter-frame interval for the pipeline to be called steady.
	jitterSteadyThreshold = 0.20
)

// Stats summarizes frame delivery timing over a stabilization window.
type Stats struct {
	// FramesSeen is the number of dequeues in the window.
	FramesSeen int
	// Duration is the wall-clock length of the window.
	Duration time.Duration
	// RateMean is the overall frame rate in Hz.
	RateMean float64
	// RateStdDev is the standard deviation of the instantaneous rate.
	RateStdDev float64
	// RateMin and RateMax bound the instantaneous rate.
	RateMin float64
	RateMax float64
	// JitterMean is the mean deviation from the expected inter-frame
	// interval, in seconds.
	JitterMean float64
	// JitterMax is the largest such deviation observed.
	JitterMax float64
	// IsSteady is true when rate stddev < 15% of the mean and mean jitter
	// < 20% of the expected interval.
	IsSteady bool
}

// Measure computes timing statistics from dequeue timestamps. It never
// fails: windows with fewer than two frames yield zeroed rates and
// IsSteady=false.
func Measure(frameTimes []time.Time, total time.Duration) *Stats {
	n := len(frameTimes)
	if n == 0 || total <= 0 {
		return &Stats{FramesSeen: n, Duration: total}
	}

	rateMean := float64(n) / total.Seconds()

	instantaneous := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		interval := frameTimes[i].Sub(frameTimes[i-1]).Seconds()
		if interval > 0 {
			instantaneous = append(instantaneous, 1.0/interval)
		}
	}
	if len(instantaneous) == 0 {
		return &Stats{FramesSeen: n, Duration: total, RateMean: rateMean}
	}

	rateMin, rateMax := instantaneous[0], instantaneous[0]
	for _, r := range instantaneous {
		if r < rateMin {
			rateMin = r
		}
		if r > rateMax {
			rateMax = r
		}
	}

	var sumSquares float64
	for _, r := range instantaneous {
		diff := r - rateMean
		sumSquares += diff * diff
	}
	rateStdDev := math.Sqrt(sumSquares / float64(len(instantaneous)))

	expectedInterval := 1.0 / rateMean
	var jitterSum, jitterMax float64
	for i := 1; i < n; i++ {
		jitter := math.Abs(frameTimes[i].Sub(frameTimes[i-1]).Seconds() - expectedInterval)
		jitterSum += jitter
		if jitter > jitterMax {
			jitterMax = jitter
		}
	}
	jitterMean := jitterSum / float64(n-1)

	steady := rateStdDev < rateMean*rateSteadyThreshold &&
		jitterMean < expectedInterval*jitterSteadyThreshold

	return &Stats{
		FramesSeen: n,
		Duration:   total,
		RateMean:   rateMean,
		RateStdDev: rateStdDev,
		RateMin:    rateMin,
		RateMax:    rateMax,
		JitterMean: jitterMean,
		JitterMax:  jitterMax,
		IsSteady:   steady,
	}
}
