package stabilize

import (
	"math/rand"
	"testing"
	"time"
)

// generateFrameTimes produces n timestamps at targetHz with uniformly
// distributed jitter of ±jitterFrac of the nominal interval.
func generateFrameTimes(n int, targetHz, jitterFrac float64, seed int64) []time.Time {
	rng := rand.New(rand.NewSource(seed))
	interval := time.Duration(float64(time.Second) / targetHz)

	times := make([]time.Time, 0, n)
	t := time.Unix(0, 0)
	for i := 0; i < n; i++ {
		times = append(times, t)
		wobble := (rng.Float64()*2 - 1) * jitterFrac
		t = t.Add(interval + time.Duration(wobble*float64(interval)))
	}
	return times
}

func TestMeasureSteadyDelivery(t *testing.T) {
	times := generateFrameTimes(30, 1.0, 0.05, 1)
	stats := Measure(times, 30*time.Second)

	if !stats.IsSteady {
		t.Errorf("expected steady delivery, got IsSteady=false (rate stddev %.2f%% of mean, jitter %.2f%% of interval)",
			stats.RateStdDev/stats.RateMean*100,
			stats.JitterMean*stats.RateMean*100,
		)
	}
	if stats.FramesSeen != 30 {
		t.Errorf("FramesSeen = %d, want 30", stats.FramesSeen)
	}
	if stats.RateMean < 0.9 || stats.RateMean > 1.1 {
		t.Errorf("RateMean = %.3f Hz, want about 1 Hz", stats.RateMean)
	}
	if stats.RateMin > stats.RateMax {
		t.Errorf("RateMin %.3f > RateMax %.3f", stats.RateMin, stats.RateMax)
	}
}

func TestMeasureErraticDelivery(t *testing.T) {
	times := generateFrameTimes(30, 1.0, 0.6, 2)
	stats := Measure(times, 30*time.Second)

	if stats.IsSteady {
		t.Errorf("expected erratic delivery, got IsSteady=true (rate stddev %.2f%% of mean)",
			stats.RateStdDev/stats.RateMean*100)
	}
}

func TestMeasureMoreJitterIsNeverSteadier(t *testing.T) {
	previousSteady := true
	for _, jitter := range []float64{0.02, 0.10, 0.30, 0.60} {
		times := generateFrameTimes(50, 2.0, jitter, 3)
		stats := Measure(times, 25*time.Second)
		t.Logf("jitter %.0f%% -> IsSteady=%v", jitter*100, stats.IsSteady)
		if !previousSteady && stats.IsSteady {
			t.Errorf("steadiness flipped back to true at jitter %.0f%%", jitter*100)
		}
		previousSteady = stats.IsSteady
	}
}

func TestMeasureEdgeCases(t *testing.T) {
	base := time.Unix(100, 0)
	tests := []struct {
		name       string
		frameTimes []time.Time
		total      time.Duration
		wantSteady bool
		wantFrames int
	}{
		{"no frames", nil, 5 * time.Second, false, 0},
		{"single frame", []time.Time{base}, 5 * time.Second, false, 1},
		{"zero duration", []time.Time{base, base.Add(time.Second)}, 0, false, 2},
		{
			"identical timestamps",
			[]time.Time{base, base, base},
			3 * time.Second,
			false,
			3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := Measure(tt.frameTimes, tt.total)
			if stats == nil {
				t.Fatal("Measure returned nil")
			}
			if stats.IsSteady != tt.wantSteady {
				t.Errorf("IsSteady = %v, want %v", stats.IsSteady, tt.wantSteady)
			}
			if stats.FramesSeen != tt.wantFrames {
				t.Errorf("FramesSeen = %d, want %d", stats.FramesSeen, tt.wantFrames)
			}
		})
	}
}

func TestMeasureExactCadence(t *testing.T) {
	// Perfectly periodic 5 Hz delivery: zero stddev, zero jitter.
	times := generateFrameTimes(25, 5.0, 0, 4)
	stats := Measure(times, 5*time.Second)

	if !stats.IsSteady {
		t.Error("perfectly periodic delivery should be steady")
	}
	if stats.JitterMax > 1e-6 {
		t.Errorf("JitterMax = %g, want ~0", stats.JitterMax)
	}
	if stats.RateStdDev > 1e-6 {
		t.Errorf("RateStdDev = %g, want ~0", stats.RateStdDev)
	}
}
