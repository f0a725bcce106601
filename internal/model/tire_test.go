package model

import (
	"math"
	"testing"
)

func TestComputeWear(t *testing.T) {
	tests := []struct {
		name         string
		installation int64
		current      int64
		wantPct      float64
		wantStatus   TireStatus
	}{
		{"fresh tire", 100000, 100000, 0, TireStatusGood},
		{"light use", 100000, 110000, 20, TireStatusGood},
		{"just under warning", 100000, 129999, 59.998, TireStatusGood},
		{"warning boundary", 100000, 130000, 60, TireStatusWarning},
		{"just under replacement", 0, 39999, 79.998, TireStatusWarning},
		{"replacement boundary", 0, 40000, 80, TireStatusNeedReplacement},
		{"full life", 0, 50000, 100, TireStatusNeedReplacement},
		{"capped above full life", 0, 75000, 100, TireStatusNeedReplacement},
		{"reading below installation clamps to zero", 50000, 40000, 0, TireStatusGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, status := ComputeWear(tt.installation, tt.current)
			if math.Abs(pct-tt.wantPct) > 1e-9 {
				t.Errorf("ComputeWear(%d, %d) pct = %v, want %v", tt.installation, tt.current, pct, tt.wantPct)
			}
			if status != tt.wantStatus {
				t.Errorf("ComputeWear(%d, %d) status = %q, want %q", tt.installation, tt.current, status, tt.wantStatus)
			}
		})
	}
}

func TestTireUsageDistance(t *testing.T) {
	tire := &Tire{InstallationOdometer: 120000, CurrentOdometer: 135000}
	if got := tire.UsageDistance(); got != 15000 {
		t.Errorf("UsageDistance() = %d, want 15000", got)
	}
}
