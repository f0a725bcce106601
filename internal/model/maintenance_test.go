package model

import (
	"testing"
	"time"
)

func TestEvaluateDueByDistance(t *testing.T) {
	rule := &MaintenanceRule{IntervalDistance: 100000, IntervalMonths: 6}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	lastDate := now.AddDate(0, 0, -10)

	tests := []struct {
		name         string
		current      int64
		lastOdometer int64
		wantDue      bool
		wantOverdue  int64
	}{
		{"below interval", 199999, 100000, false, 0},
		{"exactly at interval", 200000, 100000, true, 0},
		{"past interval", 205000, 100000, true, 5000},
		{"no maintenance yet counts from zero", 100000, 0, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := rule.EvaluateDue(tt.current, tt.lastOdometer, lastDate, now)
			if result.Due != tt.wantDue {
				t.Fatalf("Due = %v, want %v", result.Due, tt.wantDue)
			}
			if !tt.wantDue {
				return
			}
			if result.Reason != DueReasonDistance {
				t.Errorf("Reason = %q, want %q", result.Reason, DueReasonDistance)
			}
			if result.OverdueDistance != tt.wantOverdue {
				t.Errorf("OverdueDistance = %d, want %d", result.OverdueDistance, tt.wantOverdue)
			}
		})
	}
}

func TestEvaluateDueByTime(t *testing.T) {
	rule := &MaintenanceRule{IntervalDistance: 100000, IntervalMonths: 6}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// months are a fixed 30-day approximation
	result := rule.EvaluateDue(50000, 0, now.AddDate(0, 0, -180), now)
	if !result.Due || result.Reason != DueReasonTime {
		t.Fatalf("expected time-based due, got %+v", result)
	}
	if result.OverdueMonths != 0 {
		t.Errorf("OverdueMonths = %d, want 0", result.OverdueMonths)
	}

	result = rule.EvaluateDue(50000, 0, now.AddDate(0, 0, -240), now)
	if !result.Due || result.OverdueMonths != 2 {
		t.Errorf("expected 2 months overdue, got %+v", result)
	}

	result = rule.EvaluateDue(50000, 0, now.AddDate(0, 0, -179), now)
	if result.Due {
		t.Errorf("expected not due at 179 days, got %+v", result)
	}
}

func TestEvaluateDueDistanceTakesPriority(t *testing.T) {
	rule := &MaintenanceRule{IntervalDistance: 100000, IntervalMonths: 6}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// both checks trip; distance wins
	result := rule.EvaluateDue(200000, 50000, now.AddDate(0, 0, -400), now)
	if !result.Due || result.Reason != DueReasonDistance {
		t.Fatalf("expected distance reason, got %+v", result)
	}
}

func TestEvaluateDueTimeDisabled(t *testing.T) {
	rule := &MaintenanceRule{IntervalDistance: 100000, IntervalMonths: 0}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	result := rule.EvaluateDue(50000, 0, now.AddDate(-3, 0, 0), now)
	if result.Due {
		t.Errorf("time check must be skipped when interval months is zero, got %+v", result)
	}
}
