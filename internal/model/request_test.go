package model

import (
	"errors"
	"testing"
	"time"
)

func TestNewRequest(t *testing.T) {
	r1 := NewRequest(RequestKindUpload)
	r2 := NewRequest(RequestKindUpload)

	if r1.ID == "" || r1.ID == r2.ID {
		t.Errorf("Expected distinct non-empty IDs, got %q and %q", r1.ID, r2.ID)
	}

	if len(r1.ID) != 36 {
		t.Errorf("Expected UUID length 36, got %d for ID: %s", len(r1.ID), r1.ID)
	}

	if r1.Status != RequestStatusPending {
		t.Errorf("Expected status Pending, got %s", r1.Status)
	}
}

func TestRequest_Finish(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	ok := NewRequest(RequestKindExample)
	ok.Start(start)
	ok.Finish(start.Add(1500*time.Millisecond), 42, nil)

	if ok.Status != RequestStatusCompleted {
		t.Errorf("Expected Completed, got %s", ok.Status)
	}
	if ok.Bytes != 42 {
		t.Errorf("Expected 42 bytes, got %d", ok.Bytes)
	}
	if ok.Duration() != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s duration, got %v", ok.Duration())
	}

	failed := NewRequest(RequestKindUpload)
	failed.Start(start)
	failed.Finish(start.Add(time.Second), 0, errors.New("boom"))

	if failed.Status != RequestStatusError {
		t.Errorf("Expected Error, got %s", failed.Status)
	}
	if failed.LastError != "boom" {
		t.Errorf("Expected LastError 'boom', got %q", failed.LastError)
	}
}

func TestRequest_GetDurationString(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		elapsed  time.Duration
		expected string
	}{
		{0, "—"},
		{1500 * time.Millisecond, "00:01.5"},
		{90 * time.Second, "01:30.0"},
	}

	for _, test := range tests {
		r := NewRequest(RequestKindUpload)
		if test.elapsed > 0 {
			r.Start(start)
			r.Finish(start.Add(test.elapsed), 0, nil)
		}
		result := r.GetDurationString()
		if result != test.expected {
			t.Errorf("GetDurationString() with elapsed=%v = %s, expected %s", test.elapsed, result, test.expected)
		}
	}
}
