package main

import (
	"testing"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/core/usecases"
)

func TestTracker_CountsWaypoints(t *testing.T) {
	tr := newTracker()

	for step := 1; step <= 5; step++ {
		reached := tr.frame(&domain.Frame{SessionID: "a", Index: 0, Step: step, Steps: 5, Status: domain.StatusRunning})
		if reached != (step == 5) {
			t.Errorf("step %d: reached = %v", step, reached)
		}
	}
	// Static frame: no steps
	if tr.frame(&domain.Frame{SessionID: "a", Index: 1, Status: domain.StatusPaused}) {
		t.Error("static frame must not count as a waypoint")
	}

	got := tr.summary()
	if len(got) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got))
	}
	if got[0].Frames != 6 || got[0].Waypoints != 1 || got[0].LastIndex != 1 || got[0].Status != domain.StatusPaused {
		t.Errorf("unexpected stats: %+v", got[0])
	}
}

func TestTracker_Events(t *testing.T) {
	tr := newTracker()
	tr.event(&domain.SessionEvent{SessionID: "b", Type: usecases.EventCreated})
	tr.frame(&domain.Frame{SessionID: "a", Index: 3, Step: 2, Steps: 2})

	if got := tr.summary(); len(got) != 2 || got[0].SessionID != "a" || got[1].SessionID != "b" {
		t.Fatalf("summary not ordered by session: %+v", got)
	}

	tr.event(&domain.SessionEvent{SessionID: "a", Type: usecases.EventReset})
	if got := tr.summary(); got[0].Waypoints != 0 || got[0].LastIndex != 0 {
		t.Errorf("reset should clear progress: %+v", got[0])
	}

	tr.event(&domain.SessionEvent{SessionID: "a", Type: usecases.EventDeleted})
	if got := tr.summary(); len(got) != 1 || got[0].SessionID != "b" {
		t.Errorf("deleted session should be dropped: %+v", got)
	}
}
