package safety

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

func TestNewCheckIn(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	coord := &model.Coordinate{Latitude: 40.7, Longitude: -74.0}

	c, err := NewCheckIn(userID, "  Central Library  ", 45*time.Minute, coord, now)
	if err != nil {
		t.Fatalf("creating check-in: %v", err)
	}
	if c.Destination != "Central Library" {
		t.Errorf("destination = %q, want trimmed", c.Destination)
	}
	if c.Status != model.CheckInStatusPending {
		t.Errorf("status = %q, want pending", c.Status)
	}
	want := now.Add(45 * time.Minute)
	if !c.ExpectedArrival.Equal(want) {
		t.Errorf("expected_arrival = %v, want %v", c.ExpectedArrival, want)
	}
	if c.CheckInTime != nil {
		t.Error("new check-in should not carry check_in_time")
	}
	if c.Latitude == nil || *c.Latitude != 40.7 {
		t.Errorf("latitude = %v, want 40.7", c.Latitude)
	}
}

func TestNewCheckIn_validation(t *testing.T) {
	now := time.Now()
	if _, err := NewCheckIn(uuid.New(), "   ", time.Hour, nil, now); !errors.Is(err, common.ErrValidation) {
		t.Errorf("blank destination: got %v, want ErrValidation", err)
	}
	if _, err := NewCheckIn(uuid.New(), "Home", 0, nil, now); !errors.Is(err, common.ErrValidation) {
		t.Errorf("zero duration: got %v, want ErrValidation", err)
	}
	if _, err := NewCheckIn(uuid.New(), "Home", -time.Minute, nil, now); !errors.Is(err, common.ErrValidation) {
		t.Errorf("negative duration: got %v, want ErrValidation", err)
	}
}

func TestCompleteCheckIn_onTime(t *testing.T) {
	now := time.Now().UTC()
	c, _ := NewCheckIn(uuid.New(), "Home", time.Hour, nil, now)

	done, err := CompleteCheckIn(c, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("completing pending check-in: %v", err)
	}
	if done.Status != model.CheckInStatusCompleted {
		t.Errorf("status = %q, want completed", done.Status)
	}
	if done.CheckInTime == nil {
		t.Error("completion should stamp check_in_time")
	}
}

func TestCompleteCheckIn_lateStillCompletes(t *testing.T) {
	now := time.Now().UTC()
	c, _ := NewCheckIn(uuid.New(), "Home", 15*time.Minute, nil, now)

	// Well past expected_arrival but still pending.
	done, err := CompleteCheckIn(c, now.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("late completion should succeed: %v", err)
	}
	if done.Status != model.CheckInStatusCompleted {
		t.Errorf("status = %q, want completed", done.Status)
	}
}

func TestCheckInTransitionsAreMutuallyExclusive(t *testing.T) {
	now := time.Now().UTC()
	pending, _ := NewCheckIn(uuid.New(), "Home", time.Hour, nil, now)

	completed, err := CompleteCheckIn(pending, now)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CancelCheckIn(completed); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("cancel after complete: got %v, want ErrInvalidState", err)
	}
	if _, err := MarkCheckInMissed(completed); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("miss after complete: got %v, want ErrInvalidState", err)
	}

	cancelled, err := CancelCheckIn(pending)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CompleteCheckIn(cancelled, now); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("complete after cancel: got %v, want ErrInvalidState", err)
	}

	missed, err := MarkCheckInMissed(pending)
	if err != nil {
		t.Fatal(err)
	}
	if missed.Status != model.CheckInStatusMissed {
		t.Errorf("status = %q, want missed", missed.Status)
	}
	if _, err := CompleteCheckIn(missed, now); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("complete after missed: got %v, want ErrInvalidState", err)
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Now().UTC()
	c, _ := NewCheckIn(uuid.New(), "Home", time.Hour, nil, now)

	if IsOverdue(c, now.Add(30*time.Minute)) {
		t.Error("check-in inside its window should not be overdue")
	}
	if IsOverdue(c, c.ExpectedArrival) {
		t.Error("check-in exactly at expected_arrival should not be overdue")
	}
	if !IsOverdue(c, now.Add(2*time.Hour)) {
		t.Error("pending check-in past expected_arrival should be overdue")
	}

	done, _ := CompleteCheckIn(c, now)
	if IsOverdue(done, now.Add(2*time.Hour)) {
		t.Error("completed check-in is never overdue")
	}
}
