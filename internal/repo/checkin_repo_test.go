package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/safehaven/server/internal/common"
	"github.com/safehaven/server/internal/model"
)

func TestCheckInTerminate_CompleteSetsCheckInTime(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepo(db)
	id, userID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE check_ins`).
		WithArgs(id.String(), userID.String(), model.CheckInStatusCompleted, now, model.CheckInStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Terminate(context.Background(), id, userID, model.CheckInStatusCompleted, &now); err != nil {
		t.Fatalf("Terminate error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCheckInTerminate_CancelLeavesCheckInTimeNull(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepo(db)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE check_ins`).
		WithArgs(id.String(), userID.String(), model.CheckInStatusCancelled, nil, model.CheckInStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Terminate(context.Background(), id, userID, model.CheckInStatusCancelled, nil); err != nil {
		t.Fatalf("Terminate error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCheckInTerminate_FirstWriterWins(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepo(db)

	// The record exists but already left pending: another caller got there
	// first.
	mock.ExpectExec(`UPDATE check_ins`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.Terminate(context.Background(), uuid.New(), uuid.New(), model.CheckInStatusMissed, nil)
	if !errors.Is(err, common.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestCheckInTerminate_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepo(db)

	mock.ExpectExec(`UPDATE check_ins`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.Terminate(context.Background(), uuid.New(), uuid.New(), model.CheckInStatusCompleted, nil)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCheckInListOverduePending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepo(db)
	now := time.Now().UTC()
	id, userID := uuid.New(), uuid.New()

	cols := []string{"id", "user_id", "destination", "expected_arrival", "check_in_time", "status", "latitude", "longitude", "created_at"}
	mock.ExpectQuery(`SELECT .+ FROM check_ins`).
		WithArgs(model.CheckInStatusPending, now, 100).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(id.String(), userID.String(), "Library", now.Add(-time.Hour), nil, model.CheckInStatusPending, nil, nil, now.Add(-2*time.Hour)))

	got, err := repo.ListOverduePending(context.Background(), now, 100)
	if err != nil {
		t.Fatalf("ListOverduePending error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d check-ins, want 1", len(got))
	}
	if got[0].ID != id || got[0].Destination != "Library" {
		t.Errorf("unexpected check-in: %+v", got[0])
	}
	if got[0].CheckInTime != nil {
		t.Error("pending check-in should carry no check_in_time")
	}
}

func TestCheckInGetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM check_ins`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
