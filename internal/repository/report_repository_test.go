package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/essu-water/maintenance-api/internal/model"
)

var reportCols = []string{
	"id", "reporter_name", "email", "location", "issue_type",
	"priority", "description", "image_path", "status", "admin_note", "assigned_to", "full_name",
	"completion_proof_path", "confirmed_by_technician", "confirmed_at", "created_at", "updated_at",
}

func reportRow(id uint64, confirmed any, confirmedAt any) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(reportCols).AddRow(
		id, "A", "a@x.com", "Bldg 1", "Leak",
		"Medium", "Pipe burst", nil, "Pending", nil, nil, nil,
		nil, confirmed, confirmedAt, now, now,
	)
}

func newReportRepo(t *testing.T) (*ReportRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return NewReportRepo(db), mock, func() { db.Close() }
}

func TestUpdateEmptyPatch(t *testing.T) {
	repo, mock, done := newReportRepo(t)
	defer done()

	_, err := repo.Update(context.Background(), 7, ReportPatch{})
	if !errors.Is(err, ErrNoFields) {
		t.Fatalf("err = %v, want ErrNoFields", err)
	}
	// No statement may reach the database for an empty patch.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database traffic: %v", err)
	}
}

func TestUpdateConfirmSetsConfirmedAt(t *testing.T) {
	repo, mock, done := newReportRepo(t)
	defer done()

	confirmed := true
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports SET confirmed_by_technician=?, confirmed_at=? WHERE id=?")).
		WithArgs(true, sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	at := time.Now().UTC()
	mock.ExpectQuery("(?s)SELECT .+ FROM reports r LEFT JOIN users u").
		WithArgs(7).
		WillReturnRows(reportRow(7, []byte("1"), at))

	rep, err := repo.Update(context.Background(), 7, ReportPatch{Confirmed: &confirmed})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !rep.Confirmed.Bool() {
		t.Error("confirmed flag not canonical true")
	}
	if rep.ConfirmedAt == nil {
		t.Error("confirmed_at not set after confirmation")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateConfirmHonorsSuppliedTimestamp(t *testing.T) {
	repo, mock, done := newReportRepo(t)
	defer done()

	confirmed := true
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports SET confirmed_by_technician=?, confirmed_at=? WHERE id=?")).
		WithArgs(true, at, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("(?s)SELECT .+ FROM reports r LEFT JOIN users u").
		WithArgs(3).
		WillReturnRows(reportRow(3, true, at))

	if _, err := repo.Update(context.Background(), 3, ReportPatch{Confirmed: &confirmed, ConfirmedAt: &at}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateUnconfirmLeavesConfirmedAt(t *testing.T) {
	repo, mock, done := newReportRepo(t)
	defer done()

	confirmed := false
	// No confirmed_at clause: an earlier confirmation timestamp stays.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports SET confirmed_by_technician=? WHERE id=?")).
		WithArgs(false, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prev := time.Date(2026, 1, 2, 8, 30, 0, 0, time.UTC)
	mock.ExpectQuery("(?s)SELECT .+ FROM reports r LEFT JOIN users u").
		WithArgs(5).
		WillReturnRows(reportRow(5, int64(0), prev))

	rep, err := repo.Update(context.Background(), 5, ReportPatch{Confirmed: &confirmed})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rep.Confirmed.Bool() {
		t.Error("flag should be false")
	}
	if rep.ConfirmedAt == nil || !rep.ConfirmedAt.Equal(prev) {
		t.Errorf("confirmed_at = %v, want untouched %v", rep.ConfirmedAt, prev)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateClearsAssignee(t *testing.T) {
	repo, mock, done := newReportRepo(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports SET assigned_to=NULL WHERE id=?")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("(?s)SELECT .+ FROM reports r LEFT JOIN users u").
		WithArgs(9).
		WillReturnRows(reportRow(9, int64(0), nil))

	rep, err := repo.Update(context.Background(), 9, ReportPatch{SetAssignee: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rep.AssignedTo != nil {
		t.Error("assignment not cleared")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateMissingReport(t *testing.T) {
	repo, mock, done := newReportRepo(t)
	defer done()

	status := "Resolved"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports SET status=? WHERE id=?")).
		WithArgs(status, 404).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("(?s)SELECT .+ FROM reports r LEFT JOIN users u").
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), 404, ReportPatch{Status: &status})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestListAllCanonicalizesFlag(t *testing.T) {
	repo, mock, done := newReportRepo(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(reportCols).
		AddRow(1, "A", "a@x.com", "L1", "Leak", "High", "d", nil, "Resolved", nil, nil, nil, nil, []byte("1"), now, now, now).
		AddRow(2, "B", "b@x.com", "L2", "Clog", "Low", "d", nil, "Pending", nil, nil, nil, nil, "true", nil, now, now).
		AddRow(3, "C", "c@x.com", "L3", "Leak", "Medium", "d", nil, "Pending", nil, nil, nil, nil, int64(0), nil, now, now)
	mock.ExpectQuery("(?s)SELECT .+ FROM reports r LEFT JOIN users u ON u.id = r.assigned_to ORDER BY r.created_at DESC").
		WillReturnRows(rows)

	reports, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("len = %d, want 3", len(reports))
	}
	got := []bool{reports[0].Confirmed.Bool(), reports[1].Confirmed.Bool(), reports[2].Confirmed.Bool()}
	want := []bool{true, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d confirmed = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGetByIDJoinsAssigneeName(t *testing.T) {
	repo, mock, done := newReportRepo(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(reportCols).
		AddRow(4, "A", "a@x.com", "L1", "Leak", "High", "d", nil, "In Progress", "check valve", int64(12), "Terry Tech", nil, int64(0), nil, now, now)
	mock.ExpectQuery("(?s)SELECT .+ FROM reports r LEFT JOIN users u ON u.id = r.assigned_to WHERE r.id =").
		WithArgs(4).
		WillReturnRows(rows)

	rep, err := repo.GetByID(context.Background(), 4)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rep.AssignedTo == nil || *rep.AssignedTo != 12 {
		t.Errorf("assigned_to = %v, want 12", rep.AssignedTo)
	}
	if rep.AssignedToName == nil || *rep.AssignedToName != "Terry Tech" {
		t.Errorf("assigned_to_name = %v, want Terry Tech", rep.AssignedToName)
	}
}

func TestDeleteMissingReport(t *testing.T) {
	repo, mock, done := newReportRepo(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reports WHERE id=?")).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 99); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestListPublicFiltersAndLimits(t *testing.T) {
	repo, mock, done := newReportRepo(t)
	defer done()

	now := time.Now().UTC()
	note := "internal triage note"
	rows := sqlmock.NewRows(reportCols).AddRow(
		1, "A", "a@x.com", "L1", "Leak",
		"High", "d", nil, "Resolved", note, 4, "Tech One",
		"proofs/proof-1.jpg", []byte("1"), now, now, now)
	mock.ExpectQuery("(?s)SELECT .+ FROM reports r LEFT JOIN users u ON u.id = r.assigned_to WHERE r.status IN \\(\\?,\\?\\) ORDER BY r.created_at DESC LIMIT ?").
		WithArgs(model.StatusResolved, model.StatusInProgress, 20).
		WillReturnRows(rows)

	out, err := repo.ListPublic(context.Background(), 20)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(out) != 1 || out[0].Status != "Resolved" {
		t.Fatalf("unexpected result: %+v", out)
	}
	// Projection drops triage-only columns before the rows leave the repo.
	if b, _ := json.Marshal(out); strings.Contains(string(b), "admin_note") || strings.Contains(string(b), "proof") {
		t.Fatalf("public listing leaks internal fields: %s", b)
	}
}
