package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/essu-water/maintenance-api/internal/model"
)

// ReportRepo provides CRUD operations for maintenance reports.  Reads
// join the assignee's display name from the users table and run the
// confirmation column through the model.ConfirmedFlag scanner so the
// flag is canonical no matter which schema revision wrote it.  All
// timestamp fields are assumed to be stored in UTC.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a new ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// ReportPatch describes a partial update.  Nil pointer means the field
// was omitted from the request; a non-nil pointer replaces the column,
// which for AdminNote includes clearing it to the empty string.  The
// assignee needs a third state (present but empty clears to NULL), hence
// the SetAssignee flag alongside the pointer.
type ReportPatch struct {
	Status      *string
	Priority    *string
	AdminNote   *string
	AssignedTo  *uint64 // consulted only when SetAssignee; nil clears the assignment
	SetAssignee bool
	Confirmed   *bool // already canonicalized by the caller
	ConfirmedAt *time.Time
	ProofPath   *string
}

// Empty reports whether the patch carries nothing to write.  A supplied
// ConfirmedAt on its own does not count: it is only meaningful together
// with a confirmation.
func (p ReportPatch) Empty() bool {
	return p.Status == nil && p.Priority == nil && p.AdminNote == nil &&
		!p.SetAssignee && p.Confirmed == nil && p.ProofPath == nil
}

const reportJoinSelect = `SELECT r.id, r.reporter_name, r.email, r.location, r.issue_type,
 r.priority, r.description, r.image_path, r.status, r.admin_note, r.assigned_to, u.full_name,
 r.completion_proof_path, r.confirmed_by_technician, r.confirmed_at, r.created_at, r.updated_at
 FROM reports r LEFT JOIN users u ON u.id = r.assigned_to`

// scanReport scans one joined row into a model.Report.
func scanReport(s interface{ Scan(...any) error }) (model.Report, error) {
	var (
		rep          model.Report
		imagePath    sql.NullString
		adminNote    sql.NullString
		assignedTo   sql.NullInt64
		assignedName sql.NullString
		proofPath    sql.NullString
		confirmedAt  sql.NullTime
	)
	err := s.Scan(&rep.ID, &rep.ReporterName, &rep.Email, &rep.Location, &rep.IssueType,
		&rep.Priority, &rep.Description, &imagePath, &rep.Status, &adminNote, &assignedTo, &assignedName,
		&proofPath, &rep.Confirmed, &confirmedAt, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return model.Report{}, err
	}
	if imagePath.Valid {
		rep.ImagePath = &imagePath.String
	}
	if adminNote.Valid {
		rep.AdminNote = &adminNote.String
	}
	if assignedTo.Valid {
		id := uint64(assignedTo.Int64)
		rep.AssignedTo = &id
	}
	if assignedName.Valid {
		rep.AssignedToName = &assignedName.String
	}
	if proofPath.Valid {
		rep.CompletionProofPath = &proofPath.String
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		rep.ConfirmedAt = &t
	}
	return rep, nil
}

// ListAll returns every report newest-first with the assignee name joined.
func (r *ReportRepo) ListAll(ctx context.Context) ([]model.Report, error) {
	rows, err := r.db.QueryContext(ctx, reportJoinSelect+" ORDER BY r.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]model.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// ListPublic returns up to limit recent reports whose status is Resolved
// or In Progress, projected to the public-safe field subset.
func (r *ReportRepo) ListPublic(ctx context.Context, limit int) ([]model.PublicReport, error) {
	rows, err := r.db.QueryContext(ctx,
		reportJoinSelect+" WHERE r.status IN (?,?) ORDER BY r.created_at DESC LIMIT ?",
		model.StatusResolved, model.StatusInProgress, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]model.PublicReport, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep.Public())
	}
	return reports, rows.Err()
}

// GetByID fetches a single report with the assignee name joined.  A
// missing id surfaces as sql.ErrNoRows.
func (r *ReportRepo) GetByID(ctx context.Context, id uint64) (model.Report, error) {
	row := r.db.QueryRowContext(ctx, reportJoinSelect+" WHERE r.id = ?", id)
	return scanReport(row)
}

// Create inserts a new report and queries the row back to populate
// generated defaults and timestamps.  The caller has already forced
// status to Pending; the confirmation flag starts false via the column
// default.
func (r *ReportRepo) Create(ctx context.Context, rep *model.Report) error {
	var imagePath any
	if rep.ImagePath != nil {
		imagePath = *rep.ImagePath
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (reporter_name, email, location, issue_type, priority, description, image_path, status)
		 VALUES (?,?,?,?,?,?,?,?)`,
		rep.ReporterName, rep.Email, rep.Location, rep.IssueType, rep.Priority, rep.Description, imagePath, rep.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rep = created
	return nil
}

// Update applies a partial update and returns the fresh row.  An empty
// patch is rejected with ErrNoFields before any statement runs.  When the
// patch confirms the report, confirmed_at is set to the supplied time or
// to now; un-confirming leaves a previously-set confirmed_at in place.
// A missing id surfaces as sql.ErrNoRows from the read-back.
func (r *ReportRepo) Update(ctx context.Context, id uint64, p ReportPatch) (model.Report, error) {
	if p.Empty() {
		return model.Report{}, ErrNoFields
	}

	set := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(clause string, v any) {
		set = append(set, clause)
		args = append(args, v)
	}

	if p.Status != nil {
		add("status=?", *p.Status)
	}
	if p.Priority != nil {
		add("priority=?", *p.Priority)
	}
	if p.AdminNote != nil {
		add("admin_note=?", *p.AdminNote)
	}
	if p.SetAssignee {
		if p.AssignedTo != nil {
			add("assigned_to=?", *p.AssignedTo)
		} else {
			set = append(set, "assigned_to=NULL")
		}
	}
	if p.Confirmed != nil {
		add("confirmed_by_technician=?", model.ConfirmedFlag(*p.Confirmed))
		if *p.Confirmed {
			at := time.Now().UTC()
			if p.ConfirmedAt != nil {
				at = *p.ConfirmedAt
			}
			add("confirmed_at=?", at)
		}
	}
	if p.ProofPath != nil {
		add("completion_proof_path=?", *p.ProofPath)
	}

	query := "UPDATE reports SET " + joinClauses(set) + " WHERE id=?"
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return model.Report{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a report row.  A missing id surfaces as sql.ErrNoRows.
func (r *ReportRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reports WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func joinClauses(set []string) string {
	out := set[0]
	for _, s := range set[1:] {
		out += ", " + s
	}
	return out
}
