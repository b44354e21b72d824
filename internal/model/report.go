package model

import (
	"time"
)

// Report statuses and priorities.  Creation always starts a report at
// StatusPending; the public board only shows StatusResolved and
// StatusInProgress.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Report represents a maintenance ticket as stored in the `reports`
// table.  Optional columns are pointers so that null survives the round
// trip to JSON.  AssignedToName is not a column; it is joined from the
// assignee's user record on read.
type Report struct {
	ID                  uint64        `json:"id"`
	ReporterName        string        `json:"reporter_name"`
	Email               string        `json:"email"`
	Location            string        `json:"location"`
	IssueType           string        `json:"issue_type"`
	Priority            string        `json:"priority"`
	Description         string        `json:"description"`
	ImagePath           *string       `json:"image_path"`
	Status              string        `json:"status"`
	AdminNote           *string       `json:"admin_note"`
	AssignedTo          *uint64       `json:"assigned_to"`
	AssignedToName      *string       `json:"assigned_to_name"`
	CompletionProofPath *string       `json:"completion_proof_path"`
	Confirmed           ConfirmedFlag `json:"confirmed_by_technician"`
	ConfirmedAt         *time.Time    `json:"confirmed_at"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// PublicReport is the field subset exposed on the unauthenticated board.
// Admin notes, assignment and proof images stay internal.
type PublicReport struct {
	ID           uint64    `json:"id"`
	ReporterName string    `json:"reporter_name"`
	Email        string    `json:"email"`
	Location     string    `json:"location"`
	IssueType    string    `json:"issue_type"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns the public-safe projection of a report.
func (r Report) Public() PublicReport {
	return PublicReport{
		ID:           r.ID,
		ReporterName: r.ReporterName,
		Email:        r.Email,
		Location:     r.Location,
		IssueType:    r.IssueType,
		Priority:     r.Priority,
		Status:       r.Status,
		Description:  r.Description,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
