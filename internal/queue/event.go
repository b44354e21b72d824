// Package queue defines message payloads exchanged over the message broker.
package queue

// ReportSubmittedEvent is published when a public report submission is
// persisted.  It carries enough for downstream consumers to notify staff
// without querying the primary database.  Email delivery itself is not
// implemented; the notification consumer records these events until a
// mail sender exists.
type ReportSubmittedEvent struct {
	ReportID     uint64 `json:"report_id"`
	ReporterName string `json:"reporter_name"`
	Email        string `json:"email"`
	Location     string `json:"location"`
	IssueType    string `json:"issue_type"`
	Priority     string `json:"priority"`
	HasPhoto     bool   `json:"has_photo"`
	SubmittedAt  string `json:"submitted_at"`
}

// ReportConfirmedEvent is published when a technician confirms completion
// of a report.  Consumers use it to notify the original reporter.
type ReportConfirmedEvent struct {
	ReportID    uint64 `json:"report_id"`
	Email       string `json:"email"`
	Location    string `json:"location"`
	IssueType   string `json:"issue_type"`
	ConfirmedBy string `json:"confirmed_by"`
	ConfirmedAt string `json:"confirmed_at"`
}
