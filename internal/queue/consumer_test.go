package queue

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatLineSubmitted(t *testing.T) {
	body, _ := json.Marshal(ReportSubmittedEvent{
		ReportID:     12,
		ReporterName: "Juan Dela Cruz",
		Email:        "juan@essu.edu",
		Location:     "Dorm B",
		IssueType:    "Leak",
		Priority:     "High",
		HasPhoto:     true,
		SubmittedAt:  "2026-03-09T10:00:00Z",
	})
	line, err := formatLine(submittedQueueName, body)
	if err != nil {
		t.Fatalf("formatLine: %v", err)
	}
	for _, want := range []string{"Report submitted", "report_id=12", "juan@essu.edu", "priority=High", "photo=true"} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %s", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("line must end with newline")
	}
}

func TestFormatLineConfirmed(t *testing.T) {
	body, _ := json.Marshal(ReportConfirmedEvent{
		ReportID:    12,
		Email:       "juan@essu.edu",
		Location:    "Dorm B",
		IssueType:   "Leak",
		ConfirmedBy: "Tech One",
		ConfirmedAt: "2026-03-10T08:30:00Z",
	})
	line, err := formatLine(confirmedQueueName, body)
	if err != nil {
		t.Fatalf("formatLine: %v", err)
	}
	for _, want := range []string{"Report confirmed", "report_id=12", `confirmed_by="Tech One"`} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %s", want, line)
		}
	}
}

func TestFormatLineErrors(t *testing.T) {
	if _, err := formatLine(submittedQueueName, []byte("{not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if _, err := formatLine("mystery.queue", []byte("{}")); err == nil {
		t.Fatal("expected unknown-queue error")
	}
}
