package visit

import (
	"testing"
	"time"

	"kitabi/models"
)

func TestDeriveStatusExplicitWins(t *testing.T) {
	details := []models.VisitDetail{{Date: time.Now()}}
	if got := deriveStatus(details, models.VisitRescheduled); got != models.VisitRescheduled {
		t.Errorf("explicit status ignored: %q", got)
	}
}

func TestDeriveStatusNoDetails(t *testing.T) {
	if got := deriveStatus(nil, ""); got != models.VisitPending {
		t.Errorf("empty log -> %q, want pending", got)
	}
}

func TestDeriveStatusOpenRemarks(t *testing.T) {
	details := []models.VisitDetail{
		{Date: time.Now(), Remarks: "principal unavailable"},
	}
	if got := deriveStatus(details, ""); got != models.VisitPending {
		t.Errorf("remarks -> %q, want pending", got)
	}
}

func TestDeriveStatusNextVisitDate(t *testing.T) {
	details := []models.VisitDetail{
		{Date: time.Now(), NextVisitDate: time.Now().AddDate(0, 0, 7)},
	}
	if got := deriveStatus(details, ""); got != models.VisitRescheduled {
		t.Errorf("next visit date -> %q, want rescheduled", got)
	}
}

func TestDeriveStatusCleanEntryCompletes(t *testing.T) {
	details := []models.VisitDetail{
		{Date: time.Now(), Particulars: "order discussed"},
	}
	if got := deriveStatus(details, ""); got != models.VisitCompleted {
		t.Errorf("clean entry -> %q, want completed", got)
	}
}

// only the latest detail decides; earlier entries don't matter
func TestDeriveStatusLastEntryDecides(t *testing.T) {
	details := []models.VisitDetail{
		{Date: time.Now().AddDate(0, 0, -7), Remarks: "come back next week"},
		{Date: time.Now(), Particulars: "deal closed"},
	}
	if got := deriveStatus(details, ""); got != models.VisitCompleted {
		t.Errorf("got %q, want completed", got)
	}
}

// two creates against a non-completed visit merge into one log
func TestPlanVisitWriteMergesIntoOpenVisit(t *testing.T) {
	open := &models.Visit{
		Status: models.VisitPending,
		VisitDetails: []models.VisitDetail{
			{Date: time.Now().AddDate(0, 0, -3), Particulars: "intro meeting", Remarks: "principal away"},
		},
	}
	incoming := []models.VisitDetail{{Date: time.Now(), Particulars: "follow up"}}

	appendTo, details, status := planVisitWrite(open, incoming, "")
	if !appendTo {
		t.Fatal("open visit not merged")
	}
	if len(details) != 2 {
		t.Fatalf("log length = %d, want 2", len(details))
	}
	if status != models.VisitCompleted {
		t.Errorf("status = %q, want completed", status)
	}
	if len(open.VisitDetails) != 1 {
		t.Errorf("open visit log mutated: %d entries", len(open.VisitDetails))
	}
}

// a create after completion starts a fresh document
func TestPlanVisitWriteStartsFreshAfterCompletion(t *testing.T) {
	done := &models.Visit{
		Status:       models.VisitCompleted,
		VisitDetails: []models.VisitDetail{{Date: time.Now().AddDate(0, -1, 0), Particulars: "closed out"}},
	}
	incoming := []models.VisitDetail{{Date: time.Now(), Particulars: "new term pitch", Remarks: "call back"}}

	appendTo, details, status := planVisitWrite(done, incoming, "")
	if appendTo {
		t.Fatal("completed visit absorbed new details")
	}
	if len(details) != 1 || details[0].Particulars != "new term pitch" {
		t.Fatalf("details = %+v", details)
	}
	if status != models.VisitPending {
		t.Errorf("status = %q, want pending", status)
	}
}

func TestPlanVisitWriteNoOpenVisit(t *testing.T) {
	incoming := []models.VisitDetail{{Date: time.Now(), Particulars: "first contact"}}

	appendTo, details, status := planVisitWrite(nil, incoming, "")
	if appendTo {
		t.Fatal("nothing existed to merge into")
	}
	if len(details) != 1 {
		t.Fatalf("details = %+v", details)
	}
	if status != models.VisitCompleted {
		t.Errorf("status = %q, want completed", status)
	}
}

func TestPlanVisitWriteSequentialCreates(t *testing.T) {
	_, details, status := planVisitWrite(nil,
		[]models.VisitDetail{{Date: time.Now().AddDate(0, 0, -1), Particulars: "drop samples", Remarks: "pending decision"}}, "")
	open := &models.Visit{Status: status, VisitDetails: details}

	appendTo, merged, status := planVisitWrite(open,
		[]models.VisitDetail{{Date: time.Now(), Particulars: "collect order"}}, "")
	if !appendTo {
		t.Fatal("second create did not merge")
	}
	if len(merged) != 2 {
		t.Fatalf("log length = %d, want 2", len(merged))
	}
	if status != models.VisitCompleted {
		t.Errorf("status = %q, want completed", status)
	}
}
