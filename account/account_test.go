package account

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseLedgerRows(t *testing.T) {
	schoolID := primitive.NewObjectID()
	rows := [][]string{
		{"SI No.", "Particulars", "Date", "NO.", "Dr", "Cr", "Amount"},
		{"1", "Opening balance", "2026-04-01", "", "0", "0", "12,500.00"},
		{"2", "Books delivered", "02-04-2026", "INV-17", "4500", "", "17000"},
		{"", "", "", "", "", "", ""},
		{"3", "Payment received", "05/04/2026", "RCPT-3", "", "4500", "12500"},
	}

	entries := parseLedgerRows(rows, schoolID)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	first := entries[0]
	if first.StNo != 1 || first.Particulars != "Opening balance" {
		t.Errorf("first entry: %+v", first)
	}
	if first.Amount != 12500 {
		t.Errorf("comma amount parsed as %v", first.Amount)
	}
	if first.SchoolID != schoolID {
		t.Error("school id not attached")
	}

	second := entries[1]
	if second.Dr != 4500 || second.No != "INV-17" {
		t.Errorf("second entry: %+v", second)
	}
	if second.Date.IsZero() {
		t.Error("dd-mm-yyyy date not parsed")
	}

	third := entries[2]
	if third.Cr != 4500 {
		t.Errorf("third entry: %+v", third)
	}
	if third.Date.IsZero() {
		t.Error("dd/mm/yyyy date not parsed")
	}
}

func TestParseLedgerRowsEmptySheet(t *testing.T) {
	if got := parseLedgerRows(nil, primitive.NewObjectID()); len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
	headerOnly := [][]string{{"SI No.", "Particulars"}}
	if got := parseLedgerRows(headerOnly, primitive.NewObjectID()); len(got) != 0 {
		t.Fatalf("header row should be skipped, got %d", len(got))
	}
}
