package order

import (
	"testing"
	"time"

	"kitabi/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExportRowsOneRowPerBook(t *testing.T) {
	created := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	view := orderView{
		Order: models.Order{
			ID:           primitive.NewObjectID(),
			TotalPayment: 900,
			Status:       models.OrderPending,
			CreatedAt:    created,
		},
		User:   &models.UserRef{Username: "ravi"},
		School: &models.SchoolRef{SchoolName: "Green Valley"},
		Items: []orderLineView{
			{
				CategoryName: "Primary",
				Books: []orderBookView{
					{OrderBookItem: models.OrderBookItem{Quantity: 2, Price: 150}, Name: "Maths 5"},
					{OrderBookItem: models.OrderBookItem{Quantity: 4, Price: 150}, Name: "Science 5"},
				},
			},
		},
	}

	rows := exportRows([]orderView{view})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(rows[0]) != len(exportHeader) {
		t.Fatalf("row width %d != header width %d", len(rows[0]), len(exportHeader))
	}

	if rows[0][2] != "Green Valley" || rows[0][3] != "ravi" {
		t.Errorf("school/agent columns: %v", rows[0][:4])
	}
	if rows[0][5] != "Maths 5" || rows[1][5] != "Science 5" {
		t.Errorf("book columns: %v / %v", rows[0][5], rows[1][5])
	}
	if rows[1][8] != 600.0 {
		t.Errorf("line total = %v, want 600", rows[1][8])
	}
	if rows[0][1] != "2026-05-10" {
		t.Errorf("date column = %v", rows[0][1])
	}
}

func TestExportRowsEmpty(t *testing.T) {
	if rows := exportRows(nil); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
