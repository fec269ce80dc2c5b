package order

import (
	"strings"
	"testing"
)

func TestCheckStockAllAvailable(t *testing.T) {
	requested := map[string]int{"a": 3, "b": 10}
	available := map[string]bookStock{
		"a": {Name: "Maths 5", Stock: 3},
		"b": {Name: "Science 5", Stock: 50},
	}
	if err := checkStock(requested, available); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckStockShortfall(t *testing.T) {
	requested := map[string]int{"a": 5}
	available := map[string]bookStock{"a": {Name: "Maths 5", Stock: 4}}

	err := checkStock(requested, available)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "Insufficient stock") {
		t.Errorf("message %q should name the shortfall", err)
	}
	if !strings.Contains(err.Error(), "Maths 5") {
		t.Errorf("message %q should name the book", err)
	}
}

func TestCheckStockUnknownBook(t *testing.T) {
	err := checkStock(map[string]int{"missing": 1}, map[string]bookStock{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("message %q should report the missing book", err)
	}
}

func TestBuildOrderItemsSumsQuantities(t *testing.T) {
	bookID := "64a000000000000000000001"
	payload := []orderItemPayload{
		{
			CategoryID: "64b000000000000000000001",
			Books:      []orderBookPayload{{BookID: bookID, Quantity: 2, Price: 150}},
		},
		{
			CategoryID: "64b000000000000000000002",
			Books:      []orderBookPayload{{BookID: bookID, Quantity: 3, Price: 150}},
		},
	}

	items, requested, err := buildOrderItems(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	// the same book across categories counts once against stock
	if requested[bookID] != 5 {
		t.Errorf("requested = %d, want 5", requested[bookID])
	}
}

func TestBuildOrderItemsRejectsBadInput(t *testing.T) {
	if _, _, err := buildOrderItems([]orderItemPayload{{CategoryID: "nope"}}); err == nil {
		t.Error("bad category id should fail")
	}

	payload := []orderItemPayload{{
		CategoryID: "64b000000000000000000001",
		Books:      []orderBookPayload{{BookID: "64a000000000000000000001", Quantity: 0}},
	}}
	if _, _, err := buildOrderItems(payload); err == nil {
		t.Error("zero quantity should fail")
	}

	empty := []orderItemPayload{{CategoryID: "64b000000000000000000001"}}
	if _, _, err := buildOrderItems(empty); err == nil {
		t.Error("category without books should fail")
	}
}
