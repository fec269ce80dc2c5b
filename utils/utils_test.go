package utils

import (
	"net/http"
	"testing"
	"time"
)

func TestNormalizeZone(t *testing.T) {
	cases := map[string]string{
		"  north  Zone ": "NORTHZONE",
		"NORTHZONE":      "NORTHZONE",
		"south":          "SOUTH",
		"E a s t":        "EAST",
		"":               "",
	}
	for in, want := range cases {
		if got := NormalizeZone(in); got != want {
			t.Errorf("NormalizeZone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDate(t *testing.T) {
	if _, ok := ParseDate(""); ok {
		t.Error("empty string should not parse")
	}
	if _, ok := ParseDate("not-a-date"); ok {
		t.Error("garbage should not parse")
	}

	got, ok := ParseDate("2026-03-15")
	if !ok {
		t.Fatal("plain date should parse")
	}
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("got %v", got)
	}

	if _, ok := ParseDate("2026-03-15T10:30:00Z"); !ok {
		t.Error("RFC3339 should parse")
	}
}

func TestStatusFromMessage(t *testing.T) {
	cases := map[string]int{
		"School with ID x not found":    http.StatusNotFound,
		"Invalid credentials":           http.StatusUnauthorized,
		"Unauthorized: account is deactivated. Please contact admin": http.StatusUnauthorized,
		"Zone already exists":              http.StatusConflict,
		"Forbidden":                        http.StatusForbidden,
		"Insufficient stock for \"Maths\"": http.StatusBadRequest,
	}
	for msg, want := range cases {
		if got := StatusFromMessage(msg); got != want {
			t.Errorf("StatusFromMessage(%q) = %d, want %d", msg, got, want)
		}
	}
}

func TestStartOfDay(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 42, 7, 123, time.Local)
	day := StartOfDay(now)
	if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 || day.Nanosecond() != 0 {
		t.Errorf("not midnight: %v", day)
	}
	if day.Year() != 2026 || day.Month() != 8 || day.Day() != 30 {
		t.Errorf("wrong day: %v", day)
	}
}

func TestRandomHexLength(t *testing.T) {
	for _, n := range []int{1, 4, 16} {
		if got := RandomHex(n); len(got) != n {
			t.Errorf("RandomHex(%d) returned %q", n, got)
		}
	}
}
