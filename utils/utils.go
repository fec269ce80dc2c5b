package utils

import (
	rndm "math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	"kitabi/globals"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeZone canonicalizes a zone name: whitespace stripped, upper-cased.
// "  north  Zone " and "NORTHZONE" refer to the same territory.
func NormalizeZone(zone string) string {
	return strings.ToUpper(whitespaceRe.ReplaceAllString(zone, ""))
}

var hexRunes = []rune("0123456789abcdef")

// RandomHex returns a random hex string of length n.
func RandomHex(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = hexRunes[rndm.Intn(len(hexRunes))]
	}
	return string(b)
}

// GetUserIDFromRequest pulls the authenticated user id out of the request
// context. Empty when the request was not authenticated.
func GetUserIDFromRequest(r *http.Request) string {
	if v, ok := r.Context().Value(globals.UserIDKey).(string); ok {
		return v
	}
	return ""
}

func GetRoleFromRequest(r *http.Request) string {
	if v, ok := r.Context().Value(globals.RoleKey).(string); ok {
		return v
	}
	return ""
}

func GetZoneFromRequest(r *http.Request) string {
	if v, ok := r.Context().Value(globals.ZoneKey).(string); ok {
		return v
	}
	return ""
}

func GetUsernameFromRequest(r *http.Request) string {
	if v, ok := r.Context().Value(globals.UsernameKey).(string); ok {
		return v
	}
	return ""
}

// ParseDate accepts the two date encodings clients send: RFC3339 and
// plain YYYY-MM-DD.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// StartOfDay truncates t to midnight local time.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
