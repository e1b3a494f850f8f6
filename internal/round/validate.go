package round

import "time"

// dateLayout is the canonical textual form of a round date.
const dateLayout = "2006-01-02"

// IsValidDate reports whether s is a YYYY-MM-DD string denoting a real
// Gregorian calendar date. Out-of-range months and days are rejected,
// including Feb 29 outside leap years.
func IsValidDate(s string) bool {
	if len(s) != len(dateLayout) {
		return false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return false
	}
	// time.Parse normalizes some overflows; require an exact round-trip.
	return t.Format(dateLayout) == s
}

// IsPositiveInt reports whether n is strictly positive.
func IsPositiveInt(n int) bool {
	return n > 0
}

// IsValidEntry reports whether e is a well-formed Entry.
func IsValidEntry(e Entry) bool {
	return ValidateEntry(e) == nil
}

// ValidateEntry checks the same shape as IsValidEntry but returns a
// *ValidationError naming the failing field. Use it at trust boundaries
// where a malformed entry must abort the operation.
func ValidateEntry(e Entry) error {
	if !IsValidDate(e.Date) {
		return &ValidationError{Field: "date", Reason: "is not a valid YYYY-MM-DD calendar date"}
	}
	if !IsPositiveInt(e.Invitations) {
		return &ValidationError{Field: "invitations", Reason: "must be a positive integer"}
	}
	if !IsPositiveInt(e.MinScore) {
		return &ValidationError{Field: "min_score", Reason: "must be a positive integer"}
	}
	return nil
}
