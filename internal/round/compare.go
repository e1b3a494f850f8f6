package round

// Outcome is the result of comparing a newly acquired entry against the
// last-known one. Previous is nil only on a first-ever run.
type Outcome struct {
	Changed  bool
	Previous *Entry
	Current  Entry
}

// Compare decides whether current announces a new round. A nil prev always
// counts as changed; otherwise only the date is compared, because the date
// is the identity key — invitation and score differences under the same
// date are corrections to the same round, not a new one.
//
// Both sides must be valid entries. A malformed side returns a
// *ComparisonError naming it; malformed input is never folded into a
// "no change" or "change" answer.
func Compare(prev *Entry, current Entry) (Outcome, error) {
	if prev != nil {
		if err := ValidateEntry(*prev); err != nil {
			return Outcome{}, &ComparisonError{Side: "previous", Err: err}
		}
	}
	if err := ValidateEntry(current); err != nil {
		return Outcome{}, &ComparisonError{Side: "current", Err: err}
	}

	if prev == nil {
		return Outcome{Changed: true, Current: current}, nil
	}
	return Outcome{
		Changed:  prev.Date != current.Date,
		Previous: prev,
		Current:  current,
	}, nil
}
