package metrics

import "testing"

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init() // second call must not re-register collectors

	// Recording against initialized collectors must not panic.
	RecordRun("unchanged")
	RecordRun("changed")
	RecordAttempt("ok")
	RecordAttempt("failed")
	RecordNotifyFailure()
	RecordChange(1705276800)
}

func TestRecordBeforeInitIsSafe(t *testing.T) {
	// The helpers are nil-tolerant so library code can record without
	// caring whether the process wired metrics up.
	RecordRun("unchanged")
	RecordAttempt("ok")
	RecordNotifyFailure()
	RecordChange(0)
}
