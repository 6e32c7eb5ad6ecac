// Package verify infers whether a socket call blocked by timing it.
//
// The classification is a heuristic, not a guarantee: a call that completes
// slowly under genuinely non-blocking conditions (a large copy, a loaded
// host) is reported as having blocked.
package verify

import "time"

// DefaultThreshold is the elapsed time above which a call counts as blocked.
const DefaultThreshold = 1000000 * time.Microsecond

// Reporter receives the verifier's findings.
type Reporter interface {
	Warnf(format string, args ...any)
	Verbosef(format string, args ...any)
}

// Clock supplies wall-clock readings.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads time.Now.
var SystemClock Clock = systemClock{}

// Verdict is the outcome of one Check.
type Verdict struct {
	Elapsed  time.Duration
	Blocked  bool
	Expected bool
}

// Mismatch reports whether the observed behavior disagrees with the
// expectation.
func (v Verdict) Mismatch() bool {
	return v.Blocked != v.Expected
}

func blockWord(blocked bool) string {
	if blocked {
		return "did"
	}
	return "did not"
}

// Verifier times the window between MarkStart and Check.
type Verifier struct {
	Threshold time.Duration
	Clock     Clock
	Report    Reporter

	start time.Time
}

// New returns a verifier using the system clock. A non-positive threshold
// selects DefaultThreshold.
func New(threshold time.Duration, report Reporter) *Verifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Verifier{Threshold: threshold, Clock: SystemClock, Report: report}
}

// MarkStart opens a new timing window.
func (v *Verifier) MarkStart() {
	v.start = v.Clock.Now()
}

// Check closes the window and compares the observed behavior with expected.
// A mismatch is reported as a warning and never aborts the operation.
func (v *Verifier) Check(expected bool) Verdict {
	elapsed := v.Clock.Now().Sub(v.start)
	verdict := Verdict{
		Elapsed:  elapsed,
		Blocked:  elapsed > v.Threshold,
		Expected: expected,
	}
	if v.Report == nil {
		return verdict
	}
	if verdict.Mismatch() {
		v.Report.Warnf("Error - API %s block.", blockWord(verdict.Blocked))
	} else {
		v.Report.Verbosef("API %s block.", blockWord(verdict.Blocked))
	}
	return verdict
}
