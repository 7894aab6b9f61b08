package service

// RunContext carries per-execution grading state: the retry budget per unit,
// the abort flag and the consecutive backend-internal error streak. It is
// created at the start of a run, passed explicitly through the pipeline and
// discarded at the end; it is never persisted.
//
// The pipeline only touches the RunContext between batch join points and
// during single-request retries, so no locking is needed.
type RunContext struct {
	retryLimit int
	retries    map[string]int

	aborted     bool
	abortReason string

	serverErrorStreak    int
	maxServerErrorStreak int
}

// NewRunContext builds run state with the given per-unit retry limit.
func NewRunContext(retryLimit int) *RunContext {
	if retryLimit < 0 {
		retryLimit = 0
	}
	return &RunContext{
		retryLimit: retryLimit,
		retries:    make(map[string]int),
	}
}

// CanRetry reports whether the unit still has retry budget left.
func (r *RunContext) CanRetry(uid string) bool {
	return r.retries[uid] < r.retryLimit
}

// RecordRetry consumes one retry for the unit.
func (r *RunContext) RecordRetry(uid string) {
	r.retries[uid]++
}

// Attempts returns the number of retries already consumed for the unit.
func (r *RunContext) Attempts(uid string) int {
	return r.retries[uid]
}

// Abort marks the run as aborted; the first reason wins.
func (r *RunContext) Abort(reason string) {
	if r.aborted {
		return
	}
	r.aborted = true
	r.abortReason = reason
}

// Aborted reports whether the run has been aborted.
func (r *RunContext) Aborted() bool {
	return r.aborted
}

// AbortReason returns the reason recorded by the first Abort call.
func (r *RunContext) AbortReason() string {
	return r.abortReason
}

// RecordServerError extends the consecutive backend-internal error streak.
func (r *RunContext) RecordServerError() {
	r.serverErrorStreak++
	if r.serverErrorStreak > r.maxServerErrorStreak {
		r.maxServerErrorStreak = r.serverErrorStreak
	}
}

// ResetServerErrors clears the streak after any successful response.
func (r *RunContext) ResetServerErrors() {
	r.serverErrorStreak = 0
}

// MaxServerErrorStreak returns the streak high-water mark for the run report.
func (r *RunContext) MaxServerErrorStreak() int {
	return r.maxServerErrorStreak
}
