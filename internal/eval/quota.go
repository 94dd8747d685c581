package eval

// stepQuota counts executed steps against a limit.
//
// One quota guards a single term (MaxCycles); a second one spans all terms
// of an evaluation (MaxTotal). A non-positive limit disables the check.
type stepQuota struct {
	limit   int64
	current int64
}

func newStepQuota(limit int64) *stepQuota {
	return &stepQuota{limit: limit}
}

// check consumes one step and fails once the limit is passed.
func (q *stepQuota) check() error {
	q.current++
	if q.limit > 0 && q.current > q.limit {
		return newError(ErrCodeStepBudget, "exceeded step budget (%d > %d)", q.current, q.limit)
	}
	return nil
}

// remaining returns the steps left, or 0 when the quota is unlimited.
func (q *stepQuota) remaining() int64 {
	if q.limit <= 0 {
		return 0
	}
	return max(q.limit-q.current, 1)
}
