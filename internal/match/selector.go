package match

import (
	"cmp"
	"slices"
	"time"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
)

// SelectClosest ranks candidates by absolute committed-time distance to
// reference and returns the nearest and second-nearest. Anomalies join the
// candidates when referenceOutOfOrder or policy.IncludeAnomalies is set.
//
// The sort is stable: commits at equal distance keep stack order, then
// anomaly order. second is nil when fewer than two candidates survive; no
// survivor at all is ErrNoCandidates. Inputs are not modified.
func SelectClosest(stack, anomalies []git.Commit, reference time.Time, referenceOutOfOrder bool, policy Policy) (git.Commit, *git.Commit, error) {
	if err := policy.Validate(); err != nil {
		return git.Commit{}, nil, err
	}

	pool := make([]git.Commit, 0, len(stack)+len(anomalies))
	pool = append(pool, stack...)
	if referenceOutOfOrder || policy.IncludeAnomalies {
		pool = append(pool, anomalies...)
	}

	switch {
	case policy.ForceAfter:
		pool = slices.DeleteFunc(pool, func(c git.Commit) bool {
			return c.CommittedAt.Before(reference)
		})
	case policy.ForceBefore:
		pool = slices.DeleteFunc(pool, func(c git.Commit) bool {
			return !c.CommittedAt.Before(reference)
		})
	}

	if len(pool) == 0 {
		return git.Commit{}, nil, ErrNoCandidates
	}

	slices.SortStableFunc(pool, func(a, b git.Commit) int {
		return cmp.Compare(Distance(a.CommittedAt, reference), Distance(b.CommittedAt, reference))
	})

	if len(pool) == 1 {
		return pool[0], nil, nil
	}
	second := pool[1]
	return pool[0], &second, nil
}
