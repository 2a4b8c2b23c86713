package testutil

import (
	"testing"
	"time"
)

// OdooPair is a Community and an Enterprise repository whose histories
// interleave in time. The Community HEAD (January 10th) is nearest to the
// second Enterprise commit (January 9th).
type OdooPair struct {
	Community  *TestRepo
	Enterprise *TestRepo

	// CommunityShas and EnterpriseShas are in commit order, oldest first.
	CommunityShas  []string
	EnterpriseShas []string
}

// PairDay returns noon UTC on the given day of January 2024.
func PairDay(d int) time.Time {
	return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
}

// NewOdooPair creates the two repositories, both on branch master.
func NewOdooPair(t testing.TB) *OdooPair {
	t.Helper()

	p := &OdooPair{
		Community:  NewTestRepo(t),
		Enterprise: NewTestRepo(t),
	}
	for _, c := range []struct {
		msg string
		day int
	}{
		{"[ADD] base", 7},
		{"[FIX] account: rounding", 10},
	} {
		p.CommunityShas = append(p.CommunityShas, p.Community.AddCommitAt(c.msg, PairDay(c.day)))
	}
	for _, c := range []struct {
		msg string
		day int
	}{
		{"[ADD] web_enterprise", 8},
		{"[FIX] account_accountant: reconcile", 9},
		{"[IMP] studio: menus", 15},
	} {
		p.EnterpriseShas = append(p.EnterpriseShas, p.Enterprise.AddCommitAt(c.msg, PairDay(c.day)))
	}
	return p
}
