package match

import (
	"fmt"
	"time"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
)

// windowInactive marks a countdown that has not started (or was reopened).
const windowInactive = -1

// Candidates is the output of one backward traversal.
type Candidates struct {
	// Stack holds the candidates in traversal order, tip first.
	Stack []git.Commit

	// Anomalies holds commits evicted from the stack because an older
	// ancestor was committed after the stack's tip end. Disjoint from Stack.
	Anomalies []git.Commit

	// Visited counts the parents fetched from the repository.
	Visited int
}

// searchWindow bounds a traversal to a fixed number of commits past the
// point where it first went earlier than the reference time.
type searchWindow struct {
	reference time.Time
	size      int
	countdown int
	crossed   bool
}

func newSearchWindow(reference time.Time, size int) *searchWindow {
	return &searchWindow{reference: reference, size: size, countdown: windowInactive}
}

// done reports whether the countdown has run out.
func (w *searchWindow) done() bool {
	return w.countdown == 0
}

// active reports whether the countdown is running.
func (w *searchWindow) active() bool {
	return w.countdown > 0
}

// observe accounts for one traversed commit. It starts the countdown on a
// commit earlier than the reference, reopens the window on a later one, and
// consumes one step. The returned string describes a state change, if any.
func (w *searchWindow) observe(when time.Time) string {
	event := ""
	if when.Before(w.reference) && w.countdown < 0 {
		w.countdown = w.size
		w.crossed = true
		event = "commit date before reference, starting countdown"
	}
	if w.active() && when.After(w.reference) {
		w.countdown = windowInactive
		event = "commit date after reference, resetting countdown"
	}
	w.countdown--
	return event
}

// BuildCandidates walks repo backwards from branch (HEAD when empty) and
// collects the commits around reference.
//
// Each parent is compared with the stack's first entry (the tip end); while
// it was committed later, the stack's last entry is moved to the anomaly
// set. The walk stops when the window counts down to zero or at the root.
// Commits before the first crossing of reference are not bounded.
func (m *Matcher) BuildCandidates(repo git.Repository, branch string, reference time.Time) (Candidates, error) {
	tip, err := resolveTip(repo, branch)
	if err != nil {
		return Candidates{}, err
	}

	m.logger.Debug("starting to build search stack", "tip", tip.ShortSha(), "reference", reference.Format(time.RFC3339))

	stack := []git.Commit{tip}
	var anomalies []git.Commit
	window := newSearchWindow(reference, m.window)
	visited := 0

	for !window.done() {
		next, ok, err := repo.Parent(stack[len(stack)-1])
		if err != nil {
			return Candidates{}, err
		}
		if !ok {
			m.logger.Debug("reached root of history", "visited", visited, "crossed", window.crossed)
			break
		}
		visited++

		m.logger.Debug("next commit",
			"countdown", window.countdown,
			"sha", next.ShortSha(),
			"committed", next.CommittedAt.Format(time.RFC3339),
			"merge", next.IsMerge())

		for len(stack) > 0 && next.CommittedAt.After(stack[0].CommittedAt) {
			evicted := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			m.logger.Debug("commit is older than a descendant, classifying descendant as out-of-order",
				"commit", next.ShortSha(),
				"evicted", evicted.ShortSha(),
				"by", next.CommittedAt.Sub(evicted.CommittedAt).String())
			anomalies = append(anomalies, evicted)
		}

		if event := window.observe(next.CommittedAt); event != "" {
			m.logger.Debug(event, "sha", next.ShortSha())
		}

		stack = append(stack, next)
	}

	return Candidates{Stack: stack, Anomalies: anomalies, Visited: visited}, nil
}

// BuildCandidates runs the traversal with default bounds.
func BuildCandidates(repo git.Repository, branch string, reference time.Time) (Candidates, error) {
	return NewMatcher().BuildCandidates(repo, branch, reference)
}

// resolveTip returns the commit branch names, or HEAD's tip when branch is empty.
func resolveTip(repo git.Repository, branch string) (git.Commit, error) {
	if branch == "" {
		head, err := repo.Head()
		if err != nil {
			return git.Commit{}, err
		}
		if head.Tip == nil || head.Tip.IsEmpty() {
			return git.Commit{}, fmt.Errorf("%w: HEAD has no tip commit", git.ErrUnresolvable)
		}
		return *head.Tip, nil
	}

	tip, err := repo.Resolve(branch)
	if err != nil {
		return git.Commit{}, fmt.Errorf("resolving %q: %w", branch, err)
	}
	return tip, nil
}
