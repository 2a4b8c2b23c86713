package match

import (
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
)

// DetectOutOfOrder reports whether any of the first lineageDepth ancestors
// of commit was committed strictly later than commit itself, which is what
// a rebase or cherry-pick leaves behind. Reaching the root first is a
// normal false result.
func (m *Matcher) DetectOutOfOrder(repo git.Repository, commit git.Commit) (bool, error) {
	m.logger.Debug("determining if reference commit is out-of-order", "commit", commit.ShortSha())

	next := commit
	for step := 1; step <= m.lineageDepth; step++ {
		parent, ok, err := repo.Parent(next)
		if err != nil {
			return false, err
		}
		if !ok {
			m.logger.Debug("reached root of history", "steps", step-1)
			return false, nil
		}
		if parent.CommittedAt.After(commit.CommittedAt) {
			m.logger.Debug("reference commit is out-of-order",
				"ancestor", parent.ShortSha(),
				"steps", step,
				"ahead_by", parent.CommittedAt.Sub(commit.CommittedAt).String())
			return true, nil
		}
		next = parent
	}

	m.logger.Debug("reference commit is in order", "steps", m.lineageDepth)
	return false, nil
}

// DetectOutOfOrder runs the lineage check with default bounds.
func DetectOutOfOrder(repo git.Repository, commit git.Commit) (bool, error) {
	return NewMatcher().DetectOutOfOrder(repo, commit)
}
