// Package match finds, in one commit history, the commit whose committed
// time is nearest to a reference commit from another history.
//
// The search works on the first-parent view of both histories. It runs in
// three steps: the reference commit's lineage is checked for timestamp
// inversions, the target history is walked back from a tip into a bounded
// candidate stack (diverting inversions into an anomaly set), and the
// candidates are ranked by absolute time distance to the reference.
package match

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/logging"
)

const (
	// DefaultLineageDepth is how many first-parent steps the out-of-order
	// check walks from the reference commit.
	DefaultLineageDepth = 200

	// DefaultWindow is how many more commits the stack builder visits after
	// first crossing the reference time.
	DefaultWindow = 200
)

// Matcher runs closest-commit searches. The zero value is not usable;
// create one with NewMatcher.
type Matcher struct {
	logger       *slog.Logger
	lineageDepth int
	window       int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger that receives traversal traces at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithLineageDepth overrides DefaultLineageDepth. Non-positive values are ignored.
func WithLineageDepth(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.lineageDepth = n
		}
	}
}

// WithWindow overrides DefaultWindow. Non-positive values are ignored.
func WithWindow(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.window = n
		}
	}
}

// NewMatcher creates a Matcher with default bounds and a discarding logger.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		logger:       logging.NewDiscardLogger(),
		lineageDepth: DefaultLineageDepth,
		window:       DefaultWindow,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result is the outcome of one search.
type Result struct {
	Reference           git.Commit
	Best                git.Commit
	SecondBest          *git.Commit // nil when only one candidate survived
	ReferenceOutOfOrder bool
	Candidates          int // stack size after traversal
	Anomalies           int // out-of-order commits diverted during traversal
	Visited             int // parents walked in the target history
}

// Distance returns the absolute committed-time distance between the
// reference and best commits.
func (r Result) Distance() time.Duration {
	return Distance(r.Reference.CommittedAt, r.Best.CommittedAt)
}

// Distance returns |a - b|.
func Distance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}

// FindClosestCommits searches target, from branch (or its HEAD when branch
// is empty), for the commits nearest in time to reference. source is the
// history reference belongs to; its lineage decides whether anomalies from
// target are considered.
func (m *Matcher) FindClosestCommits(source git.Repository, reference git.Commit, target git.Repository, branch string, policy Policy) (Result, error) {
	if err := policy.Validate(); err != nil {
		return Result{}, err
	}

	ooo, err := m.DetectOutOfOrder(source, reference)
	if err != nil {
		return Result{}, fmt.Errorf("checking reference lineage: %w", err)
	}
	if policy.IncludeAnomalies && !ooo {
		m.logger.Debug("treating reference as out-of-order because anomalies are included anyway")
	}

	cands, err := m.BuildCandidates(target, branch, reference.CommittedAt)
	if err != nil {
		return Result{}, fmt.Errorf("building candidates: %w", err)
	}

	best, second, err := SelectClosest(cands.Stack, cands.Anomalies, reference.CommittedAt, ooo, policy)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Reference:           reference,
		Best:                best,
		SecondBest:          second,
		ReferenceOutOfOrder: ooo,
		Candidates:          len(cands.Stack),
		Anomalies:           len(cands.Anomalies),
		Visited:             cands.Visited,
	}, nil
}
