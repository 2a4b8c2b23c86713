package testutil

import (
	"fmt"
	"time"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
)

// Compile-time check that Graph implements git.Repository.
var _ git.Repository = (*Graph)(nil)

// Graph is an in-memory linear history implementing git.Repository.
// Commits are indexed from the tip (0) towards the root (Len()-1).
// Parent calls are counted so tests can assert traversal bounds.
type Graph struct {
	chain       []git.Commit
	index       map[string]int
	refs        map[string]int
	failures    map[string]error
	parentCalls int
	checkedOut  string
}

// NewLinearGraph builds a first-parent chain whose committed times are
// given tip first. Author times equal committer times.
func NewLinearGraph(times ...time.Time) *Graph {
	g := &Graph{
		chain:    make([]git.Commit, len(times)),
		index:    make(map[string]int, len(times)),
		refs:     map[string]int{"master": 0},
		failures: make(map[string]error),
	}
	for i, when := range times {
		sha := fmt.Sprintf("%040x", i+1)
		var parents []string
		if i+1 < len(times) {
			parents = []string{fmt.Sprintf("%040x", i+2)}
		}
		g.chain[i] = git.Commit{
			Sha:         sha,
			Parents:     parents,
			CommittedAt: when,
			AuthoredAt:  when,
			Message:     fmt.Sprintf("commit %d\n\nbody", i),
		}
		g.index[sha] = i
	}
	return g
}

// NewDescendingGraph builds a chain of n commits starting at tip and going
// back step per commit.
func NewDescendingGraph(n int, tip time.Time, step time.Duration) *Graph {
	times := make([]time.Time, n)
	for i := range times {
		times[i] = tip.Add(-time.Duration(i) * step)
	}
	return NewLinearGraph(times...)
}

// At returns the commit at index i from the tip.
func (g *Graph) At(i int) git.Commit {
	return g.chain[i]
}

// Len returns the number of commits in the chain.
func (g *Graph) Len() int {
	return len(g.chain)
}

// SetRef makes name resolve to the commit at index i.
func (g *Graph) SetRef(name string, i int) {
	g.refs[name] = i
}

// FailParentOf makes Parent return err when called with the commit at index i.
func (g *Graph) FailParentOf(i int, err error) {
	g.failures[g.chain[i].Sha] = err
}

// ParentCalls returns how many times Parent has been called.
func (g *Graph) ParentCalls() int {
	return g.parentCalls
}

// ResetCalls zeroes the Parent call counter.
func (g *Graph) ResetCalls() {
	g.parentCalls = 0
}

// CheckedOut returns the SHA passed to the last CheckOut call.
func (g *Graph) CheckedOut() string {
	return g.checkedOut
}

func (g *Graph) Path() string {
	return "memory"
}

func (g *Graph) WorkingDirectory() string {
	return ""
}

func (g *Graph) IsHeadDetached() bool {
	return false
}

func (g *Graph) Head() (git.Branch, error) {
	if len(g.chain) == 0 {
		return git.Branch{}, fmt.Errorf("getting HEAD: empty history")
	}
	tip := g.chain[0]
	return git.Branch{
		Name: git.NewBranchReferenceName("master"),
		Tip:  &tip,
	}, nil
}

func (g *Graph) Resolve(name string) (git.Commit, error) {
	if i, ok := g.refs[name]; ok && i < len(g.chain) {
		return g.chain[i], nil
	}
	if i, ok := g.index[name]; ok {
		return g.chain[i], nil
	}
	return git.Commit{}, fmt.Errorf("%w: %q", git.ErrUnresolvable, name)
}

func (g *Graph) Parent(c git.Commit) (git.Commit, bool, error) {
	g.parentCalls++
	if err, ok := g.failures[c.Sha]; ok {
		return git.Commit{}, false, err
	}
	if c.IsRoot() {
		return git.Commit{}, false, nil
	}
	sha := c.PrimaryParent()
	i, ok := g.index[sha]
	if !ok {
		return git.Commit{}, false, fmt.Errorf("loading parent of %s: unknown commit %s", c.ShortSha(), sha)
	}
	return g.chain[i], true, nil
}

func (g *Graph) CheckOut(c git.Commit) error {
	if _, ok := g.index[c.Sha]; !ok {
		return fmt.Errorf("checking out %s: unknown commit", c.ShortSha())
	}
	g.checkedOut = c.Sha
	return nil
}
