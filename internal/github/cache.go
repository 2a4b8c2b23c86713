package github

import (
	"sync"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
)

// apiCache holds commits fetched during one run. ListCommits returns whole
// pages, so a single request usually answers the next hundred Parent calls.
type apiCache struct {
	mu sync.RWMutex

	commits    map[string]git.Commit // sha → Commit
	headBranch *git.Branch
}

func newCache() *apiCache {
	return &apiCache{
		commits: make(map[string]git.Commit),
	}
}

func (c *apiCache) getCommit(sha string) (git.Commit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	commit, ok := c.commits[sha]
	return commit, ok
}

func (c *apiCache) putCommit(commit git.Commit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commits[commit.Sha] = commit
}

func (c *apiCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.commits)
}

func (c *apiCache) getHead() (*git.Branch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headBranch, c.headBranch != nil
}

func (c *apiCache) putHead(branch git.Branch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headBranch = &branch
}
