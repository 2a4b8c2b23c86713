package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	gh "github.com/google/go-github/v68/github"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
)

// Compile-time check that GitHubRepository implements git.Repository.
var _ git.Repository = (*GitHubRepository)(nil)

const (
	defaultMaxCommits = 5000
	commitsPerPage    = 100
)

// ErrCommitLimit is returned when a walk needs more commits than the
// configured cap allows.
var ErrCommitLimit = errors.New("GitHub commit limit reached")

// GitHubRepository implements git.Repository using the GitHub API.
// It is read-only: CheckOut always fails with git.ErrReadOnly.
type GitHubRepository struct {
	client     *gh.Client
	owner      string
	repo       string
	ref        string // target ref (branch name, tag, or SHA)
	maxCommits int    // hard cap on commits fetched
	cache      *apiCache
	ctx        context.Context // request context
}

// Option configures a GitHubRepository.
type Option func(*GitHubRepository)

// WithRef sets the ref Head resolves to. Defaults to the repository's
// default branch.
func WithRef(ref string) Option {
	return func(r *GitHubRepository) { r.ref = ref }
}

// WithMaxCommits sets the hard cap on commits fetched from the API.
func WithMaxCommits(n int) Option {
	return func(r *GitHubRepository) {
		if n > 0 {
			r.maxCommits = n
		}
	}
}

// WithContext sets the context used for every API request.
func WithContext(ctx context.Context) Option {
	return func(r *GitHubRepository) {
		if ctx != nil {
			r.ctx = ctx
		}
	}
}

// NewGitHubRepository creates a new GitHubRepository.
func NewGitHubRepository(client *gh.Client, owner, repo string, opts ...Option) *GitHubRepository {
	r := &GitHubRepository{
		client:     client,
		owner:      owner,
		repo:       repo,
		maxCommits: defaultMaxCommits,
		cache:      newCache(),
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *GitHubRepository) Path() string {
	return fmt.Sprintf("github.com/%s/%s", r.owner, r.repo)
}

func (r *GitHubRepository) WorkingDirectory() string {
	return ""
}

var hexPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

func (r *GitHubRepository) IsHeadDetached() bool {
	return hexPattern.MatchString(r.ref)
}

func (r *GitHubRepository) Head() (git.Branch, error) {
	if branch, ok := r.cache.getHead(); ok {
		return *branch, nil
	}

	ref := r.ref
	if ref == "" {
		repoInfo, _, err := r.client.Repositories.Get(r.ctx, r.owner, r.repo)
		if err != nil {
			return git.Branch{}, fmt.Errorf("getting repository info: %w", err)
		}
		ref = repoInfo.GetDefaultBranch()
	}

	if hexPattern.MatchString(ref) {
		return r.detachedHead(ref)
	}

	ghBranch, resp, err := r.client.Repositories.GetBranch(r.ctx, r.owner, r.repo, ref, 0)
	if err != nil {
		if isUnresolvable(err) || (resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound) {
			// Not a branch; tags and short SHAs give a detached HEAD.
			return r.detachedHead(ref)
		}
		return git.Branch{}, fmt.Errorf("getting branch %s: %w", ref, err)
	}

	tip := convertRepoCommit(ghBranch.GetCommit())
	r.cache.putCommit(tip)

	branch := git.Branch{
		Name: git.NewBranchReferenceName(ref),
		Tip:  &tip,
	}
	r.cache.putHead(branch)
	return branch, nil
}

func (r *GitHubRepository) detachedHead(ref string) (git.Branch, error) {
	commit, err := r.fetchCommit(ref)
	if err != nil {
		return git.Branch{}, fmt.Errorf("getting HEAD commit: %w", err)
	}
	branch := git.Branch{
		Name:           git.NewReferenceName("HEAD"),
		Tip:            &commit,
		IsDetachedHead: true,
	}
	r.cache.putHead(branch)
	return branch, nil
}

// Resolve accepts whatever the commits endpoint does: branch and tag names
// or SHAs. "HEAD" resolves through Head.
func (r *GitHubRepository) Resolve(name string) (git.Commit, error) {
	if name == "" || name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return git.Commit{}, err
		}
		return *head.Tip, nil
	}
	if commit, ok := r.cache.getCommit(name); ok {
		return commit, nil
	}
	return r.fetchCommit(name)
}

// Parent serves the primary parent from the cache, filling it a page of
// history at a time.
func (r *GitHubRepository) Parent(c git.Commit) (git.Commit, bool, error) {
	if c.IsRoot() {
		return git.Commit{}, false, nil
	}
	sha := c.PrimaryParent()
	if parent, ok := r.cache.getCommit(sha); ok {
		return parent, true, nil
	}

	if err := r.fetchPage(sha); err != nil {
		return git.Commit{}, false, fmt.Errorf("loading parent of %s: %w", c.ShortSha(), err)
	}
	if parent, ok := r.cache.getCommit(sha); ok {
		return parent, true, nil
	}

	// The page did not start at sha, which only happens if the API
	// reorders history. Fall back to a single lookup.
	parent, err := r.fetchCommit(sha)
	if err != nil {
		return git.Commit{}, false, fmt.Errorf("loading parent of %s: %w", c.ShortSha(), err)
	}
	return parent, true, nil
}

// CheckOut is not supported on a remote repository.
func (r *GitHubRepository) CheckOut(c git.Commit) error {
	return fmt.Errorf("checking out %s in %s: %w", c.ShortSha(), r.Path(), git.ErrReadOnly)
}

// fetchCommit loads one commit by ref or SHA.
func (r *GitHubRepository) fetchCommit(ref string) (git.Commit, error) {
	if err := r.checkLimit(); err != nil {
		return git.Commit{}, err
	}

	ghCommit, _, err := r.client.Repositories.GetCommit(r.ctx, r.owner, r.repo, ref, nil)
	if err != nil {
		if isUnresolvable(err) {
			return git.Commit{}, fmt.Errorf("%w: %q", git.ErrUnresolvable, ref)
		}
		return git.Commit{}, fmt.Errorf("getting commit %s: %w", ref, err)
	}

	commit := convertRepoCommit(ghCommit)
	r.cache.putCommit(commit)
	return commit, nil
}

// fetchPage caches one page of history starting at sha.
func (r *GitHubRepository) fetchPage(sha string) error {
	if err := r.checkLimit(); err != nil {
		return err
	}

	opts := &gh.CommitsListOptions{
		SHA:         sha,
		ListOptions: gh.ListOptions{PerPage: commitsPerPage},
	}
	ghCommits, _, err := r.client.Repositories.ListCommits(r.ctx, r.owner, r.repo, opts)
	if err != nil {
		return fmt.Errorf("listing commits from %s: %w", sha, err)
	}

	for _, ghCommit := range ghCommits {
		r.cache.putCommit(convertRepoCommit(ghCommit))
	}
	return nil
}

func (r *GitHubRepository) checkLimit() error {
	if n := r.cache.size(); n >= r.maxCommits {
		return fmt.Errorf("%w: %d commits fetched from %s", ErrCommitLimit, n, r.Path())
	}
	return nil
}

// isUnresolvable reports whether the API rejected a ref as unknown. GitHub
// answers 422 for malformed SHAs and 404 for missing refs.
func isUnresolvable(err error) bool {
	if IsNotFoundError(err) {
		return true
	}
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// convertRepoCommit converts a GitHub API RepositoryCommit to a git.Commit.
func convertRepoCommit(ghCommit *gh.RepositoryCommit) git.Commit {
	if ghCommit == nil {
		return git.Commit{}
	}

	var parents []string
	for _, p := range ghCommit.Parents {
		parents = append(parents, p.GetSHA())
	}

	var committed, authored time.Time
	var message string
	if c := ghCommit.Commit; c != nil {
		if c.Committer != nil && c.Committer.Date != nil {
			committed = c.Committer.Date.Time
		}
		if c.Author != nil && c.Author.Date != nil {
			authored = c.Author.Date.Time
		}
		message = c.GetMessage()
	}

	return git.Commit{
		Sha:         ghCommit.GetSHA(),
		Parents:     parents,
		CommittedAt: committed,
		AuthoredAt:  authored,
		Message:     message,
	}
}
