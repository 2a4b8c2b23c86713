package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrDirtyWorktree is returned by CheckOut when tracked files have
// uncommitted changes.
var ErrDirtyWorktree = errors.New("worktree has uncommitted changes")

// Compile-time check that GoGitRepository implements Repository.
var _ Repository = (*GoGitRepository)(nil)

// GoGitRepository implements Repository using go-git.
type GoGitRepository struct {
	repo    *gogit.Repository
	path    string
	workDir string
}

// Open opens a git repository at the given path.
func Open(path string) (*GoGitRepository, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", path, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	root := wt.Filesystem.Root()

	return &GoGitRepository{
		repo:    r,
		path:    filepath.Join(root, ".git"),
		workDir: root,
	}, nil
}

func (r *GoGitRepository) Path() string {
	return r.path
}

func (r *GoGitRepository) WorkingDirectory() string {
	return r.workDir
}

func (r *GoGitRepository) IsHeadDetached() bool {
	ref, err := r.repo.Head()
	if err != nil {
		return false
	}
	return !ref.Name().IsBranch()
}

func (r *GoGitRepository) Head() (Branch, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Branch{}, fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.commitFromHash(ref.Hash())
	if err != nil {
		return Branch{}, fmt.Errorf("getting HEAD commit: %w", err)
	}

	return Branch{
		Name:           NewReferenceName(string(ref.Name())),
		Tip:            &commit,
		IsDetachedHead: !ref.Name().IsBranch(),
	}, nil
}

// Resolve accepts anything go-git's revision parser does: branch and
// remote branch names, tags, full SHAs and expressions such as "HEAD~3".
func (r *GoGitRepository) Resolve(name string) (Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(name))
	if err != nil {
		return Commit{}, fmt.Errorf("%w: %q: %v", ErrUnresolvable, name, err)
	}
	return r.commitFromHash(*hash)
}

func (r *GoGitRepository) Parent(c Commit) (Commit, bool, error) {
	if c.IsRoot() {
		return Commit{}, false, nil
	}
	parent, err := r.commitFromHash(plumbing.NewHash(c.PrimaryParent()))
	if err != nil {
		return Commit{}, false, fmt.Errorf("loading parent of %s: %w", c.ShortSha(), err)
	}
	return parent, true, nil
}

func (r *GoGitRepository) CheckOut(c Commit) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	changes, err := r.numberOfUncommittedChanges(wt)
	if err != nil {
		return err
	}
	if changes > 0 {
		return fmt.Errorf("checking out %s: %w (%d file(s))", c.ShortSha(), ErrDirtyWorktree, changes)
	}

	err = wt.Checkout(&gogit.CheckoutOptions{
		Hash: plumbing.NewHash(c.Sha),
	})
	if err != nil {
		return fmt.Errorf("checking out %s: %w", c.ShortSha(), err)
	}
	return nil
}

// numberOfUncommittedChanges counts tracked files with staged or unstaged
// modifications. Untracked files do not block a checkout.
//
// go-git computes status by hashing the whole worktree, which takes seconds
// on a checkout the size of Odoo Enterprise. It runs once, right before the
// checkout, never during the search.
func (r *GoGitRepository) numberOfUncommittedChanges(wt *gogit.Worktree) (int, error) {
	status, err := wt.Status()
	if err != nil {
		return 0, fmt.Errorf("getting worktree status: %w", err)
	}

	count := 0
	for _, s := range status {
		if s.Staging == gogit.Untracked && s.Worktree == gogit.Untracked {
			continue
		}
		if s.Staging != gogit.Unmodified || s.Worktree != gogit.Unmodified {
			count++
		}
	}

	return count, nil
}

// commitFromHash loads a go-git commit and converts it to our Commit type.
func (r *GoGitRepository) commitFromHash(hash plumbing.Hash) (Commit, error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return Commit{}, fmt.Errorf("loading commit %s: %w", hash.String(), err)
	}
	return convertCommit(c), nil
}

// convertCommit converts a go-git commit to our Commit type.
func convertCommit(c *object.Commit) Commit {
	parents := make([]string, 0, c.NumParents())
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return Commit{
		Sha:         c.Hash.String(),
		Parents:     parents,
		CommittedAt: c.Committer.When,
		AuthoredAt:  c.Author.When,
		Message:     c.Message,
	}
}
