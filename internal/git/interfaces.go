package git

import "errors"

var (
	// ErrUnresolvable is returned when a branch, tag or commit name cannot
	// be resolved to a commit.
	ErrUnresolvable = errors.New("unresolvable reference")

	// ErrReadOnly is returned by backends that cannot change a working tree.
	ErrReadOnly = errors.New("repository is read-only")
)

// Repository provides the first-parent view of a commit history.
// This is the key abstraction point for testing and backend swapping.
// Merge commits are traversed through their first parent only.
type Repository interface {
	// Path returns the path to the .git directory (or a remote identifier).
	Path() string

	// WorkingDirectory returns the path to the working directory.
	WorkingDirectory() string

	// IsHeadDetached returns true if HEAD is not pointing to a branch.
	IsHeadDetached() bool

	// Head returns the reference HEAD points at, with its tip commit.
	Head() (Branch, error)

	// Resolve returns the commit a branch, tag, SHA or revision names.
	// Failures wrap ErrUnresolvable.
	Resolve(name string) (Commit, error)

	// Parent returns the primary parent of c. The boolean is false when c
	// is a root commit.
	Parent(c Commit) (Commit, bool, error)

	// CheckOut detaches the working tree at the given commit.
	CheckOut(c Commit) error
}
