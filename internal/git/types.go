// Package git provides the history abstraction used by the commit matcher.
// It defines concrete entity types (Commit, Branch, ReferenceName) and a
// Repository interface exposing the first-parent view of a history.
package git

import (
	"strings"
	"time"
)

const (
	localBranchPrefix          = "refs/heads/"
	remoteTrackingBranchPrefix = "refs/remotes/"
	tagRefPrefix               = "refs/tags/"
)

// Commit represents a git commit.
type Commit struct {
	Sha         string
	Parents     []string // parent SHAs; Parents[0] is the primary parent
	CommittedAt time.Time
	AuthoredAt  time.Time
	Message     string
}

// IsMerge returns true if the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// IsRoot returns true if the commit has no parent.
func (c Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// PrimaryParent returns the first parent SHA, or "" for a root commit.
func (c Commit) PrimaryParent() string {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// ShortSha returns the first 8 characters of the SHA.
func (c Commit) ShortSha() string {
	if len(c.Sha) >= 8 {
		return c.Sha[:8]
	}
	return c.Sha
}

// Summary returns the first line of the commit message.
func (c Commit) Summary() string {
	msg := strings.TrimLeft(c.Message, "\n")
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return strings.TrimRight(msg, "\r ")
}

// IsEmpty returns true if the commit has no SHA (zero value).
func (c Commit) IsEmpty() bool {
	return c.Sha == ""
}

// ReferenceName represents a git reference with canonical and friendly forms.
type ReferenceName struct {
	Canonical string // e.g., "refs/heads/master"
	Friendly  string // e.g., "master"
}

// NewReferenceName creates a ReferenceName from a canonical ref path.
func NewReferenceName(canonical string) ReferenceName {
	friendly := canonical

	switch {
	case strings.HasPrefix(canonical, localBranchPrefix):
		friendly = canonical[len(localBranchPrefix):]
	case strings.HasPrefix(canonical, remoteTrackingBranchPrefix):
		friendly = canonical[len(remoteTrackingBranchPrefix):]
	case strings.HasPrefix(canonical, tagRefPrefix):
		friendly = canonical[len(tagRefPrefix):]
	}

	return ReferenceName{
		Canonical: canonical,
		Friendly:  friendly,
	}
}

// NewBranchReferenceName creates a ReferenceName for a local branch.
func NewBranchReferenceName(name string) ReferenceName {
	return NewReferenceName(localBranchPrefix + name)
}

// Branch represents the reference HEAD points at, with its tip commit.
type Branch struct {
	Name           ReferenceName
	Tip            *Commit
	IsDetachedHead bool
}

// FriendlyName returns the friendly name of the branch.
func (b Branch) FriendlyName() string {
	return b.Name.Friendly
}
