package match

import "errors"

var (
	// ErrNoCandidates is returned when filtering leaves nothing to select.
	ErrNoCandidates = errors.New("no candidate commits")

	// ErrConflictingPolicy is returned when both ForceAfter and ForceBefore
	// are set.
	ErrConflictingPolicy = errors.New("force-after and force-before are mutually exclusive")
)

// Policy controls which candidates the selector may return.
type Policy struct {
	// ForceAfter keeps only candidates committed at or after the reference.
	ForceAfter bool

	// ForceBefore keeps only candidates committed strictly before the reference.
	ForceBefore bool

	// IncludeAnomalies considers out-of-order commits even when the
	// reference commit is itself in order.
	IncludeAnomalies bool
}

// Validate returns ErrConflictingPolicy if both one-sided filters are set.
func (p Policy) Validate() error {
	if p.ForceAfter && p.ForceBefore {
		return ErrConflictingPolicy
	}
	return nil
}
