// Package output renders match results for humans and machines.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
)

const day = 24 * time.Hour

// WriteCommitInfo writes the identity and dates of a commit under label.
// The authored date is only shown when verbose is set.
func WriteCommitInfo(w io.Writer, label string, c git.Commit, verbose bool) error {
	fmt.Fprintf(w, "%s commit: %s\n", label, c.Sha)
	fmt.Fprintf(w, "Title: %s\n", c.Summary())
	if verbose {
		fmt.Fprintf(w, "Authored date: %s\n", c.AuthoredAt.Format(time.RFC3339))
	}
	committed := paint(c.CommittedAt.Format(time.RFC3339), UseColor(w), ansiYellow)
	_, err := fmt.Fprintf(w, "Committed date: %s\n", committed)
	return err
}

// WriteComparison writes how far c was committed from the reference, named
// after targetName. Gaps of a day or more are reported in days only and, when
// warn is set, ask the user to double-check the match. On a terminal the
// sentence is coloured by the size of the gap.
func WriteComparison(w io.Writer, reference, c git.Commit, targetName string, warn bool) error {
	line := FormatComparison(reference, c, targetName, warn)
	styles := comparisonStyles(c.CommittedAt.Sub(reference.CommittedAt))
	_, err := fmt.Fprintln(w, paint(line, UseColor(w), styles...))
	return err
}

// FormatComparison returns the sentence written by WriteComparison.
func FormatComparison(reference, c git.Commit, targetName string, warn bool) string {
	diff := c.CommittedAt.Sub(reference.CommittedAt).Abs()
	direction := Direction(reference, c)

	if days := int(diff / day); days > 0 {
		suffix := ""
		if warn {
			suffix = ", ensure that this is correct"
		}
		return fmt.Sprintf("This %s commit is %d day(s) %s%s.", targetName, days, direction, suffix)
	}
	return fmt.Sprintf("This %s commit is %s %s.", targetName, FormatDuration(diff), direction)
}

// Direction is "younger" when c was committed after the reference and
// "older" otherwise.
func Direction(reference, c git.Commit) string {
	if reference.CommittedAt.Before(c.CommittedAt) {
		return "younger"
	}
	return "older"
}

// FormatDuration renders the sub-day part of d as hours, minutes and seconds.
// Hours are omitted when zero. Minutes are omitted below one minute. Seconds
// are always present.
func FormatDuration(d time.Duration) string {
	secs := int64(d.Abs()%day) / int64(time.Second)

	var parts []string
	if h := secs / 3600; h > 0 {
		parts = append(parts, fmt.Sprintf("%d hour(s)", h))
	}
	if secs >= 60 {
		parts = append(parts, fmt.Sprintf("%d minute(s)", secs%3600/60))
	}
	parts = append(parts, fmt.Sprintf("%d second(s)", secs%60))
	return strings.Join(parts, ", ")
}

// WriteTipNotice tells the user the best match has no second-best because it
// is the tip of branch.
func WriteTipNotice(w io.Writer, branch string) error {
	_, err := fmt.Fprintf(w, "(This is the tip of the branch `%s`)\n", branch)
	return err
}
