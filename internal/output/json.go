package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/match"
)

// CommitReport is the machine-readable view of one commit.
type CommitReport struct {
	Sha         string    `json:"sha"`
	Title       string    `json:"title"`
	AuthoredAt  time.Time `json:"authoredAt"`
	CommittedAt time.Time `json:"committedAt"`

	// Set for matched commits only, relative to the reference.
	DistanceSeconds *int64 `json:"distanceSeconds,omitempty"`
	Direction       string `json:"direction,omitempty"`
}

// Report is written by WriteJSON.
type Report struct {
	Source              string        `json:"source"`
	Target              string        `json:"target"`
	Branch              string        `json:"branch,omitempty"`
	Reference           CommitReport  `json:"reference"`
	Best                CommitReport  `json:"best"`
	SecondBest          *CommitReport `json:"secondBest,omitempty"`
	ReferenceOutOfOrder bool          `json:"referenceOutOfOrder"`
	Candidates          int           `json:"candidates"`
	Anomalies           int           `json:"anomalies"`
	Visited             int           `json:"visited"`
	CheckedOut          bool          `json:"checkedOut"`
}

// NewCommitReport describes c without any distance.
func NewCommitReport(c git.Commit) CommitReport {
	return CommitReport{
		Sha:         c.Sha,
		Title:       c.Summary(),
		AuthoredAt:  c.AuthoredAt,
		CommittedAt: c.CommittedAt,
	}
}

func matchedReport(reference, c git.Commit) CommitReport {
	r := NewCommitReport(c)
	secs := int64(match.Distance(reference.CommittedAt, c.CommittedAt) / time.Second)
	r.DistanceSeconds = &secs
	r.Direction = Direction(reference, c)
	return r
}

// NewReport builds a Report for a search result. source and target name the
// two histories ("Community", "Enterprise").
func NewReport(source, target, branch string, res match.Result) Report {
	r := Report{
		Source:              source,
		Target:              target,
		Branch:              branch,
		Reference:           NewCommitReport(res.Reference),
		Best:                matchedReport(res.Reference, res.Best),
		ReferenceOutOfOrder: res.ReferenceOutOfOrder,
		Candidates:          res.Candidates,
		Anomalies:           res.Anomalies,
		Visited:             res.Visited,
	}
	if res.SecondBest != nil {
		second := matchedReport(res.Reference, *res.SecondBest)
		r.SecondBest = &second
	}
	return r
}

// WriteJSON writes the report as pretty-printed JSON to the writer.
func WriteJSON(w io.Writer, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report to JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON output: %w", err)
	}
	_, err = w.Write([]byte("\n"))
	return err
}
