// Package sdk provides a public Go API for matching commits between two
// histories by commit time. The reference commit is the HEAD of a local
// repository; the searched history is either another local repository (via
// go-git) or a GitHub repository (via the GitHub API).
//
// Basic usage:
//
//	result, err := sdk.Match(sdk.LocalOptions{
//	    CommunityPath:  "/src/odoo",
//	    EnterprisePath: "/src/enterprise",
//	    Branch:         "17.0",
//	})
//	fmt.Println(result.Best.Sha, result.Best.Distance)
//
//	result, err := sdk.MatchRemote(sdk.RemoteOptions{
//	    Owner:      "odoo",
//	    Repo:       "enterprise",
//	    Token:      os.Getenv("GITHUB_TOKEN"),
//	    SourcePath: "/src/odoo",
//	})
package sdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/config"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/match"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/output"

	ghprovider "github.com/MyCarrier-DevOps/go-matchcommits/internal/github"
)

// Search policy errors, re-exported for errors.Is checks.
var (
	ErrNoCandidates      = match.ErrNoCandidates
	ErrConflictingPolicy = match.ErrConflictingPolicy
	ErrUnresolvable      = git.ErrUnresolvable
)

// SearchOptions are the knobs shared by local and remote searches.
type SearchOptions struct {
	// Branch is searched from its tip. Defaults to the configured branch
	// ("master" unless a config file says otherwise).
	Branch string

	// Commit is searched from instead of Branch when set.
	Commit string

	// ConfigPath is a go-matchcommits YAML file. If empty, .matchcommits.yml
	// or matchcommits.yml is auto-detected in the source repository.
	ConfigPath string

	// SearchOutOfOrder keeps out-of-order target commits as candidates even
	// when the reference is in order.
	SearchOutOfOrder bool

	// AlwaysAfter and AlwaysBefore restrict the match to one side of the
	// reference time. They are mutually exclusive.
	AlwaysAfter  bool
	AlwaysBefore bool

	// Logger receives traversal traces. Defaults to discarding them.
	Logger *slog.Logger
}

// LocalOptions configures a search between two local repositories.
type LocalOptions struct {
	SearchOptions

	// CommunityPath defaults to ".".
	CommunityPath string

	// EnterprisePath defaults to the enterprise entry of the odoo.rc
	// addons_path.
	EnterprisePath string

	// OdooRCPath defaults to the ODOO_RC environment variable.
	OdooRCPath string

	// Reverse searches Community for the Enterprise HEAD instead.
	Reverse bool

	// CheckOut detaches the searched repository at the best match.
	CheckOut bool
}

// RemoteOptions configures a search of a GitHub repository's history for
// the HEAD of a local repository. Remote searches never check anything out.
type RemoteOptions struct {
	SearchOptions

	// Owner and Repo name the searched GitHub repository (required).
	Owner string
	Repo  string

	// SourcePath is the local repository holding the reference commit.
	// Defaults to ".".
	SourcePath string

	// Token is a GitHub personal access token or GITHUB_TOKEN.
	Token string

	// AppID with AppKey (PEM content) or AppKeyPath selects GitHub App
	// authentication.
	AppID      int64
	AppKey     string
	AppKeyPath string

	// BaseURL is a custom GitHub API base URL for GitHub Enterprise.
	BaseURL string

	// MaxCommits caps how many commits are fetched from the API.
	MaxCommits int

	// Context bounds every API request. Defaults to context.Background().
	Context context.Context
}

// Commit describes one commit of either history.
type Commit struct {
	Sha         string
	Title       string
	AuthoredAt  time.Time
	CommittedAt time.Time
}

// Candidate is a matched commit with its distance to the reference.
type Candidate struct {
	Commit

	// Distance is the absolute committed-time gap to the reference.
	Distance time.Duration

	// Direction is "younger" when the candidate was committed after the
	// reference and "older" otherwise.
	Direction string
}

// Result holds the outcome of a search.
type Result struct {
	// Source and Target name the two histories, e.g. "Community" and
	// "Enterprise".
	Source string
	Target string

	Reference  Commit
	Best       Candidate
	SecondBest *Candidate // nil when Best is the only candidate

	// ReferenceOutOfOrder reports that the reference was committed before
	// one of its recent ancestors, which widens the candidate set.
	ReferenceOutOfOrder bool

	// CheckedOut reports whether Best was checked out.
	CheckedOut bool

	Candidates int
	Anomalies  int
	Visited    int
}

// Match searches one local repository for the commit closest in time to
// the HEAD of another.
func Match(opts LocalOptions) (*Result, error) {
	overrides := searchOverrides(opts.SearchOptions)
	if opts.CommunityPath != "" {
		overrides.CommunityPath = config.StringPtr(opts.CommunityPath)
	}
	if opts.EnterprisePath != "" {
		overrides.EnterprisePath = config.StringPtr(opts.EnterprisePath)
	}
	if opts.OdooRCPath != "" {
		overrides.OdooRC = config.StringPtr(opts.OdooRCPath)
	}

	communityDir := opts.CommunityPath
	if communityDir == "" {
		communityDir = "."
	}
	cfg, err := config.Load(opts.ConfigPath, communityDir, overrides)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	enterprisePath, err := config.ResolveEnterprisePath(cfg)
	if err != nil {
		return nil, fmt.Errorf("locating enterprise repository: %w", err)
	}

	community, err := git.Open(config.StringValue(cfg.CommunityPath))
	if err != nil {
		return nil, fmt.Errorf("opening community repository: %w", err)
	}
	enterprise, err := git.Open(enterprisePath)
	if err != nil {
		return nil, fmt.Errorf("opening enterprise repository: %w", err)
	}

	s := sides{source: community, target: enterprise, sourceName: "Community", targetName: "Enterprise"}
	if opts.Reverse {
		s = s.reversed()
	}

	res, err := search(s, cfg, opts.SearchOptions)
	if err != nil {
		return nil, err
	}

	if opts.CheckOut {
		best, err := s.target.Resolve(res.Best.Sha)
		if err != nil {
			return nil, fmt.Errorf("reloading best match: %w", err)
		}
		if err := s.target.CheckOut(best); err != nil {
			return nil, fmt.Errorf("checking out %s commit: %w", s.targetName, err)
		}
		res.CheckedOut = true
	}
	return res, nil
}

// MatchRemote searches a GitHub repository's history for the commit closest
// in time to the HEAD of a local repository.
func MatchRemote(opts RemoteOptions) (*Result, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, errors.New("owner and repo are required")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	sourceDir := opts.SourcePath
	if sourceDir == "" {
		sourceDir = "."
	}
	cfg, err := config.Load(opts.ConfigPath, sourceDir, searchOverrides(opts.SearchOptions))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	source, err := git.Open(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("opening source repository: %w", err)
	}

	client, err := ghprovider.NewClient(ctx, ghprovider.ClientConfig{
		Token:      opts.Token,
		AppID:      opts.AppID,
		AppKey:     opts.AppKey,
		AppKeyPath: opts.AppKeyPath,
		BaseURL:    opts.BaseURL,
		Owner:      opts.Owner,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GitHub client: %w", err)
	}

	target := ghprovider.NewGitHubRepository(client, opts.Owner, opts.Repo,
		ghprovider.WithMaxCommits(opts.MaxCommits),
		ghprovider.WithContext(ctx),
	)

	s := sides{source: source, target: target, sourceName: "Local", targetName: target.Path()}
	return search(s, cfg, opts.SearchOptions)
}

// sides names which history holds the reference and which is searched.
type sides struct {
	source, target         git.Repository
	sourceName, targetName string
}

func (s sides) reversed() sides {
	return sides{source: s.target, target: s.source, sourceName: s.targetName, targetName: s.sourceName}
}

func searchOverrides(opts SearchOptions) *config.Config {
	c := &config.Config{}
	if opts.Branch != "" {
		c.Branch = config.StringPtr(opts.Branch)
	}
	if opts.SearchOutOfOrder {
		c.SearchOutOfOrder = config.BoolPtr(true)
	}
	if opts.AlwaysAfter {
		c.AlwaysAfter = config.BoolPtr(true)
	}
	if opts.AlwaysBefore {
		c.AlwaysBefore = config.BoolPtr(true)
	}
	return c
}

// search runs the shared matching pipeline.
func search(s sides, cfg *config.Config, opts SearchOptions) (*Result, error) {
	head, err := s.source.Head()
	if err != nil {
		return nil, fmt.Errorf("reading %s HEAD: %w", s.sourceName, err)
	}
	if head.Tip == nil || head.Tip.IsEmpty() {
		return nil, fmt.Errorf("reading %s HEAD: %w", s.sourceName, git.ErrUnresolvable)
	}

	branch := opts.Commit
	if branch == "" {
		branch = config.StringValue(cfg.Branch)
	}

	matcher := match.NewMatcher(
		match.WithLogger(opts.Logger),
		match.WithLineageDepth(*cfg.LineageDepth),
		match.WithWindow(*cfg.Window),
	)
	policy := match.Policy{
		ForceAfter:       config.BoolValue(cfg.AlwaysAfter),
		ForceBefore:      config.BoolValue(cfg.AlwaysBefore),
		IncludeAnomalies: config.BoolValue(cfg.SearchOutOfOrder),
	}

	res, err := matcher.FindClosestCommits(s.source, *head.Tip, s.target, branch, policy)
	if err != nil {
		return nil, fmt.Errorf("searching %s history: %w", s.targetName, err)
	}
	return buildResult(s, res), nil
}

func buildResult(s sides, res match.Result) *Result {
	r := &Result{
		Source:              s.sourceName,
		Target:              s.targetName,
		Reference:           toCommit(res.Reference),
		Best:                toCandidate(res.Reference, res.Best),
		ReferenceOutOfOrder: res.ReferenceOutOfOrder,
		Candidates:          res.Candidates,
		Anomalies:           res.Anomalies,
		Visited:             res.Visited,
	}
	if res.SecondBest != nil {
		second := toCandidate(res.Reference, *res.SecondBest)
		r.SecondBest = &second
	}
	return r
}

func toCommit(c git.Commit) Commit {
	return Commit{
		Sha:         c.Sha,
		Title:       c.Summary(),
		AuthoredAt:  c.AuthoredAt,
		CommittedAt: c.CommittedAt,
	}
}

func toCandidate(reference, c git.Commit) Candidate {
	return Candidate{
		Commit:    toCommit(c),
		Distance:  match.Distance(reference.CommittedAt, c.CommittedAt),
		Direction: output.Direction(reference, c),
	}
}
