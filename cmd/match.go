package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/config"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/logging"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/match"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/output"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	communityName  = "Community"
	enterpriseName = "Enterprise"
)

// sides names which history holds the reference and which is searched.
type sides struct {
	source, target         git.Repository
	sourceName, targetName string
}

func (s sides) reversed() sides {
	return sides{source: s.target, target: s.source, sourceName: s.targetName, targetName: s.sourceName}
}

func matchRunE(cmd *cobra.Command, _ []string) error {
	// 1. Load configuration.
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if flagShowConfig {
		return showConfig(cmd.OutOrStdout(), cfg)
	}

	// 2. Locate and open both repositories.
	enterprisePath, err := config.ResolveEnterprisePath(cfg)
	if err != nil {
		return err
	}
	community, err := git.Open(config.StringValue(cfg.CommunityPath))
	if err != nil {
		return fmt.Errorf("opening %s repository: %w", communityName, err)
	}
	enterprise, err := git.Open(enterprisePath)
	if err != nil {
		return fmt.Errorf("opening %s repository: %w", enterpriseName, err)
	}

	newLogger(cmd).Debug("opened repositories",
		"community", community.WorkingDirectory(),
		"enterprise", enterprise.WorkingDirectory())

	s := sides{source: community, target: enterprise, sourceName: communityName, targetName: enterpriseName}
	if flagReverse {
		s = s.reversed()
	}

	// 3. Report only.
	if flagCheck {
		return runCheck(cmd, s, config.BoolValue(cfg.DryRun))
	}

	// 4. Search and check out.
	return runSearch(cmd, cfg, s, config.BoolValue(cfg.DryRun))
}

// loadConfig layers defaults, the config file and explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir := flagCommunityPath
	if dir == "" {
		dir = "."
	}
	return config.Load(flagConfig, dir, flagOverrides(cmd))
}

// flagOverrides returns a Config holding only the flags set on the command
// line, so that unset flags do not mask config file values.
func flagOverrides(cmd *cobra.Command) *config.Config {
	flags := cmd.Flags()
	c := &config.Config{}
	if flags.Changed("branch") {
		c.Branch = config.StringPtr(flagBranch)
	}
	if flags.Changed("enterprise-path") {
		c.EnterprisePath = config.StringPtr(flagEnterprisePath)
	}
	if flags.Changed("community-path") {
		c.CommunityPath = config.StringPtr(flagCommunityPath)
	}
	if flags.Changed("odoorc-path") {
		c.OdooRC = config.StringPtr(flagOdooRC)
	}
	if flags.Lookup("dry-run") != nil && flags.Changed("dry-run") {
		c.DryRun = config.BoolPtr(flagDryRun)
	}
	if flags.Changed("search-out-of-order") {
		c.SearchOutOfOrder = config.BoolPtr(flagSearchOutOfOrder)
	}
	if flags.Changed("always-after") {
		c.AlwaysAfter = config.BoolPtr(flagAlwaysAfter)
	}
	if flags.Changed("always-before") {
		c.AlwaysBefore = config.BoolPtr(flagAlwaysBefore)
	}
	return c
}

// showConfig prints the effective configuration as YAML.
func showConfig(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// newLogger logs to stderr at --log-level, or at the level -v and -s imply.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := logging.LevelFromVerbosity(flagVerbose, flagSilent)
	if flagLogLevel != "" {
		level = logging.LevelFromString(flagLogLevel)
	}
	return logging.NewLogger(cmd.ErrOrStderr(), level)
}

// textWriter is where human output goes. --silent mutes it unless a dry
// run or verbosity was asked for.
func textWriter(cmd *cobra.Command, dryRun bool) io.Writer {
	if flagSilent && flagVerbose == 0 && !dryRun {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

func sourceHead(s sides) (git.Commit, error) {
	head, err := s.source.Head()
	if err != nil {
		return git.Commit{}, fmt.Errorf("reading %s HEAD: %w", s.sourceName, err)
	}
	if head.Tip == nil || head.Tip.IsEmpty() {
		return git.Commit{}, fmt.Errorf("reading %s HEAD: %w", s.sourceName, git.ErrUnresolvable)
	}
	return *head.Tip, nil
}

// runCheck reports both HEADs and how far apart they are. It never searches.
// Like the search output, it is muted by --silent unless dryRun or
// verbosity is set.
func runCheck(cmd *cobra.Command, s sides, dryRun bool) error {
	reference, err := sourceHead(s)
	if err != nil {
		return err
	}
	head, err := s.target.Head()
	if err != nil {
		return fmt.Errorf("reading %s HEAD: %w", s.targetName, err)
	}
	if head.Tip == nil || head.Tip.IsEmpty() {
		return fmt.Errorf("reading %s HEAD: %w", s.targetName, git.ErrUnresolvable)
	}

	if flagOutput == "json" {
		report := output.NewReport(s.sourceName, s.targetName, head.FriendlyName(), match.Result{
			Reference: reference,
			Best:      *head.Tip,
		})
		return output.WriteJSON(cmd.OutOrStdout(), report)
	}
	if err := checkOutputFormat(); err != nil {
		return err
	}

	w := textWriter(cmd, dryRun)
	verbose := flagVerbose > 0
	if err := output.WriteCommitInfo(w, s.sourceName, reference, verbose); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := output.WriteCommitInfo(w, s.targetName, *head.Tip, verbose); err != nil {
		return err
	}
	return output.WriteComparison(w, reference, *head.Tip, s.targetName, true)
}

// runSearch finds the target commit closest to the source HEAD, reports it
// and checks it out unless dryRun is set.
func runSearch(cmd *cobra.Command, cfg *config.Config, s sides, dryRun bool) error {
	if err := checkOutputFormat(); err != nil {
		return err
	}

	reference, err := sourceHead(s)
	if err != nil {
		return err
	}

	branch := flagCommit
	if branch == "" {
		branch = config.StringValue(cfg.Branch)
	}

	logger := newLogger(cmd)
	if !s.source.IsHeadDetached() {
		logger.Warn("source HEAD is not detached, matching the tip of its branch",
			"repository", s.sourceName)
	}
	matcher := match.NewMatcher(
		match.WithLogger(logger),
		match.WithLineageDepth(*cfg.LineageDepth),
		match.WithWindow(*cfg.Window),
	)
	policy := match.Policy{
		ForceAfter:       config.BoolValue(cfg.AlwaysAfter),
		ForceBefore:      config.BoolValue(cfg.AlwaysBefore),
		IncludeAnomalies: config.BoolValue(cfg.SearchOutOfOrder),
	}

	res, err := matcher.FindClosestCommits(s.source, reference, s.target, branch, policy)
	if err != nil {
		return fmt.Errorf("searching %s history: %w", s.targetName, err)
	}
	if res.ReferenceOutOfOrder {
		logger.Info("reference commit is out of order, out-of-order candidates included",
			"sha", reference.ShortSha())
	}

	if flagOutput == "json" {
		report := output.NewReport(s.sourceName, s.targetName, branch, res)
		if !dryRun {
			if err := s.target.CheckOut(res.Best); err != nil {
				return fmt.Errorf("checking out %s commit: %w", s.targetName, err)
			}
			report.CheckedOut = true
		}
		return output.WriteJSON(cmd.OutOrStdout(), report)
	}

	w := textWriter(cmd, dryRun)
	if err := writeMatch(w, s, branch, res); err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintln(w, "\nDry run; no commits checked out.")
		return nil
	}

	fmt.Fprint(w, "\nChecking out . . . ")
	if err := s.target.CheckOut(res.Best); err != nil {
		fmt.Fprintln(w)
		return fmt.Errorf("checking out %s commit: %w", s.targetName, err)
	}
	fmt.Fprintln(w, "Done.")
	return nil
}

func writeMatch(w io.Writer, s sides, branch string, res match.Result) error {
	verbose := flagVerbose > 0

	if err := output.WriteCommitInfo(w, "Current "+s.sourceName, res.Reference, verbose); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := output.WriteCommitInfo(w, "Closest "+s.targetName, res.Best, verbose); err != nil {
		return err
	}
	if res.SecondBest == nil {
		if err := output.WriteTipNotice(w, branch); err != nil {
			return err
		}
	}
	if err := output.WriteComparison(w, res.Reference, res.Best, s.targetName, true); err != nil {
		return err
	}

	if res.SecondBest != nil && verbose {
		fmt.Fprintln(w)
		if err := output.WriteCommitInfo(w, "Second closest "+s.targetName, *res.SecondBest, verbose); err != nil {
			return err
		}
		if err := output.WriteComparison(w, res.Reference, *res.SecondBest, s.targetName, false); err != nil {
			return err
		}
	}
	return nil
}

func checkOutputFormat() error {
	switch flagOutput {
	case "", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q", flagOutput)
	}
}
