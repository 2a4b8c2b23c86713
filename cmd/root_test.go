package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/output"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/testutil"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so tests sharing the
// package-level command do not leak state into each other.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
	for _, c := range []*cobra.Command{rootCmd, remoteCmd} {
		c.PersistentFlags().VisitAll(reset)
		c.Flags().VisitAll(reset)
	}
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, args...)
	return out, err
}

// executeWithStderr is execute that also returns the log output.
func executeWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(t)
	t.Cleanup(func() { resetFlags(t) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func pairArgs(p *testutil.OdooPair, extra ...string) []string {
	return append([]string{"-p", p.Community.Path(), "-e", p.Enterprise.Path()}, extra...)
}

func TestRootCmd_HasExpectedFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	for _, name := range []string{
		"branch", "commit", "reverse", "enterprise-path", "community-path", "odoorc-path",
		"search-out-of-order", "always-after", "always-before", "verbose", "silent",
		"config", "output", "show-config", "check", "log-level",
	} {
		require.NotNil(t, flags.Lookup(name), name)
	}
	require.NotNil(t, rootCmd.Flags().Lookup("dry-run"))
	require.Equal(t, "n", rootCmd.Flags().Lookup("dry-run").Shorthand)
}

func TestRootCmd_HasVersionSubcommand(t *testing.T) {
	found := false
	for _, sub := range rootCmd.Commands() {
		if sub.Name() == "version" {
			found = true
			break
		}
	}
	require.True(t, found, "version subcommand should be registered")
}

func TestRootCmd_DryRun(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "-n")...)
	require.NoError(t, err)
	require.Contains(t, out, "Current Community commit: "+p.CommunityShas[1])
	require.Contains(t, out, "Title: [FIX] account: rounding")
	require.Contains(t, out, "Closest Enterprise commit: "+p.EnterpriseShas[1])
	require.Contains(t, out, "Committed date: 2024-01-09T12:00:00Z")
	require.Contains(t, out, "This Enterprise commit is 1 day(s) older, ensure that this is correct.")
	require.Contains(t, out, "Dry run; no commits checked out.")
	require.NotContains(t, out, "Second closest")
	require.NotContains(t, out, "Authored date")
	require.Equal(t, p.EnterpriseShas[2], p.Enterprise.HeadSha())
}

func TestRootCmd_VerboseShowsSecondClosest(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "-n", "-v")...)
	require.NoError(t, err)
	require.Contains(t, out, "Authored date:")
	require.Contains(t, out, "Second closest Enterprise commit: "+p.EnterpriseShas[0])
	require.Contains(t, out, "This Enterprise commit is 2 day(s) older.")
	require.NotContains(t, out, "2 day(s) older, ensure")
}

func TestRootCmd_ChecksOutClosest(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p)...)
	require.NoError(t, err)
	require.Contains(t, out, "Checking out . . . Done.")
	require.Equal(t, p.EnterpriseShas[1], p.Enterprise.HeadSha())
}

func TestRootCmd_SilentStillChecksOut(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "-s")...)
	require.NoError(t, err)
	require.Empty(t, out)
	require.Equal(t, p.EnterpriseShas[1], p.Enterprise.HeadSha())
}

func TestRootCmd_SilentDryRunPrints(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "-s", "-n")...)
	require.NoError(t, err)
	require.Contains(t, out, "Dry run; no commits checked out.")
}

func TestRootCmd_Reverse(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "-r", "-n")...)
	require.NoError(t, err)
	require.Contains(t, out, "Current Enterprise commit: "+p.EnterpriseShas[2])
	require.Contains(t, out, "Closest Community commit: "+p.CommunityShas[1])
	require.NotContains(t, out, "(This is the tip of the branch")
	require.Contains(t, out, "This Community commit is 5 day(s) older, ensure that this is correct.")
}

func TestRootCmd_AlwaysAfter(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "-A", "-n")...)
	require.NoError(t, err)
	require.Contains(t, out, "Closest Enterprise commit: "+p.EnterpriseShas[2])
	require.Contains(t, out, "(This is the tip of the branch `master`)")
	require.Contains(t, out, "5 day(s) younger")
}

func TestRootCmd_AlwaysAfterAndBeforeConflict(t *testing.T) {
	p := testutil.NewOdooPair(t)

	_, err := execute(t, pairArgs(p, "-A", "-B", "-n")...)
	require.Error(t, err)
	require.Contains(t, err.Error(), "none of the others")
}

func TestRootCmd_CommitTakesPriorityOverBranch(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "-n", "-b", "no-such-branch", "-C", p.EnterpriseShas[0])...)
	require.NoError(t, err)
	require.Contains(t, out, "Closest Enterprise commit: "+p.EnterpriseShas[0])
	require.Contains(t, out, "(This is the tip of the branch `"+p.EnterpriseShas[0]+"`)")
}

func TestRootCmd_UnknownBranch(t *testing.T) {
	p := testutil.NewOdooPair(t)

	_, err := execute(t, pairArgs(p, "-n", "-b", "no-such-branch")...)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no-such-branch")
}

func TestRootCmd_Check(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "--check")...)
	require.NoError(t, err)
	require.Contains(t, out, "Community commit: "+p.CommunityShas[1])
	require.Contains(t, out, "Enterprise commit: "+p.EnterpriseShas[2])
	require.Contains(t, out, "This Enterprise commit is 5 day(s) younger, ensure that this is correct.")
	require.NotContains(t, out, "Closest")
	require.Equal(t, p.EnterpriseShas[2], p.Enterprise.HeadSha())
}

func TestRootCmd_JSONOutput(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "-n", "--output", "json")...)
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, "Community", report.Source)
	require.Equal(t, "Enterprise", report.Target)
	require.Equal(t, "master", report.Branch)
	require.Equal(t, p.EnterpriseShas[1], report.Best.Sha)
	require.NotNil(t, report.Best.DistanceSeconds)
	require.Equal(t, int64(86400), *report.Best.DistanceSeconds)
	require.NotNil(t, report.SecondBest)
	require.False(t, report.CheckedOut)
}

func TestRootCmd_JSONOutputChecksOut(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "--output", "json")...)
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.True(t, report.CheckedOut)
	require.Equal(t, p.EnterpriseShas[1], p.Enterprise.HeadSha())
}

func TestRootCmd_UnknownOutputFormat(t *testing.T) {
	p := testutil.NewOdooPair(t)

	_, err := execute(t, pairArgs(p, "-n", "--output", "xml")...)
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown output format "xml"`)
}

func TestRootCmd_ConfigFileIsOverriddenByFlags(t *testing.T) {
	p := testutil.NewOdooPair(t)
	p.Community.WriteConfig("dry-run: true\nalways-after: true\n")

	out, err := execute(t, pairArgs(p)...)
	require.NoError(t, err)
	require.Contains(t, out, "Closest Enterprise commit: "+p.EnterpriseShas[2])
	require.Contains(t, out, "Dry run; no commits checked out.")

	out, err = execute(t, pairArgs(p, "--dry-run=false")...)
	require.NoError(t, err)
	require.Contains(t, out, "Done.")
	require.Equal(t, p.EnterpriseShas[2], p.Enterprise.HeadSha())
}

func TestRootCmd_EnterpriseFromOdooRC(t *testing.T) {
	p := testutil.NewOdooPair(t)
	dir := t.TempDir()
	enterprise := testutil.NewTestRepoIn(t, filepath.Join(dir, "enterprise"))
	sha := enterprise.AddCommitAt("[FIX] web_studio: views", testutil.PairDay(11))

	rc := filepath.Join(dir, "odoo.rc")
	content := "[options]\naddons_path = " + p.Community.Path() + "/addons," + filepath.Join(dir, "enterprise") + "/\n"
	require.NoError(t, os.WriteFile(rc, []byte(content), 0o644))

	out, err := execute(t, "-p", p.Community.Path(), "-c", rc, "-n")
	require.NoError(t, err)
	require.Contains(t, out, "Closest Enterprise commit: "+sha)
}

func TestRootCmd_NoEnterprisePath(t *testing.T) {
	p := testutil.NewOdooPair(t)
	t.Setenv("ODOO_RC", "")

	_, err := execute(t, "-p", p.Community.Path(), "-n")
	require.Error(t, err)
}

func TestRootCmd_ShowConfig(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "--show-config", "-b", "17.0")...)
	require.NoError(t, err)
	require.Contains(t, out, "branch: \"17.0\"")
	require.Contains(t, out, "window: 200")
	require.Contains(t, out, "lineage-depth: 200")
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	_, err := execute(t, "extra")
	require.Error(t, err)
}

func TestRootCmd_SilentCheck(t *testing.T) {
	p := testutil.NewOdooPair(t)

	out, err := execute(t, pairArgs(p, "--check", "-s")...)
	require.NoError(t, err)
	require.Empty(t, out)

	out, err = execute(t, pairArgs(p, "--check", "-s", "-n")...)
	require.NoError(t, err)
	require.Contains(t, out, "Enterprise commit: "+p.EnterpriseShas[2])

	out, err = execute(t, pairArgs(p, "--check", "-s", "-v")...)
	require.NoError(t, err)
	require.Contains(t, out, "Community commit: "+p.CommunityShas[1])
}

func TestRootCmd_WarnsWhenSourceIsOnBranch(t *testing.T) {
	p := testutil.NewOdooPair(t)

	_, logs, err := executeWithStderr(t, pairArgs(p, "-n")...)
	require.NoError(t, err)
	require.Contains(t, logs, "source HEAD is not detached")
	require.Contains(t, logs, "repository=Community")

	p.Community.Detach(p.CommunityShas[1])
	_, logs, err = executeWithStderr(t, pairArgs(p, "-n")...)
	require.NoError(t, err)
	require.NotContains(t, logs, "source HEAD is not detached")
}

func TestRootCmd_LogLevel(t *testing.T) {
	p := testutil.NewOdooPair(t)

	_, logs, err := executeWithStderr(t, pairArgs(p, "-n", "--log-level", "debug")...)
	require.NoError(t, err)
	require.Contains(t, logs, "opened repositories")
	require.Contains(t, logs, "community="+p.Community.Path())
	require.Contains(t, logs, "starting to build search stack")

	_, logs, err = executeWithStderr(t, pairArgs(p, "-n", "-vv", "--log-level", "error")...)
	require.NoError(t, err)
	require.Empty(t, logs)

	_, logs, err = executeWithStderr(t, pairArgs(p, "-n", "--log-level", "quiet")...)
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestSourceHead_EmptyTip(t *testing.T) {
	repo := &git.MockRepository{
		HeadFunc: func() (git.Branch, error) {
			return git.Branch{Name: git.NewBranchReferenceName("master"), Tip: &git.Commit{}}, nil
		},
	}

	_, err := sourceHead(sides{source: repo, sourceName: "Community"})
	require.ErrorIs(t, err, git.ErrUnresolvable)
	require.Contains(t, err.Error(), "reading Community HEAD")
}
