package cmd

import (
	"encoding/json"
	"testing"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/output"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestParseOwnerRepo(t *testing.T) {
	tests := []struct {
		input     string
		owner     string
		repo      string
		expectErr bool
	}{
		{"odoo/enterprise", "odoo", "enterprise", false},
		{"odoo/enterprise/extra", "", "", true},
		{"odoo", "", "", true},
		{"/enterprise", "", "", true},
		{"odoo/", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			owner, repo, err := parseOwnerRepo(tt.input)
			if tt.expectErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "expected owner/repo")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.owner, owner)
			require.Equal(t, tt.repo, repo)
		})
	}
}

func TestRemoteCmd_HasExpectedFlags(t *testing.T) {
	flags := remoteCmd.Flags()

	require.NotNil(t, flags.Lookup("token"))
	require.NotNil(t, flags.Lookup("github-app-id"))
	require.NotNil(t, flags.Lookup("github-app-key"))
	require.NotNil(t, flags.Lookup("github-app-key-path"))
	require.NotNil(t, flags.Lookup("github-url"))
	require.NotNil(t, flags.Lookup("max-commits"))
	require.Nil(t, flags.Lookup("dry-run"))
}

func TestRemoteCmd_MaxCommitsDefault(t *testing.T) {
	f := remoteCmd.Flags().Lookup("max-commits")
	require.NotNil(t, f)
	require.Equal(t, "5000", f.DefValue)
}

func TestRemoteCmd_IsRegistered(t *testing.T) {
	found := false
	for _, sub := range rootCmd.Commands() {
		if sub.Name() == "remote" {
			found = true
			break
		}
	}
	require.True(t, found, "remote subcommand should be registered")
}

func clearGitHubEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GITHUB_TOKEN", "GH_APP_ID", "GH_APP_PRIVATE_KEY", "GH_APP_PRIVATE_KEY_PATH", "GITHUB_API_URL"} {
		t.Setenv(key, "")
	}
}

func newEnterpriseServer(t *testing.T) *testutil.FakeGitHub {
	return testutil.NewFakeGitHub(t, "odoo", "enterprise",
		testutil.PairDay(15),
		testutil.PairDay(9),
		testutil.PairDay(8),
	)
}

func TestRemoteCmd_SearchesGitHubHistory(t *testing.T) {
	clearGitHubEnv(t)
	p := testutil.NewOdooPair(t)
	fake := newEnterpriseServer(t)

	out, err := execute(t, "remote", "odoo/enterprise", "-p", p.Community.Path(),
		"--token", "ghp_test", "--github-url", fake.URL())
	require.NoError(t, err)
	require.Contains(t, out, "Current Community commit: "+p.CommunityShas[1])
	require.Contains(t, out, "Closest github.com/odoo/enterprise commit: "+fake.Sha(1))
	require.Contains(t, out, "Title: [IMP] commit 1")
	require.Contains(t, out, "Dry run; no commits checked out.")
	require.Equal(t, 1, fake.ListCalls())
}

func TestRemoteCmd_Reverse(t *testing.T) {
	clearGitHubEnv(t)
	p := testutil.NewOdooPair(t)
	fake := testutil.NewFakeGitHub(t, "odoo", "odoo",
		testutil.PairDay(10),
		testutil.PairDay(7),
	)

	out, err := execute(t, "remote", "odoo/odoo", "-r", "-e", p.Enterprise.Path(),
		"--token", "ghp_test", "--github-url", fake.URL())
	require.NoError(t, err)
	require.Contains(t, out, "Current Enterprise commit: "+p.EnterpriseShas[2])
	require.Contains(t, out, "Closest github.com/odoo/odoo commit: "+fake.Sha(0))
}

func TestRemoteCmd_JSONOutput(t *testing.T) {
	clearGitHubEnv(t)
	p := testutil.NewOdooPair(t)
	fake := newEnterpriseServer(t)

	out, err := execute(t, "remote", "odoo/enterprise", "-p", p.Community.Path(),
		"--token", "ghp_test", "--github-url", fake.URL(), "--output", "json")
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, "github.com/odoo/enterprise", report.Target)
	require.Equal(t, fake.Sha(1), report.Best.Sha)
	require.Equal(t, fake.Sha(2), report.SecondBest.Sha)
	require.False(t, report.CheckedOut)
}

func TestRemoteCmd_Check(t *testing.T) {
	clearGitHubEnv(t)
	p := testutil.NewOdooPair(t)
	fake := newEnterpriseServer(t)

	out, err := execute(t, "remote", "odoo/enterprise", "--check", "-p", p.Community.Path(),
		"--token", "ghp_test", "--github-url", fake.URL())
	require.NoError(t, err)
	require.Contains(t, out, "github.com/odoo/enterprise commit: "+fake.Sha(0))
	require.Contains(t, out, "5 day(s) younger")
	require.Zero(t, fake.ListCalls())
}

func TestRemoteCmd_NoAuth(t *testing.T) {
	clearGitHubEnv(t)
	p := testutil.NewOdooPair(t)

	_, err := execute(t, "remote", "odoo/enterprise", "-p", p.Community.Path())
	require.Error(t, err)
	require.Contains(t, err.Error(), "creating GitHub client")
}

func TestRemoteCmd_InvalidRepository(t *testing.T) {
	_, err := execute(t, "remote", "enterprise")
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected owner/repo")
}
