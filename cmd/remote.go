package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/MyCarrier-DevOps/go-matchcommits/internal/config"
	"github.com/MyCarrier-DevOps/go-matchcommits/internal/git"

	ghprovider "github.com/MyCarrier-DevOps/go-matchcommits/internal/github"

	"github.com/spf13/cobra"
)

var (
	flagToken      string
	flagAppID      int64
	flagAppKey     string
	flagAppKeyPath string
	flagGitHubURL  string
	flagMaxCommits int
)

var remoteCmd = &cobra.Command{
	Use:   "remote owner/repo",
	Short: "Search a GitHub repository's history via API",
	Long: `Find the commit of a GitHub repository nearest in time to the local
Community HEAD (or the local Enterprise HEAD with --reverse). No clone of
the searched repository is required, so nothing is checked out.

Authentication (checked in order):
  1. --token flag or GITHUB_TOKEN env var
  2. --github-app-id + --github-app-key (PEM content) or GH_APP_ID + GH_APP_PRIVATE_KEY env vars
  3. --github-app-id + --github-app-key-path (PEM file) or GH_APP_ID + GH_APP_PRIVATE_KEY_PATH env vars

Examples:
  GITHUB_TOKEN=ghp_xxx go-matchcommits remote odoo/enterprise -b 17.0
  go-matchcommits remote odoo/odoo --reverse -e ../enterprise --token ghp_xxx`,
	Args: cobra.ExactArgs(1),
	RunE: remoteRunE,
}

func init() {
	remoteCmd.Flags().StringVar(&flagToken, "token", "", "GitHub token (or set GITHUB_TOKEN env var)")
	remoteCmd.Flags().Int64Var(&flagAppID, "github-app-id", 0, "GitHub App ID (or set GH_APP_ID env var)")
	remoteCmd.Flags().StringVar(&flagAppKey, "github-app-key", "", "GitHub App private key PEM content (or set GH_APP_PRIVATE_KEY env var)")
	remoteCmd.Flags().StringVar(&flagAppKeyPath, "github-app-key-path", "", "path to GitHub App private key PEM file (or set GH_APP_PRIVATE_KEY_PATH env var)")
	remoteCmd.Flags().StringVar(&flagGitHubURL, "github-url", "", "GitHub API base URL for GitHub Enterprise (or set GITHUB_API_URL env var)")
	remoteCmd.Flags().IntVar(&flagMaxCommits, "max-commits", 5000, "maximum number of commits fetched via API")

	rootCmd.AddCommand(remoteCmd)
}

func remoteRunE(cmd *cobra.Command, args []string) error {
	// 1. Parse owner/repo.
	owner, repo, err := parseOwnerRepo(args[0])
	if err != nil {
		return err
	}

	// 2. Load configuration.
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if flagShowConfig {
		return showConfig(cmd.OutOrStdout(), cfg)
	}

	// 3. Open the local repository holding the reference commit.
	sourceName := communityName
	sourcePath := config.StringValue(cfg.CommunityPath)
	if flagReverse {
		sourceName = enterpriseName
		sourcePath, err = config.ResolveEnterprisePath(cfg)
		if err != nil {
			return err
		}
	}
	source, err := git.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("opening %s repository: %w", sourceName, err)
	}

	// 4. Create the GitHub client and repository.
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := ghprovider.NewClient(ctx, ghprovider.ClientConfig{
		Token:      flagToken,
		AppID:      flagAppID,
		AppKey:     flagAppKey,
		AppKeyPath: flagAppKeyPath,
		BaseURL:    ghprovider.ResolveBaseURL(flagGitHubURL),
		Owner:      owner,
	})
	if err != nil {
		return fmt.Errorf("creating GitHub client: %w", err)
	}
	target := ghprovider.NewGitHubRepository(client, owner, repo,
		ghprovider.WithMaxCommits(flagMaxCommits),
		ghprovider.WithContext(ctx),
	)

	s := sides{source: source, target: target, sourceName: sourceName, targetName: target.Path()}

	// 5. Report only.
	if flagCheck {
		return runCheck(cmd, s, true)
	}

	// 6. Search. A remote history can never be checked out.
	return runSearch(cmd, cfg, s, true)
}

func parseOwnerRepo(s string) (string, string, error) {
	parts := strings.SplitN(s, "/", 3)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format %q, expected owner/repo", s)
	}
	return parts[0], parts[1], nil
}
