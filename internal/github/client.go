// Package github reads commit histories through the GitHub REST API so that
// a remote repository can be searched without cloning it.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Environment variables consulted when ClientConfig leaves a field empty.
const (
	EnvToken      = "GITHUB_TOKEN"
	EnvAppID      = "GH_APP_ID"
	EnvAppKey     = "GH_APP_PRIVATE_KEY"
	EnvAppKeyPath = "GH_APP_PRIVATE_KEY_PATH"
	EnvAPIURL     = "GITHUB_API_URL"
)

// ErrNoCredentials is returned when neither a token nor App credentials are
// available.
var ErrNoCredentials = errors.New("no GitHub authentication provided: set " + EnvToken + ", use --token, or provide --github-app-id with --github-app-key or --github-app-key-path")

// ClientConfig holds the configuration for creating a GitHub API client.
type ClientConfig struct {
	// Token is a personal access token. Falls back to GITHUB_TOKEN.
	Token string

	// AppID with either AppKey (PEM content) or AppKeyPath (PEM file)
	// selects GitHub App authentication. They fall back to GH_APP_ID,
	// GH_APP_PRIVATE_KEY and GH_APP_PRIVATE_KEY_PATH.
	AppID      int64
	AppKey     string
	AppKeyPath string

	// BaseURL is the API root of a GitHub Enterprise server. Falls back to
	// GITHUB_API_URL; empty means github.com.
	BaseURL string

	// Owner selects the App installation to authenticate as.
	Owner string
}

// credentials is a ClientConfig with environment fallbacks applied.
type credentials struct {
	token      string
	appID      int64
	appKey     string
	appKeyPath string
	baseURL    string
	owner      string
}

func (c credentials) hasApp() bool {
	return c.appID != 0 && (c.appKey != "" || c.appKeyPath != "")
}

// privateKey returns the App key, preferring inline PEM content.
func (c credentials) privateKey() ([]byte, error) {
	if c.appKey != "" {
		return []byte(c.appKey), nil
	}
	data, err := os.ReadFile(c.appKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading GitHub App private key: %w", err)
	}
	return data, nil
}

func resolveCredentials(cfg ClientConfig) credentials {
	c := credentials{
		token:      resolveString(cfg.Token, EnvToken),
		appID:      cfg.AppID,
		appKey:     resolveString(cfg.AppKey, EnvAppKey),
		appKeyPath: resolveString(cfg.AppKeyPath, EnvAppKeyPath),
		baseURL:    ResolveBaseURL(cfg.BaseURL),
		owner:      cfg.Owner,
	}
	if c.appID == 0 {
		if v, err := strconv.ParseInt(os.Getenv(EnvAppID), 10, 64); err == nil {
			c.appID = v
		}
	}
	return c
}

// NewClient creates an authenticated GitHub API client.
// A token wins over App credentials.
func NewClient(ctx context.Context, cfg ClientConfig) (*gh.Client, error) {
	c := resolveCredentials(cfg)

	switch {
	case c.token != "":
		return newTokenClient(ctx, c.token, c.baseURL)
	case c.hasApp():
		return newAppClient(ctx, c)
	default:
		return nil, ErrNoCredentials
	}
}

func newTokenClient(ctx context.Context, token, baseURL string) (*gh.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return withBaseURL(gh.NewClient(oauth2.NewClient(ctx, ts)), baseURL)
}

func newAppClient(ctx context.Context, c credentials) (*gh.Client, error) {
	key, err := c.privateKey()
	if err != nil {
		return nil, err
	}

	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, c.appID, key)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub App transport: %w", err)
	}
	if c.baseURL != "" {
		appTransport.BaseURL = c.baseURL
	}

	appClient, err := withBaseURL(gh.NewClient(&http.Client{Transport: appTransport}), c.baseURL)
	if err != nil {
		return nil, err
	}

	installationID, err := findInstallation(ctx, appClient, c.owner)
	if err != nil {
		return nil, err
	}

	installTransport, err := ghinstallation.New(http.DefaultTransport, c.appID, installationID, key)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}
	if c.baseURL != "" {
		installTransport.BaseURL = c.baseURL
	}

	return withBaseURL(gh.NewClient(&http.Client{Transport: installTransport}), c.baseURL)
}

func withBaseURL(client *gh.Client, baseURL string) (*gh.Client, error) {
	if baseURL == "" {
		return client, nil
	}
	client, err := client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("setting enterprise URL: %w", err)
	}
	return client, nil
}

// findInstallation finds the GitHub App installation for the given owner.
func findInstallation(ctx context.Context, client *gh.Client, owner string) (int64, error) {
	opts := &gh.ListOptions{PerPage: 100}

	for {
		installations, resp, err := client.Apps.ListInstallations(ctx, opts)
		if err != nil {
			return 0, fmt.Errorf("listing GitHub App installations: %w", err)
		}

		for _, inst := range installations {
			if inst.GetAccount().GetLogin() == owner {
				return inst.GetID(), nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return 0, fmt.Errorf("no GitHub App installation found for owner %q", owner)
}

// IsNotFoundError reports whether err is an HTTP 404 from the GitHub API.
func IsNotFoundError(err error) bool {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// resolveString returns the flag value if non-empty, otherwise the env var value.
func resolveString(flag, envKey string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envKey)
}

// ResolveBaseURL resolves the GitHub API base URL from the flag value or
// GITHUB_API_URL. Returns "" for github.com.
func ResolveBaseURL(flagValue string) string {
	return resolveString(flagValue, EnvAPIURL)
}
