package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags shared across commands.
var (
	flagBranch           string
	flagCommit           string
	flagReverse          bool
	flagEnterprisePath   string
	flagCommunityPath    string
	flagOdooRC           string
	flagSearchOutOfOrder bool
	flagAlwaysAfter      bool
	flagAlwaysBefore     bool
	flagVerbose          int
	flagLogLevel         string
	flagSilent           bool
	flagConfig           string
	flagOutput           string
	flagShowConfig       bool
	flagCheck            bool
)

// Root-only flags.
var flagDryRun bool

// rootCmd is the top-level command for go-matchcommits.
var rootCmd = &cobra.Command{
	Use:   "go-matchcommits",
	Short: "Match Odoo Community and Enterprise commits by commit time",
	Long: `go-matchcommits finds the Enterprise commit nearest in time to the current
Community HEAD and checks it out, so that odoo can be run as it was when
both commits were merged. Run it from the Community repository, typically
on a detached HEAD.

The Enterprise repository is taken from --enterprise-path or from the
'enterprise' entry of the odoo.rc addons_path (--odoorc-path or $ODOO_RC).`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          matchRunE,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagBranch, "branch", "b", "", "search from the tip of this branch (default: master)")
	pf.StringVarP(&flagCommit, "commit", "C", "", "search from this commit; takes priority over --branch")
	pf.BoolVarP(&flagReverse, "reverse", "r", false, "find the Community commit matching the current Enterprise commit")
	pf.StringVarP(&flagEnterprisePath, "enterprise-path", "e", "", "Enterprise repository (default: read from odoo.rc)")
	pf.StringVarP(&flagCommunityPath, "community-path", "p", "", "Community repository (default: current directory)")
	pf.StringVarP(&flagOdooRC, "odoorc-path", "c", "", "odoo.rc file (default: $ODOO_RC)")
	pf.BoolVarP(&flagSearchOutOfOrder, "search-out-of-order", "o", false, "keep out-of-order target commits even if the reference is in order")
	pf.BoolVarP(&flagAlwaysAfter, "always-after", "A", false, "always pick a target commit at or after the reference")
	pf.BoolVarP(&flagAlwaysBefore, "always-before", "B", false, "always pick a target commit before the reference")
	pf.CountVarP(&flagVerbose, "verbose", "v", "verbosity; repeat for more (-vv traces the search)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level on stderr: debug, info, warn, error or quiet (overrides -v)")
	pf.BoolVarP(&flagSilent, "silent", "s", false, "print nothing unless --dry-run or --verbose is given")
	pf.StringVar(&flagConfig, "config", "", "path to config file (default: auto-detect)")
	pf.StringVar(&flagOutput, "output", "", "output format: json, or empty for text")
	pf.BoolVar(&flagShowConfig, "show-config", false, "display the effective configuration and exit")
	pf.BoolVar(&flagCheck, "check", false, "only report the current state of both repositories")
	rootCmd.MarkFlagsMutuallyExclusive("always-after", "always-before")

	rootCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "do not check out the found commit")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
