// Example program demonstrating the go-matchcommits library API.
//
// Run it from an Odoo Community checkout, next to an Enterprise checkout:
//
//	go run github.com/MyCarrier-DevOps/go-matchcommits/example -e ../enterprise
//
// With remote mode (set GITHUB_TOKEN first), Enterprise is read via the API:
//
//	GITHUB_TOKEN=ghp_xxx go run github.com/MyCarrier-DevOps/go-matchcommits/example
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/MyCarrier-DevOps/go-matchcommits/pkg/sdk"
)

func main() {
	enterprise := flag.String("e", "", "Enterprise repository path")
	branch := flag.String("b", "", "branch to search from")
	flag.Parse()

	if *enterprise != "" {
		localMatch(*enterprise, *branch)
	}
	if os.Getenv("GITHUB_TOKEN") != "" {
		remoteMatch(*branch)
	}
}

func localMatch(enterprise, branch string) {
	result, err := sdk.Match(sdk.LocalOptions{
		SearchOptions:  sdk.SearchOptions{Branch: branch},
		CommunityPath:  ".",
		EnterprisePath: enterprise,
	})
	if err != nil {
		log.Fatalf("local match failed: %v", err)
	}
	printResult("Local", result)
}

func remoteMatch(branch string) {
	result, err := sdk.MatchRemote(sdk.RemoteOptions{
		SearchOptions: sdk.SearchOptions{Branch: branch},
		Owner:         "odoo",
		Repo:          "enterprise",
		Token:         os.Getenv("GITHUB_TOKEN"),
		SourcePath:    ".",
	})
	if err != nil {
		log.Fatalf("remote match failed: %v", err)
	}
	printResult("Remote", result)
}

func printResult(label string, result *sdk.Result) {
	fmt.Printf("=== %s match ===\n", label)
	fmt.Printf("%-12s %s  %s\n", result.Source, result.Reference.Sha, result.Reference.Title)
	fmt.Printf("%-12s %s  %s\n", result.Target, result.Best.Sha, result.Best.Title)
	fmt.Printf("%-12s %s %s\n", "distance", result.Best.Distance, result.Best.Direction)
	if result.SecondBest != nil {
		fmt.Printf("%-12s %s (%s %s)\n", "second", result.SecondBest.Sha, result.SecondBest.Distance, result.SecondBest.Direction)
	}
	fmt.Println()
}
