package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/astral-sh/ruff-action/pkg/artifact"
	"github.com/astral-sh/ruff-action/pkg/checksum"
	"github.com/astral-sh/ruff-action/pkg/integrations/github"
	"github.com/astral-sh/ruff-action/pkg/retry"
	"github.com/astral-sh/ruff-action/pkg/version"
)

// checksumsPolicy allows slow asset hosts more time than API requests get.
var checksumsPolicy = retry.DefaultPolicy().WithMaxRetries(2).WithTimeout(60 * time.Second)

// checksumsCommand creates the checksums command group.
func (c *CLI) checksumsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checksums",
		Short: "Maintain the known checksum table",
	}
	cmd.AddCommand(c.checksumsUpdateCommand())
	return cmd
}

// checksumsUpdateCommand creates "checksums update", which downloads the
// .sha256 asset of every release artifact missing from the table file.
func (c *CLI) checksumsUpdateCommand() *cobra.Command {
	var in inputs

	cmd := &cobra.Command{
		Use:   "update <file>",
		Short: "Record the checksums of all published release artifacts",
		Long: `Record the checksums of all published release artifacts.

Entries already present in the file are kept; only new artifacts are
downloaded. The newest release tag is printed and, on a runner, written to
the "latest-version" step output.`,
		Example: `  ruff-action checksums update pkg/checksum/known_checksums.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runChecksumsUpdate(cmd, &in, args[0])
		},
	}

	in.addGitHubFlags(cmd)
	return cmd
}

func (c *CLI) runChecksumsUpdate(cmd *cobra.Command, in *inputs, file string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	apiCache, err := newAPICache(ctx, in.cacheURL, in.cacheTTL > 0)
	if err != nil {
		return err
	}
	defer apiCache.Close()

	retrier := retry.New(checksumsPolicy, logger)
	catalog := github.NewClient(github.Options{
		Token:    in.token,
		BaseURL:  in.apiURL,
		Cache:    apiCache,
		CacheTTL: in.cacheTTL,
		Retrier:  retrier,
		Logger:   logger,
	})

	table, err := checksum.Load(file)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Listing releases...")
	spinner.Start()
	releases, err := catalog.ListReleases(ctx)
	spinner.Stop()
	if err != nil {
		return err
	}

	urls := checksumURLs(releases)
	printInfo("Found %d checksum assets in %d releases", len(urls), len(releases))

	prog := newProgress(logger)
	added, err := table.Record(ctx, artifact.NewAssetClient(in.token), retrier, logger, urls)
	if added > 0 {
		if saveErr := table.Save(file); saveErr != nil && err == nil {
			err = saveErr
		}
	}
	if err != nil {
		return err
	}
	prog.done("Recorded checksums")

	if added == 0 {
		printSuccess("%s is up to date (%d entries)", file, table.Len())
	} else {
		printSuccess("Added %d checksums to %s (%d entries)", added, file, table.Len())
	}

	latest := version.Newest(github.Tags(releases))
	printKeyValue("latest-version", latest)
	_, err = setOutput("latest-version", latest)
	return err
}

// checksumURLs returns the download URLs of all .sha256 assets.
func checksumURLs(releases []github.Release) []string {
	var urls []string
	for _, r := range releases {
		for _, a := range r.Assets {
			if strings.HasSuffix(a.Name, ".sha256") {
				urls = append(urls, a.BrowserDownloadURL)
			}
		}
	}
	return urls
}
