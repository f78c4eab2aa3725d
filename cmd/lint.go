// -- cmd/lint.go --
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/sitecheck/internal/browser/offline"
	"github.com/xkilldash9x/sitecheck/internal/observability"
	"github.com/xkilldash9x/sitecheck/internal/suite"
)

func newLintCmd() *cobra.Command {
	var (
		snapshot string
		strict   bool
	)

	lintCmd := &cobra.Command{
		Use:   "lint",
		Short: "Checks that every step locator is valid XPath, optionally against a saved page",
		Long: `Compiles every XPath locator the suite declares. With --snapshot, the
locators are also evaluated against a saved copy of the page and the number
of matching nodes is reported. No browser is started.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			return runLint(cmd, cfg.Browser.StartURL, snapshot, strict)
		},
	}
	lintCmd.Flags().StringVarP(&snapshot, "snapshot", "s", "", "Saved HTML page to count locator matches against.")
	lintCmd.Flags().BoolVar(&strict, "strict", false, "Treat locators that match nothing in the snapshot as errors.")
	return lintCmd
}

func runLint(cmd *cobra.Command, startURL, snapshot string, strict bool) error {
	logger := observability.GetLogger().Named("lint")
	checks := suite.CheckLocators(suite.HomePage())

	if snapshot != "" {
		path, err := homedir.Expand(snapshot)
		if err != nil {
			return fmt.Errorf("failed to expand snapshot path %q: %w", snapshot, err)
		}
		markup, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		d, err := offline.New(startURL, string(markup))
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		if err := suite.CountMatches(cmd.Context(), d, checks); err != nil {
			return err
		}
		logger.Debug("Evaluated locators against snapshot.", zap.String("snapshot", path), zap.Int("locators", len(checks)))
	}

	invalid, unmatched := printChecks(cmd.OutOrStdout(), checks)
	switch {
	case invalid > 0:
		return fmt.Errorf("%d invalid locator(s)", invalid)
	case strict && unmatched > 0:
		return fmt.Errorf("%d locator(s) match nothing in the snapshot", unmatched)
	}
	return nil
}

func printChecks(w io.Writer, checks []suite.LocatorCheck) (invalid, unmatched int) {
	for _, c := range checks {
		switch {
		case c.Err != nil:
			invalid++
			fmt.Fprintf(w, "ERROR  %-45s %s\n       %v\n", c.Step, c.Query, c.Err)
		case c.Matches == 0:
			unmatched++
			fmt.Fprintf(w, "MISS   %-45s %s\n", c.Step, c.Query)
		case c.Matches > 0:
			fmt.Fprintf(w, "OK     %-45s %s (%d)\n", c.Step, c.Query, c.Matches)
		default:
			fmt.Fprintf(w, "OK     %-45s %s\n", c.Step, c.Query)
		}
	}
	fmt.Fprintf(w, "\n%d locator(s), %d invalid, %d unmatched\n", len(checks), invalid, unmatched)
	return invalid, unmatched
}
