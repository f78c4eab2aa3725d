// -- cmd/list.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/sitecheck/internal/suite"
)

func newListCmd() *cobra.Command {
	var showLocators bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lists the steps of the homepage suite in the order they run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, s := range suite.HomePage() {
				fmt.Fprintf(out, "%-45s %s\n", s.Name, s.Description)
				if showLocators {
					for _, q := range s.Locators {
						fmt.Fprintf(out, "    %s\n", q)
					}
				}
			}
			return nil
		},
	}
	listCmd.Flags().BoolVarP(&showLocators, "locators", "l", false, "Also print the XPath locators each step uses.")
	return listCmd
}
