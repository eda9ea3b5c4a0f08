package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCategoriesCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List income sources, expense categories and the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := resolveConfig(flags)
			if err != nil {
				return err
			}
			tax, err := cfg.Taxonomy()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Income sources:")
			for _, s := range tax.IncomeSources() {
				fmt.Fprintf(out, "  %s\n", s)
			}
			fmt.Fprintln(out, "Expense categories:")
			for _, c := range tax.Categories() {
				fmt.Fprintf(out, "  %s: %s\n", c.Name, strings.Join(c.SubCategories, ", "))
			}
			fmt.Fprintln(out, "Accounts:")
			tw := newTable(out)
			for _, acct := range tax.Chart() {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", acct.Name, acct.Type, acct.Category)
			}
			return tw.Flush()
		},
	}
}
