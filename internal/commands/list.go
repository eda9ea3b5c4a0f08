package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bukutani/bukutani/internal/model"
)

func newListCommand(flags *globalFlags) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:   "list <income|expense>",
		Short: "List recorded transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(args[0])
			if err != nil {
				return err
			}
			p, err := pf.period()
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app) error {
				txns, err := a.ledger.Transactions(ctx, a.owner, kind, p)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(txns) == 0 {
					fmt.Fprintf(out, "No %s transactions.\n", kind)
					return nil
				}
				tw := newTable(out)
				if kind == model.KindIncome {
					fmt.Fprintln(tw, "ID\tDATE\tSOURCE\tAMOUNT\tMETHOD\tMEMO")
					for _, t := range txns {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
							t.ID, t.Date.Format(dateTimeFormat), t.Category, money(t.Amount), t.Method, t.Memo)
					}
				} else {
					fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tSUB-CATEGORY\tAMOUNT\tMETHOD\tMEMO")
					for _, t := range txns {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
							t.ID, t.Date.Format(dateTimeFormat), t.Category, t.SubCategory, money(t.Amount), t.Method, t.Memo)
					}
				}
				return tw.Flush()
			})
		},
	}
	pf.register(cmd)
	return cmd
}

func newDeleteCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <income|expense> <id>",
		Short: "Delete a transaction and post its reversing entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(args[0])
			if err != nil {
				return err
			}
			txnID := args[1]

			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app) error {
				ok, err := a.ledger.Reverse(ctx, kind, txnID, a.owner)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s transaction %s; nothing changed.\n", kind, txnID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s and posted its reversal.\n", kind, txnID)
				return nil
			})
		},
	}
	return cmd
}
