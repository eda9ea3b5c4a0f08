package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bukutani/bukutani/internal/report"
)

func newJournalCommand(flags *globalFlags) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the general journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.period()
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app) error {
				lines, err := a.ledger.Journal(ctx, a.owner, p)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(lines) == 0 {
					fmt.Fprintln(out, "Journal is empty.")
					return nil
				}
				tw := newTable(out)
				fmt.Fprintln(tw, "ENTRY\tDATE\tACCOUNT\tDEBIT\tCREDIT\tMEMO")
				for _, l := range lines {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						l.EntryID, l.Date.Format(dateTimeFormat), l.Account, moneyOrBlank(l.Debit), moneyOrBlank(l.Credit), l.Memo)
				}
				return tw.Flush()
			})
		},
	}
	pf.register(cmd)
	return cmd
}

func newLedgerCommand(flags *globalFlags) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:   "ledger [account]",
		Short: "Show per-account ledgers with running balances",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.period()
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app) error {
				ledger, err := a.ledger.Ledger(ctx, a.owner, p)
				if err != nil {
					return err
				}
				if len(args) == 1 {
					acct, ok := ledger.Find(args[0])
					if !ok {
						return fmt.Errorf("no postings to account %q", args[0])
					}
					ledger = report.Ledger{acct}
				}
				out := cmd.OutOrStdout()
				if len(ledger) == 0 {
					fmt.Fprintln(out, "Ledger is empty.")
					return nil
				}
				for i, acct := range ledger {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "== %s ==\n", acct.Account)
					tw := newTable(out)
					fmt.Fprintln(tw, "DATE\tENTRY\tDEBIT\tCREDIT\tBALANCE\tMEMO")
					for _, post := range acct.Postings {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
							post.Date.Format(dateFormat), post.EntryID, moneyOrBlank(post.Debit), moneyOrBlank(post.Credit), money(post.Balance), post.Memo)
					}
					if err := tw.Flush(); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	pf.register(cmd)
	return cmd
}

func newStatementCommand(flags *globalFlags) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Show the income statement and balance sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.period()
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app) error {
				s, err := a.ledger.Statement(ctx, a.owner, p)
				if err != nil {
					return err
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "Laba Rugi\t")
				fmt.Fprintf(tw, "  Pendapatan\t%s\n", money(s.Income))
				fmt.Fprintf(tw, "  Beban\t%s\n", money(s.Expense))
				fmt.Fprintf(tw, "  Laba/Rugi Bersih\t%s\n", money(s.ProfitLoss))
				fmt.Fprintln(tw, "Neraca\t")
				fmt.Fprintf(tw, "  Aset\t%s\n", money(s.Assets))
				fmt.Fprintf(tw, "  Liabilitas\t%s\n", money(s.Liabilities))
				fmt.Fprintf(tw, "  Ekuitas\t%s\n", money(s.Equity))
				return tw.Flush()
			})
		},
	}
	pf.register(cmd)
	return cmd
}

func newSummaryCommand(flags *globalFlags) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total recorded income and expenses by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.period()
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app) error {
				s, err := a.ledger.Summary(ctx, a.owner, p)
				if err != nil {
					return err
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintf(tw, "Total Pemasukan\t%s\n", money(s.Income))
				fmt.Fprintf(tw, "Total Pengeluaran\t%s\n", money(s.Expense))
				fmt.Fprintf(tw, "Selisih\t%s\n", money(s.Net))
				if len(s.ByCategory) > 0 {
					fmt.Fprintln(tw, "\t")
					fmt.Fprintln(tw, "KIND\tCATEGORY\tCOUNT\tAMOUNT")
					for _, ct := range s.ByCategory {
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", ct.Kind, ct.Category, ct.Count, money(ct.Amount))
					}
				}
				return tw.Flush()
			})
		},
	}
	pf.register(cmd)
	return cmd
}

func newVerifyCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the journal for unbalanced or malformed entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app) error {
				verrs, err := a.ledger.Verify(ctx, a.owner)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(verrs) == 0 {
					fmt.Fprintln(out, "Journal OK.")
					return nil
				}
				for _, ve := range verrs {
					fmt.Fprintln(out, ve.Error())
				}
				return fmt.Errorf("journal has %d problem(s)", len(verrs))
			})
		},
	}
}
