package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bukutani/bukutani/internal/model"
)

type recordKind struct {
	kind  model.Kind
	use   string
	short string
}

var (
	recordIncome  = recordKind{kind: model.KindIncome, use: "income", short: "Record income (pemasukan)"}
	recordExpense = recordKind{kind: model.KindExpense, use: "expense", short: "Record an expense (pengeluaran)"}
)

func newRecordCommand(flags *globalFlags, rk recordKind) *cobra.Command {
	parent := &cobra.Command{
		Use:   rk.use,
		Short: rk.short,
	}
	parent.AddCommand(newAddCommand(flags, rk))
	return parent
}

func newAddCommand(flags *globalFlags, rk recordKind) *cobra.Command {
	var amount, method, date, memo string
	var source, category, sub string

	cmd := &cobra.Command{
		Use:   "add",
		Short: rk.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("--amount: invalid number %q", amount)
			}
			m, err := model.ParseMethod(method)
			if err != nil {
				return fmt.Errorf("--method: %w", err)
			}
			txn := model.Transaction{
				Kind:   rk.kind,
				Amount: amt,
				Method: m,
				Memo:   memo,
			}
			if date != "" {
				if txn.Date, err = parseDate(date); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}
			if rk.kind == model.KindIncome {
				txn.Category = source
			} else {
				txn.Category = category
				txn.SubCategory = sub
			}

			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app) error {
				txn.Owner = a.owner
				recorded, err := a.ledger.Record(ctx, txn)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s %s on %s\n",
					rk.kind, recorded.ID, money(recorded.Amount), recorded.Date.Format(dateFormat))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount in rupiah (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&method, "method", string(model.MethodCash), methodHelp(rk.kind))
	cmd.Flags().StringVar(&date, "date", "", "transaction date (default now)")
	cmd.Flags().StringVar(&memo, "memo", "", "free-text note (keterangan)")
	if rk.kind == model.KindIncome {
		cmd.Flags().StringVar(&source, "source", "", "income source, e.g. \"Penjualan Padi\" (required)")
		_ = cmd.MarkFlagRequired("source")
	} else {
		cmd.Flags().StringVar(&category, "category", "", "main category (default looked up from --sub)")
		cmd.Flags().StringVar(&sub, "sub", "", "sub-category, the expense account (required)")
		_ = cmd.MarkFlagRequired("sub")
	}
	return cmd
}

func methodHelp(kind model.Kind) string {
	help := "payment method:"
	for i, m := range model.Methods(kind) {
		if i > 0 {
			help += ","
		}
		help += " " + string(m)
	}
	return help
}
