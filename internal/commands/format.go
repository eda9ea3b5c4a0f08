package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bukutani/bukutani/internal/model"
)

// CLI dates are calendar days in UTC, matching how records are stored.
const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04:05"
)

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{dateTimeFormat, dateFormat, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or \"YYYY-MM-DD HH:MM:SS\")", s)
}

// periodFlags adds --from and --to to cmd.
type periodFlags struct {
	from string
	to   string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.to, "to", "", "last day to include (YYYY-MM-DD)")
}

// period converts the flags to a half-open range. --to is inclusive of
// the whole day.
func (p *periodFlags) period() (model.Period, error) {
	var out model.Period
	if p.from != "" {
		t, err := parseDate(p.from)
		if err != nil {
			return out, fmt.Errorf("--from: %w", err)
		}
		out.From = t
	}
	if p.to != "" {
		t, err := parseDate(p.to)
		if err != nil {
			return out, fmt.Errorf("--to: %w", err)
		}
		out.To = t.Truncate(24 * time.Hour).Add(24 * time.Hour)
	}
	if !out.From.IsZero() && !out.To.IsZero() && !out.From.Before(out.To) {
		return out, fmt.Errorf("--from %s is after --to %s", p.from, p.to)
	}
	return out, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// moneyOrBlank renders zero as an empty cell.
func moneyOrBlank(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return money(d)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
