package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bukutani/bukutani/internal/buildinfo"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	dir      string
	owner    string
	logLevel string
	envFile  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:     "bukutani",
		Short:   "Double-entry bookkeeping for small farms",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.dir, "dir", "C", "", "data directory (default $BUKUTANI_DATA or .)")
	pf.StringVar(&flags.owner, "owner", "", "owner whose books to use (default from config or $BUKUTANI_OWNER)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.envFile, "env-file", "", "load environment from this file instead of ./.env")

	rootCmd.AddCommand(
		newInitCommand(&flags),
		newRecordCommand(&flags, recordIncome),
		newRecordCommand(&flags, recordExpense),
		newListCommand(&flags),
		newDeleteCommand(&flags),
		newJournalCommand(&flags),
		newLedgerCommand(&flags),
		newStatementCommand(&flags),
		newSummaryCommand(&flags),
		newVerifyCommand(&flags),
		newCategoriesCommand(&flags),
		newImportCommand(&flags),
	)

	return rootCmd
}
