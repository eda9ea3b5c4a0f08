package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bukutani/bukutani/internal/importer"
	"github.com/bukutani/bukutani/internal/logger"
)

func newImportCommand(flags *globalFlags) *cobra.Command {
	var format string
	var tz string
	var keep bool

	cmd := &cobra.Command{
		Use:   "import [file.csv ...]",
		Short: "Import legacy pemasukan/pengeluaran CSV files",
		Long: "Import legacy pemasukan/pengeluaran CSV files. Without arguments, every CSV\n" +
			"in <dir>/import is imported and then moved to <dir>/import/processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("--tz: %w", err)
			}
			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app) error {
				return runImport(ctx, cmd, a, args, format, loc, keep)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "pemasukan or pengeluaran (default detected from file name)")
	cmd.Flags().StringVar(&tz, "tz", "UTC", "time zone of legacy timestamps, e.g. Asia/Jakarta")
	cmd.Flags().BoolVar(&keep, "keep", false, "leave scanned files in import/ after importing; rows already imported are not posted again")
	return cmd
}

type importFile struct {
	name    string
	path    string
	format  string
	scanned bool
}

func runImport(ctx context.Context, cmd *cobra.Command, a *app, args []string, format string, loc *time.Location, keep bool) error {
	log := logger.FromContext(ctx)
	out := cmd.OutOrStdout()

	var files []importFile
	if len(args) == 0 {
		scanned, err := importer.Scan(a.dataDir)
		if err != nil {
			return err
		}
		for _, f := range scanned {
			files = append(files, importFile{name: f.Name, path: f.Path, format: f.Format, scanned: true})
		}
		if len(files) == 0 {
			fmt.Fprintf(out, "No CSV files in %s.\n", filepath.Join(a.dataDir, "import"))
			return nil
		}
	} else {
		for _, p := range args {
			files = append(files, importFile{name: filepath.Base(p), path: p, format: importer.DetectFormat(p)})
		}
	}

	registry := importer.NewRegistry()
	registry.Register(&importer.IncomeParser{Location: loc})
	registry.Register(&importer.ExpenseParser{Location: loc})

	for _, f := range files {
		fileFormat := f.format
		if format != "" {
			fileFormat = format
		}
		parser := registry.Get(fileFormat)
		if parser == nil {
			return fmt.Errorf("%s: unknown format %q (use --format pemasukan or pengeluaran)", f.name, fileFormat)
		}

		file, err := os.Open(f.path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", f.path, err)
		}
		txns, err := parser.Parse(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}

		flog := logger.WithFields(log, map[string]any{"file": f.name, "format": fileFormat})
		res, err := importer.Import(logger.WithContext(ctx, flog), a.ledger, txns, a.owner)
		if err != nil {
			flog.Error().Err(err).Int("imported", res.Imported).Msg("import stopped")
			return fmt.Errorf("%s: %w", f.name, err)
		}
		fmt.Fprintf(out, "%s: imported %d, already imported %d, skipped %d (other owners), rejected %d\n",
			f.name, res.Imported, res.Duplicates, res.Skipped, len(res.Rejected))
		for _, re := range res.Rejected {
			fmt.Fprintf(out, "  %s\n", re.Error())
		}
		flog.Info().Int("imported", res.Imported).Int("duplicates", res.Duplicates).Int("rejected", len(res.Rejected)).Msg("import finished")

		if f.scanned && !keep {
			if err := importer.MarkProcessed(a.dataDir, f.name); err != nil {
				return err
			}
		}
	}
	return nil
}
