package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bukutani/bukutani/internal/config"
	"github.com/bukutani/bukutani/internal/model"
)

func newInitCommand(flags *globalFlags) *cobra.Command {
	var backend string
	var reversalDate string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a bukutani data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(flags.envFile); err != nil {
				return err
			}
			dir := flags.dir
			if len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				dir = "."
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, flags.owner, backend, reversalDate, force)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", config.BackendCSV, "storage backend: csv or sqlite")
	cmd.Flags().StringVar(&reversalDate, "reversal-date", "now", "date reversing entries at: now or original")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	return cmd
}

func runInit(out io.Writer, dir, owner, backend, reversalDate string, force bool) error {
	if owner == "" {
		owner = os.Getenv(config.EnvOwner)
	}
	if err := model.ValidateOwner(owner); err != nil {
		return fmt.Errorf("init needs --owner: %w", err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default(owner)
	cfg.Storage.Backend = backend
	cfg.Reversal.Date = reversalDate
	if err := cfg.Validate(); err != nil {
		return err
	}

	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
	}
	if backend == config.BackendCSV {
		dirs = append(dirs, filepath.Join(cfg.Storage.Path, owner))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Initialized bukutani at %s for %s (%s storage)\n", dir, owner, backend)
	return nil
}
