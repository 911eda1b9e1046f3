package command

import (
	"fmt"
	"log/slog"

	"geocam/internal/config"
	"geocam/internal/repository/sqlite"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop all stored photo records",
		Long: `Drops the photos table. The table is recreated by the next capture.
Image files and exported assets are left in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to drop photos without --yes")
			}

			cfg := config.Load()
			db, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			if err := sqlite.NewPhotoRepository(db).ResetSchema(cmd.Context()); err != nil {
				return err
			}
			slog.Info("Photo records dropped", "db", cfg.DatabasePath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")

	return cmd
}
