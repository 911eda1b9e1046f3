package command

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geocam",
		Short: "Capture station that stores photos with the place they were taken",
		Long: `Geocam receives frames and position fixes from a camera device, captures
photos on demand, tags them with the locality of the device and keeps them in a
SQLite gallery that is mirrored into a media library.

Configuration is read from the environment; a .env file in the working
directory is loaded first.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newResetCmd())
	cmd.AddCommand(newImportCmd())

	return cmd
}
