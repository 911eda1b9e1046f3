package command

import (
	"log/slog"

	"geocam/internal/app"
	"geocam/internal/config"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the capture station server",
		Example: `  # Start server on PORT from the environment (default 8080)
  geocam serve

  # Start server on a custom port
  geocam serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			a, err := app.NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Run(cmd.Context()); err != nil {
				slog.Error("Server stopped with error", "err", err)
				return err
			}
			slog.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")

	return cmd
}
