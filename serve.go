package main

import (
	"github.com/klokku/finplan/internal/app"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the projection and wizard HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := app.NewApplication(configPath)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "./config/application.yaml", "configuration file")
	return cmd
}
