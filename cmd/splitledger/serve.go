package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/splitledger/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Connect API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := server.OpenStore(cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()
			slog.Info("Storage initialized", "driver", cfg.Database.Driver, "database", cfg.Database.Path)

			srv := server.New(cfg, store, slog.Default(), prometheus.NewRegistry())
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
