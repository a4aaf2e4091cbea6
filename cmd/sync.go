package cmd

import (
	"context"
	"fmt"
	"time"

	internalApp "github.com/haierkeys/offline-note-sync-service/internal/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type syncFlags struct {
	config  string
	timeout time.Duration
}

func init() {
	syncEnv := new(syncFlags)

	var syncCommand = &cobra.Command{
		Use:   "sync [-c config_file]",
		Short: "Run a one-shot reconciliation of the local cache against the server",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, err := resolveConfig(&runFlags{config: syncEnv.config})
			if err != nil {
				bootstrapLogger.Error("config file setup failed", zap.Error(err))
				return
			}

			cfg, _, err := internalApp.LoadConfig(configPath)
			if err != nil {
				bootstrapLogger.Error("failed to load config", zap.Error(err))
				return
			}

			lg, err := logger.NewLogger(cfg.LoggerConfig())
			if err != nil {
				bootstrapLogger.Error("failed to build logger", zap.Error(err))
				return
			}
			defer lg.Sync()

			kit, err := internalApp.NewClientKit(cfg, lg)
			if err != nil {
				bootstrapLogger.Error("failed to build client", zap.Error(err))
				return
			}
			defer kit.Close()

			ctx, cancel := context.WithTimeout(context.Background(), syncEnv.timeout)
			defer cancel()

			if err := kit.Syncer.Resync(ctx); err != nil {
				bootstrapLogger.Error("sync failed", zap.Error(err))
				return
			}

			syncedAt, err := kit.Syncer.LastSyncedAt(ctx)
			if err != nil {
				bootstrapLogger.Error("failed to read sync marker", zap.Error(err))
				return
			}
			fmt.Printf("synced at %s\n", syncedAt.Format(time.RFC3339))
		},
	}

	syncCommand.Flags().StringVarP(&syncEnv.config, "config", "c", "", "config file path")
	syncCommand.Flags().DurationVarP(&syncEnv.timeout, "timeout", "t", 5*time.Minute, "sync timeout")

	rootCmd.AddCommand(syncCommand)
}
