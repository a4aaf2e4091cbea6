package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	internalApp "github.com/haierkeys/offline-note-sync-service/internal/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string
	port    string
	runMode string
	config  string
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// resolveConfig picks the config file, writing the embedded default when
// none exists yet.
func resolveConfig(runEnv *runFlags) (string, error) {
	if len(runEnv.config) > 0 {
		return runEnv.config, nil
	}
	for _, candidate := range []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"} {
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	bootstrapLogger.Warn("config file not found, creating default config")
	path := "config/config.yaml"
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(configDefault), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run the note server",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
					return
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			configPath, err := resolveConfig(runEnv)
			if err != nil {
				bootstrapLogger.Error("config file setup failed", zap.Error(err))
				return
			}

			cfg, realpath, err := internalApp.LoadConfig(configPath)
			if err != nil {
				bootstrapLogger.Error("failed to load config", zap.Error(err))
				return
			}
			bootstrapLogger.Info("config loaded", zap.String("file", realpath))

			if len(runEnv.runMode) > 0 {
				cfg.Server.RunMode = runEnv.runMode
			}
			if len(runEnv.port) > 0 {
				cfg.Server.HttpPort = ":" + runEnv.port
			}

			lg, err := logger.NewLogger(cfg.LoggerConfig())
			if err != nil {
				bootstrapLogger.Error("failed to build logger", zap.Error(err))
				return
			}
			defer lg.Sync()

			a, err := internalApp.NewApp(cfg, lg)
			if err != nil {
				bootstrapLogger.Error("failed to build app", zap.Error(err))
				return
			}

			a.Start()
			bootstrapLogger.Info("server started",
				zap.String("version", internalApp.Version),
				zap.String("addr", cfg.Server.HttpPort))

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				sig := <-sigCh
				lg.Info("signal received, shutting down", zap.String("signal", sig.String()))
				a.Shutdown(nil)
			}()

			if err := a.WaitClosed(); err != nil {
				lg.Error("server closed with error", zap.Error(err))
				os.Exit(1)
			}
			lg.Info("server closed")
		},
	}

	runCommand.Flags().StringVarP(&runEnv.dir, "dir", "d", "", "working directory")
	runCommand.Flags().StringVarP(&runEnv.port, "port", "p", "", "listen port, overrides config")
	runCommand.Flags().StringVarP(&runEnv.runMode, "mode", "m", "", "run mode: debug or release")
	runCommand.Flags().StringVarP(&runEnv.config, "config", "c", "", "config file path")

	rootCmd.AddCommand(runCommand)
}
