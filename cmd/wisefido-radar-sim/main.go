package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wisefido-radar-sim/internal/common/logger"
	"wisefido-radar-sim/internal/config"
	"wisefido-radar-sim/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagLayout    string
	flagPlayback  string
	flagSeed      int64
	flagLogLevel  string
	flagLogFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wisefido-radar-sim",
		Short: "Simulated radar device for the wisefido pipeline",
		Long: "wisefido-radar-sim generates person tracks, vital signs and alarms for a room layout\n" +
			"(or replays a recorded feed) and publishes them like a real radar.",
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVar(&flagLayout, "layout", "", "Room layout JSON file (overrides SIM_LAYOUT_FILE)")
	rootCmd.Flags().StringVar(&flagPlayback, "playback", "", "Playback feed: text table, .xlsx or http(s) URL (overrides SIM_PLAYBACK_SOURCE)")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 0, "Random seed, 0 seeds from time (overrides SIM_SEED)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&flagLogFormat, "log-format", "", "Log format: json or console")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 初始化Logger
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "wisefido-radar-sim")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting wisefido-radar-sim service",
		zap.String("layout_source", cfg.Simulator.LayoutSource),
		zap.String("playback_source", cfg.Simulator.PlaybackSource),
		zap.Bool("redis_enabled", cfg.Publish.RedisEnabled),
		zap.Bool("mqtt_enabled", cfg.Publish.MQTTEnabled),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 创建服务
	simService, err := service.NewSimulatorService(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to create simulator service", zap.Error(err))
		return err
	}

	// 启动服务
	if err := simService.Start(ctx); err != nil {
		log.Error("Failed to start simulator service", zap.Error(err))
		return err
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	// 优雅关闭
	cancel()
	if err := simService.Stop(context.Background()); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}

	log.Info("Service stopped")
	return nil
}

// applyFlags 命令行参数覆盖环境变量配置，仅覆盖显式设置的参数
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("layout") {
		cfg.Simulator.LayoutSource = config.LayoutSourceFile
		cfg.Simulator.LayoutFile = flagLayout
	}
	if flags.Changed("playback") {
		cfg.Simulator.PlaybackSource = flagPlayback
	}
	if flags.Changed("seed") {
		cfg.Simulator.Seed = flagSeed
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = flagLogFormat
	}
}
