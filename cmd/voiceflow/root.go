package main

import (
	"fmt"
	"log/slog"
	"os"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	voiceflow "github.com/Aryanpatel2001/VoiceFlow-sub001"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/logging"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/adapters/memory"
	redisAdapter "github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/adapters/redis"
)

const (
	envOpenAIKey = "VOICEFLOW_OPENAI_API_KEY"
	envRedisAddr = "VOICEFLOW_REDIS_ADDR"
)

var rootCmd = &cobra.Command{
	Use:   "voiceflow",
	Short: "Voiceflow runs authored call flows for real-time voice agents",
	Long: `Voiceflow executes call-flow graphs: conversation steps, HTTP and code
side effects, variable updates, transfers, and hangups. It serves calls over
HTTP, over MCP for agent tooling, or interactively in the terminal.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("flows", ".", "Directory containing flow documents (.json, .yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// buildEngine assembles the engine from flags and environment.
func buildEngine(cmd *cobra.Command, extra ...voiceflow.Option) (*voiceflow.Engine, *slog.Logger, error) {
	dir, _ := cmd.Flags().GetString("flows")
	debug, _ := cmd.Flags().GetBool("debug")

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	loader, err := memory.NewFromDir(dir)
	if err != nil {
		return nil, nil, err
	}

	opts := []voiceflow.Option{voiceflow.WithLogger(logger)}
	if key := os.Getenv(envOpenAIKey); key != "" {
		opts = append(opts, voiceflow.WithOpenAI(key))
	} else {
		logger.Warn("no OpenAI key configured, generative nodes will degrade", "env", envOpenAIKey)
	}
	if addr := os.Getenv(envRedisAddr); addr != "" {
		client := backend.NewClient(&backend.Options{Addr: addr})
		opts = append(opts,
			voiceflow.WithSessionStore(redisAdapter.NewFromClient(client)),
			voiceflow.WithLocker(redisAdapter.NewLocker(client, redisAdapter.DefaultPrefix)),
		)
		logger.Info("using redis session store", "addr", addr)
	}
	opts = append(opts, extra...)

	eng, err := voiceflow.New(loader, opts...)
	if err != nil {
		return nil, nil, err
	}
	return eng, logger, nil
}
