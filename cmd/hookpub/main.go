// Package main boots the hook event publisher. One invocation handles one
// event: kind and session key arrive as arguments, the payload on stdin, and
// the exit code reports the outcome class to the invoking shell.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/krsfer/claude-hooks-sub000/config"
	"github.com/krsfer/claude-hooks-sub000/internal/archive"
	"github.com/krsfer/claude-hooks-sub000/internal/hook"
	"github.com/krsfer/claude-hooks-sub000/internal/logutil"
	"github.com/krsfer/claude-hooks-sub000/internal/metrics"
	"github.com/krsfer/claude-hooks-sub000/internal/redisx"
	"github.com/krsfer/claude-hooks-sub000/internal/seq"
	"github.com/krsfer/claude-hooks-sub000/internal/sidecar"
)

const version = "1.2.0-go"

var rootCmd = &cobra.Command{
	Use:   "hookpub <event-kind> <session-key>",
	Short: "Publish one hook event to Redis",
	Long: `hookpub reads a JSON payload from stdin, assigns a per-session sequence
number, infers the tool name for tool events, and publishes the resulting
envelope to a Redis pub/sub channel.`,
	Version: version,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("%w: expected <event-kind> <session-key>", hook.ErrValidation)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args[0], args[1])
	},
}

func run(ctx context.Context, kindArg, sessionKey string) error {
	cfg := config.Load()
	logutil.SetDebug(cfg.Debug)

	if cfg.RedisAddr == "" {
		return fmt.Errorf("%w: REDIS_ADDR is required", hook.ErrConfiguration)
	}

	client, err := redisx.NewClient(redisx.Config{
		Addr:        cfg.RedisAddr,
		Username:    cfg.RedisUsername,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		TLSEnabled:  cfg.RedisTLSEnabled,
		TLSInsecure: cfg.RedisTLSInsecure,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", hook.ErrPublish, err)
	}
	defer client.Close()

	var recorders []hook.Recorder
	if cfg.PersistEnabled {
		recorders = append(recorders, sidecar.New(sidecar.Options{
			Client: client,
			TTL:    cfg.PersistTTL,
			Stream: cfg.ArchiveStream,
		}))
	}
	if cfg.ArchiveDB != "" {
		store, err := archive.Open(cfg.ArchiveDB)
		if err != nil {
			logutil.Error("archive unavailable, continuing without it", err, nil)
		} else {
			defer store.Close()
			recorders = append(recorders, store)
		}
	}

	pipeline := &hook.Pipeline{
		Allocator: seq.New(cfg.CounterFile),
		Publisher: hook.NewRedisPublisher(client),
		Channel:   cfg.Channel,
		Timeout:   cfg.PublishTimeout,
		Recorders: recorders,
	}

	_, procErr := pipeline.Process(ctx, kindArg, sessionKey, os.Stdin)

	if err := metrics.Push(ctx, cfg.PushgatewayURL); err != nil {
		logutil.Debug("metrics push failed", map[string]interface{}{"error": err.Error()})
	}
	return procErr
}

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logutil.Error("hook event not published", err, nil)
		os.Exit(hook.ExitCode(err))
	}
}
