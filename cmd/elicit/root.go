package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ggoodman/elicit/console"
	"github.com/ggoodman/elicit/elicitation"
	"github.com/ggoodman/elicit/internal/config"
	"github.com/ggoodman/elicit/storage"
)

// app carries configuration shared by every subcommand.
type app struct {
	cfg config.Config
	log *slog.Logger

	debug bool

	// openStore overrides cfg.Replay.OpenStore.
	openStore func(ctx context.Context) (storage.Storage, error)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elicit",
		Short: "elicit - structured questions for tools and workflows",
		Long: "elicit asks a user a structured question and returns either their validated\n" +
			"answer, an explicit decline or a cancellation.",
		Example: `  elicit book --party 2 --when "June 21st at 5pm"
  elicit worker
  elicit start --workflow-id booking-42
  elicit answer --workflow-id booking-42`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&a.debug, "debug", "d", false, "Enable debug logging")
	flags.Duration("timeout", 0, "Bound each elicitation (env ELICIT_TIMEOUT)")
	flags.Int("max-attempts", 0, "Invalid answers allowed per field (env ELICIT_MAX_ATTEMPTS)")
	flags.String("temporal-host", "", "Temporal frontend host:port (env TEMPORAL_HOSTPORT)")
	flags.String("namespace", "", "Temporal namespace (env TEMPORAL_NAMESPACE)")
	flags.String("task-queue", "", "Temporal task queue (env ELICIT_TASK_QUEUE)")
	flags.String("redis-addr", "", "Redis address for recorded answers (env REDIS_ADDR)")

	cmd.AddCommand(newBookCmd(a))
	cmd.AddCommand(newWorkerCmd(a))
	cmd.AddCommand(newStartCmd(a))
	cmd.AddCommand(newAnswerCmd(a))
	cmd.AddCommand(newRespondCmd(a))
	cmd.AddCommand(newAskCmd(a))

	return cmd
}

// setup loads env configuration and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts, _ = flags.GetInt("max-attempts")
	}
	if flags.Changed("temporal-host") {
		cfg.Temporal.HostPort, _ = flags.GetString("temporal-host")
	}
	if flags.Changed("namespace") {
		cfg.Temporal.Namespace, _ = flags.GetString("namespace")
	}
	if flags.Changed("task-queue") {
		cfg.Temporal.TaskQueue, _ = flags.GetString("task-queue")
	}
	if flags.Changed("redis-addr") {
		cfg.Replay.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if a.debug {
		cfg.LogLevel = slog.LevelDebug
	}
	a.cfg = cfg
	a.log = cfg.Logger(cmd.ErrOrStderr())
	return nil
}

// store opens the replay store for recorded answers.
func (a *app) store(ctx context.Context) (storage.Storage, error) {
	if a.openStore != nil {
		return a.openStore(ctx)
	}
	return a.cfg.Replay.OpenStore(ctx)
}

// console prompts on the command's streams.
func (a *app) console(cmd *cobra.Command) *console.Console {
	return console.New(
		console.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
		console.WithLogger(a.log),
		console.WithMaxAttempts(a.cfg.MaxAttempts),
	)
}

// requester wraps cb with the configured timeout.
func (a *app) requester(cb elicitation.Callback) (*elicitation.Requester, error) {
	return elicitation.NewRequester(cb, elicitation.WithLogger(a.log), elicitation.WithTimeout(a.cfg.Timeout))
}
