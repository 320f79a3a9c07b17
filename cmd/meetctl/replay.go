package main

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/internal/adapter/repository"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-agent/internal/usecase/lifecycle"
)

func newReplayCommand(deps *commandDeps) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "replay <meeting-id>",
		Short: "Queue transcript processing for a meeting",
		Long: `Publish a processing work item for a meeting that already has a transcript.

Without --force the work item keeps its deterministic id, so completed steps
are replayed from their checkpoints. With --force every step runs again.

Examples:
  meetctl replay 6f1c2d0e-meeting
  meetctl replay 6f1c2d0e-meeting --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if cfg.Pipeline.QueueDriver == queue.DriverMemory {
				return errors.New("replay needs a shared queue; the memory driver only lives inside the api process")
			}

			db, err := database.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			var backends queue.Backends
			switch cfg.Pipeline.QueueDriver {
			case queue.DriverRedis:
				client, err := cache.NewRedisClient(cfg)
				if err != nil {
					return err
				}
				defer client.Close()
				backends.Redis = client
			case queue.DriverNATS:
				var conn *nats.Conn
				conn, err = queue.ConnectNATS(&cfg.NATS)
				if err != nil {
					return err
				}
				// Drain flushes the publish before the connection closes.
				defer conn.Drain()
				backends.NATS = conn
			}

			q, err := queue.Open(cfg, backends)
			if err != nil {
				return err
			}
			defer q.Close()

			service := lifecycle.NewLifecycleService(repository.NewMeetingRepository(db), nil, nil, q, cfg.LiveKit.CallType, deps.Logger)
			item, err := service.EnqueueProcessing(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}

			deps.Logger.Info("replay.enqueued", zap.String("meeting_id", args[0]), zap.String("job_id", item.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s for meeting %s\n", item.ID, item.Data.MeetingID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Run every step again instead of replaying checkpoints")

	return cmd
}
