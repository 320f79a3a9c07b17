package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-agent/internal/adapter/repository"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/database"
)

const defaultAgentInstructions = "You are a helpful meeting assistant. Answer questions briefly and keep track of action items."

func newSeedCommand(deps *commandDeps) *cobra.Command {
	var (
		email   string
		name    string
		meeting string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a user, an agent and an upcoming meeting for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to seed a production database")
			}

			db, err := database.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			ctx := cmd.Context()
			users := repository.NewUserRepository(db)
			agents := repository.NewAgentRepository(db)
			meetings := repository.NewMeetingRepository(db)

			user, err := users.FindByEmail(ctx, email)
			if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
				return err
			}
			if user == nil {
				user = &entities.User{
					ID:            uuid.NewString(),
					Name:          name,
					Email:         email,
					EmailVerified: true,
				}
				if err := users.Create(ctx, user); err != nil {
					return fmt.Errorf("creating user: %w", err)
				}
			}

			agent := &entities.Agent{
				ID:           uuid.NewString(),
				Name:         "Assistant",
				UserID:       user.ID,
				Instructions: defaultAgentInstructions,
			}
			if err := agents.Create(ctx, agent); err != nil {
				return fmt.Errorf("creating agent: %w", err)
			}

			m := &entities.Meeting{
				ID:      uuid.NewString(),
				Name:    meeting,
				UserID:  user.ID,
				AgentID: agent.ID,
				Status:  entities.MeetingStatusUpcoming,
			}
			if err := meetings.Create(ctx, m); err != nil {
				return fmt.Errorf("creating meeting: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:    %s (%s)\n", user.ID, user.Email)
			fmt.Fprintf(out, "agent:   %s\n", agent.ID)
			fmt.Fprintf(out, "meeting: %s\n", m.ID)
			fmt.Fprintf(out, "call id: %s:%s\n", cfg.LiveKit.CallType, m.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "alice@test.local", "Owner email; reused when it exists")
	cmd.Flags().StringVar(&name, "name", "Alice", "Owner display name")
	cmd.Flags().StringVar(&meeting, "meeting", "Weekly sync", "Meeting name")

	return cmd
}
