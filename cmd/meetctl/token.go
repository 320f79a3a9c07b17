package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-agent/pkg/jwt"
)

func newTokenCommand(deps *commandDeps) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a bearer token for the operator API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			manager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)
			token, err := manager.GenerateAccessToken(args[0], role)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", jwt.RoleOperator, "Role claim to embed")

	return cmd
}
