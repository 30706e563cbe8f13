package main

import (
	"context"
	"fmt"
	"innovation-portal/internal/db"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/user"
	"strings"

	"github.com/spf13/cobra"
)

var assignRoleCmd = &cobra.Command{
	Use:   "assign-role <email> <role>",
	Short: "Grant a role to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeRole(cmd, args[0], args[1], true)
	},
}

var revokeRoleCmd = &cobra.Command{
	Use:   "revoke-role <email> <role>",
	Short: "Take a role away from a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeRole(cmd, args[0], args[1], false)
	},
}

func changeRole(cmd *cobra.Command, email, role string, grant bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := connect(ctx); err != nil {
		return err
	}

	repo := user.NewRepository(db.AppDb)
	found, err := repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("looking up %s: %w", email, err)
	}

	service := user.NewService(repo)
	var updated *domain.SafeUser
	if grant {
		updated, err = service.AssignRole(ctx, found.ID, role)
	} else {
		updated, err = service.RevokeRole(ctx, found.ID, role)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s roles: %s\n", updated.Email, strings.Join(updated.Roles, ", "))
	return nil
}
