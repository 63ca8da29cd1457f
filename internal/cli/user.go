package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/tasklist/internal/logger"
	"github.com/eleven-am/tasklist/internal/store"
)

var errPasswordMismatch = errors.New("password does not match")

var accountPassword string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username> <email>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			user, err := s.CreateUser(ctx, args[0], args[1], accountPassword)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), user.String())
			return nil
		})
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show <username>",
	Short: "Show a user with their todos and categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			user, err := lookupUser(ctx, s, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, user.String())

			todos, err := s.UserTodos(ctx, user.ID)
			if err != nil {
				return err
			}
			for i := range todos {
				desc, err := s.DescribeTodo(ctx, &todos[i])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s\n", desc)
			}

			categories, err := s.UserCategories(ctx, user.ID)
			if err != nil {
				return err
			}
			for i := range categories {
				desc, err := s.DescribeCategory(ctx, &categories[i])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s\n", desc)
			}
			return nil
		})
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Reset a user's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			user, err := lookupUser(ctx, s, args[0])
			if err != nil {
				return err
			}
			if err := s.ResetPassword(ctx, user, accountPassword); err != nil {
				return fmt.Errorf("failed to reset password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", user.Username)
			return nil
		})
	},
}

var userVerifyCmd = &cobra.Command{
	Use:   "verify <username>",
	Short: "Check a password against the stored hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			user, err := lookupUser(ctx, s, args[0])
			if err != nil {
				return err
			}
			if !user.CheckPassword(accountPassword) {
				logger.CLI().Warn("password verification failed", "username", user.Username)
				return errPasswordMismatch
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password OK")
			return nil
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user with all of their todos and categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			user, err := lookupUser(ctx, s, args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteUser(ctx, user.ID); err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", user.String())
			return nil
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{userCreateCmd, userPasswdCmd, userVerifyCmd} {
		cmd.Flags().StringVar(&accountPassword, "password", "", "Account password")
		_ = cmd.MarkFlagRequired("password")
	}

	userCmd.AddCommand(userCreateCmd, userShowCmd, userPasswdCmd, userVerifyCmd, userDeleteCmd)
}
