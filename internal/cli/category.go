package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/tasklist/internal/store"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var categoryAssignCmd = &cobra.Command{
	Use:   "assign <username> <todo-id> <category>",
	Short: "Tag a todo with a category, creating the category if needed",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		todoID, err := parseID(args[1])
		if err != nil {
			return err
		}

		return withStore(func(ctx context.Context, s *store.Store) error {
			user, err := lookupUser(ctx, s, args[0])
			if err != nil {
				return err
			}
			ok, err := s.AddTodoCategory(ctx, user, todoID, args[2])
			if err != nil {
				return fmt.Errorf("failed to assign category: %w", err)
			}
			if !ok {
				return fmt.Errorf("todo %d not found for user %q", todoID, user.Username)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Todo %d tagged %q\n", todoID, args[2])
			return nil
		})
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list <username>",
	Short: "List a user's categories with their todos",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			user, err := lookupUser(ctx, s, args[0])
			if err != nil {
				return err
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
				fmt.Fprintln(cmd.OutOrStdout(), desc)
			}
			return nil
		})
	},
}

func init() {
	categoryCmd.AddCommand(categoryAssignCmd, categoryListCmd)
}
