package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/tasklist/internal/orm"
	"github.com/eleven-am/tasklist/internal/store"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage todos",
}

var todoAddCmd = &cobra.Command{
	Use:   "add <username> <text>",
	Short: "Add a todo for a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			user, err := lookupUser(ctx, s, args[0])
			if err != nil {
				return err
			}
			todo, err := s.CreateTodo(ctx, user.ID, args[1])
			if err != nil {
				return fmt.Errorf("failed to create todo: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), todo.Describe(user.Username, nil))
			return nil
		})
	},
}

var todoToggleCmd = &cobra.Command{
	Use:   "toggle <username> <todo-id>",
	Short: "Flip a todo between done and not done",
	Args:  cobra.ExactArgs(2),
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
			todo, err := s.FindTodo(ctx, user.ID, todoID)
			if errors.Is(err, orm.ErrNotFound) {
				return fmt.Errorf("todo %d not found for user %q", todoID, user.Username)
			}
			if err != nil {
				return err
			}
			if err := s.ToggleTodo(ctx, todo); err != nil {
				return fmt.Errorf("failed to toggle todo: %w", err)
			}
			desc, err := s.DescribeTodo(ctx, todo)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		})
	},
}

var todoListCmd = &cobra.Command{
	Use:   "list <username>",
	Short: "List a user's todos",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			user, err := lookupUser(ctx, s, args[0])
			if err != nil {
				return err
			}
			todos, err := s.UserTodos(ctx, user.ID)
			if err != nil {
				return err
			}
			if len(todos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No todos")
				return nil
			}
			for i := range todos {
				desc, err := s.DescribeTodo(ctx, &todos[i])
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
	todoCmd.AddCommand(todoAddCmd, todoToggleCmd, todoListCmd)
}
