package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/todo-tracker/internal/client"
	"github.com/nhle/todo-tracker/internal/model"
)

func newListCmd(root *rootOptions) *cobra.Command {
	var (
		opts      client.ListOptions
		completed bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("completed") {
				opts.Completed = &completed
			}
			return root.runAPI(cmd, func(ctx context.Context, c *client.Client) (string, error) {
				page, err := c.SearchTodos(ctx, opts)
				if err != nil {
					return "", err
				}
				if asJSON {
					return "", encodeJSON(cmd.OutOrStdout(), page.Todos)
				}
				fmt.Fprint(cmd.OutOrStdout(), formatTodoTable(page.Todos, page.Total))
				return "", nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (active, inactive, pending)")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "Filter by priority (low, medium, high)")
	cmd.Flags().BoolVar(&completed, "completed", false, "Filter by completion")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Search title and description")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort by id, title, priority, status, completed, created_at or updated_at")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "Sort in descending order")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of todos")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Number of todos to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newGetCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return root.runAPI(cmd, func(ctx context.Context, c *client.Client) (string, error) {
				todo, err := c.GetTodo(ctx, id)
				if err != nil {
					return "", err
				}
				if asJSON {
					return "", encodeJSON(cmd.OutOrStdout(), todo)
				}
				fmt.Fprint(cmd.OutOrStdout(), formatTodoDetail(todo))
				return "", nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newAddCmd(root *rootOptions) *cobra.Command {
	var (
		description string
		priority    string
		status      string
		completed   bool
	)

	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.CreateTodoRequest{Title: strings.Join(args, " ")}
			flags := cmd.Flags()
			if flags.Changed("description") {
				req.Description = &description
			}
			if flags.Changed("priority") {
				p := model.Priority(priority)
				req.Priority = &p
			}
			if flags.Changed("status") {
				s := model.Status(status)
				req.Status = &s
			}
			if flags.Changed("completed") {
				req.Completed = &completed
			}

			return root.runAPI(cmd, func(ctx context.Context, c *client.Client) (string, error) {
				todo, err := c.CreateTodo(ctx, req)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Todo #%d created", todo.ID()), nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority (low, medium, high)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Status (active, inactive, pending)")
	cmd.Flags().BoolVar(&completed, "completed", false, "Create the todo as completed")
	return cmd
}

func newUpdateCmd(root *rootOptions) *cobra.Command {
	var (
		title            string
		description      string
		clearDescription bool
		priority         string
		status           string
		completed        bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a todo",
		Long:  "Change fields of a todo. Only the flags given are sent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req client.UpdateTodoRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("description") {
				req.Description = &description
			}
			if clearDescription {
				if req.Description != nil {
					return errors.New("--description and --clear-description are mutually exclusive")
				}
				req.ClearDescription = true
			}
			if flags.Changed("priority") {
				p := model.Priority(priority)
				req.Priority = &p
			}
			if flags.Changed("status") {
				s := model.Status(status)
				req.Status = &s
			}
			if flags.Changed("completed") {
				req.Completed = &completed
			}
			if req == (client.UpdateTodoRequest{}) {
				return errors.New("nothing to update: pass at least one of --title, --description, --clear-description, --priority, --status, --completed")
			}

			return root.runAPI(cmd, func(ctx context.Context, c *client.Client) (string, error) {
				if _, err := c.UpdateTodo(ctx, id, req); err != nil {
					return "", err
				}
				return fmt.Sprintf("Todo #%d updated", id), nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().BoolVar(&clearDescription, "clear-description", false, "Remove the description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority (low, medium, high)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status (active, inactive, pending)")
	cmd.Flags().BoolVar(&completed, "completed", false, "Mark completed (--completed=false reopens)")
	return cmd
}

func newDoneCmd(root *rootOptions, done bool) *cobra.Command {
	use, short, verb := "done <id>", "Mark a todo completed", "completed"
	if !done {
		use, short, verb = "undone <id>", "Reopen a completed todo", "reopened"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return root.runAPI(cmd, func(ctx context.Context, c *client.Client) (string, error) {
				if _, err := c.UpdateTodo(ctx, id, client.UpdateTodoRequest{Completed: &done}); err != nil {
					return "", err
				}
				return fmt.Sprintf("Todo #%d %s", id, verb), nil
			})
		},
	}
}

func newDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return root.runAPI(cmd, func(ctx context.Context, c *client.Client) (string, error) {
				if err := c.DeleteTodo(ctx, id); err != nil {
					return "", err
				}
				return fmt.Sprintf("Todo #%d deleted", id), nil
			})
		},
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo id %q", arg)
	}
	return id, nil
}
