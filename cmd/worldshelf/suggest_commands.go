package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"worldshelf/internal/logging"
	"worldshelf/internal/suggest"
)

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest worlds from recent screenshots",
	}
	suggestCmd.AddCommand(newSuggestScanCommand(ctx))
	suggestCmd.AddCommand(newSuggestAcceptCommand(ctx))
	suggestCmd.AddCommand(newSuggestDismissCommand(ctx))
	suggestCmd.AddCommand(newSuggestWatchCommand(ctx))
	return suggestCmd
}

func newSuggestScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the photo directory for uncataloged worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				suggestions, err := a.service.Suggestions(cmd.Context())
				if err != nil {
					return err
				}
				return printSuggestions(ctx, cmd, suggestions)
			})
		},
	}
}

func printSuggestions(ctx *commandContext, cmd *cobra.Command, suggestions []suggest.Suggestion) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, suggestions)
	}
	rows := make([][]string, 0, len(suggestions))
	for _, s := range suggestions {
		author := ""
		if s.WorldAuthor != nil {
			author = *s.WorldAuthor
		}
		rows = append(rows, []string{s.WorldID, s.WorldName, valueOrDash(author), s.PhotoFileName})
	}
	printRows(cmd.OutOrStdout(),
		[]string{"World ID", "Name", "Author", "Photo"},
		rows,
		nil,
	)
	return nil
}

func newSuggestAcceptCommand(ctx *commandContext) *cobra.Command {
	var groupID int64

	cmd := &cobra.Command{
		Use:   "accept <wrld_id>",
		Short: "Catalog a suggested world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return acceptWorld(ctx, cmd, args[0], groupID)
		},
	}
	cmd.Flags().Int64Var(&groupID, "group", 0, "Add the world to this group")
	return cmd
}

func newSuggestDismissCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <wrld_id>",
		Short: "Stop suggesting a world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				added, err := a.service.Dismiss(args[0])
				if err != nil {
					return err
				}
				if added {
					fmt.Fprintf(cmd.OutOrStdout(), "Dismissed %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s was already dismissed\n", args[0])
				}
				return nil
			})
		},
	}
}

func newSuggestWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rescan whenever new screenshots appear",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				current, err := a.prefs.Load()
				if err != nil {
					return err
				}
				if current.PhotoDirectoryPath == "" {
					return errors.New("photo directory not set; run `worldshelf prefs set --photo-dir <path>`")
				}

				scan := func(runCtx context.Context) {
					suggestions, err := a.service.Suggestions(runCtx)
					if err != nil {
						logging.ErrorWithContext(a.logger, "suggestion scan failed", "watch_scan_failed",
							logging.Error(err),
							logging.String(logging.FieldErrorHint, "check the preferences file"),
						)
						return
					}
					if len(suggestions) == 0 {
						return
					}
					if err := printSuggestions(ctx, cmd, suggestions); err != nil {
						a.logger.Warn("print suggestions failed", logging.Error(err))
					}
				}

				scan(cmd.Context())
				fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", current.PhotoDirectoryPath)
				return a.engine.Watch(cmd.Context(), current.PhotoDirectoryPath, a.cfg.WatchDebounce(), scan)
			})
		},
	}
}
