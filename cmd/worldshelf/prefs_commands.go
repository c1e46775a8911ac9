package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"worldshelf/internal/config"
	"worldshelf/internal/prefs"
)

func newPrefsCommand(ctx *commandContext) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show and change user preferences",
	}
	prefsCmd.AddCommand(newPrefsShowCommand(ctx))
	prefsCmd.AddCommand(newPrefsSetCommand(ctx))
	prefsCmd.AddCommand(newPrefsDismissedCommand(ctx))
	return prefsCmd
}

func newPrefsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				current, err := a.prefs.Load()
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, current)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Photo directory: %s\n", valueOrDash(current.PhotoDirectoryPath))
				fmt.Fprintf(out, "Scan period:     %d days\n", current.ScanPeriodDays)
				fmt.Fprintf(out, "Dismissed:       %d worlds\n", len(current.DismissedWorldIDs))
				fmt.Fprintf(out, "File:            %s\n", a.prefs.Path())
				return nil
			})
		},
	}
}

func newPrefsSetCommand(ctx *commandContext) *cobra.Command {
	var photoDir string
	var scanDays int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the screenshot folder or scan window",
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch prefs.Patch
			if cmd.Flags().Changed("photo-dir") {
				dir := strings.TrimSpace(photoDir)
				if dir != "" {
					expanded, err := config.ExpandPath(dir)
					if err != nil {
						return fmt.Errorf("resolve photo directory: %w", err)
					}
					dir = expanded
				}
				patch.PhotoDirectoryPath = &dir
			}
			if cmd.Flags().Changed("scan-days") {
				patch.ScanPeriodDays = &scanDays
			}
			if patch.PhotoDirectoryPath == nil && patch.ScanPeriodDays == nil {
				return fmt.Errorf("nothing to set; pass --photo-dir or --scan-days")
			}
			return ctx.withApp(func(a *app) error {
				updated, err := a.prefs.Update(patch)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, updated)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Preferences saved")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&photoDir, "photo-dir", "", "VRChat screenshot folder (empty clears it)")
	cmd.Flags().IntVar(&scanDays, "scan-days", prefs.DefaultScanPeriodDays, "Only consider photos modified within this many days")
	return cmd
}

func newPrefsDismissedCommand(ctx *commandContext) *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "dismissed",
		Short: "List or clear dismissed worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				out := cmd.OutOrStdout()
				if clearAll {
					removed, err := a.prefs.ClearDismissed()
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d dismissed worlds\n", removed)
					return nil
				}
				current, err := a.prefs.Load()
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, current.DismissedWorldIDs)
				}
				for _, id := range current.DismissedWorldIDs {
					fmt.Fprintln(out, id)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Forget every dismissed world")
	return cmd
}
