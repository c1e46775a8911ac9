package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"worldshelf/internal/preflight"
	"worldshelf/internal/prefs"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories and the VRChat API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			current, err := prefs.New(cfg.PreferencesPath(), nil).Load()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{
				PhotoDirectory: current.PhotoDirectoryPath,
				Online:         online,
			})
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					status := "ok"
					if !r.Passed {
						status = "FAIL"
					}
					rows = append(rows, []string{r.Name, status, r.Detail})
				}
				printRows(cmd.OutOrStdout(), []string{"Check", "Status", "Detail"}, rows, nil)
			}
			if !preflight.AllPassed(results) {
				return errors.New("one or more checks failed")
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "All checks passed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&online, "online", false, "Also check that the VRChat API is reachable")
	return cmd
}
