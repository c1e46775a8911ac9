package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"worldshelf/internal/catalog"
	"worldshelf/internal/config"
	"worldshelf/internal/pngmeta"
)

func newPhotosCommand(ctx *commandContext) *cobra.Command {
	photosCmd := &cobra.Command{
		Use:   "photos",
		Short: "Import and manage world screenshots",
	}
	photosCmd.AddCommand(newPhotosImportCommand(ctx))
	photosCmd.AddCommand(newPhotosListCommand(ctx))
	photosCmd.AddCommand(newPhotosDeleteCommand(ctx))
	photosCmd.AddCommand(newPhotosInspectCommand(ctx))
	return photosCmd
}

func newPhotosImportCommand(ctx *commandContext) *cobra.Command {
	var worldID int64

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Copy a screenshot into the catalog",
		Long: "Copy a screenshot into the catalog. Without --world the world is read from the\n" +
			"photo metadata and created from its VRChat details when it is not cataloged yet.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				result, err := a.service.ImportPhoto(cmd.Context(), path, worldID)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported photo %d for world %d: %s\n", result.Photo.ID, result.World.ID, result.World.Name)
				if result.CreatedWorld {
					fmt.Fprintln(out, "World was new and has been cataloged")
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&worldID, "world", 0, "Attach to this catalog world instead of reading the metadata")
	return cmd
}

func newPhotosListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <world-id>",
		Short: "List a world's photos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("world", args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				if _, err := a.catalog.GetWorld(cmd.Context(), id); err != nil {
					return err
				}
				photos, err := a.catalog.ListPhotosByWorld(cmd.Context(), id)
				if err != nil {
					return err
				}
				if photos == nil {
					photos = []*catalog.Photo{}
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, photos)
				}
				rows := make([][]string, 0, len(photos))
				for _, photo := range photos {
					rows = append(rows, []string{
						formatID(photo.ID),
						photo.OriginalFileName,
						formatTime(photo.TakenAt),
						photo.FilePath,
					})
				}
				printRows(cmd.OutOrStdout(),
					[]string{"ID", "File", "Taken", "Stored At"},
					rows,
					[]columnAlignment{alignRight},
				)
				return nil
			})
		},
	}
}

func newPhotosDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a photo and its stored copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("photo", args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				if err := a.service.DeletePhoto(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted photo %d\n", id)
				return nil
			})
		},
	}
}

func newPhotosInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "inspect <file>",
		Short:       "Show the world ID and text metadata embedded in a PNG",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pngmeta.Extract(args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "World ID: %s\n", valueOrDash(result.WorldID))
			for _, entry := range result.Text {
				fmt.Fprintf(out, "%s %s: %s\n", entry.ChunkType, entry.Keyword, entry.Text)
			}
			return nil
		},
	}
}
