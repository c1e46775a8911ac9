package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"worldshelf/internal/catalog"
	"worldshelf/internal/worlds"
)

func newWorldsCommand(ctx *commandContext) *cobra.Command {
	worldsCmd := &cobra.Command{
		Use:   "worlds",
		Short: "Manage cataloged worlds",
	}
	worldsCmd.AddCommand(newWorldsListCommand(ctx))
	worldsCmd.AddCommand(newWorldsShowCommand(ctx))
	worldsCmd.AddCommand(newWorldsAddCommand(ctx))
	worldsCmd.AddCommand(newWorldsCreateCommand(ctx))
	worldsCmd.AddCommand(newWorldsFetchCommand(ctx))
	worldsCmd.AddCommand(newWorldsUpdateCommand(ctx))
	worldsCmd.AddCommand(newWorldsDeleteCommand(ctx))
	return worldsCmd
}

func newWorldsListCommand(ctx *commandContext) *cobra.Command {
	var groupID int64
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				list, err := a.catalog.ListWorlds(cmd.Context(), catalog.ListOptions{GroupID: groupID, Search: search})
				if err != nil {
					return err
				}
				if list == nil {
					list = []*catalog.World{}
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, list)
				}
				rows := make([][]string, 0, len(list))
				for _, world := range list {
					rows = append(rows, []string{
						formatID(world.ID),
						world.Name,
						valueOrDash(world.AuthorName),
						valueOrDash(world.VRChatWorldID),
						valueOrDash(strings.Join(world.Tags, ", ")),
					})
				}
				printRows(cmd.OutOrStdout(),
					[]string{"ID", "Name", "Author", "VRChat ID", "Tags"},
					rows,
					[]columnAlignment{alignRight},
				)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&groupID, "group", 0, "Only list members of this group")
	cmd.Flags().StringVar(&search, "search", "", "Match name, author, description, memo, or tags")
	return cmd
}

type worldDetail struct {
	*catalog.World
	Photos []*catalog.Photo `json:"photos"`
}

func newWorldsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a world and its photos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("world", args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				world, err := a.catalog.GetWorld(cmd.Context(), id)
				if err != nil {
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
					return writeJSON(cmd, worldDetail{World: world, Photos: photos})
				}
				printWorld(cmd, world)
				fmt.Fprintf(cmd.OutOrStdout(), "Photos:      %d\n", len(photos))
				return nil
			})
		},
	}
}

func printWorld(cmd *cobra.Command, world *catalog.World) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %d\n", world.ID)
	fmt.Fprintf(out, "Name:        %s\n", world.Name)
	fmt.Fprintf(out, "Author:      %s\n", valueOrDash(world.AuthorName))
	fmt.Fprintf(out, "VRChat ID:   %s\n", valueOrDash(world.VRChatWorldID))
	fmt.Fprintf(out, "Tags:        %s\n", valueOrDash(strings.Join(world.Tags, ", ")))
	fmt.Fprintf(out, "Thumbnail:   %s\n", valueOrDash(world.ThumbnailURL))
	if world.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", world.Description)
	}
	if world.UserMemo != "" {
		fmt.Fprintf(out, "Memo:        %s\n", world.UserMemo)
	}
	if len(world.GroupIDs) > 0 {
		ids := make([]string, 0, len(world.GroupIDs))
		for _, id := range world.GroupIDs {
			ids = append(ids, formatID(id))
		}
		fmt.Fprintf(out, "Groups:      %s\n", strings.Join(ids, ", "))
	}
}

func newWorldsAddCommand(ctx *commandContext) *cobra.Command {
	var groupID int64

	cmd := &cobra.Command{
		Use:   "add <wrld_id>",
		Short: "Catalog a world using its VRChat details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return acceptWorld(ctx, cmd, args[0], groupID)
		},
	}
	cmd.Flags().Int64Var(&groupID, "group", 0, "Add the world to this group")
	return cmd
}

func acceptWorld(ctx *commandContext, cmd *cobra.Command, worldID string, groupID int64) error {
	return ctx.withApp(func(a *app) error {
		world, err := a.service.Accept(cmd.Context(), worlds.AcceptRequest{WorldID: worldID, GroupID: groupID})
		if err != nil {
			return err
		}
		if ctx.jsonOutput() {
			return writeJSON(cmd, world)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added world %d: %s\n", world.ID, world.Name)
		return nil
	})
}

type worldFlags struct {
	vrchatID    string
	name        string
	author      string
	description string
	thumbnail   string
	memo        string
	tags        []string
}

func (f *worldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.vrchatID, "vrchat-id", "", "VRChat world ID (wrld_...)")
	cmd.Flags().StringVar(&f.name, "name", "", "World name")
	cmd.Flags().StringVar(&f.author, "author", "", "Author name")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringVar(&f.thumbnail, "thumbnail", "", "Thumbnail URL")
	cmd.Flags().StringVar(&f.memo, "memo", "", "Personal memo")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Tag (repeatable)")
}

// apply overlays the flags the user set onto input.
func (f *worldFlags) apply(cmd *cobra.Command, input worlds.WorldInput) worlds.WorldInput {
	flags := cmd.Flags()
	if flags.Changed("vrchat-id") {
		input.VRChatWorldID = f.vrchatID
	}
	if flags.Changed("name") {
		input.Name = f.name
	}
	if flags.Changed("author") {
		input.AuthorName = f.author
	}
	if flags.Changed("description") {
		input.Description = f.description
	}
	if flags.Changed("thumbnail") {
		input.ThumbnailURL = f.thumbnail
	}
	if flags.Changed("memo") {
		input.UserMemo = f.memo
	}
	if flags.Changed("tag") {
		input.Tags = f.tags
	}
	return input
}

func newWorldsCreateCommand(ctx *commandContext) *cobra.Command {
	var flags worldFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Catalog a world entered by hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				world, err := a.service.CreateWorld(cmd.Context(), flags.apply(cmd, worlds.WorldInput{}))
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, world)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created world %d: %s\n", world.ID, world.Name)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

type remoteWorld struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	AuthorTags  []string `json:"authorTags"`
	Capacity    int      `json:"capacity,omitempty"`
	Favorites   int      `json:"favorites,omitempty"`
	Visits      int      `json:"visits,omitempty"`
}

func newWorldsFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <wrld_id>",
		Short: "Look up a world on VRChat without cataloging it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				world, err := a.service.FetchRemote(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				view := remoteWorld{
					ID:          world.ID,
					Name:        world.Name,
					Description: world.Description,
					AuthorTags:  world.AuthorTags(),
					Capacity:    world.Capacity,
					Favorites:   world.Favorites,
					Visits:      world.Visits,
				}
				view.Author, _ = world.Author()
				view.Thumbnail, _ = world.Thumbnail()
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:        %s\n", view.ID)
				fmt.Fprintf(out, "Name:      %s\n", valueOrDash(view.Name))
				fmt.Fprintf(out, "Author:    %s\n", valueOrDash(view.Author))
				fmt.Fprintf(out, "Tags:      %s\n", valueOrDash(strings.Join(view.AuthorTags, ", ")))
				fmt.Fprintf(out, "Thumbnail: %s\n", valueOrDash(view.Thumbnail))
				fmt.Fprintf(out, "Capacity:  %d\n", view.Capacity)
				return nil
			})
		},
	}
}

func newWorldsUpdateCommand(ctx *commandContext) *cobra.Command {
	var flags worldFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a cataloged world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("world", args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				current, err := a.catalog.GetWorld(cmd.Context(), id)
				if err != nil {
					return err
				}
				input := flags.apply(cmd, worlds.WorldInput{
					VRChatWorldID: current.VRChatWorldID,
					Name:          current.Name,
					AuthorName:    current.AuthorName,
					Description:   current.Description,
					ThumbnailURL:  current.ThumbnailURL,
					UserMemo:      current.UserMemo,
					Tags:          current.Tags,
				})
				world, err := a.service.UpdateWorld(cmd.Context(), id, input)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, world)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated world %d: %s\n", world.ID, world.Name)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newWorldsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete worlds and their stored photos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("world", args)
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				if len(ids) == 1 {
					if err := a.service.DeleteWorld(cmd.Context(), ids[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted world %d\n", ids[0])
					return nil
				}
				removed, err := a.service.DeleteWorlds(cmd.Context(), ids)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d of %d worlds\n", removed, len(ids))
				return nil
			})
		},
	}
}
