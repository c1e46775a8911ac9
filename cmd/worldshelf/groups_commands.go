package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"worldshelf/internal/catalog"
	"worldshelf/internal/worlds"
)

func newGroupsCommand(ctx *commandContext) *cobra.Command {
	groupsCmd := &cobra.Command{
		Use:   "groups",
		Short: "Organize worlds into groups",
	}
	groupsCmd.AddCommand(newGroupsListCommand(ctx))
	groupsCmd.AddCommand(newGroupsAddCommand(ctx))
	groupsCmd.AddCommand(newGroupsUpdateCommand(ctx))
	groupsCmd.AddCommand(newGroupsDeleteCommand(ctx))
	groupsCmd.AddCommand(newGroupsAssignCommand(ctx, true))
	groupsCmd.AddCommand(newGroupsAssignCommand(ctx, false))
	return groupsCmd
}

func newGroupsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				groups, err := a.catalog.ListGroups(cmd.Context())
				if err != nil {
					return err
				}
				if groups == nil {
					groups = []*catalog.Group{}
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, groups)
				}
				rows := make([][]string, 0, len(groups))
				for _, group := range groups {
					rows = append(rows, []string{
						formatID(group.ID),
						group.Name,
						strconv.Itoa(group.WorldCount),
						valueOrDash(group.Description),
					})
				}
				printRows(cmd.OutOrStdout(),
					[]string{"ID", "Name", "Worlds", "Description"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight},
				)
				return nil
			})
		},
	}
}

func newGroupsAddCommand(ctx *commandContext) *cobra.Command {
	var description, icon string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				group, err := a.service.CreateGroup(cmd.Context(), worlds.GroupInput{
					Name:        args[0],
					Description: description,
					Icon:        icon,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, group)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created group %d: %s\n", group.ID, group.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Group description")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon name")
	return cmd
}

func newGroupsUpdateCommand(ctx *commandContext) *cobra.Command {
	var name, description, icon string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("group", args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				current, err := a.catalog.GetGroup(cmd.Context(), id)
				if err != nil {
					return err
				}
				input := worlds.GroupInput{Name: current.Name, Description: current.Description, Icon: current.Icon}
				if cmd.Flags().Changed("name") {
					input.Name = name
				}
				if cmd.Flags().Changed("description") {
					input.Description = description
				}
				if cmd.Flags().Changed("icon") {
					input.Icon = icon
				}
				group, err := a.service.UpdateGroup(cmd.Context(), id, input)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, group)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated group %d: %s\n", group.ID, group.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Group name")
	cmd.Flags().StringVar(&description, "description", "", "Group description")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon name")
	return cmd
}

func newGroupsDeleteCommand(ctx *commandContext) *cobra.Command {
	var withWorlds bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("group", args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				if err := a.service.DeleteGroup(cmd.Context(), id, withWorlds); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withWorlds, "with-worlds", false, "Also delete the worlds in the group")
	return cmd
}

func newGroupsAssignCommand(ctx *commandContext, assign bool) *cobra.Command {
	use, short := "assign <world-id> <group-id>", "Add a world to a group"
	if !assign {
		use, short = "unassign <world-id> <group-id>", "Remove a world from a group"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			worldID, err := parseID("world", args[0])
			if err != nil {
				return err
			}
			groupID, err := parseID("group", args[1])
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				if assign {
					if err := a.catalog.AddWorldToGroup(cmd.Context(), worldID, groupID); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "World %d added to group %d\n", worldID, groupID)
					return nil
				}
				if err := a.catalog.RemoveWorldFromGroup(cmd.Context(), worldID, groupID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "World %d removed from group %d\n", worldID, groupID)
				return nil
			})
		},
	}
}
