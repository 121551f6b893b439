package main

import (
	"fmt"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/cli"
	"github.com/mmynk/splitledger/pkg/api"
)

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}
	cmd.AddCommand(groupCreateCmd())
	cmd.AddCommand(groupListCmd())
	cmd.AddCommand(groupRenameCmd())
	cmd.AddCommand(groupDeleteCmd())
	cmd.AddCommand(groupSimplifyCmd())
	return cmd
}

func groupCreateCmd() *cobra.Command {
	var members string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(func(l *ledger) error {
				resp, err := l.groups.CreateGroup(cmd.Context(), connect.NewRequest(&api.CreateGroupRequest{
					Name:    args[0],
					Members: splitNames(members),
				}))
				if err != nil {
					return err
				}
				g := resp.Msg.Group
				fmt.Fprintf(cmd.OutOrStdout(), "Created group '%s' (%s) with %d members\n", g.Name, g.ID, len(g.Members))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&members, "members", "m", "", "initial members (comma-separated)")
	return cmd
}

func groupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(func(l *ledger) error {
				resp, err := l.groups.ListGroups(cmd.Context(), connect.NewRequest(&api.ListGroupsRequest{}))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(resp.Msg.Groups) == 0 {
					fmt.Fprint(out, cli.RenderEmpty("No groups yet."))
					return nil
				}
				fmt.Fprint(out, cli.RenderTable(cli.GroupTable(resp.Msg.Groups)))
				return nil
			})
		},
	}
}

func groupRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename NAME",
		Short: "Rename the selected group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				resp, err := l.groups.RenameGroup(cmd.Context(), connect.NewRequest(&api.RenameGroupRequest{
					GroupID: g.ID,
					Name:    args[0],
				}))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed '%s' to '%s'\n", g.Name, resp.Msg.Group.Name)
				return nil
			})
		},
	}
}

func groupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the selected group and its history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				if _, err := l.groups.DeleteGroup(cmd.Context(), connect.NewRequest(&api.DeleteGroupRequest{GroupID: g.ID})); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted group '%s'\n", g.Name)
				return nil
			})
		},
	}
}

func groupSimplifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simplify [on|off]",
		Short: "Toggle minimum-transaction settlements, or set them explicitly",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &api.ToggleSimplifyRequest{}
			if len(args) == 1 {
				on, err := parseSwitch(args[0])
				if err != nil {
					return err
				}
				req.Simplify = &on
			}
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				req.GroupID = g.ID
				resp, err := l.groups.ToggleSimplify(cmd.Context(), connect.NewRequest(req))
				if err != nil {
					return err
				}
				state := "off"
				if resp.Msg.Simplify {
					state = "on"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Simplified settlements for '%s': %s\n", g.Name, state)
				return nil
			})
		},
	}
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}
