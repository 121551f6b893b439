package main

import (
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/pkg/api"
)

func memberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage group members",
	}
	cmd.AddCommand(memberAddCmd())
	cmd.AddCommand(memberRemoveCmd())
	return cmd
}

func memberAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME...",
		Short: "Add members to the selected group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range args {
					resp, err := l.groups.AddMember(cmd.Context(), connect.NewRequest(&api.AddMemberRequest{
						GroupID: g.ID,
						Name:    name,
					}))
					if err != nil {
						return fmt.Errorf("add %s: %w", name, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s to '%s'\n", resp.Msg.Member.Name, g.Name)
				}
				return nil
			})
		},
	}
}

func memberRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a member who has no expenses in the selected group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				member, ok := findMember(g, args[0])
				if !ok {
					return fmt.Errorf("member %q not found in '%s'", args[0], g.Name)
				}
				if _, err := l.groups.RemoveMember(cmd.Context(), connect.NewRequest(&api.RemoveMemberRequest{
					GroupID:  g.ID,
					MemberID: member.ID,
				})); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from '%s'\n", member.Name, g.Name)
				return nil
			})
		},
	}
}

func findMember(g *api.Group, name string) (api.Member, bool) {
	for _, m := range g.Members {
		if m.Name == name {
			return m, true
		}
	}
	for _, m := range g.Members {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return api.Member{}, false
}
