package main

import (
	"fmt"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/cli"
	"github.com/mmynk/splitledger/pkg/api"
)

func balancesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "balances",
		Aliases: []string{"show-balances"},
		Short:   "Show each member's net balance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				resp, err := l.expenses.GetBalances(cmd.Context(), connect.NewRequest(&api.GetBalancesRequest{GroupID: g.ID}))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if f != cli.FormatTable {
					return cli.Encode(out, f, cli.NewBalanceExport(g.Name, resp.Msg.Balances))
				}
				fmt.Fprint(out, cli.RenderTable(cli.BalanceTable("Balances for '"+g.Name+"'", resp.Msg.Balances)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", cli.FormatTable, "output format (table, json, toml)")
	return cmd
}

func settlementsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "settlements",
		Aliases: []string{"show-settlements"},
		Short:   "Show suggested transfers to settle up",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				resp, err := l.expenses.GetSettlements(cmd.Context(), connect.NewRequest(&api.GetSettlementsRequest{GroupID: g.ID}))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if f != cli.FormatTable {
					return cli.Encode(out, f, cli.NewSettlementExport(g.Name, resp.Msg.Simplify, resp.Msg.Settlements))
				}
				if len(resp.Msg.Settlements) == 0 {
					fmt.Fprint(out, cli.RenderEmpty("All settled up!"))
					return nil
				}
				fmt.Fprint(out, cli.RenderTable(cli.SettlementTable("Settlements for '"+g.Name+"'", resp.Msg.Settlements)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", cli.FormatTable, "output format (table, json, toml)")
	return cmd
}
