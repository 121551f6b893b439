package main

import (
	"fmt"
	"strconv"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/cli"
	"github.com/mmynk/splitledger/pkg/api"
)

func addExpenseCmd() *cobra.Command {
	var (
		description  string
		amount       float64
		payer        string
		participants string
		category     string
		notes        string
	)
	cmd := &cobra.Command{
		Use:   "add-expense",
		Short: "Add an expense split equally among participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				names := splitNames(participants)
				if len(names) == 0 {
					names = memberNames(g)
				}
				resp, err := l.expenses.CreateExpense(cmd.Context(), connect.NewRequest(&api.CreateExpenseRequest{
					GroupID:      g.ID,
					Description:  description,
					Amount:       amount,
					Payer:        payer,
					Participants: names,
					Category:     category,
					Notes:        notes,
				}))
				if err != nil {
					return err
				}
				e := resp.Msg.Event
				fmt.Fprintf(cmd.OutOrStdout(), "Added expense #%d '%s': %s paid %s for %d people\n",
					e.ID, e.Description, e.Payer, cli.FormatMoney(e.Amount), len(e.Participants))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "description of the expense")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "amount of the expense")
	cmd.Flags().StringVarP(&payer, "payer", "P", "", "member who paid")
	cmd.Flags().StringVarP(&participants, "participants", "u", "", "participants (comma-separated, default: everyone)")
	cmd.Flags().StringVar(&category, "category", "", "optional category")
	cmd.Flags().StringVar(&notes, "notes", "", "optional notes")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("payer")
	return cmd
}

func deleteExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-expense ID",
		Short: "Delete an expense or settlement payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid event ID %q", args[0])
			}
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				resp, err := l.expenses.DeleteExpense(cmd.Context(), connect.NewRequest(&api.DeleteExpenseRequest{
					GroupID: g.ID,
					EventID: id,
				}))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted event #%d", id)
				if n := resp.Msg.RevokedRecords; n > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), " and revoked %d settled record(s)", n)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}

func settleCmd() *cobra.Command {
	var amount float64
	cmd := &cobra.Command{
		Use:   "settle FROM TO",
		Short: "Record a payment from one member to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				resp, err := l.expenses.Settle(cmd.Context(), connect.NewRequest(&api.SettleRequest{
					GroupID: g.ID,
					From:    args[0],
					To:      args[1],
					Amount:  amount,
				}))
				if err != nil {
					return err
				}
				r := resp.Msg.Record
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded: %s paid %s %s\n", r.From, r.To, cli.FormatMoney(r.Amount))
				return nil
			})
		},
	}
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "amount paid")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func revokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke FROM TO",
		Short: "Clear the settled mark for a pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(func(l *ledger) error {
				g, err := l.resolveGroup(cmd.Context())
				if err != nil {
					return err
				}
				resp, err := l.expenses.RevokeSettlement(cmd.Context(), connect.NewRequest(&api.RevokeSettlementRequest{
					GroupID: g.ID,
					From:    args[0],
					To:      args[1],
				}))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Revoked %d settled record(s) for %s -> %s\n", resp.Msg.RevokedRecords, args[0], args[1])
				return nil
			})
		},
	}
}
