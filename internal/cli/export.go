package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mmynk/splitledger/pkg/api"
)

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatTOML  = "toml"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatTOML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or toml)", s)
	}
}

// SettlementExport is the machine-readable form of a settlement report.
type SettlementExport struct {
	Group       string            `json:"group" toml:"group"`
	Policy      string            `json:"policy" toml:"policy"`
	Settlements []SettlementEntry `json:"settlements" toml:"settlements"`
}

type SettlementEntry struct {
	From    string  `json:"from" toml:"from"`
	To      string  `json:"to" toml:"to"`
	Amount  float64 `json:"amount" toml:"amount"`
	Settled bool    `json:"settled" toml:"settled"`
}

// NewSettlementExport builds an export for the named group.
func NewSettlementExport(group string, simplify bool, settlements []api.Settlement) SettlementExport {
	policy := "pairwise"
	if simplify {
		policy = "simplified"
	}
	out := SettlementExport{
		Group:       group,
		Policy:      policy,
		Settlements: make([]SettlementEntry, len(settlements)),
	}
	for i, s := range settlements {
		out.Settlements[i] = SettlementEntry{From: s.From, To: s.To, Amount: s.Amount, Settled: s.Settled}
	}
	return out
}

// BalanceExport is the machine-readable form of a balance sheet.
type BalanceExport struct {
	Group    string         `json:"group" toml:"group"`
	Balances []BalanceEntry `json:"balances" toml:"balances"`
}

type BalanceEntry struct {
	Member string  `json:"member" toml:"member"`
	Paid   float64 `json:"paid" toml:"paid"`
	Share  float64 `json:"share" toml:"share"`
	Net    float64 `json:"net" toml:"net"`
}

// NewBalanceExport builds an export for the named group.
func NewBalanceExport(group string, balances []api.MemberBalance) BalanceExport {
	out := BalanceExport{Group: group, Balances: make([]BalanceEntry, len(balances))}
	for i, b := range balances {
		out.Balances[i] = BalanceEntry{Member: b.MemberName, Paid: b.TotalPaid, Share: b.TotalShare, Net: b.NetBalance}
	}
	return out
}

// Encode writes v as JSON or TOML.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("format %q is not a data format", format)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
