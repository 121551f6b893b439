package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/cli"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/server"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

// writeConfig points the CLI at a fresh SQLite database.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "database:\n" +
		"  driver: sqlite\n" +
		"  path: " + filepath.Join(dir, "ledger.db") + "\n" +
		"logging:\n" +
		"  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestLedgerWorkflow(t *testing.T) {
	cfgPath := writeConfig(t)

	out := run(t, cfgPath, "group", "create", "Trip", "--members", "Alice,Bob,Charlie")
	assert.Contains(t, out, "Created group 'Trip'")
	assert.Contains(t, out, "3 members")

	out = run(t, cfgPath, "add-expense", "-d", "Dinner", "-a", "90", "-P", "Alice")
	assert.Contains(t, out, "Alice paid 90.00 for 3 people")

	run(t, cfgPath, "add-expense", "-d", "Taxi", "-a", "30", "-P", "Bob", "-u", "Bob,Charlie")

	out = run(t, cfgPath, "balances", "--format", "json")
	var balances cli.BalanceExport
	require.NoError(t, json.Unmarshal([]byte(out), &balances))
	assert.Equal(t, "Trip", balances.Group)
	nets := make(map[string]float64)
	for _, b := range balances.Balances {
		nets[b.Member] = b.Net
	}
	assert.InDelta(t, 60, nets["Alice"], 1e-9)
	assert.InDelta(t, -15, nets["Bob"], 1e-9)
	assert.InDelta(t, -45, nets["Charlie"], 1e-9)

	out = run(t, cfgPath, "settlements", "--format", "toml")
	var report cli.SettlementExport
	_, err := toml.Decode(out, &report)
	require.NoError(t, err)
	assert.Equal(t, "pairwise", report.Policy)
	require.Len(t, report.Settlements, 3)
	assert.Equal(t, "Bob", report.Settlements[0].From)
	assert.Equal(t, "Alice", report.Settlements[0].To)
	assert.InDelta(t, 30, report.Settlements[0].Amount, 1e-9)

	out = run(t, cfgPath, "settle", "Bob", "Alice", "--amount", "15")
	assert.Contains(t, out, "Bob paid Alice 15.00")

	out = run(t, cfgPath, "settlements", "--format", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotEmpty(t, report.Settlements)
	assert.Equal(t, "Bob", report.Settlements[0].From)
	assert.True(t, report.Settlements[0].Settled)

	out = run(t, cfgPath, "revoke", "Bob", "Alice")
	assert.Contains(t, out, "Revoked 1 settled record(s)")

	out = run(t, cfgPath, "group", "simplify", "on")
	assert.Contains(t, out, ": on")

	out = run(t, cfgPath, "settlements", "--format", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "simplified", report.Policy)

	out = run(t, cfgPath, "group", "list")
	assert.Contains(t, out, "Trip")
	assert.Contains(t, out, "simplified")
}

func TestRemoteLedger(t *testing.T) {
	srvCfg := &config.Config{Database: config.DatabaseConfig{Driver: config.DriverMemory}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.New(srvCfg, memory.New(), logger, prometheus.NewRegistry())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfgPath := writeConfig(t)
	t.Setenv("SPLITLEDGER_SERVER_URL", ts.URL)

	run(t, cfgPath, "group", "create", "Remote", "--members", "Ann,Ben")
	run(t, cfgPath, "add-expense", "-d", "Lunch", "-a", "20", "-P", "Ann", "-u", "Ann,Ben")

	out := run(t, cfgPath, "settlements", "--format", "json")
	var report cli.SettlementExport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "Remote", report.Group)
	require.Len(t, report.Settlements, 1)
	assert.Equal(t, "Ben", report.Settlements[0].From)
	assert.InDelta(t, 10, report.Settlements[0].Amount, 1e-9)

	// Nothing was written to the local database.
	_, err := os.Stat(filepath.Join(filepath.Dir(cfgPath), "ledger.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestNoGroupsError(t *testing.T) {
	cfgPath := writeConfig(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--config", cfgPath, "balances", "--format", "table"})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no groups found")
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"Alice", "Bob"}, splitNames(" Alice, ,Bob,"))
	assert.Nil(t, splitNames(""))
}

func TestParseSwitch(t *testing.T) {
	on, err := parseSwitch("on")
	require.NoError(t, err)
	assert.True(t, on)

	off, err := parseSwitch("off")
	require.NoError(t, err)
	assert.False(t, off)

	_, err = parseSwitch("maybe")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "maybe"))
}
