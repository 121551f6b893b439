package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/viper"

	"github.com/mmynk/splitledger/internal/server"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/pkg/api"
)

// ledger is what every data command talks to: remote Connect clients or
// in-process services over the local store. Both satisfy the handler
// interfaces.
type ledger struct {
	groups   api.GroupServiceHandler
	expenses api.ExpenseServiceHandler
	close    func() error
}

func openLedger() (*ledger, error) {
	if cfg.Server.URL != "" {
		httpClient := &http.Client{Timeout: 30 * time.Second}
		var opts []connect.ClientOption
		if cfg.Server.Token != "" {
			opts = append(opts, connect.WithInterceptors(bearerInterceptor(cfg.Server.Token)))
		}
		slog.Debug("Using remote ledger", "url", cfg.Server.URL)
		return &ledger{
			groups:   api.NewGroupServiceClient(httpClient, cfg.Server.URL, opts...),
			expenses: api.NewExpenseServiceClient(httpClient, cfg.Server.URL, opts...),
			close:    func() error { return nil },
		}, nil
	}

	store, err := server.OpenStore(cfg.Database)
	if err != nil {
		return nil, err
	}
	slog.Debug("Using local ledger", "driver", cfg.Database.Driver, "path", cfg.Database.Path)

	logger := slog.Default()
	locks := service.NewLocks()
	return &ledger{
		groups:   service.NewGroupService(store, locks, logger),
		expenses: service.NewExpenseService(store, locks, logger),
		close:    store.Close,
	}, nil
}

func bearerInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

// withLedger opens the ledger for the duration of fn.
func withLedger(fn func(l *ledger) error) error {
	l, err := openLedger()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := l.close(); cerr != nil {
			slog.Warn("Failed to close store", "error", cerr)
		}
	}()
	return fn(l)
}

// resolveGroup picks the group named by --group, matching ID first and then
// name case-insensitively. Without --group it returns the first group.
func (l *ledger) resolveGroup(ctx context.Context) (*api.Group, error) {
	resp, err := l.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		return nil, err
	}
	groups := resp.Msg.Groups
	if len(groups) == 0 {
		return nil, errors.New("no groups found, create one with 'splitledger group create'")
	}

	want := strings.TrimSpace(viper.GetString("group"))
	if want == "" {
		return l.getGroup(ctx, groups[0].ID)
	}
	for _, g := range groups {
		if g.ID == want {
			return l.getGroup(ctx, g.ID)
		}
	}
	for _, g := range groups {
		if strings.EqualFold(g.Name, want) {
			return l.getGroup(ctx, g.ID)
		}
	}
	return nil, fmt.Errorf("group %q not found", want)
}

func (l *ledger) getGroup(ctx context.Context, id string) (*api.Group, error) {
	resp, err := l.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: id}))
	if err != nil {
		return nil, err
	}
	return &resp.Msg.Group, nil
}

// splitNames parses a comma-separated member list.
func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func memberNames(g *api.Group) []string {
	names := make([]string, len(g.Members))
	for i, m := range g.Members {
		names[i] = m.Name
	}
	return names
}
