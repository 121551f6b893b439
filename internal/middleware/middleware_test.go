package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

type ping struct{}

// echoUser returns the identity seen by the handler as response headers.
func echoUser(ctx context.Context, _ connect.AnyRequest) (connect.AnyResponse, error) {
	resp := connect.NewResponse(&ping{})
	resp.Header().Set("X-User", GetUserID(ctx))
	resp.Header().Set("X-Email", GetEmail(ctx))
	return resp, nil
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	user := models.NewUser("alice@example.com", "Alice", "hash")
	token, err := jwtManager.Generate(user)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode connect.Code
	}{
		{name: "valid token", header: "Bearer " + token},
		{name: "missing header", wantCode: connect.CodeUnauthenticated},
		{name: "wrong scheme", header: "Basic abc", wantCode: connect.CodeUnauthenticated},
		{name: "empty bearer", header: "Bearer ", wantCode: connect.CodeUnauthenticated},
		{name: "bad token", header: "Bearer nope", wantCode: connect.CodeUnauthenticated},
	}

	handler := RequireAuth(jwtManager)(echoUser)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&ping{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			resp, err := handler(context.Background(), req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, resp.Header().Get("X-User"))
			assert.Equal(t, user.Email, resp.Header().Get("X-Email"))
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	user := models.NewUser("bob@example.com", "Bob", "hash")
	token, err := jwtManager.Generate(user)
	require.NoError(t, err)

	handler := OptionalAuth(jwtManager)(echoUser)

	anon, err := handler(context.Background(), connect.NewRequest(&ping{}))
	require.NoError(t, err)
	assert.Empty(t, anon.Header().Get("X-User"))

	bad := connect.NewRequest(&ping{})
	bad.Header().Set("Authorization", "Bearer garbage")
	resp, err := handler(context.Background(), bad)
	require.NoError(t, err)
	assert.Empty(t, resp.Header().Get("X-User"))

	good := connect.NewRequest(&ping{})
	good.Header().Set("Authorization", "Bearer "+token)
	resp, err = handler(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.Header().Get("X-User"))
}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := m.Interceptor()(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	})
	failing := m.Interceptor()(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	})

	_, err := ok(context.Background(), connect.NewRequest(&ping{}))
	require.NoError(t, err)
	_, err = ok(context.Background(), connect.NewRequest(&ping{}))
	require.NoError(t, err)
	_, err = failing(context.Background(), connect.NewRequest(&ping{}))
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "splitledger_rpc_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "code" {
					counts[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"ok": 2, "not_found": 1}, counts)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "ok", codeOf(nil))
	assert.Equal(t, "invalid_argument", codeOf(connect.NewError(connect.CodeInvalidArgument, errors.New("x"))))
	assert.Equal(t, "unknown", codeOf(errors.New("plain")))
}

func TestCORS(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.True(t, called)
}
