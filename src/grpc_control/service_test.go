package grpc_control

import (
	"context"
	"net"
	"sync"
	"testing"

	"tariff-observer/src/dashboard"
	"tariff-observer/src/dashboard/dashboardtest"
	"tariff-observer/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type recordingExchanger struct {
	mu         sync.Mutex
	broadcasts []interface{}
}

func (r *recordingExchanger) Broadcast(payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = append(r.broadcasts, payload)
}

func (r *recordingExchanger) UpdateAllDatas(interface{}) {}
func (r *recordingExchanger) Start() error               { return nil }
func (r *recordingExchanger) Stop() error                { return nil }

func newTestClient(t *testing.T) (*DashboardControlClient, *recordingExchanger) {
	t.Helper()
	svc, err := dashboard.New(context.Background(), dashboardtest.Config(t), logger.NewNopLogger("dashboard"))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	ex := &recordingExchanger{}
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterDashboardControlServer(srv, NewControlService(svc, ex, logger.NewNopLogger("grpc")))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewDashboardControlClient(conn), ex
}

func TestListSourcesBeforeAndAfterBuild(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	out, err := client.Call(ctx, "ListSources", nil)
	require.NoError(t, err)
	sources := out.GetFields()["sources"].GetListValue().GetValues()
	require.Len(t, sources, 5)
	first := sources[0].GetStructValue().GetFields()
	assert.Equal(t, "trade_balance_china", first["name"].GetStringValue())
	assert.False(t, first["loaded"].GetBoolValue())

	st, err := client.Call(ctx, "GetStatus", nil)
	require.NoError(t, err)
	assert.False(t, st.GetFields()["built"].GetBoolValue())

	_, err = client.Call(ctx, "Refresh", nil)
	require.NoError(t, err)

	out, err = client.Call(ctx, "ListSources", nil)
	require.NoError(t, err)
	second := out.GetFields()["sources"].GetListValue().GetValues()[1].GetStructValue().GetFields()
	assert.True(t, second["loaded"].GetBoolValue())
	assert.Equal(t, 3.0, second["series_count"].GetNumberValue())
}

func TestRefreshBroadcasts(t *testing.T) {
	client, ex := newTestClient(t)

	out, err := client.Call(context.Background(), "Refresh", nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE", out.GetFields()["type"].GetStringValue())
	assert.Len(t, out.GetFields()["panels"].GetListValue().GetValues(), 2)
	ex.mu.Lock()
	defer ex.mu.Unlock()
	assert.Len(t, ex.broadcasts, 1)
}

func TestGetComparison(t *testing.T) {
	client, _ := newTestClient(t)

	out, err := client.Call(context.Background(), "GetComparison", map[string]interface{}{
		"panel": "trade_us",
		"from":  "2020-M07",
		"top":   1,
	})
	require.NoError(t, err)

	cmp := out.GetFields()["comparison"].GetStructValue().GetFields()
	assert.Equal(t, "2020-07", cmp["month_a"].GetStringValue())
	world := cmp["entries"].GetListValue().GetValues()[0].GetStructValue().GetFields()
	assert.Equal(t, "World", world["entity"].GetStringValue())
	assert.Equal(t, 30.0, world["absolute_change"].GetNumberValue())

	movers := out.GetFields()["movers"].GetStructValue().GetFields()
	assert.Len(t, movers["absolute"].GetStructValue().GetFields()["increases"].GetListValue().GetValues(), 1)
}

func TestErrorCodes(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	cases := []struct {
		method string
		args   map[string]interface{}
		code   codes.Code
	}{
		{"GetComparison", nil, codes.InvalidArgument},
		{"GetComparison", map[string]interface{}{"panel": "nope"}, codes.NotFound},
		{"GetComparison", map[string]interface{}{"panel": "trade_us", "to": "someday"}, codes.InvalidArgument},
		{"GetCorrelation", map[string]interface{}{"panel": "trade_us"}, codes.NotFound},
		{"RemoveSource", map[string]interface{}{"name": "missing"}, codes.NotFound},
		{"RemoveSource", nil, codes.InvalidArgument},
	}
	for _, tc := range cases {
		_, err := client.Call(ctx, tc.method, tc.args)
		require.Error(t, err, tc.method)
		assert.Equal(t, tc.code, status.Code(err), "%s %v", tc.method, tc.args)
	}
}

func TestCorrelationAndRemoveSource(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	out, err := client.Call(ctx, "GetCorrelation", map[string]interface{}{"panel": "correlation"})
	require.NoError(t, err)
	keys := out.GetFields()["keys"].GetListValue().GetValues()
	require.Len(t, keys, 2)
	assert.Equal(t, "CSI 300", keys[0].GetStringValue())

	_, err = client.Call(ctx, "RemoveSource", map[string]interface{}{"name": "trade_balance_china"})
	require.NoError(t, err)
	out, err = client.Call(ctx, "ListSources", nil)
	require.NoError(t, err)
	assert.Len(t, out.GetFields()["sources"].GetListValue().GetValues(), 4)
}
