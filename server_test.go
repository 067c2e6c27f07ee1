package scache

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"SCache/store"
)

func startTestServer(t *testing.T, cfg Config, metrics Metrics) (*Server, *Client, *Manager) {
	t.Helper()

	m, err := NewManager(DefaultURI, store.Options{Type: store.TypeLRU, Capacity: 2})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	srv, err := NewServer(cfg, m, metrics)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return srv, client, m
}

func testServerConfig() Config {
	cfg := DefaultConfig
	cfg.Caches = []string{"test"}
	return cfg
}

func TestServer_RoundTrip(t *testing.T) {
	_, client, _ := startTestServer(t, testServerConfig(), nil)
	ctx := context.Background()

	_, ok, err := client.Get(ctx, "test", "leo")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Put(ctx, "test", "leo", []byte("leo")))
	require.NoError(t, client.Put(ctx, "test", "liu", []byte("liu")))
	_, ok, err = client.Get(ctx, "test", "leo")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, client.Put(ctx, "test", "robin", []byte("robin")))

	val, ok, err := client.Get(ctx, "test", "leo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("leo"), val)

	_, ok, err = client.Get(ctx, "test", "liu")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := client.Remove(ctx, "test", "robin")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = client.Remove(ctx, "test", "robin")
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, client.Clear(ctx, "test"))
	_, ok, err = client.Get(ctx, "test", "leo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServer_BinaryKey(t *testing.T) {
	_, client, _ := startTestServer(t, testServerConfig(), nil)
	ctx := context.Background()

	key := "user:\x00\xff/é"
	require.NoError(t, client.Put(ctx, "test", key, []byte{0, 1, 2}))

	val, ok, err := client.Get(ctx, "test", key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{0, 1, 2}, val)
}

func TestServer_Errors(t *testing.T) {
	_, client, m := startTestServer(t, testServerConfig(), nil)
	ctx := context.Background()

	_, _, err := client.Get(ctx, "missing", "k")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, _, err = client.Get(ctx, "", "k")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, _, err = client.Get(ctx, "test", "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = client.Put(ctx, "test", "k", nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = CreateCache[int, int](m, "ints")
	require.NoError(t, err)
	_, _, err = client.Get(ctx, "ints", "k")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	m.Close()
	_, _, err = client.Get(ctx, "test", "k")
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestServer_Health(t *testing.T) {
	cfg := testServerConfig()
	_, client, _ := startTestServer(t, cfg, nil)

	resp, err := healthpb.NewHealthClient(client.grpcConn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: cfg.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestNewServer_ExistingCache(t *testing.T) {
	m, err := NewManager(DefaultURI, store.DefaultOptions)
	require.NoError(t, err)
	defer m.Close()

	_, err = CreateCache[string, ByteView](m, "test")
	require.NoError(t, err)

	_, err = NewServer(testServerConfig(), m, nil)
	require.NoError(t, err)

	cfg := testServerConfig()
	cfg.Addr = ""
	_, err = NewServer(cfg, m, nil)
	assert.Error(t, err)
}
